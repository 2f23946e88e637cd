package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/ports"
	"BangerBoard/internal/token"
)

// ReviewRequest describes a submission that needs a human decision.
type ReviewRequest struct {
	SubmissionID   string
	URL            string
	Platform       domain.Platform
	SubmittedAt    time.Time
	Reason         string
	ContentSnippet string
}

// TokenIssuer mints the action token embedded in moderation links.
type TokenIssuer interface {
	Issue(ctx context.Context, submissionID string) (token.Issued, error)
}

// NotificationGateway turns review requests into messages for every configured transport.
type NotificationGateway struct {
	tokens     TokenIssuer
	messengers []ports.Messenger
	logger     *slog.Logger
}

// NewNotificationGateway wires the token issuer with the outbound messengers.
func NewNotificationGateway(tokens TokenIssuer, logger *slog.Logger, messengers ...ports.Messenger) *NotificationGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationGateway{
		tokens:     tokens,
		messengers: messengers,
		logger:     logger.With("component", "notifications"),
	}
}

// RequestReview issues a fresh token and delivers the approval message.
// A failing transport does not stop the others; all failures are joined.
func (g *NotificationGateway) RequestReview(ctx context.Context, req ReviewRequest) error {
	issued, err := g.tokens.Issue(ctx, req.SubmissionID)
	if err != nil {
		return fmt.Errorf("issue action token: %w", err)
	}

	msg := ComposeApprovalMessage(req, issued)

	var errs []error
	for _, m := range g.messengers {
		if err := m.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.Name(), err))
			continue
		}
		g.logger.Info("review request sent", "transport", m.Name(), "submission", req.SubmissionID)
	}
	return errors.Join(errs...)
}

// ComposeApprovalMessage renders the moderation request for a submission.
func ComposeApprovalMessage(req ReviewRequest, issued token.Issued) ports.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "A new submission requires your review.\n\n")
	fmt.Fprintf(&b, "URL: %s\n", req.URL)
	fmt.Fprintf(&b, "Platform: %s\n", req.Platform)
	fmt.Fprintf(&b, "Submitted: %s\n", req.SubmittedAt.UTC().Format(time.RFC1123))
	fmt.Fprintf(&b, "Reason for review: %s\n", req.Reason)
	if req.ContentSnippet != "" {
		fmt.Fprintf(&b, "\nContent preview:\n%s\n", req.ContentSnippet)
	}
	fmt.Fprintf(&b, "\nLinks expire %s.\n", issued.ExpiresAt.UTC().Format(time.RFC1123))

	return ports.Message{
		Subject: fmt.Sprintf("APPROVAL REQUEST - New %s submission", req.Platform),
		Body:    b.String(),
		Links: []ports.Link{
			{Label: "Approve", URL: issued.ApproveURL},
			{Label: "Disapprove", URL: issued.DisapproveURL},
		},
	}
}
