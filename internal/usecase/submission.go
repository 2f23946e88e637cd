package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/ports"
)

const (
	actionApprove    = "approve"
	actionDisapprove = "disapprove"

	criteriaMismatchReason = "Content did not match required criteria"
)

// Outcome is the caller-facing result of a workflow step.
type Outcome struct {
	Success bool
	Message string
}

// ContentEvaluator decides whether a URL qualifies for unattended publication.
type ContentEvaluator interface {
	Evaluate(ctx context.Context, rawURL string, p domain.Platform) ContentCheck
}

// ReviewRequester asks a human to moderate a submission.
type ReviewRequester interface {
	RequestReview(ctx context.Context, req ReviewRequest) error
}

// TokenVerifier checks moderation link tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, submissionID, token string) bool
}

// SubmissionDeps groups the collaborators of SubmissionWorkflow.
type SubmissionDeps struct {
	Submissions ports.SubmissionRepository
	Shows       ports.ShowRepository
	Evaluator   ContentEvaluator
	Reviewers   ReviewRequester
	Tokens      TokenVerifier
	Changes     ports.ChangePublisher
	Logger      *slog.Logger
	Now         func() time.Time
}

// SubmissionWorkflow accepts URLs from the public and applies moderation decisions.
type SubmissionWorkflow struct {
	deps   SubmissionDeps
	logger *slog.Logger
}

// NewSubmissionWorkflow builds the workflow; Now defaults to time.Now.
func NewSubmissionWorkflow(deps SubmissionDeps) *SubmissionWorkflow {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionWorkflow{deps: deps, logger: logger.With("component", "submissions")}
}

// Submit registers a URL. Duplicates succeed without creating anything; only
// persistence failures are returned as errors.
func (w *SubmissionWorkflow) Submit(ctx context.Context, rawURL string) (Outcome, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Outcome{}, domain.NewUserError(domain.ErrValidation, "URL is required")
	}

	p, ok := domain.DetectPlatform(rawURL)
	if !ok {
		return Outcome{}, domain.NewUserError(domain.ErrValidation,
			"Please enter a valid YouTube, Twitch, Instagram, or TikTok URL")
	}

	hash := domain.HashURL(rawURL)
	existing, err := w.deps.Submissions.FindSubmissionByURLHash(ctx, hash)
	switch {
	case err == nil:
		return duplicateOutcome(existing.Status), nil
	case !errors.Is(err, domain.ErrNotFound):
		return Outcome{}, fmt.Errorf("lookup submission: %w", err)
	}

	check := w.deps.Evaluator.Evaluate(ctx, rawURL, p)
	status := domain.StatusHoldForReview
	if check.MeetsCriteria {
		status = domain.StatusPending
	}

	now := w.deps.Now()
	sub, err := w.deps.Submissions.InsertSubmission(ctx, domain.Submission{
		URL:           rawURL,
		URLHash:       hash,
		Platform:      p,
		SubmittedAt:   now,
		Status:        status,
		MeetsCriteria: check.MeetsCriteria,
	})
	if errors.Is(err, domain.ErrDuplicate) {
		// Lost the race against a concurrent submit of the same URL.
		winner, findErr := w.deps.Submissions.FindSubmissionByURLHash(ctx, hash)
		if findErr != nil {
			return duplicateOutcome(""), nil
		}
		return duplicateOutcome(winner.Status), nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("persist submission: %w", err)
	}
	w.logger.Info("submission stored", "id", sub.ID, "platform", p, "status", status)

	if check.MeetsCriteria {
		if _, err := w.createShow(ctx, showFromCheck(p, rawURL, check, now)); err != nil {
			return Outcome{}, err
		}
	} else {
		req := ReviewRequest{
			SubmissionID:   strconv.FormatInt(sub.ID, 10),
			URL:            rawURL,
			Platform:       p,
			SubmittedAt:    now,
			Reason:         criteriaMismatchReason,
			ContentSnippet: check.ContentSnippet,
		}
		if w.deps.Reviewers != nil {
			if err := w.deps.Reviewers.RequestReview(ctx, req); err != nil {
				w.logger.Error("review request delivery failed", "id", sub.ID, "error", err)
			}
		}
	}

	w.publish(ctx, domain.ChangeEvent{Entity: "submission", ID: sub.ID, Action: "created", At: now})

	if check.MeetsCriteria {
		return Outcome{Success: true, Message: "Your submission has been received and a profile has been created."}, nil
	}
	return Outcome{Success: true, Message: "Your submission has been received and will be reviewed by our team."}, nil
}

// ResolveAction applies a reviewer's approve or disapprove click.
func (w *SubmissionWorkflow) ResolveAction(ctx context.Context, id, action, tok string) (Outcome, error) {
	if id == "" || action == "" || tok == "" {
		return Outcome{}, domain.NewUserError(domain.ErrValidation, "Missing required parameters")
	}
	if w.deps.Tokens == nil || !w.deps.Tokens.Verify(ctx, id, tok) {
		return Outcome{}, domain.NewUserError(domain.ErrUnauthorized, "Invalid or expired token")
	}

	subID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return Outcome{}, domain.NewUserError(domain.ErrNotFound, "Submission not found")
	}

	switch action {
	case actionApprove:
		return w.approve(ctx, subID)
	case actionDisapprove:
		return w.disapprove(ctx, subID)
	default:
		return Outcome{}, domain.NewUserError(domain.ErrValidation, "Invalid action")
	}
}

func (w *SubmissionWorkflow) approve(ctx context.Context, id int64) (Outcome, error) {
	sub, err := w.deps.Submissions.FindSubmissionByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return Outcome{}, domain.NewUserError(domain.ErrNotFound, "Submission not found")
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("load submission %d: %w", id, err)
	}

	if err := w.deps.Submissions.UpdateSubmissionStatus(ctx, id, domain.StatusApproved); err != nil {
		return Outcome{}, fmt.Errorf("approve submission %d: %w", id, err)
	}

	now := w.deps.Now()
	if _, err := w.createShow(ctx, domain.NewPlaceholderShow(sub.Platform, sub.URL, now)); err != nil {
		return Outcome{}, err
	}

	w.logger.Info("submission approved", "id", id)
	w.publish(ctx, domain.ChangeEvent{Entity: "submission", ID: id, Action: "approved", At: now})
	return Outcome{Success: true, Message: "Submission approved successfully"}, nil
}

func (w *SubmissionWorkflow) disapprove(ctx context.Context, id int64) (Outcome, error) {
	err := w.deps.Submissions.DeleteSubmission(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return Outcome{}, domain.NewUserError(domain.ErrNotFound, "Submission not found")
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("delete submission %d: %w", id, err)
	}

	w.logger.Info("submission disapproved", "id", id)
	w.publish(ctx, domain.ChangeEvent{Entity: "submission", ID: id, Action: "deleted", At: w.deps.Now()})
	return Outcome{Success: true, Message: "Submission disapproved and removed"}, nil
}

func (w *SubmissionWorkflow) createShow(ctx context.Context, show domain.Show) (domain.Show, error) {
	stored, created, err := w.deps.Shows.CreateShowIfAbsent(ctx, show)
	if err != nil {
		return domain.Show{}, fmt.Errorf("create show: %w", err)
	}
	if created {
		w.logger.Info("show created", "id", stored.ID, "platform", stored.Platform)
		w.publish(ctx, domain.ChangeEvent{Entity: "show", ID: stored.ID, Action: "created", At: w.deps.Now()})
	}
	return stored, nil
}

func (w *SubmissionWorkflow) publish(ctx context.Context, event domain.ChangeEvent) {
	publishChange(ctx, w.deps.Changes, w.logger, event)
}

func publishChange(ctx context.Context, changes ports.ChangePublisher, logger *slog.Logger, event domain.ChangeEvent) {
	if changes == nil {
		return
	}
	if err := changes.PublishChange(ctx, event); err != nil {
		logger.Warn("change event not published", "entity", event.Entity, "id", event.ID, "error", err)
	}
}

func showFromCheck(p domain.Platform, rawURL string, check ContentCheck, now time.Time) domain.Show {
	show := domain.NewPlaceholderShow(p, rawURL, now)
	if check.Title != "" {
		show.Title = check.Title
	}
	if check.Description != "" {
		show.Description = check.Description
	}
	if check.Thumbnail != "" {
		show.Thumbnail = check.Thumbnail
	}
	show.ChannelID = check.ChannelID
	show.ViewCount = check.ViewCount
	return show
}

func duplicateOutcome(status domain.SubmissionStatus) Outcome {
	msg := "This URL has already been submitted before."
	switch status {
	case domain.StatusApproved:
		msg = "This URL has already been approved and added to our database."
	case domain.StatusHoldForReview:
		msg = "This URL has already been submitted and is awaiting review by our team."
	case domain.StatusPending:
		msg = "This URL has already been submitted and is being processed."
	}
	return Outcome{Success: true, Message: msg}
}
