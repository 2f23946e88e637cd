package console

import (
	"context"
	"log/slog"

	"BangerBoard/internal/ports"
)

// Notifier logs moderation requests; it stands in for email delivery.
type Notifier struct {
	recipient string
	logger    *slog.Logger
}

var _ ports.Messenger = (*Notifier)(nil)

// NewNotifier logs messages addressed to recipient.
func NewNotifier(recipient string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{recipient: recipient, logger: logger.With("component", "console-messenger")}
}

func (n *Notifier) Name() string { return "console" }

func (n *Notifier) Send(_ context.Context, msg ports.Message) error {
	attrs := []any{"to", n.recipient, "subject", msg.Subject, "body", msg.Body}
	for _, l := range msg.Links {
		attrs = append(attrs, l.Label, l.URL)
	}
	n.logger.Info("review request", attrs...)
	return nil
}
