package events

import (
	"context"
	"log/slog"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/ports"
)

// LogPublisher records change events in the log when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

var _ ports.ChangePublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger.With("component", "changes")}
}

func (p *LogPublisher) PublishChange(_ context.Context, event domain.ChangeEvent) error {
	p.logger.Debug("data changed", "entity", event.Entity, "id", event.ID, "action", event.Action)
	return nil
}
