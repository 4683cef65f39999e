package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogProvider records every event on the application log. It is always
// installed so deliveries remain observable even with no channel configured.
type LogProvider struct {
	log *zap.Logger
}

func NewLogProvider(log *zap.Logger) *LogProvider {
	return &LogProvider{log: log.Named("notification.log")}
}

func (p *LogProvider) Name() string { return "log" }

func (p *LogProvider) Send(ctx context.Context, event Event) error {
	_ = ctx
	p.log.Info("notification",
		zap.String("event_id", event.ID),
		zap.String("kind", string(event.Kind)),
		zap.String("owner_id", event.OwnerID.String()),
		zap.Any("payload", event.Payload),
	)
	return nil
}
