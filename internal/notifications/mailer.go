package notifications

import (
	"context"

	"wedly/pkg/logger"
)

// LogMailer records the notice instead of sending it. Stands in for the
// hosted email collaborator in environments without mail credentials.
type LogMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendCheckInNotice(ctx context.Context, event *LifecycleEvent) error {
	m.log.Info("Check-in notice",
		"event_id", event.EventID.String(),
		"guest_id", event.GuestID.String(),
		"guest_name", event.GuestName,
	)
	return nil
}
