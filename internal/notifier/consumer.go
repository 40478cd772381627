package notifier

import (
	"context"

	"raidledger/internal/events"
	"raidledger/pkg/client"
	"raidledger/pkg/kafka"
	"raidledger/pkg/logger"
)

// Notifier consumes battle events and pushes display refreshes for the
// affected surfaces. It runs apart from the engine so a slow or failing
// display service never backs up settlements.
type Notifier struct {
	display *client.DisplayClient
	log     *logger.Logger
}

func NewNotifier(display *client.DisplayClient, log *logger.Logger) *Notifier {
	return &Notifier{
		display: display,
		log:     log,
	}
}

// Handle is the Kafka message handler. Unknown event types are committed
// without action so schema additions never poison the group.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	eventType := msg.GetEventType()

	switch eventType {
	case events.TypeBookingCreated,
		events.TypeBookingCancelled,
		events.TypeAttackSettled:
		n.refresh(ctx, msg.GetCorrelationID(), eventType)

	case events.TypeBossDefeated:
		var payload events.BossDefeated
		if err := msg.DecodeValue(&payload); err != nil {
			n.log.Error("Failed to decode boss defeated event", "event_id", msg.GetEventID(), "error", err)
			return err
		}
		n.log.Info("Boss defeated",
			"team_id", payload.TeamID,
			"boss_id", payload.BossID,
			"round", payload.Round,
		)
		n.refresh(ctx, payload.CorrelationKey, eventType)

	case events.TypeEncounterAdvanced:
		var payload events.EncounterAdvanced
		if err := msg.DecodeValue(&payload); err != nil {
			n.log.Error("Failed to decode encounter advanced event", "event_id", msg.GetEventID(), "error", err)
			return err
		}
		// A new round means a new surface; render it immediately.
		n.refresh(ctx, payload.CorrelationKey, eventType)

	default:
		n.log.Debug("Ignoring unknown event type", "event_type", eventType, "event_id", msg.GetEventID())
	}

	return nil
}

func (n *Notifier) refresh(ctx context.Context, correlationKey string, eventType string) {
	if correlationKey == "" {
		n.log.Warn("Event carried no correlation key", "event_type", eventType)
		return
	}
	n.display.Refresh(ctx, correlationKey)
}
