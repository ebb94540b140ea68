package notifications

import (
	"time"

	"github.com/google/uuid"
)

// LifecycleEventType names a guest lifecycle transition worth broadcasting.
type LifecycleEventType string

const (
	EventGuestCheckedIn  LifecycleEventType = "GUEST_CHECKED_IN"
	EventCheckInUndone   LifecycleEventType = "CHECKIN_UNDONE"
	EventBenefitRedeemed LifecycleEventType = "BENEFIT_REDEEMED"
)

// LifecycleEvent is the message published for each guest lifecycle
// transition. Consumers drive dashboards and the mailer collaborator; the
// engine itself never depends on delivery.
type LifecycleEvent struct {
	ID          uuid.UUID          `json:"id"`
	Type        LifecycleEventType `json:"type"`
	EventID     uuid.UUID          `json:"event_id"`
	GuestID     uuid.UUID          `json:"guest_id"`
	GuestName   string             `json:"guest_name,omitempty"`
	ActorID     uuid.UUID          `json:"actor_id"`
	BenefitType string             `json:"benefit_type,omitempty"`
	Quantity    int                `json:"quantity,omitempty"`
	Companions  int                `json:"companions,omitempty"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// NewLifecycleEvent builds an event with identity and timestamp filled in.
func NewLifecycleEvent(eventType LifecycleEventType, eventID, guestID, actorID uuid.UUID) *LifecycleEvent {
	return &LifecycleEvent{
		ID:         uuid.New(),
		Type:       eventType,
		EventID:    eventID,
		GuestID:    guestID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}
