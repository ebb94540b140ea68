package entitlements

import (
	"time"

	"github.com/google/uuid"
)

// RedeemResponse confirms a redemption and reports what is left.
type RedeemResponse struct {
	RedemptionID uuid.UUID `json:"redemption_id"`
	GuestID      uuid.UUID `json:"guest_id"`
	GuestName    string    `json:"guest_name"`
	BenefitType  string    `json:"benefit_type"`
	Quantity     int       `json:"quantity"`
	Remaining    int       `json:"remaining"`
	RedeemedAt   time.Time `json:"redeemed_at"`
}

// RemainingResponse reports the unconsumed balance for one guest/benefit pair.
type RemainingResponse struct {
	GuestID     uuid.UUID `json:"guest_id"`
	BenefitType string    `json:"benefit_type"`
	MaxQuantity int       `json:"max_quantity"`
	Consumed    int       `json:"consumed"`
	Remaining   int       `json:"remaining"`
}

// EntitlementResponse is the API view of a quota definition.
type EntitlementResponse struct {
	ID          uuid.UUID `json:"id"`
	EventID     uuid.UUID `json:"event_id"`
	GuestType   string    `json:"guest_type"`
	BenefitType string    `json:"benefit_type"`
	MaxQuantity int       `json:"max_quantity"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToResponse converts an Entitlement to its API representation
func (e *Entitlement) ToResponse() EntitlementResponse {
	return EntitlementResponse{
		ID:          e.ID,
		EventID:     e.EventID,
		GuestType:   e.GuestType,
		BenefitType: e.BenefitType.String(),
		MaxQuantity: e.MaxQuantity,
		Active:      e.Active,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// RedemptionResponse is one line of the redemption history.
type RedemptionResponse struct {
	ID          uuid.UUID `json:"id"`
	GuestID     uuid.UUID `json:"guest_id"`
	BenefitType string    `json:"benefit_type"`
	Quantity    int       `json:"quantity"`
	ActorID     uuid.UUID `json:"actor_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToResponse converts a Redemption to its API representation
func (r *Redemption) ToResponse() RedemptionResponse {
	return RedemptionResponse{
		ID:          r.ID,
		GuestID:     r.GuestID,
		BenefitType: r.BenefitType.String(),
		Quantity:    r.Quantity,
		ActorID:     r.ActorID,
		CreatedAt:   r.CreatedAt,
	}
}
