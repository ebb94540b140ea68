package entitlements

import (
	"time"

	"github.com/google/uuid"
)

// BenefitType names a redeemable per-guest benefit.
type BenefitType string

const (
	BenefitSouvenir BenefitType = "SOUVENIR"
	BenefitSnack    BenefitType = "SNACK"
	BenefitLounge   BenefitType = "LOUNGE"
)

// IsValid checks if the benefit type is known
func (b BenefitType) IsValid() bool {
	switch b {
	case BenefitSouvenir, BenefitSnack, BenefitLounge:
		return true
	}
	return false
}

// String returns the string representation of BenefitType
func (b BenefitType) String() string {
	return string(b)
}

// Entitlement defines how many units of a benefit a guest type is allowed,
// scoped to one event.
type Entitlement struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID     uuid.UUID   `gorm:"type:uuid;not null;index;uniqueIndex:idx_entitlements_scope" json:"event_id"`
	GuestType   string      `gorm:"type:varchar(50);not null;uniqueIndex:idx_entitlements_scope" json:"guest_type"`
	BenefitType BenefitType `gorm:"type:varchar(20);not null;uniqueIndex:idx_entitlements_scope" json:"benefit_type"`
	MaxQuantity int         `gorm:"not null;check:max_quantity > 0" json:"max_quantity"`
	Active      bool        `gorm:"default:true" json:"active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TableName sets the table name for Entitlement
func (Entitlement) TableName() string {
	return "entitlements"
}

// Redemption is the immutable record of a guest consuming part of their
// entitlement. Append-only: corrections are additional offsetting records
// issued administratively, never in-place edits.
type Redemption struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"event_id"`
	GuestID     uuid.UUID   `gorm:"type:uuid;not null;index:idx_redemptions_guest_benefit" json:"guest_id"`
	BenefitType BenefitType `gorm:"type:varchar(20);not null;index:idx_redemptions_guest_benefit" json:"benefit_type"`
	Quantity    int         `gorm:"not null;check:quantity > 0" json:"quantity"`
	ActorID     uuid.UUID   `gorm:"type:uuid;not null" json:"actor_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

// TableName sets the table name for Redemption
func (Redemption) TableName() string {
	return "redemptions"
}
