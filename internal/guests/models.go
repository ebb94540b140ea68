package guests

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Guest identifies one invitee (or walk-in) of one event. The assigned seat
// reference, if present, must point to a seating resource of the same event.
// Guests are never hard-deleted while check-in or redemption history
// references them; gorm soft delete tombstones them instead.
type Guest struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID           uuid.UUID      `gorm:"type:uuid;index;not null;index:idx_guests_event_code,unique" json:"event_id"`
	Name              string         `gorm:"type:varchar(150);not null;index" json:"name"`
	Phone             string         `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Email             string         `gorm:"type:varchar(150)" json:"email,omitempty"`
	GuestType         string         `gorm:"type:varchar(50);default:'REGULAR';index" json:"guest_type"`
	MaxCompanions     int            `gorm:"default:0;check:max_companions >= 0" json:"max_companions"`
	CompanionCount    int            `gorm:"default:0" json:"companion_count"`
	Status            Status         `gorm:"type:varchar(20);default:'NOT_ARRIVED';index" json:"status"`
	CheckedInAt       *time.Time     `json:"checked_in_at,omitempty"`
	CheckinNote       string         `gorm:"type:text" json:"checkin_note,omitempty"`
	SeatingResourceID *uuid.UUID     `gorm:"type:uuid;index" json:"seating_resource_id,omitempty"`
	ScanCode          *string        `gorm:"type:varchar(64);index:idx_guests_event_code,unique" json:"scan_code,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name for Guest
func (Guest) TableName() string {
	return "guests"
}

// IsCheckedIn reports whether the guest has checked in
func (g *Guest) IsCheckedIn() bool {
	return g.Status.IsCheckedIn()
}

// IsSeated reports whether the guest has an assigned seating resource
func (g *Guest) IsSeated() bool {
	return g.SeatingResourceID != nil
}
