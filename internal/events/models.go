package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the owning scope for guests, seating resources and entitlements.
// Invitation content, media and rendering live elsewhere; the guest engine
// only needs the scoping row.
type Event struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name      string    `json:"name" gorm:"not null;size:255"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;not null;size:255"`
	Venue     string    `json:"venue" gorm:"size:255"`
	DateTime  time.Time `json:"date_time" gorm:"not null"`
	OwnerID   uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for Event
func (Event) TableName() string {
	return "events"
}
