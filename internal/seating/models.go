package seating

import (
	"time"

	"github.com/google/uuid"
)

// SeatingResource is a named, capacity-bounded unit (table, section, zone)
// within one event. Deactivation removes it from future auto-assign passes
// without orphaning already-seated guests; resources are never deleted while
// guests reference them.
type SeatingResource struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID      uuid.UUID `gorm:"type:uuid;index;not null" json:"event_id"`
	Name         string    `gorm:"type:varchar(150);not null" json:"name"`
	Capacity     int       `gorm:"not null;check:capacity > 0" json:"capacity"`
	AllowedTypes []string  `gorm:"type:jsonb;serializer:json" json:"allowed_types,omitempty"`
	Active       bool      `gorm:"default:true" json:"active"`
	SortOrder    int       `gorm:"default:0;index" json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName sets the table name for SeatingResource
func (SeatingResource) TableName() string {
	return "seating_resources"
}

// Allows reports whether the resource may host the given guest type. An
// empty allow-list admits every type.
func (r *SeatingResource) Allows(guestType string) bool {
	if len(r.AllowedTypes) == 0 {
		return true
	}
	for _, t := range r.AllowedTypes {
		if t == guestType {
			return true
		}
	}
	return false
}
