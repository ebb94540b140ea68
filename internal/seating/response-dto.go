package seating

import (
	"time"
)

// ResourceResponse represents a seating resource with current occupancy
type ResourceResponse struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	Name         string    `json:"name"`
	Capacity     int       `json:"capacity"`
	Occupied     int       `json:"occupied"`
	Remaining    int       `json:"remaining"`
	AllowedTypes []string  `json:"allowed_types,omitempty"`
	Active       bool      `json:"active"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// AvailabilityResponse is the capacity probe for one resource
type AvailabilityResponse struct {
	ResourceID string `json:"resource_id"`
	Capacity   int    `json:"capacity"`
	Occupied   int    `json:"occupied"`
	Remaining  int    `json:"remaining"`
	Active     bool   `json:"active"`
}

// Unassigned reasons reported by the auto-assign pass
const (
	ReasonNoCapacity     = "NO_CAPACITY"
	ReasonTypeNotAllowed = "TYPE_NOT_ALLOWED"
	ReasonAlreadySeated  = "ALREADY_SEATED"
)

// GuestOutcome is the per-guest result of one auto-assign pass
type GuestOutcome struct {
	GuestID      string `json:"guest_id"`
	GuestName    string `json:"guest_name"`
	ResourceID   string `json:"resource_id,omitempty"`
	ResourceName string `json:"resource_name,omitempty"`
	Assigned     bool   `json:"assigned"`
	Reason       string `json:"reason,omitempty"`
}

// AutoAssignResponse summarizes one bulk pass
type AutoAssignResponse struct {
	TotalCandidates int            `json:"total_candidates"`
	AssignedCount   int            `json:"assigned_count"`
	UnassignedCount int            `json:"unassigned_count"`
	Outcomes        []GuestOutcome `json:"outcomes"`
}

// ToResponse converts a resource with its occupant count
func (r *SeatingResource) ToResponse(occupied int) ResourceResponse {
	return ResourceResponse{
		ID:           r.ID.String(),
		EventID:      r.EventID.String(),
		Name:         r.Name,
		Capacity:     r.Capacity,
		Occupied:     occupied,
		Remaining:    r.Capacity - occupied,
		AllowedTypes: r.AllowedTypes,
		Active:       r.Active,
		SortOrder:    r.SortOrder,
		CreatedAt:    r.CreatedAt,
	}
}
