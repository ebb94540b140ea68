package guests

import (
	"time"

	"wedly/pkg/apperrors"
)

// GuestResponse represents a guest in API responses
type GuestResponse struct {
	ID                string     `json:"id"`
	EventID           string     `json:"event_id"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone,omitempty"`
	Email             string     `json:"email,omitempty"`
	GuestType         string     `json:"guest_type"`
	MaxCompanions     int        `json:"max_companions"`
	CompanionCount    int        `json:"companion_count"`
	Status            string     `json:"status"`
	CheckedInAt       *time.Time `json:"checked_in_at,omitempty"`
	SeatingResourceID string     `json:"seating_resource_id,omitempty"`
	ScanCode          string     `json:"scan_code,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// GuestListResponse represents a paginated guest list
type GuestListResponse struct {
	Guests []GuestResponse `json:"guests"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ImportResult reports the outcome of a bulk import
type ImportResult struct {
	Imported int `json:"imported"`
}

// ToResponse converts a Guest to its API representation
func (g *Guest) ToResponse() GuestResponse {
	resp := GuestResponse{
		ID:             g.ID.String(),
		EventID:        g.EventID.String(),
		Name:           g.Name,
		Phone:          g.Phone,
		Email:          g.Email,
		GuestType:      g.GuestType,
		MaxCompanions:  g.MaxCompanions,
		CompanionCount: g.CompanionCount,
		Status:         g.Status.String(),
		CheckedInAt:    g.CheckedInAt,
		CreatedAt:      g.CreatedAt,
	}
	if g.SeatingResourceID != nil {
		resp.SeatingResourceID = g.SeatingResourceID.String()
	}
	if g.ScanCode != nil {
		resp.ScanCode = *g.ScanCode
	}
	return resp
}

// ToCandidate converts a Guest to a disambiguation candidate
func (g *Guest) ToCandidate() apperrors.Candidate {
	return apperrors.Candidate{
		GuestID:   g.ID.String(),
		Name:      g.Name,
		GuestType: g.GuestType,
		CheckedIn: g.IsCheckedIn(),
	}
}

// ToResponses converts a guest slice to API representations
func ToResponses(guests []Guest) []GuestResponse {
	responses := make([]GuestResponse, 0, len(guests))
	for i := range guests {
		responses = append(responses, guests[i].ToResponse())
	}
	return responses
}
