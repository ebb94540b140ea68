package checkin

import (
	"time"

	"wedly/internal/guests"
)

// CheckInResponse returns the updated guest plus the transition record.
type CheckInResponse struct {
	Guest          guests.GuestResponse `json:"guest"`
	CheckedInAt    time.Time            `json:"checked_in_at"`
	CompanionCount int                  `json:"companion_count"`
}

// StatsResponse aggregates event-day arrival progress.
type StatsResponse struct {
	Total        int64 `json:"total_guests"`
	CheckedIn    int64 `json:"checked_in"`
	NotCheckedIn int64 `json:"not_checked_in"`
	Rate         int   `json:"checkin_rate"` // integer percentage, rounded
}
