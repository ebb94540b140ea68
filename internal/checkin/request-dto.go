package checkin

// CheckInRequest identifies the arriving guest by exactly one reference kind
// and records the party size at the door.
type CheckInRequest struct {
	GuestID        string `json:"guest_id" binding:"omitempty,uuid"`
	ScanCode       string `json:"scan_code" binding:"omitempty,max=64"`
	Query          string `json:"query" binding:"omitempty,max=150"`
	CompanionCount int    `json:"companion_count" binding:"omitempty,min=0,max=50"`
	Note           string `json:"note" binding:"omitempty,max=500"`
}

// UndoCheckInRequest reverses a check-in. Owner-only administrative action.
type UndoCheckInRequest struct {
	GuestID string `json:"guest_id" binding:"required,uuid"`
}
