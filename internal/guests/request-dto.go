package guests

// CreateGuestRequest represents a manual guest registration or walk-in entry
type CreateGuestRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=150"`
	Phone         string `json:"phone" validate:"omitempty,max=30"`
	Email         string `json:"email" validate:"omitempty,email,max=150"`
	GuestType     string `json:"guest_type" validate:"omitempty,max=50"`
	MaxCompanions int    `json:"max_companions" validate:"omitempty,min=0,max=50"`
}

// ImportGuestsRequest represents a bulk guest import. Row validation runs in
// the controller so one bad row fails the batch before any write.
type ImportGuestsRequest struct {
	Guests []CreateGuestRequest `json:"guests" validate:"required,min=1,max=2000,dive"`
}

// UpdateGuestRequest represents a partial guest update
type UpdateGuestRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=150"`
	Phone         *string `json:"phone" validate:"omitempty,max=30"`
	Email         *string `json:"email" validate:"omitempty,email,max=150"`
	GuestType     *string `json:"guest_type" validate:"omitempty,max=50"`
	MaxCompanions *int    `json:"max_companions" validate:"omitempty,min=0,max=50"`
}

// SearchQuery represents the free-text search query parameters
type SearchQuery struct {
	Query string `form:"q" binding:"required,min=1,max=150"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ResolveRef identifies a guest by exactly one of: direct id, scan code, or
// free-text query. Used by check-in and redemption flows.
type ResolveRef struct {
	GuestID  string `json:"guest_id" binding:"omitempty,uuid"`
	ScanCode string `json:"scan_code" binding:"omitempty,max=64"`
	Query    string `json:"query" binding:"omitempty,max=150"`
}
