package seating

// CreateResourceRequest creates a seating resource during event setup
type CreateResourceRequest struct {
	Name         string   `json:"name" binding:"required,min=1,max=150"`
	Capacity     int      `json:"capacity" binding:"required,min=1,max=10000"`
	AllowedTypes []string `json:"allowed_types" binding:"omitempty,max=20,dive,max=50"`
	SortOrder    int      `json:"sort_order" binding:"omitempty,min=0"`
}

// UpdateResourceRequest partially updates a seating resource
type UpdateResourceRequest struct {
	Name         *string   `json:"name" binding:"omitempty,min=1,max=150"`
	Capacity     *int      `json:"capacity" binding:"omitempty,min=1,max=10000"`
	AllowedTypes *[]string `json:"allowed_types" binding:"omitempty,max=20,dive,max=50"`
	Active       *bool     `json:"active"`
	SortOrder    *int      `json:"sort_order" binding:"omitempty,min=0"`
}

// AssignRequest records one manual seat assignment
type AssignRequest struct {
	GuestID    string `json:"guest_id" binding:"required,uuid"`
	ResourceID string `json:"resource_id" binding:"required,uuid"`
}

// UnassignRequest releases a guest's seat
type UnassignRequest struct {
	GuestID string `json:"guest_id" binding:"required,uuid"`
}
