package entitlements

import "wedly/internal/guests"

// RedeemRequest records consumption of a benefit for one guest. The guest
// reference accepts a direct id or a scan code, same as check-in.
type RedeemRequest struct {
	Guest       guests.ResolveRef `json:"guest" binding:"required"`
	BenefitType string            `json:"benefit_type" binding:"required,oneof=SOUVENIR SNACK LOUNGE"`
	Quantity    int               `json:"quantity" binding:"omitempty,min=1,max=100"`
}

// CreateEntitlementRequest defines a quota for a guest type.
type CreateEntitlementRequest struct {
	GuestType   string `json:"guest_type" binding:"required,max=50"`
	BenefitType string `json:"benefit_type" binding:"required,oneof=SOUVENIR SNACK LOUNGE"`
	MaxQuantity int    `json:"max_quantity" binding:"required,min=1"`
}

// UpdateEntitlementRequest adjusts an existing quota. Raising the cap takes
// effect immediately; lowering it below what a guest already consumed does
// not claw anything back, it only blocks further redemptions.
type UpdateEntitlementRequest struct {
	MaxQuantity *int  `json:"max_quantity" binding:"omitempty,min=1"`
	Active      *bool `json:"active"`
}
