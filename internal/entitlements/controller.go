package entitlements

import (
	"net/http"

	"wedly/internal/shared/gate"
	"wedly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Redeem handles POST /api/v1/redeem
func (c *Controller) Redeem(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	var req RedeemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.Redeem(ctx.Request.Context(), actor, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Benefit redeemed", result)
}

// Remaining handles GET /api/v1/redeem/remaining
func (c *Controller) Remaining(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	guestID := ctx.Query("guest_id")
	benefit := ctx.Query("benefit_type")
	if guestID == "" || benefit == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "guest_id and benefit_type are required", nil, nil)
		return
	}

	result, err := c.service.Remaining(ctx.Request.Context(), actor.EventID, guestID, benefit)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Remaining quota", result)
}

// History handles GET /api/v1/redeem
func (c *Controller) History(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	redemptions, err := c.service.History(ctx.Request.Context(), actor.EventID, ctx.Query("guest_id"), ctx.Query("benefit_type"))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Redemption history", gin.H{
		"redemptions": redemptions,
		"count":       len(redemptions),
	})
}

// CreateEntitlement handles POST /api/v1/entitlements (owner only)
func (c *Controller) CreateEntitlement(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	var req CreateEntitlementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.CreateEntitlement(ctx.Request.Context(), actor.EventID, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Entitlement created", result)
}

// ListEntitlements handles GET /api/v1/entitlements
func (c *Controller) ListEntitlements(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	ents, err := c.service.ListEntitlements(ctx.Request.Context(), actor.EventID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Entitlements", gin.H{
		"entitlements": ents,
		"count":        len(ents),
	})
}

// UpdateEntitlement handles PATCH /api/v1/entitlements/:id (owner only)
func (c *Controller) UpdateEntitlement(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	var req UpdateEntitlementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.UpdateEntitlement(ctx.Request.Context(), actor.EventID, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Entitlement updated", result)
}
