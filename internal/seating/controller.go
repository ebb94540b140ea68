package seating

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

// CreateResource handles POST /api/v1/seating/resources
func (c *Controller) CreateResource(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}
	if !actor.IsOwner() {
		response.RespondJSON(ctx, "error", http.StatusForbidden, "owner role required", nil, nil)
		return
	}

	var req CreateResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	resource, err := c.service.CreateResource(ctx.Request.Context(), actor.EventID, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Seating resource created", resource.ToResponse(0))
}

// ListResources handles GET /api/v1/seating/resources
func (c *Controller) ListResources(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	resources, err := c.service.ListResources(ctx.Request.Context(), actor.EventID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Seating resources retrieved", resources)
}

// GetResource handles GET /api/v1/seating/resources/:id
func (c *Controller) GetResource(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	resource, err := c.service.GetResource(ctx.Request.Context(), actor.EventID, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Seating resource retrieved", resource)
}

// UpdateResource handles PUT /api/v1/seating/resources/:id
func (c *Controller) UpdateResource(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}
	if !actor.IsOwner() {
		response.RespondJSON(ctx, "error", http.StatusForbidden, "owner role required", nil, nil)
		return
	}

	var req UpdateResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if _, err := c.service.UpdateResource(ctx.Request.Context(), actor.EventID, ctx.Param("id"), req); err != nil {
		response.Error(ctx, err)
		return
	}

	updated, err := c.service.GetResource(ctx.Request.Context(), actor.EventID, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, "Seating resource updated", updated)
}

// Assign handles POST /api/v1/seating/assign
func (c *Controller) Assign(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	var req AssignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.service.Assign(ctx.Request.Context(), actor, req); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Guest assigned", gin.H{
		"guest_id":    req.GuestID,
		"resource_id": req.ResourceID,
	})
}

// Unassign handles POST /api/v1/seating/unassign
func (c *Controller) Unassign(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	var req UnassignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.service.Unassign(ctx.Request.Context(), actor, req); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Guest unassigned", gin.H{"guest_id": req.GuestID})
}

// Availability handles PUT /api/v1/seating/resources/:id/availability
func (c *Controller) Availability(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	availability, err := c.service.Availability(ctx.Request.Context(), actor.EventID, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Availability", availability)
}

// AutoAssign handles POST /api/v1/seating/auto-assign
func (c *Controller) AutoAssign(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	result, err := c.service.AutoAssign(ctx.Request.Context(), actor)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Auto-assign pass completed", result)
}
