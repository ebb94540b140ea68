package checkin

import (
	"net/http"
	"strconv"

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

// CheckIn handles POST /api/v1/checkin
func (c *Controller) CheckIn(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	var req CheckInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.CheckIn(ctx.Request.Context(), actor, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Guest checked in", result)
}

// UndoCheckIn handles POST /api/v1/checkin/undo
func (c *Controller) UndoCheckIn(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	var req UndoCheckInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	guest, err := c.service.UndoCheckIn(ctx.Request.Context(), actor, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Check-in undone", guest)
}

// Search handles GET /api/v1/checkin/search
func (c *Controller) Search(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	query := ctx.Query("q")
	if query == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "query parameter q is required", nil, nil)
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	candidates, err := c.service.Search(ctx.Request.Context(), actor.EventID, query, limit)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Search results", gin.H{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

// Stats handles GET /api/v1/checkin/stats
func (c *Controller) Stats(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	stats, err := c.service.Stats(ctx.Request.Context(), actor.EventID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Check-in stats", stats)
}
