package guests

import (
	"net/http"
	"strconv"

	"wedly/internal/shared/gate"
	"wedly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// CreateGuest handles POST /api/v1/guests
func (c *Controller) CreateGuest(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	var req CreateGuestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	guest, err := c.service.CreateGuest(ctx.Request.Context(), actor.EventID, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Guest created", guest.ToResponse())
}

// ImportGuests handles POST /api/v1/guests/import
func (c *Controller) ImportGuests(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	var req ImportGuestsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	result, err := c.service.ImportGuests(ctx.Request.Context(), actor.EventID, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Guests imported", result)
}

// GetGuest handles GET /api/v1/guests/:id
func (c *Controller) GetGuest(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	guest, err := c.service.GetGuest(ctx.Request.Context(), actor.EventID, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Guest retrieved", guest.ToResponse())
}

// ListGuests handles GET /api/v1/guests
func (c *Controller) ListGuests(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	list, err := c.service.ListGuests(ctx.Request.Context(), actor.EventID, limit, offset)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Guests retrieved", list)
}

// UpdateGuest handles PUT /api/v1/guests/:id
func (c *Controller) UpdateGuest(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	var req UpdateGuestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	guest, err := c.service.UpdateGuest(ctx.Request.Context(), actor.EventID, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Guest updated", guest.ToResponse())
}

// DeleteGuest handles DELETE /api/v1/guests/:id
func (c *Controller) DeleteGuest(ctx *gin.Context) {
	actor, ok := gate.FromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
		return
	}

	if err := c.service.DeleteGuest(ctx.Request.Context(), actor.EventID, ctx.Param("id")); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Guest deleted", nil)
}
