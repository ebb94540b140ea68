package response

import (
	"errors"
	"net/http"

	"wedly/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errs interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errs,
	})
}

func Success(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, "success", code, message, data, nil)
}

// Error maps a business-rule outcome to its transport shape. Every rejection
// carries enough data for the caller to act: remaining quota, candidate
// list, companion limit. Unrecognized errors are treated as storage faults.
func Error(c *gin.Context, err error) {
	var (
		companionErr *apperrors.CompanionLimitError
		capacityErr  *apperrors.CapacityError
		quotaErr     *apperrors.QuotaError
		ambiguousErr *apperrors.AmbiguousMatchError
	)

	switch {
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)

	case errors.Is(err, apperrors.ErrAlreadyCheckedIn):
		// Idempotency signal: duplicate scan from another device.
		RespondJSON(c, "error", http.StatusConflict, err.Error(), nil,
			gin.H{"kind": "ALREADY_CHECKED_IN"})

	case errors.As(err, &companionErr):
		RespondJSON(c, "error", http.StatusUnprocessableEntity, err.Error(), nil,
			gin.H{"kind": "COMPANION_LIMIT_EXCEEDED", "limit": companionErr.Limit, "requested": companionErr.Requested})

	case errors.As(err, &capacityErr):
		RespondJSON(c, "error", http.StatusConflict, err.Error(), nil,
			gin.H{"kind": "CAPACITY_EXCEEDED", "capacity": capacityErr.Capacity})

	case errors.Is(err, apperrors.ErrTypeNotAllowed):
		RespondJSON(c, "error", http.StatusUnprocessableEntity, err.Error(), nil,
			gin.H{"kind": "TYPE_NOT_ALLOWED"})

	case errors.Is(err, apperrors.ErrNotCheckedIn):
		RespondJSON(c, "error", http.StatusUnprocessableEntity, err.Error(), nil,
			gin.H{"kind": "NOT_CHECKED_IN"})

	case errors.Is(err, apperrors.ErrPermissionDenied):
		RespondJSON(c, "error", http.StatusForbidden, err.Error(), nil,
			gin.H{"kind": "PERMISSION_DENIED"})

	case errors.Is(err, apperrors.ErrNoEntitlement):
		RespondJSON(c, "error", http.StatusUnprocessableEntity, err.Error(), nil,
			gin.H{"kind": "NO_ENTITLEMENT"})

	case errors.As(err, &quotaErr):
		RespondJSON(c, "error", http.StatusConflict, err.Error(), nil,
			gin.H{"kind": "QUOTA_EXCEEDED", "remaining": quotaErr.Remaining, "requested": quotaErr.Requested})

	case errors.As(err, &ambiguousErr):
		RespondJSON(c, "error", http.StatusMultipleChoices, err.Error(), nil,
			gin.H{"kind": "AMBIGUOUS_MATCH", "candidates": ambiguousErr.Candidates})

	case errors.Is(err, apperrors.ErrAssignmentInProgress):
		RespondJSON(c, "error", http.StatusConflict, err.Error(), nil,
			gin.H{"kind": "ASSIGNMENT_IN_PROGRESS", "retryable": true})

	case errors.Is(err, apperrors.ErrStorageUnavailable):
		RespondJSON(c, "error", http.StatusServiceUnavailable, "storage unavailable, retry later", nil,
			gin.H{"kind": "STORAGE_UNAVAILABLE", "retryable": true})

	default:
		RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
	}
}
