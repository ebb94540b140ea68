package apperrors

import (
	"errors"
	"fmt"
)

// Business-rule outcomes. These are expected results returned to the caller,
// not faults; only ErrStorageUnavailable warrants retry or alerting.
var (
	ErrNotFound           = errors.New("guest not found")
	ErrAlreadyCheckedIn   = errors.New("guest already checked in")
	ErrNotCheckedIn       = errors.New("guest has not checked in")
	ErrPermissionDenied   = errors.New("actor not permitted for this benefit")
	ErrNoEntitlement      = errors.New("no active entitlement for benefit")
	ErrTypeNotAllowed     = errors.New("guest type not allowed for this resource")
	ErrResourceNotFound   = errors.New("seating resource not found")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrAssignmentInProgress signals that the bulk seating pass holds the
	// event's exclusion lock. Transient: retry after the pass completes.
	ErrAssignmentInProgress = errors.New("seating assignment pass in progress")
)

// CompanionLimitError reports a check-in attempt whose companion count
// exceeds the guest's permitted maximum. Carries the limit so the caller
// can surface it.
type CompanionLimitError struct {
	Limit     int
	Requested int
}

func (e *CompanionLimitError) Error() string {
	return fmt.Sprintf("companion limit exceeded: requested %d, limit %d", e.Requested, e.Limit)
}

// CapacityError reports a seating resource at capacity.
type CapacityError struct {
	ResourceID string
	Capacity   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("seating resource %s is at capacity (%d)", e.ResourceID, e.Capacity)
}

// QuotaError reports a redemption that would exceed the entitlement.
// Remaining lets the caller retry with a smaller quantity.
type QuotaError struct {
	BenefitType string
	Requested   int
	Remaining   int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded for %s: requested %d, remaining %d", e.BenefitType, e.Requested, e.Remaining)
}

// Candidate is one entry of an ambiguous identity match.
type Candidate struct {
	GuestID   string `json:"guest_id"`
	Name      string `json:"name"`
	GuestType string `json:"guest_type,omitempty"`
	CheckedIn bool   `json:"checked_in"`
}

// AmbiguousMatchError is returned when a free-text lookup matches more than
// one guest. The candidate list preserves resolver ordering; the caller must
// re-invoke with a chosen guest id.
type AmbiguousMatchError struct {
	Query      string
	Candidates []Candidate
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("query %q matched %d guests", e.Query, len(e.Candidates))
}

// StorageError wraps an underlying datastore failure. It matches
// ErrStorageUnavailable under errors.Is so callers can branch on the kind
// without losing the cause.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }

// Storage wraps a datastore failure with the operation that hit it.
func Storage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsRetryable reports whether the error is transient. Business-rule
// rejections are final; only storage faults may be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrAssignmentInProgress)
}
