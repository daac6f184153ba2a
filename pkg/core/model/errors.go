package model

import (
	"errors"
	"fmt"
)

// Sentinel domain errors. All are expected, recoverable conditions that are
// surfaced to the caller verbatim; none are retried by the core.
var (
	// ErrCapacityExceeded means the shift has no free approved slot left.
	ErrCapacityExceeded = errors.New("shift capacity exceeded")

	// ErrDuplicateApplication means the volunteer already holds an active
	// request for the shift.
	ErrDuplicateApplication = errors.New("duplicate application")

	// ErrWindowClosed means the mission is not accepting applications
	// (not OPEN, or the shift has already started).
	ErrWindowClosed = errors.New("application window closed")

	// ErrNotApproved means attendance was attempted on a request that is
	// not in the APPROVED state.
	ErrNotApproved = errors.New("request is not approved")

	// ErrForbidden means the actor's role does not permit the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the referenced entity does not exist (or is
	// soft-deleted).
	ErrNotFound = errors.New("not found")
)

// InvalidTransitionError reports an illegal state machine move.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s transition %s -> %s: %s", e.Entity, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid %s transition %s -> %s", e.Entity, e.From, e.To)
}

// NewInvalidTransition builds an InvalidTransitionError for the given move.
func NewInvalidTransition(entity string, from, to fmt.Stringer) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, From: from.String(), To: to.String()}
}

func (s MissionStatus) String() string { return string(s) }

func (s RequestStatus) String() string { return string(s) }

// IsDomainError reports whether err belongs to the expected error taxonomy,
// as opposed to an infrastructure failure.
func IsDomainError(err error) bool {
	var ite *InvalidTransitionError
	if errors.As(err, &ite) {
		return true
	}
	for _, e := range []error{
		ErrCapacityExceeded,
		ErrDuplicateApplication,
		ErrWindowClosed,
		ErrNotApproved,
		ErrForbidden,
		ErrNotFound,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
