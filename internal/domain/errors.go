package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound = errors.New("event not found")

	ErrAlreadyRegistered  = errors.New("already registered for event")
	ErrRegistrationClosed = errors.New("registrations are closed")
	ErrNotRegistered      = errors.New("not registered for event")
	ErrNotCancellable     = errors.New("registration is already cancelled")

	ErrMembershipOverlap = errors.New("a membership already exists for that period")

	ErrReservationConflict  = errors.New("item is already reserved during this timeslot")
	ErrItemUnavailable      = errors.New("item is not reservable at the moment")
	ErrItemNotFound         = errors.New("reservable item not found")
	ErrSkipperRequired      = errors.New("this boat requires an authorized skipper")
	ErrSkipperNotAuthorized = errors.New("the skipper set is not authorized for this boat")

	ErrContactNotFound = errors.New("contact not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrForbidden       = errors.New("forbidden")

	ErrCacheMiss = errors.New("cache miss")
)

type ValidationError struct {
	Message string
	Meta    map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Meta) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%v)", e.Message, e.Meta)
}

func ErrValidation(msg string) error { return &ValidationError{Message: msg} }
func ErrValidationMeta(msg string, meta map[string]string) error {
	return &ValidationError{Message: msg, Meta: meta}
}

// FineConsentRequiredError signals that a cancellation would incur a fine and the
// caller has not consented yet. Nothing is mutated; the caller re-prompts and
// resubmits with consent. FineCents is the snapshot taken at registration time.
type FineConsentRequiredError struct {
	FineCents int64
}

func (e *FineConsentRequiredError) Error() string {
	return fmt.Sprintf("cancellation incurs a fine of %d cents, consent required", e.FineCents)
}
