package domain

import (
	"time"

	"github.com/google/uuid"
)

type RegistrationStatus string

const (
	StatusActive          RegistrationStatus = "active"
	StatusQueued          RegistrationStatus = "queued"
	StatusCancelledFine   RegistrationStatus = "cancelled_fine"
	StatusCancelledNoFine RegistrationStatus = "cancelled_nofine"
)

func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusActive, StatusQueued, StatusCancelledFine, StatusCancelledNoFine:
		return true
	}
	return false
}

// Terminal reports whether the status is one of the cancelled states. Status
// transitions are one-directional: active/queued -> cancelled_* and nothing else.
func (s RegistrationStatus) Terminal() bool {
	return s == StatusCancelledFine || s == StatusCancelledNoFine
}

// Registration is a contact's claim on an event. Registrations are never hard
// deleted; cancellation is a terminal status and the contact reference is nilled
// on contact deletion so the record survives anonymized.
type Registration struct {
	ID        int64
	EventID   uuid.UUID
	ContactID *uuid.UUID
	Status    RegistrationStatus

	// Price and fine are copied from the event at creation time so later event
	// edits never change what a participant owes.
	PriceAtRegistrationCents int64
	FineAtRegistrationCents  int64
	Paid                     bool

	Created     time.Time
	CancelledAt *time.Time
}

// EventStats is the ledger summary for one event.
type EventStats struct {
	EventID        uuid.UUID
	Capacity       *int
	ActiveCount    int
	QueuedCount    int
	CancelledCount int
}

// HasCapacityRemaining reports whether a new registration would become active.
// A nil capacity never reports full.
func (s EventStats) HasCapacityRemaining() bool {
	return s.Capacity == nil || s.ActiveCount < *s.Capacity
}
