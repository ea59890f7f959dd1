package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RegistrationRepository owns the registration ledger. Register and Cancel run
// their read-check-write sequence inside one transaction holding the event row
// lock, including Cancel's promotion side effect.
type RegistrationRepository interface {
	Register(ctx context.Context, traceID string, eventID, contactID uuid.UUID, at time.Time) (*Registration, error)
	Cancel(ctx context.Context, traceID string, registrationID int64, at time.Time, fineConsent bool) (*Registration, error)

	GetByEventAndContact(ctx context.Context, eventID, contactID uuid.UUID) (*Registration, error)
	Active(ctx context.Context, eventID uuid.UUID) ([]Registration, error)
	Queued(ctx context.Context, eventID uuid.UUID) ([]Registration, error)
	Cancelled(ctx context.Context, eventID uuid.UUID) ([]Registration, error)
	Stats(ctx context.Context, eventID uuid.UUID) (EventStats, error)

	// QueuePosition is 1-based; 0 means the contact is not queued.
	QueuePosition(ctx context.Context, eventID, contactID uuid.UUID) (int, error)
	ListByContact(ctx context.Context, contactID uuid.UUID) ([]Registration, error)
	MarkPaid(ctx context.Context, registrationID int64, paid bool) error
}

type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	Update(ctx context.Context, e *Event) error
	ListUpcoming(ctx context.Context, after time.Time, page, pageSize int) ([]*Event, int, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID, page, pageSize int) ([]*Event, int, error)
}

type ContactRepository interface {
	Create(ctx context.Context, c *Contact) error
	GetByID(ctx context.Context, id uuid.UUID) (*Contact, error)
	GetByEmail(ctx context.Context, email string) (*Contact, error)
	Update(ctx context.Context, c *Contact) error
	// Delete anonymizes: registrations keep their row with a nil contact.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page, pageSize int) ([]*Contact, int, error)
}

type MembershipRepository interface {
	Create(ctx context.Context, m *Membership) error
	ListByContact(ctx context.Context, contactID uuid.UUID) ([]Membership, error)
	End(ctx context.Context, id uuid.UUID, until time.Time) error
}

type GroupRepository interface {
	Create(ctx context.Context, g *Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*Group, error)
	Update(ctx context.Context, g *Group) error
	List(ctx context.Context, kind *GroupKind, page, pageSize int) ([]*Group, int, error)
	AddMember(ctx context.Context, gm *GroupMembership) error
	RemoveMember(ctx context.Context, groupID, contactID uuid.UUID, until time.Time) error
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]GroupMembership, error)
}

type ReservationRepository interface {
	CreateItem(ctx context.Context, it *ReservableItem) error
	GetItem(ctx context.Context, id uuid.UUID) (*ReservableItem, error)
	UpdateItem(ctx context.Context, it *ReservableItem) error
	ListItems(ctx context.Context, category *ReservableCategory) ([]*ReservableItem, error)

	// CreateReservation validates availability, overlap and skippership inside
	// one transaction holding the item row lock.
	CreateReservation(ctx context.Context, traceID string, r *Reservation) error
	ListForItem(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]Reservation, error)
	ListByContact(ctx context.Context, contactID uuid.UUID) ([]Reservation, error)

	CreateSkippership(ctx context.Context, s *Skippership) error
	GrantSkippership(ctx context.Context, us *UserSkippership) error
	ListSkipperships(ctx context.Context, contactID uuid.UUID) ([]UserSkippership, error)
}

// CacheRepository is the redis-backed fast path. Capacity uses -1 as the
// "registrations closed" sentinel and 0 for unlimited, so a closed event can be
// rejected without touching Postgres.
type CacheRepository interface {
	GetEventCapacity(ctx context.Context, eventID uuid.UUID) (int, error)
	SetEventCapacity(ctx context.Context, eventID uuid.UUID, capacity int) error
	// DeleteEventCapacity drops the entry so readers fall back to Postgres.
	// Used for zero-capacity events, which neither sentinel can represent.
	DeleteEventCapacity(ctx context.Context, eventID uuid.UUID) error

	AllowRequest(ctx context.Context, ip string, limit int, window time.Duration) (bool, error)
}
