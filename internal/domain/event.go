package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventCategory string

const (
	CategoryOther       EventCategory = "other"
	CategoryAlumni      EventCategory = "alumni"
	CategoryLeisure     EventCategory = "leisure"
	CategoryAssociation EventCategory = "association"
	CategorySailing     EventCategory = "sailing"
	CategoryCompetition EventCategory = "competition"
)

func (c EventCategory) Valid() bool {
	switch c {
	case CategoryOther, CategoryAlumni, CategoryLeisure, CategoryAssociation, CategorySailing, CategoryCompetition:
		return true
	}
	return false
}

// Event is an organized activity. Events with a registration deadline require
// sign-up inside the registration window; events without one are open for
// registration while published until the event ends.
type Event struct {
	ID          uuid.UUID
	OrganizerID uuid.UUID
	Title       string
	Description string
	Slug        string
	Location    string
	Category    EventCategory

	Start time.Time
	End   time.Time

	RegistrationStart    *time.Time
	RegistrationDeadline *time.Time
	CancellationDeadline *time.Time

	Capacity   *int // nil = unlimited
	PriceCents int64
	FineCents  int64

	IsOpenEvent bool // open for non-members
	Published   bool

	Created time.Time
	Updated time.Time
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func Slugify(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

func NewEvent(organizerID uuid.UUID, title, description, location string, category EventCategory, start, end time.Time, now time.Time) (*Event, error) {
	e := &Event{
		ID:          uuid.New(),
		OrganizerID: organizerID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Location:    strings.TrimSpace(location),
		Category:    category,
		Start:       start.UTC(),
		End:         end.UTC(),
		Created:     now.UTC(),
		Updated:     now.UTC(),
	}
	e.Slug = Slugify(e.Title)
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Event) Validate() error {
	if e.OrganizerID == uuid.Nil {
		return ErrValidation("organizer is required")
	}
	if e.Title == "" || len(e.Title) > 100 {
		return ErrValidation("title is required and must be <= 100 chars")
	}
	if e.Slug == "" {
		return ErrValidation("title must contain at least one letter or digit")
	}
	if !e.Category.Valid() {
		return ErrValidation("unknown category")
	}
	if e.Start.IsZero() || e.End.IsZero() || !e.End.After(e.Start) {
		return ErrValidation("end must be after start")
	}
	if (e.RegistrationStart == nil) != (e.RegistrationDeadline == nil) {
		return ErrValidation("registration start and deadline must be set together")
	}
	if e.RegistrationDeadline != nil {
		if !e.RegistrationDeadline.After(*e.RegistrationStart) {
			return ErrValidation("registration deadline must be after registration start")
		}
		if !e.Start.After(*e.RegistrationDeadline) {
			return ErrValidation("registration deadline must be before the event start")
		}
	}
	if e.CancellationDeadline != nil && !e.CancellationDeadline.Before(e.Start) {
		return ErrValidation("cancellation deadline must be before the event start")
	}
	if e.Capacity != nil && *e.Capacity < 0 {
		return ErrValidation("capacity must be >= 0")
	}
	if e.PriceCents < 0 || e.FineCents < 0 {
		return ErrValidation("price and fine must be >= 0")
	}
	return nil
}

// RequiresRegistration reports whether this event has mandatory registration,
// meaning a registration window is configured.
func (e *Event) RequiresRegistration() bool {
	return e.RegistrationDeadline != nil
}

// RegistrationsOpenAt reports whether a contact can register at the given time.
// With a registration window the window bounds apply; without one the event
// behaves as an optional-registration event, open until the event ends.
func (e *Event) RegistrationsOpenAt(at time.Time) bool {
	if !e.Published {
		return false
	}
	if !e.RequiresRegistration() {
		return at.Before(e.End)
	}
	return !at.Before(*e.RegistrationStart) && !at.After(*e.RegistrationDeadline)
}

// Fined reports whether cancelling at the given time incurs the fine. Events
// without mandatory registration never fine. Otherwise the cancellation
// deadline governs, falling back to the event start when no deadline is set.
func (e *Event) Fined(at time.Time) bool {
	if !e.RequiresRegistration() {
		return false
	}
	deadline := e.Start
	if e.CancellationDeadline != nil {
		deadline = *e.CancellationDeadline
	}
	return at.After(deadline)
}
