package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ReservableCategory string

const (
	ReservableBoat     ReservableCategory = "boat"
	ReservableRoom     ReservableCategory = "room"
	ReservableMaterial ReservableCategory = "material"
)

func (c ReservableCategory) Valid() bool {
	return c == ReservableBoat || c == ReservableRoom || c == ReservableMaterial
}

// ReservableItem is anything members can put a time-claim on: boats, rooms and
// material. Boats may require a skippership; other categories never do.
type ReservableItem struct {
	ID          uuid.UUID
	Name        string
	Category    ReservableCategory
	Description string
	Location    string

	// IsReservable is unset when the item is temporarily out of service.
	IsReservable    bool
	DailyPriceCents int64

	// Boat-only fields.
	BoatType              string
	PersonCapacity        int
	HasEngine             bool
	Fleet                 string
	RequiredSkippershipID *uuid.UUID

	Created time.Time
	Updated time.Time
}

// RequiresSkippership reports whether reservations for this item must name an
// authorized skipper.
func (i *ReservableItem) RequiresSkippership() bool {
	return i.Category == ReservableBoat && i.RequiredSkippershipID != nil
}

func NewReservableItem(name string, category ReservableCategory, description, location string, now time.Time) (*ReservableItem, error) {
	it := &ReservableItem{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Category:     category,
		Description:  strings.TrimSpace(description),
		Location:     strings.TrimSpace(location),
		IsReservable: true,
		Created:      now.UTC(),
		Updated:      now.UTC(),
	}
	if it.Name == "" || len(it.Name) > 40 {
		return nil, ErrValidation("name is required and must be <= 40 chars")
	}
	if !category.Valid() {
		return nil, ErrValidation("unknown reservable category")
	}
	return it, nil
}

// Skippership is a sailing certification, e.g. the skipper's certificate a boat
// fleet requires.
type Skippership struct {
	ID   uuid.UUID
	Name string
}

// UserSkippership records that a contact obtained a skippership.
type UserSkippership struct {
	ID            uuid.UUID
	ContactID     uuid.UUID
	SkippershipID uuid.UUID
	Since         time.Time
}

// Reservation is a time-claim on a reservable item. No two reservations on the
// same item may overlap.
type Reservation struct {
	ID        uuid.UUID
	ItemID    uuid.UUID
	ContactID uuid.UUID

	Start time.Time
	End   time.Time

	// AuthorizedSkippershipID references the UserSkippership that covers the
	// item's required skippership, when the item has one configured.
	AuthorizedSkippershipID *uuid.UUID

	Created time.Time
}

func NewReservation(itemID, contactID uuid.UUID, start, end time.Time, authorizedSkippershipID *uuid.UUID, now time.Time) (*Reservation, error) {
	if itemID == uuid.Nil || contactID == uuid.Nil {
		return nil, ErrValidation("item and contact are required")
	}
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return nil, ErrValidation("end time cannot be before the start time")
	}
	return &Reservation{
		ID:                      uuid.New(),
		ItemID:                  itemID,
		ContactID:               contactID,
		Start:                   start.UTC(),
		End:                     end.UTC(),
		AuthorizedSkippershipID: authorizedSkippershipID,
		Created:                 now.UTC(),
	}, nil
}

func (r *Reservation) Interval() Interval {
	end := r.End
	return Interval{Start: r.Start, End: &end}
}
