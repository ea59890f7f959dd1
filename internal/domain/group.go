package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type GroupKind string

const (
	GroupBoard      GroupKind = "board"
	GroupCommittee  GroupKind = "committee"
	GroupFraternity GroupKind = "fraternity"
	GroupTaskforce  GroupKind = "taskforce"
	GroupYearClub   GroupKind = "year_club"
)

func (k GroupKind) Valid() bool {
	switch k {
	case GroupBoard, GroupCommittee, GroupFraternity, GroupTaskforce, GroupYearClub:
		return true
	}
	return false
}

// Group is an organizational unit of the association: the board, committees,
// fraternities, taskforces and year clubs.
type Group struct {
	ID          uuid.UUID
	Name        string
	Kind        GroupKind
	Description string
	Active      bool

	Created time.Time
	Updated time.Time
}

func NewGroup(name string, kind GroupKind, description string, now time.Time) (*Group, error) {
	g := &Group{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Kind:        kind,
		Description: strings.TrimSpace(description),
		Active:      true,
		Created:     now.UTC(),
		Updated:     now.UTC(),
	}
	if g.Name == "" || len(g.Name) > 80 {
		return nil, ErrValidation("name is required and must be <= 80 chars")
	}
	if !g.Kind.Valid() {
		return nil, ErrValidation("unknown group kind")
	}
	return g, nil
}

// GroupMembership records a contact belonging to a group, with at most one live
// membership per (group, contact).
type GroupMembership struct {
	ID        uuid.UUID
	GroupID   uuid.UUID
	ContactID uuid.UUID
	Chair     bool
	Since     time.Time
	Until     *time.Time
}
