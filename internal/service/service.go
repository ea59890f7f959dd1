package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/loefbijter/loefsys/internal/domain"
)

// Actor identifies the authenticated contact behind a request, as extracted
// from the access token.
type Actor struct {
	ContactID uuid.UUID
	Role      string
}

func (a Actor) IsBoard() bool {
	r := strings.ToLower(strings.TrimSpace(a.Role))
	return r == "board" || r == "admin"
}

// requireOrganizerOrBoard allows the event's organizer and board members.
func requireOrganizerOrBoard(ctx context.Context, events domain.EventRepository, eventID uuid.UUID, actor Actor) error {
	if actor.IsBoard() {
		return nil
	}
	ev, err := events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if ev.OrganizerID != actor.ContactID {
		return domain.ErrForbidden
	}
	return nil
}
