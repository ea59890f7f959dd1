package domain

import (
	"time"

	"github.com/google/uuid"
)

type MembershipType string

const (
	MembershipActive  MembershipType = "active"
	MembershipPassive MembershipType = "passive"
	MembershipAlumnus MembershipType = "alumnus"
)

func (t MembershipType) Valid() bool {
	return t == MembershipActive || t == MembershipPassive || t == MembershipAlumnus
}

// Membership is one period of association membership for a contact. Periods of
// the same contact may never overlap; a nil Until means the membership is
// ongoing.
type Membership struct {
	ID        uuid.UUID
	ContactID uuid.UUID
	Type      MembershipType
	Since     time.Time  // date, midnight UTC
	Until     *time.Time // nil = ongoing

	Created time.Time
}

func NewMembership(contactID uuid.UUID, typ MembershipType, since time.Time, until *time.Time, now time.Time) (*Membership, error) {
	if contactID == uuid.Nil {
		return nil, ErrValidation("contact is required")
	}
	if !typ.Valid() {
		return nil, ErrValidation("unknown membership type")
	}
	if since.IsZero() {
		return nil, ErrValidation("since is required")
	}
	if until != nil && until.Before(since) {
		return nil, ErrValidation("until can't be before since")
	}
	return &Membership{
		ID:        uuid.New(),
		ContactID: contactID,
		Type:      typ,
		Since:     since.UTC(),
		Until:     until,
		Created:   now.UTC(),
	}, nil
}

func (m *Membership) Interval() Interval {
	return Interval{Start: m.Since, End: m.Until}
}

// IsActive reports whether the membership covers the given moment.
func (m *Membership) IsActive(at time.Time) bool {
	return !at.Before(m.Since) && (m.Until == nil || at.Before(*m.Until))
}
