package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/loefbijter/loefsys/internal/audit"
	"github.com/loefbijter/loefsys/internal/domain"
)

// MembershipService manages membership periods. All writes are board-only;
// members can read their own history.
type MembershipService struct {
	repo  domain.MembershipRepository
	audit *audit.Logger
}

func NewMembershipService(repo domain.MembershipRepository, auditLog *audit.Logger) *MembershipService {
	return &MembershipService{repo: repo, audit: auditLog}
}

func (s *MembershipService) Start(ctx context.Context, actor Actor, contactID uuid.UUID, typ domain.MembershipType, since time.Time, until *time.Time) (*domain.Membership, error) {
	if !actor.IsBoard() {
		return nil, domain.ErrForbidden
	}
	m, err := domain.NewMembership(contactID, typ, since, until, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.MembershipStarted(ctx, contactID, typ)
	}
	return m, nil
}

func (s *MembershipService) End(ctx context.Context, actor Actor, membershipID uuid.UUID, until time.Time) error {
	if !actor.IsBoard() {
		return domain.ErrForbidden
	}
	return s.repo.End(ctx, membershipID, until.UTC())
}

// History returns the contact's membership periods. Contacts see their own;
// board sees anyone's.
func (s *MembershipService) History(ctx context.Context, actor Actor, contactID uuid.UUID) ([]domain.Membership, error) {
	if actor.ContactID != contactID && !actor.IsBoard() {
		return nil, domain.ErrForbidden
	}
	return s.repo.ListByContact(ctx, contactID)
}

// IsMemberAt reports whether the contact had any membership covering at.
func (s *MembershipService) IsMemberAt(ctx context.Context, contactID uuid.UUID, at time.Time) (bool, error) {
	ms, err := s.repo.ListByContact(ctx, contactID)
	if err != nil {
		return false, err
	}
	for i := range ms {
		if ms[i].IsActive(at) {
			return true, nil
		}
	}
	return false, nil
}
