package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/loefbijter/loefsys/internal/audit"
	"github.com/loefbijter/loefsys/internal/domain"
)

// RegistrationService fronts the registration ledger. The capacity check in
// redis is a fast-fail only; the Postgres transaction remains the source of
// truth, so a stale or missing cache entry merely costs one extra roundtrip.
type RegistrationService struct {
	repo   domain.RegistrationRepository
	events domain.EventRepository
	cache  domain.CacheRepository
	audit  *audit.Logger
}

func NewRegistrationService(repo domain.RegistrationRepository, events domain.EventRepository, cache domain.CacheRepository, auditLog *audit.Logger) *RegistrationService {
	return &RegistrationService{repo: repo, events: events, cache: cache, audit: auditLog}
}

func (s *RegistrationService) Register(ctx context.Context, traceID string, eventID, contactID uuid.UUID) (*domain.Registration, error) {
	if s.cache != nil {
		capacity, err := s.cache.GetEventCapacity(ctx, eventID)
		if err == nil && capacity < 0 {
			return nil, domain.ErrRegistrationClosed
		}
		// cache miss or redis trouble: fall through to Postgres
		_ = err
	}

	reg, err := s.repo.Register(ctx, traceID, eventID, contactID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.RegistrationCreated(ctx, eventID, contactID, reg.Status)
	}
	return reg, nil
}

// Cancel cancels the actor's own registration. Board members may cancel on
// behalf of others. A FineConsentRequiredError passes through untouched so the
// transport can surface the amount.
func (s *RegistrationService) Cancel(ctx context.Context, traceID string, registrationID int64, actor Actor, fineConsent bool) (*domain.Registration, error) {
	if !actor.IsBoard() {
		owned, err := s.ownsRegistration(ctx, registrationID, actor.ContactID)
		if err != nil {
			return nil, err
		}
		if !owned {
			return nil, domain.ErrForbidden
		}
	}

	reg, err := s.repo.Cancel(ctx, traceID, registrationID, time.Now().UTC(), fineConsent)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.RegistrationCancelled(ctx, reg.EventID, registrationID, reg.Status == domain.StatusCancelledFine)
	}
	return reg, nil
}

func (s *RegistrationService) ownsRegistration(ctx context.Context, registrationID int64, contactID uuid.UUID) (bool, error) {
	regs, err := s.repo.ListByContact(ctx, contactID)
	if err != nil {
		return false, err
	}
	for i := range regs {
		if regs[i].ID == registrationID {
			return true, nil
		}
	}
	return false, nil
}

func (s *RegistrationService) MyRegistration(ctx context.Context, eventID, contactID uuid.UUID) (*domain.Registration, error) {
	return s.repo.GetByEventAndContact(ctx, eventID, contactID)
}

func (s *RegistrationService) MyRegistrations(ctx context.Context, contactID uuid.UUID) ([]domain.Registration, error) {
	return s.repo.ListByContact(ctx, contactID)
}

func (s *RegistrationService) QueuePosition(ctx context.Context, eventID, contactID uuid.UUID) (int, error) {
	return s.repo.QueuePosition(ctx, eventID, contactID)
}

func (s *RegistrationService) Participants(ctx context.Context, eventID uuid.UUID, actor Actor) ([]domain.Registration, error) {
	if err := requireOrganizerOrBoard(ctx, s.events, eventID, actor); err != nil {
		return nil, err
	}
	return s.repo.Active(ctx, eventID)
}

func (s *RegistrationService) Waitlist(ctx context.Context, eventID uuid.UUID, actor Actor) ([]domain.Registration, error) {
	if err := requireOrganizerOrBoard(ctx, s.events, eventID, actor); err != nil {
		return nil, err
	}
	return s.repo.Queued(ctx, eventID)
}

func (s *RegistrationService) Stats(ctx context.Context, eventID uuid.UUID, actor Actor) (domain.EventStats, error) {
	if err := requireOrganizerOrBoard(ctx, s.events, eventID, actor); err != nil {
		return domain.EventStats{}, err
	}
	return s.repo.Stats(ctx, eventID)
}

// MarkPaid is a board-only bookkeeping toggle.
func (s *RegistrationService) MarkPaid(ctx context.Context, registrationID int64, paid bool, actor Actor) error {
	if !actor.IsBoard() {
		return domain.ErrForbidden
	}
	return s.repo.MarkPaid(ctx, registrationID, paid)
}

// IsFineConsentRequired unwraps the consent error for callers that prefer a
// boolean check.
func IsFineConsentRequired(err error) (*domain.FineConsentRequiredError, bool) {
	var fc *domain.FineConsentRequiredError
	if errors.As(err, &fc) {
		return fc, true
	}
	return nil, false
}
