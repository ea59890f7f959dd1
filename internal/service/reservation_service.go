package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/loefbijter/loefsys/internal/audit"
	"github.com/loefbijter/loefsys/internal/domain"
)

type ReservationService struct {
	repo  domain.ReservationRepository
	audit *audit.Logger
}

func NewReservationService(repo domain.ReservationRepository, auditLog *audit.Logger) *ReservationService {
	return &ReservationService{repo: repo, audit: auditLog}
}

// Reserve places a time-claim on an item for the actor. When the item requires
// a skippership the actor's matching grant is resolved here so the repository
// only has to verify it.
func (s *ReservationService) Reserve(ctx context.Context, traceID string, actor Actor, itemID uuid.UUID, start, end time.Time) (*domain.Reservation, error) {
	it, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var grantID *uuid.UUID
	if it.RequiresSkippership() {
		grants, err := s.repo.ListSkipperships(ctx, actor.ContactID)
		if err != nil {
			return nil, err
		}
		for i := range grants {
			if grants[i].SkippershipID == *it.RequiredSkippershipID {
				id := grants[i].ID
				grantID = &id
				break
			}
		}
		if grantID == nil {
			return nil, domain.ErrSkipperRequired
		}
	}

	res, err := domain.NewReservation(itemID, actor.ContactID, start, end, grantID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateReservation(ctx, traceID, res); err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.ReservationCreated(ctx, itemID, actor.ContactID)
	}
	return res, nil
}

func (s *ReservationService) Calendar(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]domain.Reservation, error) {
	return s.repo.ListForItem(ctx, itemID, from, to)
}

func (s *ReservationService) MyReservations(ctx context.Context, contactID uuid.UUID) ([]domain.Reservation, error) {
	return s.repo.ListByContact(ctx, contactID)
}

// Catalogue management is board-only.

func (s *ReservationService) CreateItem(ctx context.Context, actor Actor, it *domain.ReservableItem) error {
	if !actor.IsBoard() {
		return domain.ErrForbidden
	}
	return s.repo.CreateItem(ctx, it)
}

func (s *ReservationService) UpdateItem(ctx context.Context, actor Actor, it *domain.ReservableItem) error {
	if !actor.IsBoard() {
		return domain.ErrForbidden
	}
	it.Updated = time.Now().UTC()
	return s.repo.UpdateItem(ctx, it)
}

func (s *ReservationService) GetItem(ctx context.Context, id uuid.UUID) (*domain.ReservableItem, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *ReservationService) ListItems(ctx context.Context, category *domain.ReservableCategory) ([]*domain.ReservableItem, error) {
	return s.repo.ListItems(ctx, category)
}

func (s *ReservationService) CreateSkippership(ctx context.Context, actor Actor, name string) (*domain.Skippership, error) {
	if !actor.IsBoard() {
		return nil, domain.ErrForbidden
	}
	if name == "" {
		return nil, domain.ErrValidation("name is required")
	}
	sk := &domain.Skippership{ID: uuid.New(), Name: name}
	if err := s.repo.CreateSkippership(ctx, sk); err != nil {
		return nil, err
	}
	return sk, nil
}

func (s *ReservationService) GrantSkippership(ctx context.Context, actor Actor, contactID, skippershipID uuid.UUID) (*domain.UserSkippership, error) {
	if !actor.IsBoard() {
		return nil, domain.ErrForbidden
	}
	us := &domain.UserSkippership{
		ID:            uuid.New(),
		ContactID:     contactID,
		SkippershipID: skippershipID,
		Since:         time.Now().UTC(),
	}
	if err := s.repo.GrantSkippership(ctx, us); err != nil {
		return nil, err
	}
	return us, nil
}

func (s *ReservationService) Skipperships(ctx context.Context, contactID uuid.UUID) ([]domain.UserSkippership, error) {
	return s.repo.ListSkipperships(ctx, contactID)
}
