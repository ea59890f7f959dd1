package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/loefbijter/loefsys/internal/domain"
)

type ContactService struct {
	repo domain.ContactRepository
}

func NewContactService(repo domain.ContactRepository) *ContactService {
	return &ContactService{repo: repo}
}

type ContactInput struct {
	Email       string
	FirstName   string
	LastName    string
	Nickname    string
	PhoneNumber string
}

func (s *ContactService) Create(ctx context.Context, actor Actor, in ContactInput) (*domain.Contact, error) {
	if !actor.IsBoard() {
		return nil, domain.ErrForbidden
	}
	c, err := domain.NewContact(in.Email, in.FirstName, in.LastName, in.Nickname, in.PhoneNumber, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update lets contacts edit their own profile; board edits anyone's.
func (s *ContactService) Update(ctx context.Context, actor Actor, contactID uuid.UUID, in ContactInput) (*domain.Contact, error) {
	if actor.ContactID != contactID && !actor.IsBoard() {
		return nil, domain.ErrForbidden
	}
	c, err := s.repo.GetByID(ctx, contactID)
	if err != nil {
		return nil, err
	}

	updated, err := domain.NewContact(in.Email, in.FirstName, in.LastName, in.Nickname, in.PhoneNumber, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	c.Email = updated.Email
	c.FirstName = updated.FirstName
	c.LastName = updated.LastName
	c.Nickname = updated.Nickname
	c.PhoneNumber = updated.PhoneNumber
	c.Updated = time.Now().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContactService) Get(ctx context.Context, actor Actor, contactID uuid.UUID) (*domain.Contact, error) {
	if actor.ContactID != contactID && !actor.IsBoard() {
		return nil, domain.ErrForbidden
	}
	return s.repo.GetByID(ctx, contactID)
}

// Delete anonymizes the contact. Contacts may remove themselves; board may
// remove anyone.
func (s *ContactService) Delete(ctx context.Context, actor Actor, contactID uuid.UUID) error {
	if actor.ContactID != contactID && !actor.IsBoard() {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, contactID)
}

func (s *ContactService) List(ctx context.Context, actor Actor, page, pageSize int) ([]*domain.Contact, int, error) {
	if !actor.IsBoard() {
		return nil, 0, domain.ErrForbidden
	}
	return s.repo.List(ctx, page, pageSize)
}
