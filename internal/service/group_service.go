package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/loefbijter/loefsys/internal/domain"
)

type GroupService struct {
	repo domain.GroupRepository
}

func NewGroupService(repo domain.GroupRepository) *GroupService {
	return &GroupService{repo: repo}
}

func (s *GroupService) Create(ctx context.Context, actor Actor, name string, kind domain.GroupKind, description string) (*domain.Group, error) {
	if !actor.IsBoard() {
		return nil, domain.ErrForbidden
	}
	g, err := domain.NewGroup(name, kind, description, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GroupService) Update(ctx context.Context, actor Actor, g *domain.Group) error {
	if !actor.IsBoard() {
		return domain.ErrForbidden
	}
	g.Updated = time.Now().UTC()
	return s.repo.Update(ctx, g)
}

func (s *GroupService) Get(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *GroupService) List(ctx context.Context, kind *domain.GroupKind, page, pageSize int) ([]*domain.Group, int, error) {
	return s.repo.List(ctx, kind, page, pageSize)
}

func (s *GroupService) AddMember(ctx context.Context, actor Actor, groupID, contactID uuid.UUID, chair bool) (*domain.GroupMembership, error) {
	if !actor.IsBoard() {
		return nil, domain.ErrForbidden
	}
	gm := &domain.GroupMembership{
		ID:        uuid.New(),
		GroupID:   groupID,
		ContactID: contactID,
		Chair:     chair,
		Since:     time.Now().UTC(),
	}
	if err := s.repo.AddMember(ctx, gm); err != nil {
		return nil, err
	}
	return gm, nil
}

func (s *GroupService) RemoveMember(ctx context.Context, actor Actor, groupID, contactID uuid.UUID) error {
	if !actor.IsBoard() {
		return domain.ErrForbidden
	}
	return s.repo.RemoveMember(ctx, groupID, contactID, time.Now().UTC())
}

func (s *GroupService) Members(ctx context.Context, groupID uuid.UUID) ([]domain.GroupMembership, error) {
	return s.repo.ListMembers(ctx, groupID)
}
