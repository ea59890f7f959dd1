package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/loefbijter/loefsys/internal/domain"
)

type MockRegistrationRepo struct{ mock.Mock }

func (m *MockRegistrationRepo) Register(ctx context.Context, tid string, eid, cid uuid.UUID, at time.Time) (*domain.Registration, error) {
	args := m.Called(ctx, tid, eid, cid, at)
	var reg *domain.Registration
	if v := args.Get(0); v != nil {
		reg = v.(*domain.Registration)
	}
	return reg, args.Error(1)
}
func (m *MockRegistrationRepo) Cancel(ctx context.Context, tid string, id int64, at time.Time, consent bool) (*domain.Registration, error) {
	args := m.Called(ctx, tid, id, at, consent)
	var reg *domain.Registration
	if v := args.Get(0); v != nil {
		reg = v.(*domain.Registration)
	}
	return reg, args.Error(1)
}
func (m *MockRegistrationRepo) GetByEventAndContact(ctx context.Context, eid, cid uuid.UUID) (*domain.Registration, error) {
	args := m.Called(ctx, eid, cid)
	var reg *domain.Registration
	if v := args.Get(0); v != nil {
		reg = v.(*domain.Registration)
	}
	return reg, args.Error(1)
}
func (m *MockRegistrationRepo) Active(ctx context.Context, eid uuid.UUID) ([]domain.Registration, error) {
	args := m.Called(ctx, eid)
	var regs []domain.Registration
	if v := args.Get(0); v != nil {
		regs = v.([]domain.Registration)
	}
	return regs, args.Error(1)
}
func (m *MockRegistrationRepo) Queued(ctx context.Context, eid uuid.UUID) ([]domain.Registration, error) {
	args := m.Called(ctx, eid)
	var regs []domain.Registration
	if v := args.Get(0); v != nil {
		regs = v.([]domain.Registration)
	}
	return regs, args.Error(1)
}
func (m *MockRegistrationRepo) Cancelled(ctx context.Context, eid uuid.UUID) ([]domain.Registration, error) {
	args := m.Called(ctx, eid)
	var regs []domain.Registration
	if v := args.Get(0); v != nil {
		regs = v.([]domain.Registration)
	}
	return regs, args.Error(1)
}
func (m *MockRegistrationRepo) Stats(ctx context.Context, eid uuid.UUID) (domain.EventStats, error) {
	args := m.Called(ctx, eid)
	return args.Get(0).(domain.EventStats), args.Error(1)
}
func (m *MockRegistrationRepo) QueuePosition(ctx context.Context, eid, cid uuid.UUID) (int, error) {
	args := m.Called(ctx, eid, cid)
	return args.Int(0), args.Error(1)
}
func (m *MockRegistrationRepo) ListByContact(ctx context.Context, cid uuid.UUID) ([]domain.Registration, error) {
	args := m.Called(ctx, cid)
	var regs []domain.Registration
	if v := args.Get(0); v != nil {
		regs = v.([]domain.Registration)
	}
	return regs, args.Error(1)
}
func (m *MockRegistrationRepo) MarkPaid(ctx context.Context, id int64, paid bool) error {
	return m.Called(ctx, id, paid).Error(0)
}

type MockEventRepo struct{ mock.Mock }

func (m *MockEventRepo) Create(ctx context.Context, e *domain.Event) error {
	return m.Called(ctx, e).Error(0)
}
func (m *MockEventRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	args := m.Called(ctx, id)
	var ev *domain.Event
	if v := args.Get(0); v != nil {
		ev = v.(*domain.Event)
	}
	return ev, args.Error(1)
}
func (m *MockEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	args := m.Called(ctx, slug)
	var ev *domain.Event
	if v := args.Get(0); v != nil {
		ev = v.(*domain.Event)
	}
	return ev, args.Error(1)
}
func (m *MockEventRepo) Update(ctx context.Context, e *domain.Event) error {
	return m.Called(ctx, e).Error(0)
}
func (m *MockEventRepo) ListUpcoming(ctx context.Context, after time.Time, page, pageSize int) ([]*domain.Event, int, error) {
	args := m.Called(ctx, after, page, pageSize)
	var evs []*domain.Event
	if v := args.Get(0); v != nil {
		evs = v.([]*domain.Event)
	}
	return evs, args.Int(1), args.Error(2)
}
func (m *MockEventRepo) ListByOrganizer(ctx context.Context, oid uuid.UUID, page, pageSize int) ([]*domain.Event, int, error) {
	args := m.Called(ctx, oid, page, pageSize)
	var evs []*domain.Event
	if v := args.Get(0); v != nil {
		evs = v.([]*domain.Event)
	}
	return evs, args.Int(1), args.Error(2)
}

type MockCache struct{ mock.Mock }

func (m *MockCache) GetEventCapacity(ctx context.Context, eventID uuid.UUID) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}
func (m *MockCache) SetEventCapacity(ctx context.Context, eventID uuid.UUID, capacity int) error {
	return m.Called(ctx, eventID, capacity).Error(0)
}
func (m *MockCache) DeleteEventCapacity(ctx context.Context, eventID uuid.UUID) error {
	return m.Called(ctx, eventID).Error(0)
}
func (m *MockCache) AllowRequest(ctx context.Context, ip string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, ip, limit, window)
	return args.Bool(0), args.Error(1)
}

type MockReservationRepo struct{ mock.Mock }

func (m *MockReservationRepo) CreateItem(ctx context.Context, it *domain.ReservableItem) error {
	return m.Called(ctx, it).Error(0)
}
func (m *MockReservationRepo) GetItem(ctx context.Context, id uuid.UUID) (*domain.ReservableItem, error) {
	args := m.Called(ctx, id)
	var it *domain.ReservableItem
	if v := args.Get(0); v != nil {
		it = v.(*domain.ReservableItem)
	}
	return it, args.Error(1)
}
func (m *MockReservationRepo) UpdateItem(ctx context.Context, it *domain.ReservableItem) error {
	return m.Called(ctx, it).Error(0)
}
func (m *MockReservationRepo) ListItems(ctx context.Context, category *domain.ReservableCategory) ([]*domain.ReservableItem, error) {
	args := m.Called(ctx, category)
	var its []*domain.ReservableItem
	if v := args.Get(0); v != nil {
		its = v.([]*domain.ReservableItem)
	}
	return its, args.Error(1)
}
func (m *MockReservationRepo) CreateReservation(ctx context.Context, tid string, r *domain.Reservation) error {
	return m.Called(ctx, tid, r).Error(0)
}
func (m *MockReservationRepo) ListForItem(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, itemID, from, to)
	var rs []domain.Reservation
	if v := args.Get(0); v != nil {
		rs = v.([]domain.Reservation)
	}
	return rs, args.Error(1)
}
func (m *MockReservationRepo) ListByContact(ctx context.Context, cid uuid.UUID) ([]domain.Reservation, error) {
	args := m.Called(ctx, cid)
	var rs []domain.Reservation
	if v := args.Get(0); v != nil {
		rs = v.([]domain.Reservation)
	}
	return rs, args.Error(1)
}
func (m *MockReservationRepo) CreateSkippership(ctx context.Context, s *domain.Skippership) error {
	return m.Called(ctx, s).Error(0)
}
func (m *MockReservationRepo) GrantSkippership(ctx context.Context, us *domain.UserSkippership) error {
	return m.Called(ctx, us).Error(0)
}
func (m *MockReservationRepo) ListSkipperships(ctx context.Context, cid uuid.UUID) ([]domain.UserSkippership, error) {
	args := m.Called(ctx, cid)
	var grants []domain.UserSkippership
	if v := args.Get(0); v != nil {
		grants = v.([]domain.UserSkippership)
	}
	return grants, args.Error(1)
}

type MockMembershipRepo struct{ mock.Mock }

func (m *MockMembershipRepo) Create(ctx context.Context, ms *domain.Membership) error {
	return m.Called(ctx, ms).Error(0)
}
func (m *MockMembershipRepo) ListByContact(ctx context.Context, cid uuid.UUID) ([]domain.Membership, error) {
	args := m.Called(ctx, cid)
	var out []domain.Membership
	if v := args.Get(0); v != nil {
		out = v.([]domain.Membership)
	}
	return out, args.Error(1)
}
func (m *MockMembershipRepo) End(ctx context.Context, id uuid.UUID, until time.Time) error {
	return m.Called(ctx, id, until).Error(0)
}
