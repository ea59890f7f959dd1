package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/loefbijter/loefsys/internal/domain"
)

type EventService struct {
	repo  domain.EventRepository
	cache domain.CacheRepository
}

func NewEventService(repo domain.EventRepository, cache domain.CacheRepository) *EventService {
	return &EventService{repo: repo, cache: cache}
}

// EventInput carries the mutable event fields for create and update.
type EventInput struct {
	Title       string
	Description string
	Location    string
	Category    domain.EventCategory

	Start time.Time
	End   time.Time

	RegistrationStart    *time.Time
	RegistrationDeadline *time.Time
	CancellationDeadline *time.Time

	Capacity    *int
	PriceCents  int64
	FineCents   int64
	IsOpenEvent bool
}

func (s *EventService) Create(ctx context.Context, actor Actor, in EventInput) (*domain.Event, error) {
	now := time.Now().UTC()
	ev, err := domain.NewEvent(actor.ContactID, in.Title, in.Description, in.Location, in.Category, in.Start, in.End, now)
	if err != nil {
		return nil, err
	}
	ev.RegistrationStart = in.RegistrationStart
	ev.RegistrationDeadline = in.RegistrationDeadline
	ev.CancellationDeadline = in.CancellationDeadline
	ev.Capacity = in.Capacity
	ev.PriceCents = in.PriceCents
	ev.FineCents = in.FineCents
	ev.IsOpenEvent = in.IsOpenEvent
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, ev); err != nil {
		return nil, err
	}
	s.refreshCapacityCache(ctx, ev)
	return ev, nil
}

func (s *EventService) Update(ctx context.Context, actor Actor, eventID uuid.UUID, in EventInput) (*domain.Event, error) {
	if err := requireOrganizerOrBoard(ctx, s.repo, eventID, actor); err != nil {
		return nil, err
	}
	ev, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	ev.Title = in.Title
	ev.Slug = domain.Slugify(in.Title)
	ev.Description = in.Description
	ev.Location = in.Location
	ev.Category = in.Category
	ev.Start = in.Start.UTC()
	ev.End = in.End.UTC()
	ev.RegistrationStart = in.RegistrationStart
	ev.RegistrationDeadline = in.RegistrationDeadline
	ev.CancellationDeadline = in.CancellationDeadline
	ev.Capacity = in.Capacity
	ev.PriceCents = in.PriceCents
	ev.FineCents = in.FineCents
	ev.IsOpenEvent = in.IsOpenEvent
	ev.Updated = time.Now().UTC()
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, ev); err != nil {
		return nil, err
	}
	s.refreshCapacityCache(ctx, ev)
	return ev, nil
}

// SetPublished flips visibility. Unpublishing also closes the redis fast path.
func (s *EventService) SetPublished(ctx context.Context, actor Actor, eventID uuid.UUID, published bool) (*domain.Event, error) {
	if err := requireOrganizerOrBoard(ctx, s.repo, eventID, actor); err != nil {
		return nil, err
	}
	ev, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ev.Published = published
	ev.Updated = time.Now().UTC()
	if err := s.repo.Update(ctx, ev); err != nil {
		return nil, err
	}
	s.refreshCapacityCache(ctx, ev)
	return ev, nil
}

// refreshCapacityCache mirrors the event's registration state into redis:
// -1 when registrations can never open (unpublished), 0 for unlimited
// capacity, the configured capacity otherwise. A published zero-capacity
// event fits neither sentinel (it is open, everyone queues), so its entry is
// dropped and reads fall through to Postgres. Cache errors are dropped.
func (s *EventService) refreshCapacityCache(ctx context.Context, ev *domain.Event) {
	if s.cache == nil {
		return
	}
	val := 0
	switch {
	case !ev.Published:
		val = -1
	case ev.Capacity != nil:
		if *ev.Capacity == 0 {
			_ = s.cache.DeleteEventCapacity(ctx, ev.ID)
			return
		}
		val = *ev.Capacity
	}
	_ = s.cache.SetEventCapacity(ctx, ev.ID, val)
}

func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *EventService) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *EventService) ListUpcoming(ctx context.Context, page, pageSize int) ([]*domain.Event, int, error) {
	return s.repo.ListUpcoming(ctx, time.Now().UTC(), page, pageSize)
}

func (s *EventService) ListByOrganizer(ctx context.Context, organizerID uuid.UUID, page, pageSize int) ([]*domain.Event, int, error) {
	return s.repo.ListByOrganizer(ctx, organizerID, page, pageSize)
}
