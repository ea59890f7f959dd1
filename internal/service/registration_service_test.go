package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/loefbijter/loefsys/internal/domain"
	"github.com/loefbijter/loefsys/internal/service"
)

func TestRegistrationService_Register_Success(t *testing.T) {
	repo := new(MockRegistrationRepo)
	events := new(MockEventRepo)
	cache := new(MockCache)
	svc := service.NewRegistrationService(repo, events, cache, nil)

	eventID := uuid.New()
	contactID := uuid.New()

	cache.On("GetEventCapacity", mock.Anything, eventID).Return(0, domain.ErrCacheMiss)
	repo.On("Register", mock.Anything, "trace-1", eventID, contactID, mock.Anything).
		Return(&domain.Registration{ID: 1, EventID: eventID, Status: domain.StatusActive}, nil)

	reg, err := svc.Register(context.Background(), "trace-1", eventID, contactID)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusActive, reg.Status)
	repo.AssertExpectations(t)
}

func TestRegistrationService_Register_CacheFastFail(t *testing.T) {
	repo := new(MockRegistrationRepo)
	events := new(MockEventRepo)
	cache := new(MockCache)
	svc := service.NewRegistrationService(repo, events, cache, nil)

	eventID := uuid.New()

	// -1 marks the event closed in redis; Postgres is never touched.
	cache.On("GetEventCapacity", mock.Anything, eventID).Return(-1, nil)

	_, err := svc.Register(context.Background(), "t", eventID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrRegistrationClosed)
	repo.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_CacheErrorIgnored(t *testing.T) {
	repo := new(MockRegistrationRepo)
	events := new(MockEventRepo)
	cache := new(MockCache)
	svc := service.NewRegistrationService(repo, events, cache, nil)

	eventID := uuid.New()
	contactID := uuid.New()

	cache.On("GetEventCapacity", mock.Anything, eventID).Return(0, errors.New("redis down"))
	repo.On("Register", mock.Anything, "t", eventID, contactID, mock.Anything).
		Return(&domain.Registration{ID: 7, EventID: eventID, Status: domain.StatusQueued}, nil)

	reg, err := svc.Register(context.Background(), "t", eventID, contactID)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, reg.Status)
}

func TestRegistrationService_Cancel_NotOwner(t *testing.T) {
	repo := new(MockRegistrationRepo)
	events := new(MockEventRepo)
	svc := service.NewRegistrationService(repo, events, nil, nil)

	actor := service.Actor{ContactID: uuid.New(), Role: "member"}
	repo.On("ListByContact", mock.Anything, actor.ContactID).Return([]domain.Registration{}, nil)

	_, err := svc.Cancel(context.Background(), "t", 42, actor, false)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrationService_Cancel_FineConsentPassthrough(t *testing.T) {
	repo := new(MockRegistrationRepo)
	events := new(MockEventRepo)
	svc := service.NewRegistrationService(repo, events, nil, nil)

	actor := service.Actor{ContactID: uuid.New(), Role: "member"}
	repo.On("ListByContact", mock.Anything, actor.ContactID).
		Return([]domain.Registration{{ID: 42, Status: domain.StatusActive}}, nil)
	repo.On("Cancel", mock.Anything, "t", int64(42), mock.Anything, false).
		Return(nil, &domain.FineConsentRequiredError{FineCents: 750})

	_, err := svc.Cancel(context.Background(), "t", 42, actor, false)

	fc, ok := service.IsFineConsentRequired(err)
	assert.True(t, ok)
	assert.Equal(t, int64(750), fc.FineCents)
}

func TestRegistrationService_Cancel_BoardBypassesOwnership(t *testing.T) {
	repo := new(MockRegistrationRepo)
	events := new(MockEventRepo)
	svc := service.NewRegistrationService(repo, events, nil, nil)

	actor := service.Actor{ContactID: uuid.New(), Role: "board"}
	repo.On("Cancel", mock.Anything, "t", int64(9), mock.Anything, true).
		Return(&domain.Registration{ID: 9, Status: domain.StatusCancelledFine}, nil)

	reg, err := svc.Cancel(context.Background(), "t", 9, actor, true)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusCancelledFine, reg.Status)
	repo.AssertNotCalled(t, "ListByContact", mock.Anything, mock.Anything)
}

func TestRegistrationService_Participants_ACL(t *testing.T) {
	repo := new(MockRegistrationRepo)
	events := new(MockEventRepo)
	svc := service.NewRegistrationService(repo, events, nil, nil)

	eventID := uuid.New()
	organizer := uuid.New()
	events.On("GetByID", mock.Anything, eventID).
		Return(&domain.Event{ID: eventID, OrganizerID: organizer}, nil)

	_, err := svc.Participants(context.Background(), eventID, service.Actor{ContactID: uuid.New(), Role: "member"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	repo.On("Active", mock.Anything, eventID).Return([]domain.Registration{{ID: 1}}, nil)
	regs, err := svc.Participants(context.Background(), eventID, service.Actor{ContactID: organizer, Role: "member"})
	assert.NoError(t, err)
	assert.Len(t, regs, 1)
}

func TestRegistrationService_MarkPaid_BoardOnly(t *testing.T) {
	repo := new(MockRegistrationRepo)
	events := new(MockEventRepo)
	svc := service.NewRegistrationService(repo, events, nil, nil)

	err := svc.MarkPaid(context.Background(), 5, true, service.Actor{ContactID: uuid.New(), Role: "member"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	repo.On("MarkPaid", mock.Anything, int64(5), true).Return(nil)
	err = svc.MarkPaid(context.Background(), 5, true, service.Actor{ContactID: uuid.New(), Role: "board"})
	assert.NoError(t, err)
}
