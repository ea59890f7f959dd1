package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loefbijter/loefsys/internal/audit"
	"github.com/loefbijter/loefsys/internal/domain"
	"github.com/loefbijter/loefsys/internal/security"
	"github.com/loefbijter/loefsys/internal/service"
)

type fakeVerifier struct {
	claims security.TokenClaims
	err    error
}

func (f fakeVerifier) VerifyAccessToken(string) (security.TokenClaims, error) {
	return f.claims, f.err
}

type fakeCache struct {
	capacity int
	capErr   error
	allow    bool
}

func (f *fakeCache) GetEventCapacity(context.Context, uuid.UUID) (int, error) {
	return f.capacity, f.capErr
}

func (f *fakeCache) SetEventCapacity(context.Context, uuid.UUID, int) error { return nil }

func (f *fakeCache) DeleteEventCapacity(context.Context, uuid.UUID) error { return nil }

func (f *fakeCache) AllowRequest(context.Context, string, int, time.Duration) (bool, error) {
	return f.allow, nil
}

type fakeRegistrationRepo struct {
	registerFn      func(ctx context.Context, traceID string, eventID, contactID uuid.UUID, at time.Time) (*domain.Registration, error)
	cancelFn        func(ctx context.Context, traceID string, registrationID int64, at time.Time, fineConsent bool) (*domain.Registration, error)
	listByContactFn func(ctx context.Context, contactID uuid.UUID) ([]domain.Registration, error)
}

func (f *fakeRegistrationRepo) Register(ctx context.Context, traceID string, eventID, contactID uuid.UUID, at time.Time) (*domain.Registration, error) {
	return f.registerFn(ctx, traceID, eventID, contactID, at)
}

func (f *fakeRegistrationRepo) Cancel(ctx context.Context, traceID string, registrationID int64, at time.Time, fineConsent bool) (*domain.Registration, error) {
	return f.cancelFn(ctx, traceID, registrationID, at, fineConsent)
}

func (f *fakeRegistrationRepo) ListByContact(ctx context.Context, contactID uuid.UUID) ([]domain.Registration, error) {
	return f.listByContactFn(ctx, contactID)
}

func (f *fakeRegistrationRepo) GetByEventAndContact(context.Context, uuid.UUID, uuid.UUID) (*domain.Registration, error) {
	return nil, domain.ErrNotRegistered
}

func (f *fakeRegistrationRepo) Active(context.Context, uuid.UUID) ([]domain.Registration, error) {
	return nil, nil
}

func (f *fakeRegistrationRepo) Queued(context.Context, uuid.UUID) ([]domain.Registration, error) {
	return nil, nil
}

func (f *fakeRegistrationRepo) Cancelled(context.Context, uuid.UUID) ([]domain.Registration, error) {
	return nil, nil
}

func (f *fakeRegistrationRepo) Stats(context.Context, uuid.UUID) (domain.EventStats, error) {
	return domain.EventStats{}, nil
}

func (f *fakeRegistrationRepo) QueuePosition(context.Context, uuid.UUID, uuid.UUID) (int, error) {
	return 0, nil
}

func (f *fakeRegistrationRepo) MarkPaid(context.Context, int64, bool) error { return nil }

type fakeEventRepo struct{}

func (fakeEventRepo) Create(context.Context, *domain.Event) error { return nil }
func (fakeEventRepo) GetByID(context.Context, uuid.UUID) (*domain.Event, error) {
	return nil, domain.ErrEventNotFound
}
func (fakeEventRepo) GetBySlug(context.Context, string) (*domain.Event, error) {
	return nil, domain.ErrEventNotFound
}
func (fakeEventRepo) Update(context.Context, *domain.Event) error { return nil }
func (fakeEventRepo) ListUpcoming(context.Context, time.Time, int, int) ([]*domain.Event, int, error) {
	return nil, 0, nil
}
func (fakeEventRepo) ListByOrganizer(context.Context, uuid.UUID, int, int) ([]*domain.Event, int, error) {
	return nil, 0, nil
}

func testRouter(t *testing.T, regRepo *fakeRegistrationRepo, cache *fakeCache, verifier security.AccessTokenVerifier, rateLimit bool) http.Handler {
	t.Helper()

	auditLog := audit.New(zerolog.Nop())
	regSvc := service.NewRegistrationService(regRepo, fakeEventRepo{}, cache, auditLog)
	eventSvc := service.NewEventService(fakeEventRepo{}, cache)

	h := NewHandler(
		eventSvc,
		regSvc,
		service.NewMembershipService(nil, auditLog),
		service.NewReservationService(nil, auditLog),
		service.NewGroupService(nil),
		service.NewContactService(nil),
	)

	return NewRouter(RouterDeps{
		Cache:            cache,
		Handler:          h,
		Verifier:         verifier,
		JWTIssuer:        "loefsys-test",
		RateLimitEnabled: rateLimit,
		RateLimit:        100,
		RateLimitWindow:  time.Minute,
	})
}

func memberClaims(contactID uuid.UUID) security.TokenClaims {
	return security.TokenClaims{
		ContactID: contactID.String(),
		Role:      "member",
		Issuer:    "loefsys-test",
		Exp:       time.Now().Add(time.Hour),
	}
}

func TestRouter_Healthz(t *testing.T) {
	router := testRouter(t, &fakeRegistrationRepo{}, &fakeCache{allow: true}, fakeVerifier{}, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRouter_MissingBearer(t *testing.T) {
	router := testRouter(t, &fakeRegistrationRepo{}, &fakeCache{allow: true}, fakeVerifier{}, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me/registrations", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_InvalidToken(t *testing.T) {
	verifier := fakeVerifier{err: security.ErrTokenInvalid}
	router := testRouter(t, &fakeRegistrationRepo{}, &fakeCache{allow: true}, verifier, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/registrations", nil)
	req.Header.Set("Authorization", "Bearer garbage")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_IssuerMismatch(t *testing.T) {
	claims := memberClaims(uuid.New())
	claims.Issuer = "someone-else"
	router := testRouter(t, &fakeRegistrationRepo{}, &fakeCache{allow: true}, fakeVerifier{claims: claims}, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/registrations", nil)
	req.Header.Set("Authorization", "Bearer tok")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterEndpoint_Created(t *testing.T) {
	contactID := uuid.New()
	eventID := uuid.New()

	repo := &fakeRegistrationRepo{
		registerFn: func(_ context.Context, traceID string, evID, cid uuid.UUID, at time.Time) (*domain.Registration, error) {
			assert.NotEmpty(t, traceID)
			assert.Equal(t, eventID, evID)
			assert.Equal(t, contactID, cid)
			return &domain.Registration{
				ID:        42,
				EventID:   evID,
				ContactID: &cid,
				Status:    domain.StatusActive,
				Created:   at,
			}, nil
		},
	}
	cache := &fakeCache{capErr: domain.ErrCacheMiss, allow: true}
	router := testRouter(t, repo, cache, fakeVerifier{claims: memberClaims(contactID)}, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/"+eventID.String()+"/registrations", nil)
	req.Header.Set("Authorization", "Bearer tok")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(42), body.Data.ID)
	assert.Equal(t, "active", body.Data.Status)
}

func TestRegisterEndpoint_CacheClosedFastFail(t *testing.T) {
	contactID := uuid.New()

	repo := &fakeRegistrationRepo{
		registerFn: func(context.Context, string, uuid.UUID, uuid.UUID, time.Time) (*domain.Registration, error) {
			t.Fatal("repository must not be reached when the cache says closed")
			return nil, nil
		},
	}
	cache := &fakeCache{capacity: -1, allow: true}
	router := testRouter(t, repo, cache, fakeVerifier{claims: memberClaims(contactID)}, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/"+uuid.NewString()+"/registrations", nil)
	req.Header.Set("Authorization", "Bearer tok")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestCancelEndpoint_FineConsentEnvelope(t *testing.T) {
	contactID := uuid.New()

	repo := &fakeRegistrationRepo{
		listByContactFn: func(context.Context, uuid.UUID) ([]domain.Registration, error) {
			return []domain.Registration{{ID: 7, EventID: uuid.New(), Status: domain.StatusActive}}, nil
		},
		cancelFn: func(_ context.Context, _ string, registrationID int64, _ time.Time, fineConsent bool) (*domain.Registration, error) {
			assert.Equal(t, int64(7), registrationID)
			assert.False(t, fineConsent)
			return nil, &domain.FineConsentRequiredError{FineCents: 750}
		},
	}
	cache := &fakeCache{capErr: domain.ErrCacheMiss, allow: true}
	router := testRouter(t, repo, cache, fakeVerifier{claims: memberClaims(contactID)}, false)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/registrations/7", nil)
	req.Header.Set("Authorization", "Bearer tok")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Error struct {
			Code      string            `json:"code"`
			Meta      map[string]string `json:"meta"`
			RequestID string            `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "registration.fine_consent_required", body.Error.Code)
	assert.Equal(t, "750", body.Error.Meta["fine_cents"])
	assert.NotEmpty(t, body.Error.RequestID)
}

func TestCancelEndpoint_NotOwnerForbidden(t *testing.T) {
	repo := &fakeRegistrationRepo{
		listByContactFn: func(context.Context, uuid.UUID) ([]domain.Registration, error) {
			return nil, nil
		},
		cancelFn: func(context.Context, string, int64, time.Time, bool) (*domain.Registration, error) {
			return nil, errors.New("unreachable")
		},
	}
	cache := &fakeCache{capErr: domain.ErrCacheMiss, allow: true}
	router := testRouter(t, repo, cache, fakeVerifier{claims: memberClaims(uuid.New())}, false)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/registrations/7", nil)
	req.Header.Set("Authorization", "Bearer tok")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_RateLimited(t *testing.T) {
	router := testRouter(t, &fakeRegistrationRepo{}, &fakeCache{allow: false}, fakeVerifier{}, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
