package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/loefbijter/loefsys/internal/domain"
	appCtx "github.com/loefbijter/loefsys/internal/pkg/context"
	"github.com/loefbijter/loefsys/internal/service"
	"github.com/loefbijter/loefsys/internal/transport/rest/response"
)

type Handler struct {
	Events        *service.EventService
	Registrations *service.RegistrationService
	Memberships   *service.MembershipService
	Reservations  *service.ReservationService
	Groups        *service.GroupService
	Contacts      *service.ContactService
}

func NewHandler(
	events *service.EventService,
	registrations *service.RegistrationService,
	memberships *service.MembershipService,
	reservations *service.ReservationService,
	groups *service.GroupService,
	contacts *service.ContactService,
) *Handler {
	return &Handler{
		Events:        events,
		Registrations: registrations,
		Memberships:   memberships,
		Reservations:  reservations,
		Groups:        groups,
		Contacts:      contacts,
	}
}

func traceID(r *http.Request) string {
	tid := appCtx.GetRequestID(r.Context())
	if tid == "" {
		tid = "no-request-id"
	}
	return tid
}

func actor(r *http.Request) (service.Actor, bool) {
	auth, ok := GetAuth(r.Context())
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{ContactID: auth.ContactID, Role: auth.Role}, true
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

func parseUUIDField(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}

// timeRange reads from/to query params, defaulting to the next 30 days.
func timeRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	from := time.Now().UTC()
	to := from.Add(30 * 24 * time.Hour)

	if s := q.Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}
	if s := q.Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t
	}
	return from, to, nil
}

func pageParams(r *http.Request) (int, int) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return page, size
}

func fail(w http.ResponseWriter, r *http.Request, status int, code, message string, meta map[string]string) {
	response.Fail(w, status, code, message, meta, appCtx.GetRequestID(r.Context()))
}

func handleErr(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		fail(w, r, http.StatusBadRequest, "request.invalid", ve.Message, ve.Meta)
		return
	}

	var fc *domain.FineConsentRequiredError
	if errors.As(err, &fc) {
		fail(w, r, http.StatusConflict, "registration.fine_consent_required", err.Error(), map[string]string{
			"fine_cents": strconv.FormatInt(fc.FineCents, 10),
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrContactNotFound),
		errors.Is(err, domain.ErrGroupNotFound):
		fail(w, r, http.StatusNotFound, "resource.not_found", err.Error(), nil)

	case errors.Is(err, domain.ErrNotRegistered):
		fail(w, r, http.StatusNotFound, "registration.not_found", err.Error(), nil)

	case errors.Is(err, domain.ErrRegistrationClosed):
		fail(w, r, http.StatusGone, "registrations.closed", err.Error(), nil)

	case errors.Is(err, domain.ErrAlreadyRegistered):
		fail(w, r, http.StatusConflict, "registration.duplicate", err.Error(), nil)
	case errors.Is(err, domain.ErrNotCancellable):
		fail(w, r, http.StatusConflict, "registration.not_cancellable", err.Error(), nil)
	case errors.Is(err, domain.ErrMembershipOverlap):
		fail(w, r, http.StatusConflict, "membership.overlap", err.Error(), nil)
	case errors.Is(err, domain.ErrReservationConflict):
		fail(w, r, http.StatusConflict, "reservation.conflict", err.Error(), nil)
	case errors.Is(err, domain.ErrItemUnavailable):
		fail(w, r, http.StatusConflict, "reservation.item_unavailable", err.Error(), nil)

	case errors.Is(err, domain.ErrSkipperRequired):
		fail(w, r, http.StatusForbidden, "reservation.skipper_required", err.Error(), nil)
	case errors.Is(err, domain.ErrSkipperNotAuthorized):
		fail(w, r, http.StatusForbidden, "reservation.skipper_not_authorized", err.Error(), nil)
	case errors.Is(err, domain.ErrForbidden):
		fail(w, r, http.StatusForbidden, "auth.forbidden", err.Error(), nil)

	default:
		fail(w, r, http.StatusInternalServerError, "internal", "internal server error", nil)
	}
}
