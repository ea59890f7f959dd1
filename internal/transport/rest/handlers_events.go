package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/loefbijter/loefsys/internal/domain"
	"github.com/loefbijter/loefsys/internal/service"
	"github.com/loefbijter/loefsys/internal/transport/rest/response"
)

type eventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	RegistrationStart    *time.Time `json:"registration_start,omitempty"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	CancellationDeadline *time.Time `json:"cancellation_deadline,omitempty"`

	Capacity    *int  `json:"capacity,omitempty"`
	PriceCents  int64 `json:"price_cents"`
	FineCents   int64 `json:"fine_cents"`
	IsOpenEvent bool  `json:"is_open_event"`
}

func (req eventRequest) input() service.EventInput {
	return service.EventInput{
		Title:                req.Title,
		Description:          req.Description,
		Location:             req.Location,
		Category:             domain.EventCategory(req.Category),
		Start:                req.Start,
		End:                  req.End,
		RegistrationStart:    req.RegistrationStart,
		RegistrationDeadline: req.RegistrationDeadline,
		CancellationDeadline: req.CancellationDeadline,
		Capacity:             req.Capacity,
		PriceCents:           req.PriceCents,
		FineCents:            req.FineCents,
		IsOpenEvent:          req.IsOpenEvent,
	}
}

type eventResponse struct {
	ID          string `json:"id"`
	OrganizerID string `json:"organizer_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	Location    string `json:"location"`
	Category    string `json:"category"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	RegistrationStart    *time.Time `json:"registration_start,omitempty"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	CancellationDeadline *time.Time `json:"cancellation_deadline,omitempty"`

	Capacity    *int  `json:"capacity,omitempty"`
	PriceCents  int64 `json:"price_cents"`
	FineCents   int64 `json:"fine_cents"`
	IsOpenEvent bool  `json:"is_open_event"`
	Published   bool  `json:"published"`
}

func toEventResponse(e *domain.Event) eventResponse {
	return eventResponse{
		ID:                   e.ID.String(),
		OrganizerID:          e.OrganizerID.String(),
		Title:                e.Title,
		Description:          e.Description,
		Slug:                 e.Slug,
		Location:             e.Location,
		Category:             string(e.Category),
		Start:                e.Start,
		End:                  e.End,
		RegistrationStart:    e.RegistrationStart,
		RegistrationDeadline: e.RegistrationDeadline,
		CancellationDeadline: e.CancellationDeadline,
		Capacity:             e.Capacity,
		PriceCents:           e.PriceCents,
		FineCents:            e.FineCents,
		IsOpenEvent:          e.IsOpenEvent,
		Published:            e.Published,
	}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	var req eventRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	ev, err := h.Events.Create(r.Context(), act, req.input())
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toEventResponse(ev))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	eventID, err := uuidParam(r, "eventID")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid eventID", nil)
		return
	}

	var req eventRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	ev, err := h.Events.Update(r.Context(), act, eventID, req.input())
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toEventResponse(ev))
}

func (h *Handler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	eventID, err := uuidParam(r, "eventID")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid eventID", nil)
		return
	}

	var req struct {
		Published bool `json:"published"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	ev, err := h.Events.SetPublished(r.Context(), act, eventID, req.Published)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toEventResponse(ev))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuidParam(r, "eventID")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid eventID", nil)
		return
	}

	ev, err := h.Events.Get(r.Context(), eventID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toEventResponse(ev))
}

func (h *Handler) GetEventBySlug(w http.ResponseWriter, r *http.Request) {
	ev, err := h.Events.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toEventResponse(ev))
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	events, total, err := h.Events.ListUpcoming(r.Context(), page, pageSize)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	items := make([]eventResponse, 0, len(events))
	for _, e := range events {
		items = append(items, toEventResponse(e))
	}
	response.Data(w, http.StatusOK, map[string]any{
		"events": items,
		"total":  total,
		"page":   page,
	})
}

func (h *Handler) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	page, pageSize := pageParams(r)
	events, total, err := h.Events.ListByOrganizer(r.Context(), act.ContactID, page, pageSize)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	items := make([]eventResponse, 0, len(events))
	for _, e := range events {
		items = append(items, toEventResponse(e))
	}
	response.Data(w, http.StatusOK, map[string]any{
		"events": items,
		"total":  total,
		"page":   page,
	})
}
