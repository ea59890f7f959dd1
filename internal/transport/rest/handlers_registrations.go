package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/loefbijter/loefsys/internal/domain"
	"github.com/loefbijter/loefsys/internal/service"
	"github.com/loefbijter/loefsys/internal/transport/rest/response"
)

type registrationResponse struct {
	ID          int64      `json:"id"`
	EventID     string     `json:"event_id"`
	ContactID   *string    `json:"contact_id,omitempty"`
	Status      string     `json:"status"`
	PriceCents  int64      `json:"price_cents"`
	FineCents   int64      `json:"fine_cents"`
	Paid        bool       `json:"paid"`
	Created     time.Time  `json:"created"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func toRegistrationResponse(reg *domain.Registration) registrationResponse {
	out := registrationResponse{
		ID:          reg.ID,
		EventID:     reg.EventID.String(),
		Status:      string(reg.Status),
		PriceCents:  reg.PriceAtRegistrationCents,
		FineCents:   reg.FineAtRegistrationCents,
		Paid:        reg.Paid,
		Created:     reg.Created,
		CancelledAt: reg.CancelledAt,
	}
	if reg.ContactID != nil {
		s := reg.ContactID.String()
		out.ContactID = &s
	}
	return out
}

func toRegistrationList(regs []domain.Registration) []registrationResponse {
	out := make([]registrationResponse, 0, len(regs))
	for i := range regs {
		out = append(out, toRegistrationResponse(&regs[i]))
	}
	return out
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	eventID, err := uuidParam(r, "eventID")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid eventID", map[string]string{
			"event_id": "must be a valid uuid",
		})
		return
	}

	reg, err := h.Registrations.Register(r.Context(), traceID(r), eventID, act.ContactID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toRegistrationResponse(reg))
}

// CancelRegistration handles DELETE with an optional fine_consent flag. When a
// fine applies and consent is absent the service answers 409 with the amount,
// so clients can re-prompt and retry with ?fine_consent=true.
func (h *Handler) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	registrationID, err := strconv.ParseInt(chi.URLParam(r, "registrationID"), 10, 64)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid registrationID", nil)
		return
	}

	fineConsent := r.URL.Query().Get("fine_consent") == "true"

	reg, err := h.Registrations.Cancel(r.Context(), traceID(r), registrationID, act, fineConsent)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toRegistrationResponse(reg))
}

func (h *Handler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	regs, err := h.Registrations.MyRegistrations(r.Context(), act.ContactID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, map[string]any{"registrations": toRegistrationList(regs)})
}

func (h *Handler) MyEventRegistration(w http.ResponseWriter, r *http.Request) {
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

	reg, err := h.Registrations.MyRegistration(r.Context(), eventID, act.ContactID)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	out := map[string]any{"registration": toRegistrationResponse(reg)}
	if reg.Status == domain.StatusQueued {
		pos, err := h.Registrations.QueuePosition(r.Context(), eventID, act.ContactID)
		if err == nil {
			out["queue_position"] = pos
		}
	}
	response.Data(w, http.StatusOK, out)
}

func (h *Handler) Participants(w http.ResponseWriter, r *http.Request) {
	h.listRegistrations(w, r, h.Registrations.Participants)
}

func (h *Handler) Waitlist(w http.ResponseWriter, r *http.Request) {
	h.listRegistrations(w, r, h.Registrations.Waitlist)
}

func (h *Handler) listRegistrations(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, eventID uuid.UUID, act service.Actor) ([]domain.Registration, error)) {
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

	regs, err := list(r.Context(), eventID, act)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, map[string]any{"registrations": toRegistrationList(regs)})
}

func (h *Handler) EventStats(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.Registrations.Stats(r.Context(), eventID, act)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, map[string]any{
		"event_id":        stats.EventID.String(),
		"capacity":        stats.Capacity,
		"active_count":    stats.ActiveCount,
		"queued_count":    stats.QueuedCount,
		"cancelled_count": stats.CancelledCount,
	})
}

func (h *Handler) MarkRegistrationPaid(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	registrationID, err := strconv.ParseInt(chi.URLParam(r, "registrationID"), 10, 64)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid registrationID", nil)
		return
	}

	var req struct {
		Paid bool `json:"paid"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	if err := h.Registrations.MarkPaid(r.Context(), registrationID, req.Paid, act); err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, map[string]bool{"paid": req.Paid})
}
