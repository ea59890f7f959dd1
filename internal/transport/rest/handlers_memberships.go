package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/loefbijter/loefsys/internal/domain"
	"github.com/loefbijter/loefsys/internal/transport/rest/response"
)

type membershipResponse struct {
	ID        string     `json:"id"`
	ContactID string     `json:"contact_id"`
	Type      string     `json:"type"`
	Since     time.Time  `json:"since"`
	Until     *time.Time `json:"until,omitempty"`
}

func toMembershipResponse(m *domain.Membership) membershipResponse {
	return membershipResponse{
		ID:        m.ID.String(),
		ContactID: m.ContactID.String(),
		Type:      string(m.Type),
		Since:     m.Since,
		Until:     m.Until,
	}
}

func (h *Handler) StartMembership(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	var req struct {
		ContactID string     `json:"contact_id"`
		Type      string     `json:"type"`
		Since     time.Time  `json:"since"`
		Until     *time.Time `json:"until,omitempty"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	contactID, err := parseUUIDField(req.ContactID)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid contact_id", nil)
		return
	}

	m, err := h.Memberships.Start(r.Context(), act, contactID, domain.MembershipType(req.Type), req.Since, req.Until)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toMembershipResponse(m))
}

func (h *Handler) EndMembership(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	membershipID, err := uuidParam(r, "membershipID")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid membershipID", nil)
		return
	}

	var req struct {
		Until time.Time `json:"until"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	if err := h.Memberships.End(r.Context(), act, membershipID, req.Until); err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, map[string]string{"msg": "membership ended"})
}

func (h *Handler) MembershipHistory(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	contactID, err := uuidParam(r, "contactID")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid contactID", nil)
		return
	}

	ms, err := h.Memberships.History(r.Context(), act, contactID)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	out := make([]membershipResponse, 0, len(ms))
	for i := range ms {
		out = append(out, toMembershipResponse(&ms[i]))
	}
	response.Data(w, http.StatusOK, map[string]any{"memberships": out})
}
