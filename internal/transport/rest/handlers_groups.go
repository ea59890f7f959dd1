package rest

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/loefbijter/loefsys/internal/domain"
	"github.com/loefbijter/loefsys/internal/transport/rest/response"
)

type groupResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

func toGroupResponse(g *domain.Group) groupResponse {
	return groupResponse{
		ID:          g.ID.String(),
		Name:        g.Name,
		Kind:        string(g.Kind),
		Description: g.Description,
		Active:      g.Active,
	}
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Kind        string `json:"kind"`
		Description string `json:"description"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	g, err := h.Groups.Create(r.Context(), act, req.Name, domain.GroupKind(req.Kind), req.Description)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toGroupResponse(g))
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	groupID, err := uuidParam(r, "groupID")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid groupID", nil)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Kind        string `json:"kind"`
		Description string `json:"description"`
		Active      bool   `json:"active"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	g, err := h.Groups.Get(r.Context(), groupID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	g.Name = req.Name
	g.Kind = domain.GroupKind(req.Kind)
	g.Description = req.Description
	g.Active = req.Active

	if err := h.Groups.Update(r.Context(), act, g); err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toGroupResponse(g))
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuidParam(r, "groupID")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid groupID", nil)
		return
	}

	g, err := h.Groups.Get(r.Context(), groupID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toGroupResponse(g))
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	var kind *domain.GroupKind
	if k := r.URL.Query().Get("kind"); k != "" {
		gk := domain.GroupKind(k)
		if !gk.Valid() {
			fail(w, r, http.StatusBadRequest, "request.invalid", "unknown group kind", nil)
			return
		}
		kind = &gk
	}

	page, pageSize := pageParams(r)
	groups, total, err := h.Groups.List(r.Context(), kind, page, pageSize)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	out := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroupResponse(g))
	}
	response.Data(w, http.StatusOK, map[string]any{
		"groups": out,
		"total":  total,
		"page":   page,
	})
}

func (h *Handler) AddGroupMember(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	groupID, err := uuidParam(r, "groupID")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid groupID", nil)
		return
	}

	var req struct {
		ContactID string `json:"contact_id"`
		Chair     bool   `json:"chair"`
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

	gm, err := h.Groups.AddMember(r.Context(), act, groupID, contactID, req.Chair)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, map[string]any{
		"id":         gm.ID.String(),
		"group_id":   gm.GroupID.String(),
		"contact_id": gm.ContactID.String(),
		"chair":      gm.Chair,
		"since":      gm.Since,
	})
}

func (h *Handler) RemoveGroupMember(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	groupID, err := uuidParam(r, "groupID")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid groupID", nil)
		return
	}
	contactID, err := uuidParam(r, "contactID")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid contactID", nil)
		return
	}

	if err := h.Groups.RemoveMember(r.Context(), act, groupID, contactID); err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, map[string]string{"msg": "member removed"})
}

func (h *Handler) ListGroupMembers(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuidParam(r, "groupID")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid groupID", nil)
		return
	}

	members, err := h.Groups.Members(r.Context(), groupID)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(members))
	for i := range members {
		m := members[i]
		entry := map[string]any{
			"id":         m.ID.String(),
			"contact_id": m.ContactID.String(),
			"chair":      m.Chair,
			"since":      m.Since,
		}
		if m.Until != nil {
			entry["until"] = *m.Until
		}
		out = append(out, entry)
	}
	response.Data(w, http.StatusOK, map[string]any{"members": out})
}
