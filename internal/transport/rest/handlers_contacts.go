package rest

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/loefbijter/loefsys/internal/domain"
	"github.com/loefbijter/loefsys/internal/service"
	"github.com/loefbijter/loefsys/internal/transport/rest/response"
)

type contactRequest struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Nickname    string `json:"nickname"`
	PhoneNumber string `json:"phone_number"`
}

func (req contactRequest) input() service.ContactInput {
	return service.ContactInput{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Nickname:    req.Nickname,
		PhoneNumber: req.PhoneNumber,
	}
}

type contactResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Nickname    string `json:"nickname,omitempty"`
	DisplayName string `json:"display_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

func toContactResponse(c *domain.Contact) contactResponse {
	return contactResponse{
		ID:          c.ID.String(),
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Nickname:    c.Nickname,
		DisplayName: c.DisplayName(),
		PhoneNumber: c.PhoneNumber,
	}
}

func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	var req contactRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	c, err := h.Contacts.Create(r.Context(), act, req.input())
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toContactResponse(c))
}

func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
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

	var req contactRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	c, err := h.Contacts.Update(r.Context(), act, contactID, req.input())
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toContactResponse(c))
}

func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
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

	c, err := h.Contacts.Get(r.Context(), act, contactID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toContactResponse(c))
}

func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Contacts.Delete(r.Context(), act, contactID); err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, map[string]string{"msg": "contact anonymized"})
}

func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	page, pageSize := pageParams(r)
	contacts, total, err := h.Contacts.List(r.Context(), act, page, pageSize)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	out := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, toContactResponse(c))
	}
	response.Data(w, http.StatusOK, map[string]any{
		"contacts": out,
		"total":    total,
		"page":     page,
	})
}
