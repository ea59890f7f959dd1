package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/loefbijter/loefsys/internal/domain"
	"github.com/loefbijter/loefsys/internal/transport/rest/response"
)

type itemRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    string `json:"location"`

	IsReservable    *bool `json:"is_reservable,omitempty"`
	DailyPriceCents int64 `json:"daily_price_cents"`

	BoatType              string  `json:"boat_type,omitempty"`
	PersonCapacity        int     `json:"person_capacity,omitempty"`
	HasEngine             bool    `json:"has_engine,omitempty"`
	Fleet                 string  `json:"fleet,omitempty"`
	RequiredSkippershipID *string `json:"required_skippership_id,omitempty"`
}

type itemResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    string `json:"location"`

	IsReservable    bool  `json:"is_reservable"`
	DailyPriceCents int64 `json:"daily_price_cents"`

	BoatType              string  `json:"boat_type,omitempty"`
	PersonCapacity        int     `json:"person_capacity,omitempty"`
	HasEngine             bool    `json:"has_engine,omitempty"`
	Fleet                 string  `json:"fleet,omitempty"`
	RequiredSkippershipID *string `json:"required_skippership_id,omitempty"`
}

func toItemResponse(it *domain.ReservableItem) itemResponse {
	out := itemResponse{
		ID:              it.ID.String(),
		Name:            it.Name,
		Category:        string(it.Category),
		Description:     it.Description,
		Location:        it.Location,
		IsReservable:    it.IsReservable,
		DailyPriceCents: it.DailyPriceCents,
		BoatType:        it.BoatType,
		PersonCapacity:  it.PersonCapacity,
		HasEngine:       it.HasEngine,
		Fleet:           it.Fleet,
	}
	if it.RequiredSkippershipID != nil {
		s := it.RequiredSkippershipID.String()
		out.RequiredSkippershipID = &s
	}
	return out
}

type reservationResponse struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	ContactID string    `json:"contact_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Created   time.Time `json:"created"`
}

func toReservationResponse(res *domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:        res.ID.String(),
		ItemID:    res.ItemID.String(),
		ContactID: res.ContactID.String(),
		Start:     res.Start,
		End:       res.End,
		Created:   res.Created,
	}
}

func applyItemRequest(it *domain.ReservableItem, req itemRequest) error {
	if req.IsReservable != nil {
		it.IsReservable = *req.IsReservable
	}
	if req.DailyPriceCents < 0 {
		return domain.ErrValidation("daily price must be >= 0")
	}
	it.DailyPriceCents = req.DailyPriceCents
	it.BoatType = req.BoatType
	it.PersonCapacity = req.PersonCapacity
	it.HasEngine = req.HasEngine
	it.Fleet = req.Fleet

	it.RequiredSkippershipID = nil
	if req.RequiredSkippershipID != nil {
		id, err := parseUUIDField(*req.RequiredSkippershipID)
		if err != nil {
			return domain.ErrValidation("invalid required_skippership_id")
		}
		if it.Category != domain.ReservableBoat {
			return domain.ErrValidation("only boats can require a skippership")
		}
		it.RequiredSkippershipID = &id
	}
	return nil
}

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	var req struct {
		ItemID string    `json:"item_id"`
		Start  time.Time `json:"start"`
		End    time.Time `json:"end"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	itemID, err := parseUUIDField(req.ItemID)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid item_id", map[string]string{
			"item_id": "must be a valid uuid",
		})
		return
	}

	res, err := h.Reservations.Reserve(r.Context(), traceID(r), act, itemID, req.Start, req.End)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toReservationResponse(res))
}

func (h *Handler) ItemCalendar(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuidParam(r, "itemID")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid itemID", nil)
		return
	}

	from, to, err := timeRange(r)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "from/to must be RFC3339 timestamps", nil)
		return
	}

	reservations, err := h.Reservations.Calendar(r.Context(), itemID, from, to)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	items := make([]reservationResponse, 0, len(reservations))
	for i := range reservations {
		items = append(items, toReservationResponse(&reservations[i]))
	}
	response.Data(w, http.StatusOK, map[string]any{"reservations": items})
}

func (h *Handler) MyReservations(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	reservations, err := h.Reservations.MyReservations(r.Context(), act.ContactID)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	items := make([]reservationResponse, 0, len(reservations))
	for i := range reservations {
		items = append(items, toReservationResponse(&reservations[i]))
	}
	response.Data(w, http.StatusOK, map[string]any{"reservations": items})
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	var req itemRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	it, err := domain.NewReservableItem(req.Name, domain.ReservableCategory(req.Category), req.Description, req.Location, time.Now().UTC())
	if err != nil {
		handleErr(w, r, err)
		return
	}
	if err := applyItemRequest(it, req); err != nil {
		handleErr(w, r, err)
		return
	}

	if err := h.Reservations.CreateItem(r.Context(), act, it); err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toItemResponse(it))
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	itemID, err := uuidParam(r, "itemID")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid itemID", nil)
		return
	}

	var req itemRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	it, err := h.Reservations.GetItem(r.Context(), itemID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	it.Name = req.Name
	it.Category = domain.ReservableCategory(req.Category)
	it.Description = req.Description
	it.Location = req.Location
	if err := applyItemRequest(it, req); err != nil {
		handleErr(w, r, err)
		return
	}

	if err := h.Reservations.UpdateItem(r.Context(), act, it); err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toItemResponse(it))
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuidParam(r, "itemID")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid itemID", nil)
		return
	}

	it, err := h.Reservations.GetItem(r.Context(), itemID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toItemResponse(it))
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	var category *domain.ReservableCategory
	if c := r.URL.Query().Get("category"); c != "" {
		cat := domain.ReservableCategory(c)
		if !cat.Valid() {
			fail(w, r, http.StatusBadRequest, "request.invalid", "unknown category", nil)
			return
		}
		category = &cat
	}

	items, err := h.Reservations.ListItems(r.Context(), category)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	response.Data(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handler) CreateSkippership(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	sk, err := h.Reservations.CreateSkippership(r.Context(), act, req.Name)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, map[string]string{"id": sk.ID.String(), "name": sk.Name})
}

func (h *Handler) GrantSkippership(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		SkippershipID string `json:"skippership_id"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}
	skippershipID, err := parseUUIDField(req.SkippershipID)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid skippership_id", nil)
		return
	}

	us, err := h.Reservations.GrantSkippership(r.Context(), act, contactID, skippershipID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, map[string]string{
		"id":             us.ID.String(),
		"contact_id":     us.ContactID.String(),
		"skippership_id": us.SkippershipID.String(),
	})
}

func (h *Handler) MySkipperships(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	grants, err := h.Reservations.Skipperships(r.Context(), act.ContactID)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(grants))
	for i := range grants {
		out = append(out, map[string]any{
			"id":             grants[i].ID.String(),
			"skippership_id": grants[i].SkippershipID.String(),
			"since":          grants[i].Since,
		})
	}
	response.Data(w, http.StatusOK, map[string]any{"skipperships": out})
}
