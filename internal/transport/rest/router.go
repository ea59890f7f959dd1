package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/loefbijter/loefsys/internal/domain"
	"github.com/loefbijter/loefsys/internal/security"
)

type RouterDeps struct {
	Cache    domain.CacheRepository
	Handler  *Handler
	Verifier security.AccessTokenVerifier

	JWTIssuer string

	RateLimitEnabled bool
	RateLimit        int
	RateLimitWindow  time.Duration
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Handler == nil {
		panic("rest.NewRouter: nil handler")
	}
	if d.Verifier == nil {
		panic("rest.NewRouter: nil verifier")
	}

	r := chi.NewRouter()

	// Request ID + structured access log
	r.Use(RequestID)
	r.Use(HTTPLogger)

	// Panic recovery
	r.Use(middleware.Recoverer)

	// Cross-cutting
	if d.RateLimitEnabled && d.Cache != nil {
		r.Use(RateLimitMiddleware(d.Cache, d.RateLimit, d.RateLimitWindow))
	}
	r.Use(SecurityHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(d.Verifier, AuthOptions{ExpectedIssuer: d.JWTIssuer}))

		h := d.Handler

		// events
		r.Post("/events", h.CreateEvent)
		r.Get("/events", h.ListEvents)
		r.Get("/events/slug/{slug}", h.GetEventBySlug)
		r.Get("/events/{eventID}", h.GetEvent)
		r.Put("/events/{eventID}", h.UpdateEvent)
		r.Post("/events/{eventID}/publish", h.PublishEvent)
		r.Get("/me/events", h.ListMyEvents)

		// registrations
		r.Post("/events/{eventID}/registrations", h.Register)
		r.Delete("/registrations/{registrationID}", h.CancelRegistration)
		r.Put("/registrations/{registrationID}/paid", h.MarkRegistrationPaid)
		r.Get("/me/registrations", h.MyRegistrations)
		r.Get("/events/{eventID}/registrations/me", h.MyEventRegistration)
		r.Get("/events/{eventID}/participants", h.Participants)
		r.Get("/events/{eventID}/waitlist", h.Waitlist)
		r.Get("/events/{eventID}/stats", h.EventStats)

		// reservations
		r.Post("/reservations", h.CreateReservation)
		r.Get("/me/reservations", h.MyReservations)
		r.Post("/items", h.CreateItem)
		r.Get("/items", h.ListItems)
		r.Get("/items/{itemID}", h.GetItem)
		r.Put("/items/{itemID}", h.UpdateItem)
		r.Get("/items/{itemID}/reservations", h.ItemCalendar)
		r.Post("/skipperships", h.CreateSkippership)
		r.Get("/me/skipperships", h.MySkipperships)
		r.Post("/contacts/{contactID}/skipperships", h.GrantSkippership)

		// memberships
		r.Post("/memberships", h.StartMembership)
		r.Put("/memberships/{membershipID}/end", h.EndMembership)
		r.Get("/contacts/{contactID}/memberships", h.MembershipHistory)

		// groups
		r.Post("/groups", h.CreateGroup)
		r.Get("/groups", h.ListGroups)
		r.Get("/groups/{groupID}", h.GetGroup)
		r.Put("/groups/{groupID}", h.UpdateGroup)
		r.Post("/groups/{groupID}/members", h.AddGroupMember)
		r.Delete("/groups/{groupID}/members/{contactID}", h.RemoveGroupMember)
		r.Get("/groups/{groupID}/members", h.ListGroupMembers)

		// contacts
		r.Post("/contacts", h.CreateContact)
		r.Get("/contacts", h.ListContacts)
		r.Get("/contacts/{contactID}", h.GetContact)
		r.Put("/contacts/{contactID}", h.UpdateContact)
		r.Delete("/contacts/{contactID}", h.DeleteContact)
	})

	return r
}
