package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/loefbijter/loefsys/internal/domain"
	appCtx "github.com/loefbijter/loefsys/internal/pkg/context"
)

// Logger provides structured audit logging for business events.
type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

func (l *Logger) RegistrationCreated(ctx context.Context, eventID, contactID uuid.UUID, status domain.RegistrationStatus) {
	l.log.Info().
		Str("action", "registration_created").
		Str("event_id", eventID.String()).
		Str("contact_id", contactID.String()).
		Str("status", string(status)).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Contact registered for event")
}

func (l *Logger) RegistrationCancelled(ctx context.Context, eventID uuid.UUID, registrationID int64, fined bool) {
	l.log.Info().
		Str("action", "registration_cancelled").
		Str("event_id", eventID.String()).
		Int64("registration_id", registrationID).
		Bool("fined", fined).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Registration cancelled")
}

func (l *Logger) ReservationCreated(ctx context.Context, itemID, contactID uuid.UUID) {
	l.log.Info().
		Str("action", "reservation_created").
		Str("item_id", itemID.String()).
		Str("contact_id", contactID.String()).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Reservation created")
}

func (l *Logger) MembershipStarted(ctx context.Context, contactID uuid.UUID, typ domain.MembershipType) {
	l.log.Info().
		Str("action", "membership_started").
		Str("contact_id", contactID.String()).
		Str("type", string(typ)).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Membership started")
}
