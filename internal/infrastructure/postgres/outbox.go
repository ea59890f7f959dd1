package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Routing keys published through the outbox. External collaborators (mail,
// conscribo sync) bind to these; the core never waits on them.
const (
	rkRegistrationCreated   = "registration.created"
	rkRegistrationCancelled = "registration.cancelled"
	rkRegistrationPromoted  = "registration.promoted"
	rkReservationCreated    = "reservation.created"
	rkMembershipStarted     = "membership.started"
)

// insertOutbox stages a message inside the caller's transaction so it commits
// or rolls back together with the business write.
func insertOutbox(ctx context.Context, tx pgx.Tx, traceID, routingKey string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO outbox (message_id, trace_id, routing_key, payload, occurred_at, status)
		VALUES ($1, $2, $3, $4, NOW(), 'pending')
	`, uuid.New(), traceID, routingKey, body)
	return err
}
