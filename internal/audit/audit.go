package audit

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one row of the audit trail. Lifecycle handlers record who did
// what to which transaction; nothing in the request path depends on it.
type Entry struct {
	UserID     *string
	Action     string
	EntityType string
	EntityID   *string
}

// Write records an audit entry; failures are returned so callers can ignore
// them (the trail is best-effort).
func Write(ctx context.Context, db *pgxpool.Pool, e Entry) error {
	if db == nil {
		return nil
	}

	_, err := db.Exec(ctx, `
INSERT INTO audit_logs (user_id, action, entity_type, entity_id)
VALUES ($1, $2, $3, $4)
`, e.UserID, e.Action, e.EntityType, e.EntityID)

	return err
}
