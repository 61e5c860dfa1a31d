package repository

import (
	"context"

	"github.com/milpress/provisioner/internal/domain"
)

// PgActivityLogRepository implements ActivityLogRepository using pgx.
type PgActivityLogRepository struct{}

// NewPgActivityLogRepository creates a new PgActivityLogRepository.
func NewPgActivityLogRepository() *PgActivityLogRepository {
	return &PgActivityLogRepository{}
}

// Insert appends one audit entry. Details is encoded as jsonb.
func (r *PgActivityLogRepository) Insert(ctx context.Context, db DBTX, entry *domain.ActivityLogEntry) error {
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	_, err := db.Exec(ctx,
		`INSERT INTO admin_activity_logs (actor_id, action, target_type, target_id, details)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.ActorID, entry.Action, entry.TargetType, entry.TargetID, details)
	return err
}
