package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/milpress/provisioner/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// ProfileRepository provides access to admin_profiles.
type ProfileRepository interface {
	// FindByID returns a profile by id, or nil if no row exists.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.AdminProfile, error)

	// Upsert inserts or updates a profile keyed by id (conflict target = id).
	Upsert(ctx context.Context, db DBTX, profile *domain.AdminProfile) error

	// Delete removes a profile row by id.
	Delete(ctx context.Context, db DBTX, id uuid.UUID) error
}

// ActivityLogRepository provides access to admin_activity_logs.
type ActivityLogRepository interface {
	// Insert appends one audit entry.
	Insert(ctx context.Context, db DBTX, entry *domain.ActivityLogEntry) error
}
