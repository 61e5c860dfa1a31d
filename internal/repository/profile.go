package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/milpress/provisioner/internal/domain"
)

// PgProfileRepository implements ProfileRepository using pgx.
type PgProfileRepository struct{}

// NewPgProfileRepository creates a new PgProfileRepository.
func NewPgProfileRepository() *PgProfileRepository {
	return &PgProfileRepository{}
}

// FindByID returns an admin profile, or nil if not found.
func (r *PgProfileRepository) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.AdminProfile, error) {
	row := db.QueryRow(ctx,
		`SELECT id, email, name, role, is_active, created_at, updated_at
		 FROM admin_profiles WHERE id = $1`, id)

	p := &domain.AdminProfile{}
	err := row.Scan(&p.ID, &p.Email, &p.Name, &p.Role, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Upsert inserts or updates a profile row keyed by id.
func (r *PgProfileRepository) Upsert(ctx context.Context, db DBTX, profile *domain.AdminProfile) error {
	_, err := db.Exec(ctx,
		`INSERT INTO admin_profiles (id, email, name, role, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		   email = EXCLUDED.email,
		   name = EXCLUDED.name,
		   role = EXCLUDED.role,
		   is_active = EXCLUDED.is_active,
		   updated_at = now()`,
		profile.ID, profile.Email, profile.Name, profile.Role, profile.IsActive)
	return err
}

// Delete removes a profile row by id.
func (r *PgProfileRepository) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	_, err := db.Exec(ctx, `DELETE FROM admin_profiles WHERE id = $1`, id)
	return err
}
