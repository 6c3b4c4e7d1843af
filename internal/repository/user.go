package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mitjakurath/klar/internal/domain"
)

// UserRepository handles user directory access.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, display_name, avatar_url, provider, provider_id, created_at, updated_at`

// FindByID retrieves a user by their ID.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id %s: %w", id, err)
	}
	return &user, nil
}

// FindByEmail retrieves a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// UpsertByEmail creates the user or returns the existing record for the
// same email in a single atomic statement, so concurrent first logins
// collapse into one row. Profile fields (display name, avatar) follow the
// latest login; provider and provider_id are written only on insert —
// first provider wins for the life of the record.
func (r *UserRepository) UpsertByEmail(ctx context.Context, user domain.User) (*domain.User, error) {
	var result domain.User
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (id, email, display_name, avatar_url, provider, provider_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (email)
		 DO UPDATE SET display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), users.display_name),
		               avatar_url = COALESCE(EXCLUDED.avatar_url, users.avatar_url),
		               updated_at = NOW()
		 RETURNING `+userColumns,
		user.ID, user.Email, user.DisplayName, user.AvatarURL, user.Provider, user.ProviderID,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("upsert user by email: %w", err)
	}
	return &result, nil
}
