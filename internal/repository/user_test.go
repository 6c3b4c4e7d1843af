package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitjakurath/klar/internal/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func userRows(u domain.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "display_name", "avatar_url", "provider", "provider_id", "created_at", "updated_at",
	}).AddRow(u.ID, u.Email, u.DisplayName, u.AvatarURL, u.Provider, u.ProviderID, u.CreatedAt, u.UpdatedAt)
}

func TestUserFindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	id := uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpsertByEmail_ConflictKeepsIdentityFields(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	// Second login via GitHub for an address first seen via Google: the
	// statement's DO UPDATE clause never touches provider columns, so the
	// returned row still carries the Google identity.
	existingID := uuid.New()
	now := time.Now()
	attempt := domain.User{
		ID:          uuid.New(),
		Email:       "a@x.com",
		DisplayName: "A",
		Provider:    domain.AuthProviderGitHub,
		ProviderID:  "gh-1",
	}
	mock.ExpectQuery(`INSERT INTO users .+ ON CONFLICT \(email\)`).
		WithArgs(attempt.ID, attempt.Email, attempt.DisplayName, attempt.AvatarURL, attempt.Provider, attempt.ProviderID).
		WillReturnRows(userRows(domain.User{
			ID:          existingID,
			Email:       "a@x.com",
			DisplayName: "A",
			Provider:    domain.AuthProviderGoogle,
			ProviderID:  "g-1",
			CreatedAt:   now,
			UpdatedAt:   now,
		}))

	got, err := repo.UpsertByEmail(context.Background(), attempt)
	require.NoError(t, err)

	assert.Equal(t, existingID, got.ID)
	assert.Equal(t, domain.AuthProviderGoogle, got.Provider)
	assert.Equal(t, "g-1", got.ProviderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now()
	user := domain.User{
		ID:          uuid.New(),
		Email:       "a@x.com",
		DisplayName: "A",
		Provider:    domain.AuthProviderGoogle,
		ProviderID:  "g-1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(userRows(user))

	got, err := repo.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
