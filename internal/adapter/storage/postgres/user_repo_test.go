package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"ledger-api/internal/core/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser() *domain.User {
	return &domain.User{
		Username:     "alice",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$salt$hash",
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestUserRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.Username, u.PasswordHash, u.Role, u.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_Duplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.Username, u.PasswordHash, u.Role, u.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.Create(context.Background(), u)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestUserRepo_GetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE username").
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"username", "password_hash", "role", "created_at"}).
			AddRow(u.Username, u.PasswordHash, u.Role, u.CreatedAt))

	result, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.RoleUser, result.Role)
	assert.Equal(t, u.PasswordHash, result.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByUsername_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM users WHERE username").
		WithArgs("nobody").
		WillReturnRows(pgxmock.NewRows([]string{"username", "password_hash", "role", "created_at"}))

	result, err := repo.GetByUsername(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestUserRepo_Delete_StillOwnsAccounts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM users WHERE username").
		WithArgs("alice").
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "accounts_owner_id_fkey"})

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Delete(context.Background(), dbTx, "alice")
	assert.True(t, errors.Is(err, domain.ErrForeignKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Delete_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM users").
		WithArgs("ghost").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Delete(context.Background(), dbTx, "ghost")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
