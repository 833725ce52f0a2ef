package customer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO customers`).
		WithArgs(pgxmock.AnyArg(), "Ada Lovelace", "ada@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	repo := NewPostgresRepository(mock)
	c, err := repo.Create(context.Background(), "  Ada Lovelace ", "ADA@example.com")
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Ada Lovelace", c.Name)
	assert.Equal(t, "ada@example.com", c.Email)
	assert.Equal(t, now, c.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateDuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO customers`).
		WithArgs(pgxmock.AnyArg(), "Ada", "ada@example.com").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	repo := NewPostgresRepository(mock)
	_, err = repo.Create(context.Background(), "Ada", "ada@example.com")
	require.ErrorIs(t, err, ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, name, email, created_at, updated_at\s+FROM customers`).
		WithArgs("c1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "created_at", "updated_at"}).
			AddRow("c1", "Ada", "ada@example.com", now, now))

	repo := NewPostgresRepository(mock)
	c, err := repo.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, "Ada", c.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindByIDMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM customers`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepository(mock)
	c, err := repo.FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, c)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindByIDError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM customers`).
		WithArgs("c1").
		WillReturnError(errors.New("db down"))

	repo := NewPostgresRepository(mock)
	_, err = repo.FindByID(context.Background(), "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select customer")
}
