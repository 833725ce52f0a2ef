package dedup

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_GetLastSequence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM event_dedup_checkpoint`).
		WithArgs("consumer", "cart-1").
		WillReturnRows(pgxmock.NewRows([]string{"last_sequence"}).AddRow(int64(7)))

	last, ok, err := NewRepository(mock).GetLastSequence(context.Background(), "consumer", "cart-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), last)
}

func TestRepository_GetLastSequenceMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM event_dedup_checkpoint`).
		WithArgs("consumer", "cart-1").
		WillReturnError(pgx.ErrNoRows)

	last, ok, err := NewRepository(mock).GetLastSequence(context.Background(), "consumer", "cart-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, last)
}

func TestRepository_UpsertLastSequence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO event_dedup_checkpoint`).
		WithArgs("consumer", "cart-1", int64(8)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewRepository(mock).UpsertLastSequence(context.Background(), "consumer", "cart-1", 8))
	require.NoError(t, mock.ExpectationsWereMet())
}
