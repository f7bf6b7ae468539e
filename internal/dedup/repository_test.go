package dedup

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryCheckpoint(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT last_sequence")).
		WithArgs("stats", "s-1").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO event_dedup_checkpoint")).
		WithArgs("stats", "s-1", int64(3)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT last_sequence")).
		WithArgs("stats", "s-1").
		WillReturnRows(mock.NewRows([]string{"last_sequence"}).AddRow(int64(3)))

	repo := NewRepository(mock)

	_, ok, err := repo.GetLastSequence(ctx, "stats", "s-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.UpsertLastSequence(ctx, "stats", "s-1", 3))

	last, ok, err := repo.WithExecutor(mock).GetLastSequence(ctx, "stats", "s-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(3), last)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryNeverMovesBackwards(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, _ := m.GetLastSequence(ctx, "c", "p")
	assert.False(t, ok)

	require.NoError(t, m.UpsertLastSequence(ctx, "c", "p", 5))
	require.NoError(t, m.UpsertLastSequence(ctx, "c", "p", 2))

	last, ok, _ := m.GetLastSequence(ctx, "c", "p")
	assert.True(t, ok)
	assert.Equal(t, int64(5), last)

	_, ok, _ = m.GetLastSequence(ctx, "other", "p")
	assert.False(t, ok)
}
