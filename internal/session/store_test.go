package session

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, &Session{ID: "a", Stage: StageProfile}))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, SnapshotVersion, got.Version)

	now = now.Add(30 * time.Second)
	require.NoError(t, store.Save(ctx, got), "save refreshes the ttl")

	now = now.Add(45 * time.Second)
	_, err = store.Get(ctx, "a")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorePurge(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, &Session{ID: "old"}))
	now = now.Add(50 * time.Second)
	require.NoError(t, store.Save(ctx, &Session{ID: "new"}))
	now = now.Add(20 * time.Second)

	n, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, "new")
	assert.NoError(t, err)
}

func TestSnapshotVersionCompatibility(t *testing.T) {
	tests := map[string]struct {
		version string
		wantErr bool
	}{
		"current":    {version: SnapshotVersion},
		"minor bump": {version: "1.7.2"},
		"major bump": {version: "2.0.0", wantErr: true},
		"zero major": {version: "0.9.0", wantErr: true},
		"garbage":    {version: "soon", wantErr: true},
		"missing":    {version: "", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := json.Marshal(map[string]any{"id": "a", "version": tc.version, "stage": "cart"})
			require.NoError(t, err)

			got, err := decode("a", data)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StageCart, got.Stage)
		})
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Options{})
	sess := startTrial(t, svc, femaleProfile(), 2)
	_, err := svc.AddToCart(ctx, sess.ID, 9)
	require.NoError(t, err)

	sess, err = svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	data, err := encode(sess)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"id", "version", "stage", "trialStep", "profile", "selectedProduct",
		"outfit", "focused", "cart", "addedToCart", "accessibilityMode", "isScanning", "scanProgress",
		"startedAt", "updatedAt"} {
		assert.Contains(t, raw, key)
	}

	back, err := decode(sess.ID, data)
	require.NoError(t, err)
	assert.Equal(t, sess.Outfit.Items(), back.Outfit.Items())
	assert.Equal(t, sess.Cart, back.Cart)
	assert.Equal(t, sess.Profile, back.Profile)
}

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface, time.Time) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	now := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	store := NewPostgresStore(mock, 30*time.Minute)
	store.now = func() time.Time { return now }
	return store, mock, now
}

func TestPostgresStoreSave(t *testing.T) {
	store, mock, now := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kiosk_sessions")).
		WithArgs("s1", pgxmock.AnyArg(), SnapshotVersion, now.Add(30*time.Minute), now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Save(context.Background(), &Session{ID: "s1", Stage: StageCart}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGet(t *testing.T) {
	store, mock, now := newMockStore(t)
	state, err := json.Marshal(Session{ID: "s1", Version: SnapshotVersion, Stage: StageTrial, TrialStep: StepReady})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT state FROM kiosk_sessions")).
		WithArgs("s1", now).
		WillReturnRows(mock.NewRows([]string{"state"}).AddRow(state))

	got, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, StageTrial, got.Stage)
	assert.Equal(t, StepReady, got.TrialStep)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetErrors(t *testing.T) {
	t.Run("missing row", func(t *testing.T) {
		store, mock, _ := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT state FROM kiosk_sessions")).
			WithArgs("s1", pgxmock.AnyArg()).
			WillReturnError(pgx.ErrNoRows)

		_, err := store.Get(context.Background(), "s1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("driver failure is wrapped", func(t *testing.T) {
		store, mock, _ := newMockStore(t)
		boom := errors.New("connection reset")
		mock.ExpectQuery(regexp.QuoteMeta("SELECT state FROM kiosk_sessions")).
			WithArgs("s1", pgxmock.AnyArg()).
			WillReturnError(boom)

		_, err := store.Get(context.Background(), "s1")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestPostgresStoreDeleteAndPurge(t *testing.T) {
	store, mock, now := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kiosk_sessions WHERE id = $1")).
		WithArgs("s1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kiosk_sessions WHERE expires_at <= $1")).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, store.Delete(context.Background(), "s1"))
	n, err := store.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
