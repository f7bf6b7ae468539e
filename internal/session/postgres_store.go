package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool is the subset of *pgxpool.Pool the store needs.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	pool DBPool
	ttl  time.Duration
	now  func() time.Time
}

func NewPostgresStore(pool DBPool, ttl time.Duration) *PostgresStore {
	return &PostgresStore{pool: pool, ttl: ttl, now: time.Now}
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `
		SELECT state FROM kiosk_sessions
		WHERE id = $1 AND expires_at > $2
	`, id, p.now().UTC()).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select session %s: %w", id, err)
	}
	return decode(id, data)
}

func (p *PostgresStore) Save(ctx context.Context, s *Session) error {
	data, err := encode(s)
	if err != nil {
		return err
	}

	now := p.now().UTC()
	_, err = p.pool.Exec(ctx, `
		INSERT INTO kiosk_sessions (id, state, version, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			version = EXCLUDED.version,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
	`, s.ID, data, s.Version, now.Add(p.ttl), now)
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", s.ID, err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM kiosk_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (p *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM kiosk_sessions WHERE expires_at <= $1`, p.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
