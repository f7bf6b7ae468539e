package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/dedup"
)

type executor interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	executor
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Atomically runs fn inside one transaction shared by the stats writes and
// the checkpoint.
func (r *PostgresRepository) Atomically(ctx context.Context, fn func(ctx context.Context, w Writer, cp dedup.Checkpointer) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, postgresWriter{tx}, dedup.NewRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit stats: %w", err)
	}
	return nil
}

type postgresWriter struct {
	exec executor
}

func (w postgresWriter) SessionStarted(ctx context.Context, day time.Time) error {
	_, err := w.exec.Exec(ctx, `
		INSERT INTO kiosk_daily_stats (day, sessions)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET sessions = kiosk_daily_stats.sessions + 1, updated_at = now()
	`, Day(day))
	if err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

func (w postgresWriter) ItemTried(ctx context.Context, day time.Time, productID int, name string) error {
	d := Day(day)
	if _, err := w.exec.Exec(ctx, `
		INSERT INTO kiosk_daily_stats (day, items_tried)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET items_tried = kiosk_daily_stats.items_tried + 1, updated_at = now()
	`, d); err != nil {
		return fmt.Errorf("record try: %w", err)
	}
	if _, err := w.exec.Exec(ctx, `
		INSERT INTO kiosk_item_stats (day, product_id, name, tries)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (day, product_id) DO UPDATE SET tries = kiosk_item_stats.tries + 1, name = EXCLUDED.name
	`, d, productID, name); err != nil {
		return fmt.Errorf("record item try: %w", err)
	}
	return nil
}

func (w postgresWriter) Checkout(ctx context.Context, day time.Time, amount int) error {
	_, err := w.exec.Exec(ctx, `
		INSERT INTO kiosk_daily_stats (day, checkouts, revenue)
		VALUES ($1, 1, $2)
		ON CONFLICT (day) DO UPDATE SET
			checkouts = kiosk_daily_stats.checkouts + 1,
			revenue = kiosk_daily_stats.revenue + EXCLUDED.revenue,
			updated_at = now()
	`, Day(day), int64(amount))
	if err != nil {
		return fmt.Errorf("record checkout: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Overview(ctx context.Context, day time.Time, topN int) (Overview, error) {
	d := Day(day)
	o := Overview{Day: d.Format(time.DateOnly), TopItems: []TopItem{}}

	err := r.pool.QueryRow(ctx, `
		SELECT sessions, items_tried, checkouts, revenue
		FROM kiosk_daily_stats WHERE day = $1
	`, d).Scan(&o.DailyUsers, &o.ItemsTried, &o.Checkouts, &o.Revenue)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Overview{}, fmt.Errorf("select daily stats: %w", err)
	}
	o.CartConversion = conversion(o.Checkouts, o.DailyUsers)

	if topN <= 0 {
		topN = DefaultTopItems
	}
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, name, tries
		FROM kiosk_item_stats WHERE day = $1
		ORDER BY tries DESC, product_id ASC
		LIMIT $2
	`, d, topN)
	if err != nil {
		return Overview{}, fmt.Errorf("select top items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it TopItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Tries); err != nil {
			return Overview{}, fmt.Errorf("scan top item: %w", err)
		}
		o.TopItems = append(o.TopItems, it)
	}
	if err := rows.Err(); err != nil {
		return Overview{}, fmt.Errorf("iterate top items: %w", err)
	}
	return o, nil
}
