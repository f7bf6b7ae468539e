package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/sequence"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/stats"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the kiosk HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, newLogger())
	},
}

func serve(parent context.Context, cfg config.Config, logger *log.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	logger.Printf("fitting-room %s (commit %s, built %s)", buildVersion, buildCommit, buildDate)

	// --- storage ---
	var (
		store      session.Store
		seq        sequence.Sequencer
		statsStore stats.Store
	)
	if cfg.DatabaseDSN != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()

		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				return fmt.Errorf("db migrate: %w", err)
			}
		}

		store = session.NewPostgresStore(pool, cfg.SessionTTL)
		seq = sequence.NewRepository(pool)
		statsStore = stats.NewPostgresRepository(pool)
	} else {
		logger.Printf("no database configured, using in-memory stores")
		store = session.NewMemoryStore(cfg.SessionTTL)
		seq = sequence.NewMemory()
		statsStore = stats.NewMemory()
	}

	// --- events ---
	handlers := events.StatsHandlers(statsStore, logger)
	var sink events.Sink
	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		amqpSink, err := events.NewAMQPSink(conn)
		if err != nil {
			return err
		}
		defer amqpSink.Close()

		if err := events.StartConsumer(ctx, conn, events.StatsConsumerName, handlers, logger); err != nil {
			return fmt.Errorf("start consumer: %w", err)
		}
		sink = amqpSink
	} else {
		logger.Printf("no broker configured, delivering events in process")
		bus := events.NewLocalBus()
		for key, h := range handlers {
			bus.Subscribe(key, h)
		}
		sink = bus
	}

	// --- service ---
	cat := catalog.Default()
	svc := session.NewService(session.Options{
		Catalog:       cat,
		Store:         store,
		Notifier:      events.NewPublisher(seq, sink),
		Logger:        logger,
		Scan:          cfg.Scan,
		RedirectDelay: cfg.RedirectDelay,
	})
	defer svc.Close()

	waitPurger := func() {}
	if p, ok := store.(session.Purger); ok {
		waitPurger = startPurger(ctx, p, cfg.PurgeInterval, logger)
	}

	// --- HTTP ---
	h := httpapi.NewHandler(svc, cat, statsStore, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(h, logger, cfg.CORSAllowOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Printf("shutdown signal: %s", sig)
	case err := <-errCh:
		logger.Printf("fatal error: %v", err)
		runErr = err
	case <-ctx.Done():
		logger.Printf("shutdown: %v", ctx.Err())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	cancel()
	// the pool closes on return; no purge may still be running against it.
	waitPurger()

	logger.Printf("shutdown complete")
	return runErr
}

// startPurger runs purgeExpired in the background. The returned func blocks
// until the loop has exited after ctx is cancelled.
func startPurger(ctx context.Context, p session.Purger, every time.Duration, logger *log.Logger) func() {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		purgeExpired(ctx, p, every, logger)
	}()
	return wg.Wait
}

func purgeExpired(ctx context.Context, p session.Purger, every time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				logger.Printf("purge expired sessions: %v", err)
				continue
			}
			if n > 0 {
				logger.Printf("purged %d expired sessions", n)
			}
		}
	}
}
