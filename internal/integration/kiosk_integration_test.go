package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/scan"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/sequence"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/stats"
)

func TestKioskIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgC, dbURL := startPostgres(ctx, t)
	defer terminateContainer(t, pgC)

	rabbitC, rabbitURL := startRabbitMQ(ctx, t)
	defer terminateContainer(t, rabbitC)

	logger := log.New(io.Discard, "", log.LstdFlags)
	require.NoError(t, db.RunMigrations(dbURL, logger))
	require.NoError(t, db.RunMigrations(dbURL, logger), "second run is a no-op")

	pool, err := db.NewPool(ctx, dbURL)
	require.NoError(t, err)
	defer pool.Close()

	conn, err := events.Dial(rabbitURL)
	require.NoError(t, err)
	defer conn.Close()

	statsStore := stats.NewPostgresRepository(pool)
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	require.NoError(t, events.StartConsumer(consumerCtx, conn, events.StatsConsumerName, events.StatsHandlers(statsStore, logger), logger))

	sink, err := events.NewAMQPSink(conn)
	require.NoError(t, err)
	defer sink.Close()

	store := session.NewPostgresStore(pool, 30*time.Minute)
	svc := session.NewService(session.Options{
		Store:         store,
		Notifier:      events.NewPublisher(sequence.NewRepository(pool), sink),
		Logger:        logger,
		Scan:          scan.Config{Tick: time.Millisecond, Step: 25, Settle: 10 * time.Millisecond},
		RedirectDelay: time.Hour,
	})
	defer svc.Close()

	srv := httptest.NewServer(httpapi.NewRouter(httpapi.NewHandler(svc, catalog.Default(), statsStore, logger), logger, nil))
	defer srv.Close()
	client := &http.Client{Timeout: 5 * time.Second}

	var sess session.Session
	call(ctx, t, client, http.MethodPost, srv.URL+"/api/kiosk/sessions", nil, http.StatusCreated, &sess)
	base := srv.URL + "/api/kiosk/sessions/" + sess.ID

	call(ctx, t, client, http.MethodPut, base+"/profile", map[string]string{
		"gender": "male", "ageRange": "Adult", "bodyType": "Athletic", "skinTone": "Olive",
	}, http.StatusOK, &sess)
	call(ctx, t, client, http.MethodPost, base+"/selection", map[string]int{"productId": 11}, http.StatusOK, &sess)
	call(ctx, t, client, http.MethodPost, base+"/trial/consent", nil, http.StatusOK, &sess)
	call(ctx, t, client, http.MethodPost, base+"/trial/scan", nil, http.StatusAccepted, &sess)

	require.Eventually(t, func() bool {
		got, err := store.Get(ctx, sess.ID)
		return err == nil && got.TrialStep == session.StepTrial
	}, 10*time.Second, 20*time.Millisecond)

	var view session.TrialView
	call(ctx, t, client, http.MethodPost, base+"/trial/items", map[string]int{"productId": 14}, http.StatusOK, &view)
	require.NotNil(t, view.Focused)
	assert.Equal(t, 14, view.Focused.ID)

	call(ctx, t, client, http.MethodPost, base+"/cart/items", map[string]int{"productId": 11}, http.StatusOK, nil)
	call(ctx, t, client, http.MethodPost, base+"/cart/items", map[string]int{"productId": 14}, http.StatusOK, nil)

	var order session.Order
	call(ctx, t, client, http.MethodPost, base+"/checkout", map[string]string{"fulfillment": "delivery"}, http.StatusOK, &order)
	assert.Equal(t, 2, order.Items)
	assert.Equal(t, 2898, order.TotalAmount)

	// a second service instance sees the persisted session
	other := session.NewService(session.Options{Store: store, Logger: logger})
	defer other.Close()
	restored, err := other.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StageCheckout, restored.Stage)
	require.NotNil(t, restored.Order)
	assert.Equal(t, order.ID, restored.Order.ID)

	require.Eventually(t, func() bool {
		o, err := statsStore.Overview(ctx, time.Now(), stats.DefaultTopItems)
		return err == nil && o.DailyUsers == 1 && o.ItemsTried == 1 && o.Checkouts == 1
	}, 20*time.Second, 100*time.Millisecond)

	var overview stats.Overview
	call(ctx, t, client, http.MethodGet, srv.URL+"/api/admin/stats", nil, http.StatusOK, &overview)
	assert.Equal(t, int64(2898), overview.Revenue)
	assert.Equal(t, 100.0, overview.CartConversion)
	require.Len(t, overview.TopItems, 1)
	assert.Equal(t, 14, overview.TopItems[0].ProductID)

	call(ctx, t, client, http.MethodDelete, base, nil, http.StatusNoContent, nil)
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)

	stopConsumer()
	require.NoError(t, db.RollbackMigrations(dbURL, logger))
}

func call(ctx context.Context, t *testing.T, client *http.Client, method, url string, body any, wantStatus int, out any) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, string(raw))
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out))
	}
}

func startPostgres(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_USER": "postgres", "POSTGRES_DB": "fittingroom"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/fittingroom?sslmode=disable", host, mappedPort.Port())
	return container, dsn
}

func startRabbitMQ(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3-management",
		ExposedPorts: []string{"5672/tcp", "15672/tcp"},
		WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)

	return container, fmt.Sprintf("amqp://guest:guest@%s:%s/", host, mappedPort.Port())
}

func terminateContainer(t *testing.T, c testcontainers.Container) {
	t.Helper()
	terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, c.Terminate(terminateCtx))
}
