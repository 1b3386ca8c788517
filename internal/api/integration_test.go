//go:build integration

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/config"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/database"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/domain"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/face"
)

var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(runWithDatabase(m))
}

func runWithDatabase(m *testing.M) int {
	ctx := context.Background()

	// Start PostgreSQL container with pgvector
	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "vision_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Printf("Failed to start container: %v\n", err)
		return 1
	}

	defer func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate container: %v\n", err)
		}
	}()

	host, _ := container.Host(ctx)
	port, _ := container.MappedPort(ctx, "5432")

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/vision_test?sslmode=disable", host, port.Port())

	if _, err := database.MigrateUp(ctx, connStr, nil); err != nil {
		fmt.Printf("Failed to run migrations: %v\n", err)
		return 1
	}

	testDB, err = database.NewPool(ctx, database.DefaultPoolConfig(connStr))
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		return 1
	}
	defer testDB.Close()

	return m.Run()
}

func newStoreRouter(t *testing.T) *Router {
	t.Helper()

	caps, err := face.NewCapabilities(&config.Config{
		PrimaryModel: "mock",
		FaceDetector: "mock",
		ModelTimeout: time.Second,
	})
	require.NoError(t, err)
	caps.LoadAll(context.Background(), testLogger())

	router := NewRouter(testLogger(), &Dependencies{Capabilities: caps, DB: testDB})
	router.Setup()
	return router
}

func TestIntegration_SessionReferenceLifecycle(t *testing.T) {
	router := newStoreRouter(t)
	img := pngBase64(t, 64, 64)

	status, raw := post(t, router, "/face/reference", map[string]any{"image": img, "sessionId": "session-a"})
	require.Equal(t, 200, status, string(raw))

	var ref domain.Reference
	require.NoError(t, json.Unmarshal(raw, &ref))
	require.NotNil(t, ref.ReferenceID)
	assert.Equal(t, "session-a", ref.SessionID)

	status, raw = post(t, router, "/face/verify", map[string]any{"image": img, "sessionId": "session-a"})
	require.Equal(t, 200, status, string(raw))

	var result domain.VerifyResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.InDelta(t, 1.0, result.MatchScore, 1e-6)
	assert.True(t, result.Verified)

	resp, err := router.App().Test(httptest.NewRequest("DELETE", "/face/reference/session-a", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)

	status, raw = post(t, router, "/face/verify", map[string]any{"image": img, "sessionId": "session-a"})
	assert.Equal(t, 404, status)
	assert.Contains(t, string(raw), "REFERENCE_NOT_FOUND")
}

func TestIntegration_SaveReference(t *testing.T) {
	router := newStoreRouter(t)

	status, raw := post(t, router, "/face/reference/save", map[string]any{
		"sessionId": "session-b",
		"embedding": domain.ZeroEmbedding(),
		"meta":      map[string]string{"method": "facenet", "model": "Facenet512"},
	})
	require.Equal(t, 201, status, string(raw))

	resp, err := router.App().Test(httptest.NewRequest("GET", "/face/reference/session-b", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var stored map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stored))
	assert.Equal(t, map[string]any{"method": "facenet", "model": "Facenet512"}, stored["meta"])

	resp, err = router.App().Test(httptest.NewRequest("GET", "/ready", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
