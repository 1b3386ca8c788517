//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/database"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/domain"
)

func setupIntegrationTest(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	ctx := context.Background()

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
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/vision_test?sslmode=disable", host, port.Port())

	_, err = database.MigrateUp(ctx, connStr, nil)
	require.NoError(t, err)

	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(connStr))
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func TestReferenceRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewReferenceRepository(db)

	ref := &domain.FaceReference{
		SessionID: "session-int",
		Embedding: testEmbedding(),
		Meta:      domain.ReferenceMeta{Method: "arcface", Model: "r100"},
	}
	require.NoError(t, repo.Upsert(ctx, ref))
	firstID := ref.ID

	got, err := repo.GetBySession(ctx, "session-int")
	require.NoError(t, err)
	assert.Equal(t, firstID, got.ID)
	assert.InDeltaSlice(t, ref.Embedding, got.Embedding, 1e-6)

	t.Run("upsert replaces the embedding for the same session", func(t *testing.T) {
		replaced := &domain.FaceReference{
			SessionID: "session-int",
			Embedding: domain.ZeroEmbedding(),
			Meta:      domain.ReferenceMeta{Method: "mock", Model: "sha256"},
		}
		require.NoError(t, repo.Upsert(ctx, replaced))
		assert.Equal(t, firstID, replaced.ID)

		got, err := repo.GetBySession(ctx, "session-int")
		require.NoError(t, err)
		assert.Equal(t, "mock", got.Meta.Method)
		assert.Equal(t, 0.0, got.Embedding[0])
	})

	t.Run("delete removes the reference", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "session-int"))
		_, err := repo.GetBySession(ctx, "session-int")
		assert.ErrorIs(t, err, domain.ErrReferenceNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "session-int"), domain.ErrReferenceNotFound)
	})
}
