package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/domain"
)

type ReferenceRepository struct {
	pool PgxPool
}

func NewReferenceRepository(pool PgxPool) *ReferenceRepository {
	return &ReferenceRepository{pool: pool}
}

// Upsert stores the reference for a session, replacing any previous one.
// ID, CreatedAt and UpdatedAt are filled from the stored row.
func (r *ReferenceRepository) Upsert(ctx context.Context, ref *domain.FaceReference) error {
	query := `
		INSERT INTO face_references (id, session_id, embedding, method, model, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (session_id) DO UPDATE
		SET embedding = EXCLUDED.embedding,
			method = EXCLUDED.method,
			model = EXCLUDED.model,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		ref.ID,
		ref.SessionID,
		toVector(ref.Embedding),
		ref.Meta.Method,
		ref.Meta.Model,
	).Scan(&ref.ID, &ref.CreatedAt, &ref.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrValidationFailed.WithError(err)
		}
		return fmt.Errorf("upsert reference: %w", err)
	}

	return nil
}

func (r *ReferenceRepository) GetBySession(ctx context.Context, sessionID string) (*domain.FaceReference, error) {
	query := `
		SELECT id, session_id, embedding, method, model, created_at, updated_at
		FROM face_references
		WHERE session_id = $1
	`

	var ref domain.FaceReference
	var embedding *pgvector.Vector

	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&ref.ID,
		&ref.SessionID,
		&embedding,
		&ref.Meta.Method,
		&ref.Meta.Model,
		&ref.CreatedAt,
		&ref.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrReferenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reference by session: %w", err)
	}

	ref.Embedding = fromVector(embedding)

	return &ref, nil
}

func (r *ReferenceRepository) Delete(ctx context.Context, sessionID string) error {
	query := `
		DELETE FROM face_references
		WHERE session_id = $1
	`

	result, err := r.pool.Exec(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("delete reference: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrReferenceNotFound
	}

	return nil
}

var _ ReferenceRepositoryInterface = (*ReferenceRepository)(nil)
