package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool used by repositories.
// pgxmock.PgxPoolIface satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ReferenceRepositoryInterface defines operations for session reference data access
type ReferenceRepositoryInterface interface {
	Upsert(ctx context.Context, ref *domain.FaceReference) error
	GetBySession(ctx context.Context, sessionID string) (*domain.FaceReference, error)
	Delete(ctx context.Context, sessionID string) error
}
