package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sobhihamadi/paint-by-number-microservice/internal/domain"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/infra"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/sqlinline"
)

// GenerationRepositoryPG implements domain.Store backed by PostgreSQL.
type GenerationRepositoryPG struct {
	sql   infra.SQLExecutor
	close func()
}

// NewGenerationRepository creates a repository that runs its statements
// through sql. closeFn releases the underlying pool and may be nil.
func NewGenerationRepository(sql infra.SQLExecutor, closeFn func()) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{sql: sql, close: closeFn}
}

// Init creates the generation_requests table and its indexes.
func (r *GenerationRepositoryPG) Init(ctx context.Context) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QCreateGenerationSchema); err != nil {
		return &domain.StorageError{Op: "init", Err: err}
	}
	return nil
}

func (r *GenerationRepositoryPG) Ping(ctx context.Context) error {
	var one int
	if err := r.sql.QueryRow(ctx, sqlinline.QPing).Scan(&one); err != nil {
		return &domain.StorageError{Op: "ping", Err: err}
	}
	return nil
}

func (r *GenerationRepositoryPG) Close() {
	if r.close != nil {
		r.close()
	}
}

// Create inserts a new generation request.
func (r *GenerationRepositoryPG) Create(ctx context.Context, req *domain.GenerationRequest) (string, error) {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertGeneration,
		req.ID,
		req.OriginalFilename,
		req.OriginalImagePath,
		req.ColorCount.String(),
		string(req.Difficulty),
		string(req.Status),
		req.ClientSessionID,
		req.CreatedAt,
		req.OutputPath,
		req.ErrorMessage,
		req.CompletedAt,
	)
	if err != nil {
		if infra.IsUniqueViolation(err) {
			return "", fmt.Errorf("generation request %s: %w", req.ID, domain.ErrAlreadyExists)
		}
		return "", &domain.StorageError{Op: "create", Err: err}
	}
	return req.ID, nil
}

// Get fetches a generation request by its identifier.
func (r *GenerationRepositoryPG) Get(ctx context.Context, id string) (*domain.GenerationRequest, error) {
	req, err := scanGeneration(r.sql.QueryRow(ctx, sqlinline.QSelectGenerationByID, id))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("generation request %s: %w", id, domain.ErrNotFound)
		}
		return nil, &domain.StorageError{Op: "get", Err: err}
	}
	return req, nil
}

func (r *GenerationRepositoryPG) ListAll(ctx context.Context) ([]domain.GenerationRequest, error) {
	return r.list(ctx, "list", sqlinline.QListGenerations)
}

// Update overwrites status, output path, error message and completion time.
func (r *GenerationRepositoryPG) Update(ctx context.Context, req *domain.GenerationRequest) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateGeneration,
		req.ID,
		string(req.Status),
		req.OutputPath,
		req.ErrorMessage,
		req.CompletedAt,
	)
	if err != nil {
		return &domain.StorageError{Op: "update", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("generation request %s: %w", req.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *GenerationRepositoryPG) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var count int64
	if err := r.sql.QueryRow(ctx, sqlinline.QCountGenerationsBySession, sessionID).Scan(&count); err != nil {
		return 0, &domain.StorageError{Op: "count", Err: err}
	}
	return int(count), nil
}

func (r *GenerationRepositoryPG) ListBySession(ctx context.Context, sessionID string) ([]domain.GenerationRequest, error) {
	return r.list(ctx, "list by session", sqlinline.QListGenerationsBySession, sessionID)
}

func (r *GenerationRepositoryPG) ListByStatus(ctx context.Context, status domain.GenerationStatus) ([]domain.GenerationRequest, error) {
	return r.list(ctx, "list by status", sqlinline.QListGenerationsByStatus, string(status))
}

func (r *GenerationRepositoryPG) list(ctx context.Context, op, query string, args ...any) ([]domain.GenerationRequest, error) {
	rows, err := r.sql.Query(ctx, query, args...)
	if err != nil {
		return nil, &domain.StorageError{Op: op, Err: err}
	}
	defer rows.Close()

	items := make([]domain.GenerationRequest, 0)
	for rows.Next() {
		req, err := scanGeneration(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: op, Err: err}
		}
		items = append(items, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: op, Err: err}
	}
	return items, nil
}

func scanGeneration(row pgx.Row) (*domain.GenerationRequest, error) {
	var (
		rec         generationRecord
		createdAt   time.Time
		completedAt *time.Time
	)
	if err := row.Scan(
		&rec.ID,
		&rec.OriginalFilename,
		&rec.OriginalImagePath,
		&rec.ColorCount,
		&rec.Difficulty,
		&rec.Status,
		&rec.ClientSessionID,
		&createdAt,
		&rec.OutputPath,
		&rec.ErrorMessage,
		&completedAt,
	); err != nil {
		return nil, err
	}
	rec.CreatedAt = createdAt.UTC()
	if completedAt != nil {
		t := completedAt.UTC()
		rec.CompletedAt = &t
	}
	return rec.toDomain()
}

var _ domain.Store = (*GenerationRepositoryPG)(nil)
