package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sobhihamadi/paint-by-number-microservice/internal/domain"
)

// Fixed width keeps lexical order equal to chronological order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

const sqliteColumns = `id, original_filename, original_image_path, color_count, difficulty,
status, client_session_id, created_at, output_path, error_message, completed_at`

// GenerationRepositorySQLite implements domain.Store on an embedded SQLite
// database. It is meant for local runs without a Postgres server.
type GenerationRepositorySQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database file at path. ":memory:" keeps
// everything in process.
func OpenSQLite(ctx context.Context, path string) (*GenerationRepositorySQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serialises writers; one connection also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &GenerationRepositorySQLite{db: db}, nil
}

func (r *GenerationRepositorySQLite) Init(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS generation_requests (
			id TEXT PRIMARY KEY,
			original_filename TEXT NOT NULL,
			original_image_path TEXT NOT NULL,
			color_count TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			status TEXT NOT NULL,
			client_session_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			output_path TEXT,
			error_message TEXT,
			completed_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS generation_requests_session_idx ON generation_requests (client_session_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS generation_requests_created_idx ON generation_requests (created_at);`,
	}
	for _, q := range queries {
		if _, err := r.db.ExecContext(ctx, q); err != nil {
			return &domain.StorageError{Op: "init", Err: err}
		}
	}
	return nil
}

func (r *GenerationRepositorySQLite) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return &domain.StorageError{Op: "ping", Err: err}
	}
	return nil
}

func (r *GenerationRepositorySQLite) Close() {
	_ = r.db.Close()
}

func (r *GenerationRepositorySQLite) Create(ctx context.Context, req *domain.GenerationRequest) (string, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO generation_requests (`+sqliteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID,
		req.OriginalFilename,
		req.OriginalImagePath,
		req.ColorCount.String(),
		string(req.Difficulty),
		string(req.Status),
		req.ClientSessionID,
		formatSQLiteTime(req.CreatedAt),
		nullString(req.OutputPath),
		nullString(req.ErrorMessage),
		nullSQLiteTime(req.CompletedAt),
	)
	if err != nil {
		if isSQLiteConstraint(err) {
			return "", fmt.Errorf("generation request %s: %w", req.ID, domain.ErrAlreadyExists)
		}
		return "", &domain.StorageError{Op: "create", Err: err}
	}
	return req.ID, nil
}

func (r *GenerationRepositorySQLite) Get(ctx context.Context, id string) (*domain.GenerationRequest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM generation_requests WHERE id = ?`, id)
	req, err := scanSQLiteGeneration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("generation request %s: %w", id, domain.ErrNotFound)
		}
		return nil, &domain.StorageError{Op: "get", Err: err}
	}
	return req, nil
}

func (r *GenerationRepositorySQLite) ListAll(ctx context.Context) ([]domain.GenerationRequest, error) {
	return r.list(ctx, "list", `SELECT `+sqliteColumns+` FROM generation_requests ORDER BY created_at DESC, rowid DESC`)
}

func (r *GenerationRepositorySQLite) Update(ctx context.Context, req *domain.GenerationRequest) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE generation_requests SET status = ?, output_path = ?, error_message = ?, completed_at = ? WHERE id = ?`,
		string(req.Status),
		nullString(req.OutputPath),
		nullString(req.ErrorMessage),
		nullSQLiteTime(req.CompletedAt),
		req.ID,
	)
	if err != nil {
		return &domain.StorageError{Op: "update", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &domain.StorageError{Op: "update", Err: err}
	}
	if n == 0 {
		return fmt.Errorf("generation request %s: %w", req.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *GenerationRepositorySQLite) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generation_requests WHERE client_session_id = ?`, sessionID).Scan(&count); err != nil {
		return 0, &domain.StorageError{Op: "count", Err: err}
	}
	return count, nil
}

func (r *GenerationRepositorySQLite) ListBySession(ctx context.Context, sessionID string) ([]domain.GenerationRequest, error) {
	return r.list(ctx, "list by session",
		`SELECT `+sqliteColumns+` FROM generation_requests WHERE client_session_id = ? ORDER BY created_at DESC, rowid DESC`, sessionID)
}

func (r *GenerationRepositorySQLite) ListByStatus(ctx context.Context, status domain.GenerationStatus) ([]domain.GenerationRequest, error) {
	return r.list(ctx, "list by status",
		`SELECT `+sqliteColumns+` FROM generation_requests WHERE status = ? ORDER BY created_at DESC, rowid DESC`, string(status))
}

func (r *GenerationRepositorySQLite) list(ctx context.Context, op, query string, args ...any) ([]domain.GenerationRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.StorageError{Op: op, Err: err}
	}
	defer rows.Close()

	items := make([]domain.GenerationRequest, 0)
	for rows.Next() {
		req, err := scanSQLiteGeneration(rows)
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

type sqlScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteGeneration(row sqlScanner) (*domain.GenerationRequest, error) {
	var (
		rec                  generationRecord
		createdAt            string
		outputPath, errorMsg sql.NullString
		completedAt          sql.NullString
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
		&outputPath,
		&errorMsg,
		&completedAt,
	); err != nil {
		return nil, err
	}
	t, err := time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = t.UTC()
	if outputPath.Valid {
		rec.OutputPath = &outputPath.String
	}
	if errorMsg.Valid {
		rec.ErrorMessage = &errorMsg.String
	}
	if completedAt.Valid {
		t, err := time.Parse(sqliteTimeLayout, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		t = t.UTC()
		rec.CompletedAt = &t
	}
	return rec.toDomain()
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func nullSQLiteTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatSQLiteTime(*t), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func isSQLiteConstraint(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}

var _ domain.Store = (*GenerationRepositorySQLite)(nil)
