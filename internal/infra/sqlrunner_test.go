package infra

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

type recordingPool struct {
	query string
	args  []any
}

func (p *recordingPool) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	p.query = query
	p.args = args
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (p *recordingPool) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	p.query = query
	return errorRow{err: pgx.ErrNoRows}
}

func (p *recordingPool) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	p.query = query
	return nil, errors.New("not implemented")
}

func TestExtractMarker(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		marker  string
		body    string
		wantErr bool
	}{
		{
			name:   "valid",
			query:  "\n--sql 0b6f3c64-93c4-4a41-9c4e-0d5f0f0b1a10\nselect 1;\n",
			marker: "0b6f3c64-93c4-4a41-9c4e-0d5f0f0b1a10",
			body:   "select 1;",
		},
		{name: "missing marker", query: "select 1;", wantErr: true},
		{name: "marker only", query: "--sql 0b6f3c64-93c4-4a41-9c4e-0d5f0f0b1a10", wantErr: true},
		{name: "uppercase uuid", query: "--sql 0B6F3C64-93C4-4A41-9C4E-0D5F0F0B1A10\nselect 1;", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			marker, body, err := extractMarker(tc.query)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("extractMarker error: %v", err)
			}
			if marker != tc.marker || body != tc.body {
				t.Fatalf("extractMarker = (%q, %q), want (%q, %q)", marker, body, tc.marker, tc.body)
			}
		})
	}
}

func TestSQLRunnerStripsMarker(t *testing.T) {
	pool := &recordingPool{}
	runner := NewSQLRunner(pool, zerolog.Nop())
	tag, err := runner.Exec(context.Background(), "--sql 0b6f3c64-93c4-4a41-9c4e-0d5f0f0b1a10\nupdate t set a = $1;", 7)
	if err != nil {
		t.Fatalf("Exec error: %v", err)
	}
	if tag.RowsAffected() != 1 {
		t.Fatalf("rows affected = %d", tag.RowsAffected())
	}
	if pool.query != "update t set a = $1;" {
		t.Fatalf("query forwarded = %q", pool.query)
	}
	if len(pool.args) != 1 || pool.args[0] != 7 {
		t.Fatalf("args forwarded = %#v", pool.args)
	}
}

func TestSQLRunnerRejectsUnmarkedQuery(t *testing.T) {
	pool := &recordingPool{}
	runner := NewSQLRunner(pool, zerolog.Nop())
	if _, err := runner.Exec(context.Background(), "delete from t;"); err == nil {
		t.Fatalf("expected error for unmarked query")
	}
	if pool.query != "" {
		t.Fatalf("unmarked query reached the pool")
	}
	var n int
	if err := runner.QueryRow(context.Background(), "select 1;").Scan(&n); err == nil {
		t.Fatalf("expected error from QueryRow without marker")
	}
}

func TestIsNoRows(t *testing.T) {
	if !IsNoRows(pgx.ErrNoRows) {
		t.Fatalf("pgx.ErrNoRows not detected")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Fatalf("plain error reported as unique violation")
	}
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("unique violation not detected")
	}
}
