package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSQLInlineQueriesAreMarked(t *testing.T) {
	violations, err := lintPaths([]string{filepath.Join("..", "..", "sqlinline")})
	if err != nil {
		t.Fatalf("lintPaths error: %v", err)
	}
	for _, v := range violations {
		t.Errorf("%s:%d %s (%s)", v.file, v.line, v.message, v.name)
	}
}

func TestLintReportsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	src := "package q\n\n" +
		"const QOk = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;`\n\n" +
		"const QDup = `--sql 11111111-2222-4333-8444-555555555555\nselect 2;`\n\n" +
		"const QBare = `select 3;`\n\n" +
		"const notSQL = `hello world`\n"
	path := filepath.Join(dir, "q.go")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	violations, err := lintPaths([]string{dir})
	if err != nil {
		t.Fatalf("lintPaths error: %v", err)
	}
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %+v", violations)
	}
	var names []string
	for _, v := range violations {
		names = append(names, v.name+": "+v.message)
	}
	joined := strings.Join(names, "\n")
	if !strings.Contains(joined, "QBare: missing") || !strings.Contains(joined, "QDup: marker") {
		t.Fatalf("unexpected violations:\n%s", joined)
	}
}
