package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sobhihamadi/paint-by-number-microservice/internal/domain"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/infra"
)

// Open returns a store for the given database URL and initialises its schema.
// Supported schemes are postgres:// (or postgresql://), sqlite:// (or file:)
// and memory://. The caller owns the store and must Close it.
func Open(ctx context.Context, databaseURL string, logger zerolog.Logger) (domain.Store, error) {
	store, err := dial(ctx, databaseURL, logger)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func dial(ctx context.Context, databaseURL string, logger zerolog.Logger) (domain.Store, error) {
	dsn := strings.TrimSpace(databaseURL)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		pool, err := infra.NewDBPool(ctx, dsn)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("backend", "postgres").Msg("store: connected")
		return NewGenerationRepository(infra.NewSQLRunner(pool, logger), pool.Close), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return nil, fmt.Errorf("sqlite path is required")
		}
		return openSQLite(ctx, path, logger)
	case strings.HasPrefix(dsn, "file:"):
		return openSQLite(ctx, dsn, logger)
	case strings.HasPrefix(dsn, "memory://"):
		logger.Warn().Str("backend", "memory").Msg("store: requests are not persisted across restarts")
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported database url scheme in %q", redactDSN(dsn))
	}
}

func openSQLite(ctx context.Context, path string, logger zerolog.Logger) (domain.Store, error) {
	store, err := OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("backend", "sqlite").Str("path", path).Msg("store: opened")
	return store, nil
}

// redactDSN drops credentials before a DSN is echoed in an error.
func redactDSN(dsn string) string {
	if at := strings.LastIndex(dsn, "@"); at >= 0 {
		if scheme := strings.Index(dsn, "://"); scheme >= 0 && scheme < at {
			return dsn[:scheme+3] + "***" + dsn[at:]
		}
		return "***" + dsn[at:]
	}
	return dsn
}
