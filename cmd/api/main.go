package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sobhihamadi/paint-by-number-microservice/internal/adapter/repo"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/http/handlers"
	httpapi "github.com/sobhihamadi/paint-by-number-microservice/internal/http/httpapi"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/infra"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/infra/geoip"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/middleware"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/processor"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/service"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	store, err := repo.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer store.Close()

	uploads, err := newUploadStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise upload storage")
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.OutputDir).Msg("failed to create output directory")
	}

	trigger, closeTrigger, err := newTrigger(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("transport", cfg.ProcessorTransport).Msg("failed to initialise processor trigger")
	}
	defer closeTrigger()

	var counter middleware.Counter = middleware.NewMemoryCounter()
	rdb, err := infra.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, using in-process rate limiting")
	} else if rdb != nil {
		defer rdb.Close()
		counter = middleware.NewRedisCounter(rdb, "pbn:rl:")
	}

	var lookup middleware.CountryLookup
	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable")
	} else if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	svc := service.NewGenerationService(service.Options{
		Repo:           store,
		Trigger:        trigger,
		Logger:         logger,
		CreditLimit:    cfg.CreditLimit,
		TriggerTimeout: cfg.ProcessorTimeout,
	})

	app := &handlers.App{
		Requests:       svc,
		DB:             store,
		Uploads:        uploads,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
		OutputDir:      cfg.OutputDir,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		InternalToken:  cfg.InternalToken,
		RateCounter:    counter,
		RatePerMinute:  cfg.RateLimitPerMin,
		CountryLookup:  lookup,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("processor", cfg.ProcessorTransport).
			Str("storage", cfg.StorageBackend).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	// In-flight triggers may still need the store for compensation.
	if err := svc.Wait(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("pending processor triggers abandoned")
	}
	logger.Info().Msg("server stopped")
}

func newUploadStore(cfg *infra.Config) (storage.Store, error) {
	if cfg.StorageBackend == infra.StorageBackendS3 {
		return storage.NewS3Store(storage.S3Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			Bucket:    cfg.S3Bucket,
			Prefix:    "uploads",
		})
	}
	return storage.NewFileStore(cfg.UploadDir)
}

func newTrigger(cfg *infra.Config) (processor.Trigger, func(), error) {
	if cfg.ProcessorTransport == infra.ProcessorTransportAMQP {
		pub, err := processor.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			return nil, func() {}, err
		}
		return pub, func() { _ = pub.Close() }, nil
	}
	client := processor.NewHTTPClient(processor.HTTPOptions{
		BaseURL: cfg.ProcessorURL,
		Timeout: cfg.ProcessorTimeout,
	})
	return client, func() {}, nil
}

