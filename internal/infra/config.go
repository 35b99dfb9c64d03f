package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProcessorTransportHTTP = "http"
	ProcessorTransportAMQP = "amqp"

	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	CreditLimit int

	ProcessorTransport string
	ProcessorURL       string
	ProcessorTimeout   time.Duration
	AMQPURL            string
	AMQPExchange       string
	AMQPRoutingKey     string

	StorageBackend string
	UploadDir      string
	OutputDir      string
	MaxUploadBytes int64
	S3Endpoint     string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UseSSL       bool

	RedisAddr          string
	RedisDB            int
	RateLimitPerMin    int
	GeoIPDBPath        string
	InternalToken      string
	CORSAllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "3000"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		CreditLimit:        getEnvInt("CREDIT_LIMIT", 2),
		ProcessorTransport: strings.ToLower(getEnv("PROCESSOR_TRANSPORT", ProcessorTransportHTTP)),
		ProcessorURL:       getEnv("PROCESSOR_URL", "http://localhost:8000"),
		ProcessorTimeout:   time.Second * time.Duration(getEnvInt("PROCESSOR_TIMEOUT_SECONDS", 10)),
		AMQPURL:            os.Getenv("AMQP_URL"),
		AMQPExchange:       getEnv("AMQP_EXCHANGE", "generation.exchange"),
		AMQPRoutingKey:     getEnv("AMQP_ROUTING_KEY", "generation.requested"),
		StorageBackend:     strings.ToLower(getEnv("STORAGE_BACKEND", StorageBackendLocal)),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		OutputDir:          getEnv("OUTPUT_DIR", "./outputs"),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 10*1024*1024)),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		S3Bucket:           os.Getenv("S3_BUCKET"),
		S3AccessKey:        os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:        os.Getenv("S3_SECRET_KEY"),
		S3UseSSL:           getEnvBool("S3_USE_SSL", false),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		InternalToken:      os.Getenv("INTERNAL_TOKEN"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CreditLimit < 0 {
		return nil, fmt.Errorf("CREDIT_LIMIT must not be negative")
	}

	switch cfg.ProcessorTransport {
	case ProcessorTransportHTTP:
		if cfg.ProcessorURL == "" {
			return nil, fmt.Errorf("PROCESSOR_URL is required")
		}
	case ProcessorTransportAMQP:
		if cfg.AMQPURL == "" {
			return nil, fmt.Errorf("AMQP_URL is required when PROCESSOR_TRANSPORT=amqp")
		}
	default:
		return nil, fmt.Errorf("unsupported PROCESSOR_TRANSPORT %q", cfg.ProcessorTransport)
	}

	switch cfg.StorageBackend {
	case StorageBackendLocal:
	case StorageBackendS3:
		if cfg.S3Endpoint == "" || cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_ENDPOINT and S3_BUCKET are required when STORAGE_BACKEND=s3")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
