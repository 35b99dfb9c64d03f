package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sobhihamadi/paint-by-number-microservice/internal/domain"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/service"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/storage"
)

// RequestService is the part of the generation service the API needs.
type RequestService interface {
	CreateRequest(ctx context.Context, in service.CreateInput) (*domain.GenerationRequest, error)
	GetRequestByID(ctx context.Context, id string) (*domain.GenerationRequest, error)
	GetRequestsBySession(ctx context.Context, sessionID string) ([]domain.GenerationRequest, error)
	GetAllRequests(ctx context.Context) ([]domain.GenerationRequest, error)
	GetRequestsByStatus(ctx context.Context, status domain.GenerationStatus) ([]domain.GenerationRequest, error)
	GetRemainingCredits(ctx context.Context, sessionID string) (int, error)
	CreditLimit() int
	MarkAsProcessing(ctx context.Context, id string) (*domain.GenerationRequest, error)
	MarkAsCompleted(ctx context.Context, id, outputPath string) (*domain.GenerationRequest, error)
	MarkAsFailed(ctx context.Context, id, errorMessage string) (*domain.GenerationRequest, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Requests       RequestService
	DB             Pinger
	Uploads        storage.Store
	Logger         zerolog.Logger
	MaxUploadBytes int64
	OutputDir      string
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
