package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sobhihamadi/paint-by-number-microservice/internal/domain"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/processor"
)

const (
	DefaultCreditLimit    = 2
	defaultTriggerTimeout = 10 * time.Second
	compensationTimeout   = 10 * time.Second
)

// CreateInput carries what the API layer collected for a new request.
type CreateInput struct {
	Filename   string            `validate:"notblank" detail:"filenameRequired"`
	ImagePath  string            `validate:"notblank" detail:"imagePathRequired"`
	ColorCount domain.ColorCount `validate:"oneof=16 32 50" detail:"invalidColorCount"`
	Difficulty domain.Difficulty `validate:"oneof=easy medium hard" detail:"invalidDifficulty"`
	SessionID  string            `validate:"notblank" detail:"sessionIdRequired"`
}

type Options struct {
	Repo           domain.GenerationRepository
	Trigger        processor.Trigger
	Logger         zerolog.Logger
	CreditLimit    int
	TriggerTimeout time.Duration
	// NewID overrides id generation; defaults to uuid v4.
	NewID func() string
}

// GenerationService owns the generation request lifecycle. It is the only
// component that talks to both the store and the processor.
type GenerationService struct {
	repo           domain.GenerationRepository
	trigger        processor.Trigger
	log            zerolog.Logger
	validate       *validator.Validate
	creditLimit    int
	triggerTimeout time.Duration
	newID          func() string

	inflight sync.WaitGroup
}

func NewGenerationService(opts Options) *GenerationService {
	limit := opts.CreditLimit
	if limit <= 0 {
		limit = DefaultCreditLimit
	}
	timeout := opts.TriggerTimeout
	if timeout <= 0 {
		timeout = defaultTriggerTimeout
	}
	newID := opts.NewID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	return &GenerationService{
		repo:           opts.Repo,
		trigger:        opts.Trigger,
		log:            opts.Logger.With().Str("component", "generation_service").Logger(),
		validate:       newValidator(),
		creditLimit:    limit,
		triggerTimeout: timeout,
		newID:          newID,
	}
}

func (s *GenerationService) CreditLimit() int { return s.creditLimit }

// CreateRequest validates the input, enforces the per-session credit limit,
// persists a Pending request and starts processing in the background. The
// returned request is always Pending; trigger failures are never surfaced
// here.
func (s *GenerationService) CreateRequest(ctx context.Context, in CreateInput) (*domain.GenerationRequest, error) {
	in.Difficulty = domain.Difficulty(strings.ToLower(string(in.Difficulty)))
	if err := validateInput(s.validate, createInvalidMessage, in); err != nil {
		return nil, err
	}

	used, err := s.repo.CountBySession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if used >= s.creditLimit {
		return nil, &domain.CreditLimitError{CurrentUsage: used, Limit: s.creditLimit}
	}

	req := domain.NewGenerationRequest(s.newID(), in.Filename, in.ImagePath, in.ColorCount, in.Difficulty, in.SessionID)
	if _, err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("request_id", req.ID).
		Str("session_id", req.ClientSessionID).
		Int("color_count", req.ColorCount.Int()).
		Str("difficulty", string(req.Difficulty)).
		Msg("generation request created")

	s.dispatch(ctx, req.Clone())
	return req, nil
}

// dispatch triggers the processor without blocking the caller. The trigger
// outlives the inbound request but not the configured timeout.
func (s *GenerationService) dispatch(parent context.Context, req *domain.GenerationRequest) {
	if s.trigger == nil {
		s.log.Warn().Str("request_id", req.ID).Msg("no processor configured; request stays pending")
		return
	}
	job := processor.JobFor(req)
	base := context.WithoutCancel(parent)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(base, s.triggerTimeout)
		defer cancel()
		if err := s.trigger.TriggerProcessing(ctx, job); err != nil {
			terr := &domain.TriggerError{RequestID: job.RequestID, Err: err}
			s.log.Error().Err(terr).Str("request_id", job.RequestID).Msg("processor trigger failed")
			s.compensate(base, job.RequestID)
			return
		}
		s.log.Debug().Str("request_id", job.RequestID).Msg("processor triggered")
	}()
}

// compensate drives a request whose trigger failed to Failed. Failed is only
// reachable from Processing, so a still-Pending request passes through
// Processing first; both changes are persisted in one Update.
func (s *GenerationService) compensate(parent context.Context, id string) {
	ctx, cancel := context.WithTimeout(parent, compensationTimeout)
	defer cancel()
	logger := s.log.With().Str("request_id", id).Logger()

	req, err := s.repo.Get(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msg("compensation: load failed")
		return
	}
	switch req.Status {
	case domain.StatusPending:
		if err := req.MarkAsProcessing(); err != nil {
			logger.Error().Err(err).Msg("compensation: transition failed")
			return
		}
	case domain.StatusProcessing:
	default:
		logger.Warn().Str("status", string(req.Status)).Msg("compensation: request already terminal, skipping")
		return
	}
	if err := req.MarkAsFailed(domain.TriggerFailureMessage); err != nil {
		logger.Error().Err(err).Msg("compensation: transition failed")
		return
	}
	if err := s.repo.Update(ctx, req); err != nil {
		logger.Error().Err(err).Msg("compensation: update failed")
		return
	}
	logger.Info().Msg("request marked failed after trigger error")
}

// Wait blocks until background triggers finish or ctx is done.
func (s *GenerationService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *GenerationService) GetRequestByID(ctx context.Context, id string) (*domain.GenerationRequest, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("Request ID is required", "requestIdRequired")
	}
	return s.repo.Get(ctx, id)
}

func (s *GenerationService) GetRequestsBySession(ctx context.Context, sessionID string) ([]domain.GenerationRequest, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, domain.NewValidationError("Client session ID is required", "sessionIdRequired")
	}
	return s.repo.ListBySession(ctx, sessionID)
}

func (s *GenerationService) GetAllRequests(ctx context.Context) ([]domain.GenerationRequest, error) {
	return s.repo.ListAll(ctx)
}

func (s *GenerationService) GetRequestsByStatus(ctx context.Context, status domain.GenerationStatus) ([]domain.GenerationRequest, error) {
	return s.repo.ListByStatus(ctx, status)
}

// GetRemainingCredits returns how many more requests the session may create.
func (s *GenerationService) GetRemainingCredits(ctx context.Context, sessionID string) (int, error) {
	if strings.TrimSpace(sessionID) == "" {
		return 0, domain.NewValidationError("Client session ID is required", "sessionIdRequired")
	}
	used, err := s.repo.CountBySession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return max(0, s.creditLimit-used), nil
}

func (s *GenerationService) MarkAsProcessing(ctx context.Context, id string) (*domain.GenerationRequest, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("Request ID is required", "requestIdRequired")
	}
	return s.transition(ctx, id, func(req *domain.GenerationRequest) error {
		return req.MarkAsProcessing()
	})
}

func (s *GenerationService) MarkAsCompleted(ctx context.Context, id, outputPath string) (*domain.GenerationRequest, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("Request ID is required", "requestIdRequired")
	}
	if strings.TrimSpace(outputPath) == "" {
		return nil, domain.NewValidationError("Output path is required to mark request as completed", "outputPathRequired")
	}
	return s.transition(ctx, id, func(req *domain.GenerationRequest) error {
		return req.MarkAsCompleted(outputPath)
	})
}

func (s *GenerationService) MarkAsFailed(ctx context.Context, id, errorMessage string) (*domain.GenerationRequest, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("Request ID is required", "requestIdRequired")
	}
	if strings.TrimSpace(errorMessage) == "" {
		return nil, domain.NewValidationError("Error message is required to mark request as failed", "errorMessageRequired")
	}
	return s.transition(ctx, id, func(req *domain.GenerationRequest) error {
		return req.MarkAsFailed(errorMessage)
	})
}

func (s *GenerationService) transition(ctx context.Context, id string, apply func(*domain.GenerationRequest) error) (*domain.GenerationRequest, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := req.Status
	if err := apply(req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	s.log.Info().Str("request_id", id).Str("from", string(from)).Str("to", string(req.Status)).Msg("generation request updated")
	return req, nil
}
