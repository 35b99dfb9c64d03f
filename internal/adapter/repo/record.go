package repo

import (
	"fmt"
	"time"

	"github.com/sobhihamadi/paint-by-number-microservice/internal/domain"
)

// generationRecord is the persisted row shape: enums are stored as text.
type generationRecord struct {
	ID                string
	OriginalFilename  string
	OriginalImagePath string
	ColorCount        string
	Difficulty        string
	Status            string
	ClientSessionID   string
	CreatedAt         time.Time
	OutputPath        *string
	ErrorMessage      *string
	CompletedAt       *time.Time
}

func (r generationRecord) toDomain() (*domain.GenerationRequest, error) {
	colors, err := domain.ParseColorCount(r.ColorCount)
	if err != nil {
		return nil, fmt.Errorf("row %s: %w", r.ID, err)
	}
	difficulty, err := domain.ParseDifficulty(r.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("row %s: %w", r.ID, err)
	}
	status, err := domain.ParseStatus(r.Status)
	if err != nil {
		return nil, fmt.Errorf("row %s: %w", r.ID, err)
	}
	req := &domain.GenerationRequest{
		ID:                r.ID,
		OriginalFilename:  r.OriginalFilename,
		OriginalImagePath: r.OriginalImagePath,
		ColorCount:        colors,
		Difficulty:        difficulty,
		Status:            status,
		ClientSessionID:   r.ClientSessionID,
		CreatedAt:         r.CreatedAt,
		OutputPath:        r.OutputPath,
		ErrorMessage:      r.ErrorMessage,
		CompletedAt:       r.CompletedAt,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
