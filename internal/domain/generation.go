package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GenerationStatus enumerates the lifecycle states of a generation request.
type GenerationStatus string

const (
	StatusPending    GenerationStatus = "pending"
	StatusProcessing GenerationStatus = "processing"
	StatusCompleted  GenerationStatus = "completed"
	StatusFailed     GenerationStatus = "failed"
)

// ParseStatus maps the persisted text form back to a GenerationStatus.
func ParseStatus(value string) (GenerationStatus, error) {
	switch s := GenerationStatus(strings.ToLower(strings.TrimSpace(value))); s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return s, nil
	default:
		return "", fmt.Errorf("invalid status %q", value)
	}
}

// IsTerminal reports whether no further transition is allowed from s.
func (s GenerationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Difficulty is the requested puzzle difficulty.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts any letter case.
func ParseDifficulty(value string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(value))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	default:
		return "", fmt.Errorf("invalid difficulty %q", value)
	}
}

// ColorCount is the size of the generated palette.
type ColorCount int

const (
	ColorCount16 ColorCount = 16
	ColorCount32 ColorCount = 32
	ColorCount50 ColorCount = 50
)

// ParseColorCount maps "16", "32" or "50" to a ColorCount.
func ParseColorCount(value string) (ColorCount, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid color count %q", value)
	}
	c := ColorCount(n)
	if !c.Valid() {
		return 0, fmt.Errorf("invalid color count %q", value)
	}
	return c, nil
}

func (c ColorCount) Valid() bool {
	return c == ColorCount16 || c == ColorCount32 || c == ColorCount50
}

func (c ColorCount) Int() int { return int(c) }

func (c ColorCount) String() string { return strconv.Itoa(int(c)) }

// Message stored on a request whose processing could not be started.
const TriggerFailureMessage = "Failed to start processing"

// GenerationRequest tracks one uploaded image through processing. The ID is
// assigned once, before the first write, and never changes.
type GenerationRequest struct {
	ID                string
	OriginalFilename  string
	OriginalImagePath string
	ColorCount        ColorCount
	Difficulty        Difficulty
	Status            GenerationStatus
	ClientSessionID   string
	CreatedAt         time.Time
	OutputPath        *string
	ErrorMessage      *string
	CompletedAt       *time.Time
}

// NewGenerationRequest builds a Pending request stamped with the current time.
func NewGenerationRequest(id, filename, imagePath string, colors ColorCount, difficulty Difficulty, sessionID string) *GenerationRequest {
	return &GenerationRequest{
		ID:                id,
		OriginalFilename:  filename,
		OriginalImagePath: imagePath,
		ColorCount:        colors,
		Difficulty:        difficulty,
		Status:            StatusPending,
		ClientSessionID:   sessionID,
		CreatedAt:         Now(),
	}
}

// Now returns the current UTC time at the precision kept by the stores.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// MarkAsProcessing moves a Pending request to Processing.
func (g *GenerationRequest) MarkAsProcessing() error {
	if g.Status != StatusPending {
		return &TransitionError{ID: g.ID, From: g.Status, To: StatusProcessing}
	}
	g.Status = StatusProcessing
	return nil
}

// MarkAsCompleted moves a Processing request to Completed and records where
// the result was written.
func (g *GenerationRequest) MarkAsCompleted(outputPath string) error {
	if strings.TrimSpace(outputPath) == "" {
		return NewValidationError("Output path is required to mark request as completed", "outputPathRequired")
	}
	if g.Status != StatusProcessing {
		return &TransitionError{ID: g.ID, From: g.Status, To: StatusCompleted}
	}
	now := Now()
	g.Status = StatusCompleted
	g.OutputPath = &outputPath
	g.CompletedAt = &now
	return nil
}

// MarkAsFailed moves a Processing request to Failed and records the reason.
func (g *GenerationRequest) MarkAsFailed(errorMessage string) error {
	if strings.TrimSpace(errorMessage) == "" {
		return NewValidationError("Error message is required to mark request as failed", "errorMessageRequired")
	}
	if g.Status != StatusProcessing {
		return &TransitionError{ID: g.ID, From: g.Status, To: StatusFailed}
	}
	now := Now()
	g.Status = StatusFailed
	g.ErrorMessage = &errorMessage
	g.CompletedAt = &now
	return nil
}

// Validate checks the field invariants tied to status. Stores call it when
// decoding rows so a corrupted record is reported instead of served.
func (g *GenerationRequest) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("generation request: missing id")
	}
	if !g.ColorCount.Valid() {
		return fmt.Errorf("generation request %s: invalid color count %d", g.ID, g.ColorCount)
	}
	if (g.Status == StatusCompleted) != (g.OutputPath != nil) {
		return fmt.Errorf("generation request %s: output path does not match status %s", g.ID, g.Status)
	}
	if (g.Status == StatusFailed) != (g.ErrorMessage != nil) {
		return fmt.Errorf("generation request %s: error message does not match status %s", g.ID, g.Status)
	}
	if g.Status.IsTerminal() != (g.CompletedAt != nil) {
		return fmt.Errorf("generation request %s: completed_at does not match status %s", g.ID, g.Status)
	}
	return nil
}

// Clone returns a deep copy so callers can mutate without aliasing stored values.
func (g *GenerationRequest) Clone() *GenerationRequest {
	if g == nil {
		return nil
	}
	c := *g
	if g.OutputPath != nil {
		v := *g.OutputPath
		c.OutputPath = &v
	}
	if g.ErrorMessage != nil {
		v := *g.ErrorMessage
		c.ErrorMessage = &v
	}
	if g.CompletedAt != nil {
		v := *g.CompletedAt
		c.CompletedAt = &v
	}
	return &c
}
