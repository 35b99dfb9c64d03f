package processor

import (
	"context"

	"github.com/sobhihamadi/paint-by-number-microservice/internal/domain"
)

// Job is the payload handed to the external image processor.
type Job struct {
	RequestID  string `json:"request_id"`
	ImagePath  string `json:"image_path"`
	ColorCount int    `json:"color_count"`
	Difficulty string `json:"difficulty"`
}

// JobFor builds the trigger payload for a stored generation request.
func JobFor(req *domain.GenerationRequest) Job {
	return Job{
		RequestID:  req.ID,
		ImagePath:  req.OriginalImagePath,
		ColorCount: req.ColorCount.Int(),
		Difficulty: string(req.Difficulty),
	}
}

// Trigger starts processing of a job. Implementations do not retry.
type Trigger interface {
	TriggerProcessing(ctx context.Context, job Job) error
}
