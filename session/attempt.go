package session

import (
	"context"
	"errors"
	"time"

	"handwrite/handwriteapi"
	"handwrite/params"
)

// Attempt outcomes.
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Attempt is one submission that reached the generation service.
type Attempt struct {
	CorrelationID string
	Model         params.Model
	Status        string
	PageCount     int
	ErrorCode     string
	ErrorMessage  string
	Duration      time.Duration
	StartedAt     time.Time
}

// Recorder persists attempts. A recording failure is logged and never fails
// the submission.
type Recorder interface {
	RecordAttempt(ctx context.Context, a Attempt) error
}

// newAttempt builds the record for a finished Generate call.
func newAttempt(id string, m params.Model, started time.Time, result handwriteapi.Result, err error) Attempt {
	a := Attempt{
		CorrelationID: id,
		Model:         m,
		Status:        StatusSuccess,
		PageCount:     result.PageCount,
		Duration:      time.Since(started),
		StartedAt:     started,
	}
	if err == nil {
		return a
	}

	a.Status = StatusFailed
	a.PageCount = 0
	a.ErrorMessage = err.Error()
	if errors.Is(err, context.Canceled) {
		a.Status = StatusCancelled
	}
	var genErr *handwriteapi.GenerationError
	if errors.As(err, &genErr) {
		a.ErrorCode = genErr.Code
		a.ErrorMessage = genErr.Message
	}
	return a
}
