package handwriteapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"handwrite/validation"
)

// Generate submits a validated model and returns the rendered pages. It
// sends exactly one request and never retries. A call made while another is
// in flight fails with ErrRequestInFlight without touching the network.
// Every other failure is a *GenerationError.
func (c *Client) Generate(ctx context.Context, vm validation.ValidModel) (Result, error) {
	if vm.IsZero() {
		return Result{}, ErrNotValidated
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrRequestInFlight
	}
	defer c.inFlight.Store(false)

	ctx, cancel := withTimeout(ctx, c.generateTimeout)
	defer cancel()

	m := vm.Model()
	requestID := c.requestID(ctx)
	log := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("font", m.Font),
		zap.Int("rate", m.Rate),
	)
	log.Debug("submitting generation request", zap.Int("text_len", len(m.Text)))

	start := time.Now()
	status, body, err := c.do(ctx, http.MethodPost, GeneratePath, requestID, NewGenerateRequest(m))
	if err != nil {
		genErr := &GenerationError{
			Code:       ErrCodeTransportError,
			Message:    "request failed",
			StatusCode: status,
			Retryable:  !errors.Is(err, context.Canceled),
			Cause:      err,
		}
		log.Warn("generation request failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return Result{}, genErr
	}
	if !isSuccess(status) {
		genErr := generationErrorForStatus(status, body)
		log.Warn("generation request rejected",
			zap.Int("status", status),
			zap.String("code", genErr.Code),
			zap.String("detail", genErr.Message))
		return Result{}, genErr
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Result{}, &GenerationError{Code: ErrCodeInvalidResponse, Message: "response body is not valid JSON", StatusCode: status, Cause: err}
	}
	if resp.Images == nil || resp.PageCount == nil {
		return Result{}, &GenerationError{Code: ErrCodeInvalidResponse, Message: "response is missing images or page_count", StatusCode: status}
	}

	result := Result{Images: resp.Images, PageCount: *resp.PageCount}
	log.Info("generation complete",
		zap.Int("page_count", result.PageCount),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}
