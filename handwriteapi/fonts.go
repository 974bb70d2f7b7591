package handwriteapi

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ListFonts fetches the font identifiers the service can render, in service
// order. Any failure is a *FetchError.
func (c *Client) ListFonts(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, c.fontsTimeout)
	defer cancel()

	requestID := c.requestID(ctx)
	log := c.logger.With(zap.String("request_id", requestID))

	status, body, err := c.do(ctx, http.MethodGet, FontsPath, requestID, nil)
	if err != nil {
		log.Warn("font catalog request failed", zap.Error(err))
		return nil, &FetchError{StatusCode: status, Message: "request failed", Cause: err}
	}
	if !isSuccess(status) {
		detail := extractDetail(status, body)
		log.Warn("font catalog request rejected", zap.Int("status", status), zap.String("detail", detail))
		return nil, &FetchError{
			StatusCode: status,
			Message:    detail,
			Cause:      &StatusError{StatusCode: status, Detail: detail},
		}
	}

	var payload struct {
		Fonts *[]string `json:"fonts"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &FetchError{StatusCode: status, Message: "invalid response body", Cause: err}
	}
	if payload.Fonts == nil {
		return nil, &FetchError{StatusCode: status, Message: "response has no fonts field"}
	}

	fonts := *payload.Fonts
	log.Debug("font catalog fetched", zap.Int("count", len(fonts)))
	return fonts, nil
}
