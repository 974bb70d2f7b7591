package handwriteapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrRequestInFlight is returned by Generate when the client is already
// waiting on a generation request. The call is rejected, not queued.
var ErrRequestInFlight = errors.New("handwriteapi: a generation request is already in flight")

// ErrNotValidated is returned when Generate receives a ValidModel that did not
// come from a validation report.
var ErrNotValidated = errors.New("handwriteapi: model was not validated")

// Generation error codes.
const (
	ErrCodeFontNotFound    = "font_not_found"
	ErrCodeInvalidRequest  = "invalid_request"
	ErrCodeServiceError    = "service_error"
	ErrCodeTransportError  = "transport_error"
	ErrCodeInvalidResponse = "invalid_response"
)

// GenerationError reports a failed generate call. No partial result is
// produced alongside it.
type GenerationError struct {
	// Code is one of the ErrCode constants.
	Code    string
	Message string
	// StatusCode is the HTTP status, zero for transport failures.
	StatusCode int
	// Retryable marks failures a user-triggered resubmit may fix.
	Retryable bool
	Cause     error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// FetchError reports a failed font catalog fetch.
type FetchError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch fonts: %s (%v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch fonts: %s", e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// StatusError carries a non-2xx response. It is the Cause of the
// GenerationError or FetchError built from that response.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Detail)
}

// errorBody matches the service's error envelope. detail is usually a string
// but request validation failures return a list of objects.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationDetail struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

const maxDetailLen = 300

// extractDetail turns an error response body into a one-line message.
func extractDetail(status int, body []byte) string {
	var env errorBody
	if err := json.Unmarshal(body, &env); err == nil && len(env.Detail) > 0 {
		var s string
		if err := json.Unmarshal(env.Detail, &s); err == nil && s != "" {
			return truncate(s)
		}
		var list []validationDetail
		if err := json.Unmarshal(env.Detail, &list); err == nil && len(list) > 0 {
			parts := make([]string, 0, len(list))
			for _, d := range list {
				loc := make([]string, 0, len(d.Loc))
				for _, l := range d.Loc {
					loc = append(loc, fmt.Sprint(l))
				}
				parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(loc, "."), d.Msg))
			}
			return truncate(strings.Join(parts, "; "))
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return truncate(text)
	}
	return http.StatusText(status)
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxDetailLen {
		return s
	}
	return s[:maxDetailLen] + "..."
}

// generationErrorForStatus maps a non-2xx generate response to a GenerationError.
func generationErrorForStatus(status int, body []byte) *GenerationError {
	detail := extractDetail(status, body)
	cause := &StatusError{StatusCode: status, Detail: detail}
	switch {
	case status == http.StatusNotFound:
		return &GenerationError{Code: ErrCodeFontNotFound, Message: detail, StatusCode: status, Cause: cause}
	case status >= 500:
		return &GenerationError{Code: ErrCodeServiceError, Message: detail, StatusCode: status, Retryable: true, Cause: cause}
	default:
		return &GenerationError{Code: ErrCodeInvalidRequest, Message: detail, StatusCode: status, Cause: cause}
	}
}
