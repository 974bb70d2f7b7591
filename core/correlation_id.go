package core

import "github.com/google/uuid"

// NewCorrelationID returns a random id that ties a request to its log lines,
// its X-Request-ID header and its history row.
func NewCorrelationID() string {
	return uuid.NewString()
}
