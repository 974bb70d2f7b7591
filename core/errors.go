package core

import (
	"errors"
	"fmt"
	"time"
)

// ConfigError is a configuration problem with a hint on how to fix it.
type ConfigError struct {
	Code    string
	Message string
	Action  string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

const (
	ErrCodeEnvFileInvalid    = "ENV_FILE_INVALID"
	ErrCodeInvalidServiceURL = "INVALID_SERVICE_URL"
	ErrCodeInvalidTimeout    = "INVALID_TIMEOUT"
	ErrCodeMissingConfig     = "MISSING_CONFIG"
)

func ErrEnvFileInvalid(path string, cause error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileInvalid,
		Message: fmt.Sprintf("Cannot parse environment file %s", path),
		Action:  "Check the file uses KEY=value lines",
		Cause:   cause,
	}
}

func ErrInvalidServiceURL(url, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidServiceURL,
		Message: fmt.Sprintf("Invalid %s '%s': %s", EnvAPIURL, url, reason),
		Action:  fmt.Sprintf("Set %s to the generation service base URL (e.g., %s)", EnvAPIURL, DefaultAPIURL),
	}
}

func ErrInvalidTimeout(name string, got time.Duration) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidTimeout,
		Message: fmt.Sprintf("%s must be positive, got %s", name, got),
		Action:  fmt.Sprintf("Set %s to a number of seconds such as 60", name),
	}
}

func ErrMissingConfig(name string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", name),
		Action:  fmt.Sprintf("Set %s in your environment or .env file", name),
	}
}

// GetErrorCode returns the ConfigError code anywhere in err's chain.
func GetErrorCode(err error) string {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Code
	}
	return ""
}
