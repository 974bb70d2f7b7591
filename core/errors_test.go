package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestConfigError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		contains []string
	}{
		{
			name:     "with action",
			err:      &ConfigError{Code: "X", Message: "Bad value", Action: "Fix it"},
			contains: []string{"Bad value", "Fix it"},
		},
		{
			name:     "without action",
			err:      &ConfigError{Code: "X", Message: "Bad value"},
			contains: []string{"Bad value"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("Error() = %q, expected to contain %q", msg, s)
				}
			}
		})
	}
}

func TestConfigErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		code     string
		contains string
	}{
		{"invalid url", ErrInvalidServiceURL("ftp://x", "bad scheme"), ErrCodeInvalidServiceURL, EnvAPIURL},
		{"invalid timeout", ErrInvalidTimeout(EnvTimeout, -time.Second), ErrCodeInvalidTimeout, EnvTimeout},
		{"missing config", ErrMissingConfig(EnvOutputDir), ErrCodeMissingConfig, EnvOutputDir},
		{"env file", ErrEnvFileInvalid(".env", errors.New("boom")), ErrCodeEnvFileInvalid, ".env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("Error() = %q, expected to contain %q", tt.err.Error(), tt.contains)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	wrapped := fmt.Errorf("startup: %w", ErrMissingConfig("X"))
	if got := GetErrorCode(wrapped); got != ErrCodeMissingConfig {
		t.Errorf("GetErrorCode(wrapped) = %q, want %q", got, ErrCodeMissingConfig)
	}
	if got := GetErrorCode(errors.New("plain")); got != "" {
		t.Errorf("GetErrorCode(plain) = %q, want empty", got)
	}
}

func TestConfigError_Unwrap(t *testing.T) {
	cause := errors.New("line 3: unexpected character")
	err := ErrEnvFileInvalid(".env", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}
