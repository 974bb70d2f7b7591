package core

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvAPIURL           = "HANDWRITE_API_URL"
	EnvTimeout          = "HANDWRITE_TIMEOUT"
	EnvFontsTimeout     = "HANDWRITE_FONTS_TIMEOUT"
	EnvAllowSelfSigned  = "ALLOW_SELF_SIGNED_CERTS"
	EnvOutputDir        = "HANDWRITE_OUTPUT_DIR"
	EnvHistoryDB        = "HANDWRITE_HISTORY_DB"
	EnvHistoryEnabled   = "HANDWRITE_HISTORY_ENABLED"
	EnvLogFile          = "HANDWRITE_LOG_FILE"
	EnvLogLevel         = "HANDWRITE_LOG_LEVEL"
	EnvDevMode          = "DEV_MODE"
	DefaultAPIURL       = "http://localhost:8000"
	DefaultOutputDir    = "output"
	DefaultLogFile      = "handwrite.log"
	DefaultLogLevel     = "info"
	defaultTimeoutSec   = 120
	defaultFontsTimeout = 15
)

// Config holds the CLI settings resolved from the environment.
type Config struct {
	// APIURL is the base URL of the generation service, without a trailing slash.
	APIURL string

	// GenerateTimeout bounds one generate call.
	GenerateTimeout time.Duration
	FontsTimeout    time.Duration

	AllowSelfSignedCerts bool

	OutputDir      string
	HistoryDBPath  string
	HistoryEnabled bool

	LogFile  string
	LogLevel string
	DevMode  bool
}

// LoadEnvFile loads path (".env" when empty) into the process environment.
// Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return ErrEnvFileInvalid(path, err)
	}
	return nil
}

// LoadConfig reads Config from the environment and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		APIURL:               strings.TrimRight(strings.TrimSpace(GetEnvOrDefault(EnvAPIURL, DefaultAPIURL)), "/"),
		GenerateTimeout:      ParseDurationEnv(EnvTimeout, defaultTimeoutSec),
		FontsTimeout:         ParseDurationEnv(EnvFontsTimeout, defaultFontsTimeout),
		AllowSelfSignedCerts: ParseBoolEnv(EnvAllowSelfSigned, false),
		OutputDir:            GetEnvOrDefault(EnvOutputDir, DefaultOutputDir),
		HistoryDBPath:        ExpandHome(GetEnvOrDefault(EnvHistoryDB, DefaultHistoryDBPath())),
		HistoryEnabled:       ParseBoolEnv(EnvHistoryEnabled, true),
		LogFile:              os.Getenv(EnvLogFile),
		LogLevel:             GetEnvOrDefault(EnvLogLevel, DefaultLogLevel),
		DevMode:              ParseBoolEnv(EnvDevMode, false),
	}
	if _, set := os.LookupEnv(EnvLogFile); !set {
		cfg.LogFile = DefaultLogFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the service URL and timeouts.
func (c *Config) Validate() error {
	if err := ValidateServiceURL(c.APIURL); err != nil {
		return ErrInvalidServiceURL(c.APIURL, err.Error())
	}
	if c.GenerateTimeout <= 0 {
		return ErrInvalidTimeout(EnvTimeout, c.GenerateTimeout)
	}
	if c.FontsTimeout <= 0 {
		return ErrInvalidTimeout(EnvFontsTimeout, c.FontsTimeout)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return ErrMissingConfig(EnvOutputDir)
	}
	return nil
}

// ValidateServiceURL requires an http or https URL with a host.
func ValidateServiceURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme, got: %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}

// DefaultHistoryDBPath is ~/.handwrite/history.db, or a relative path when
// the home directory is unknown.
func DefaultHistoryDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".handwrite", "history.db")
	}
	return filepath.Join(home, ".handwrite", "history.db")
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
