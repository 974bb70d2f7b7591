package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"handwrite/core"
	"handwrite/db"
	"handwrite/fontcatalog"
	"handwrite/handwriteapi"
	"handwrite/logging"
)

type globalFlags struct {
	envFile  string
	apiURL   string
	logLevel string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *core.Config
	configErr  error

	loggerOnce sync.Once
	logger     *logging.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*core.Config, error) {
	c.configOnce.Do(func() {
		if err := core.LoadEnvFile(strings.TrimSpace(c.flags.envFile)); err != nil {
			c.configErr = err
			return
		}
		cfg, err := core.LoadConfig()
		if err != nil {
			c.configErr = err
			return
		}
		if url := strings.TrimSpace(c.flags.apiURL); url != "" {
			cfg.APIURL = strings.TrimRight(url, "/")
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		if level := strings.TrimSpace(c.flags.logLevel); level != "" {
			cfg.LogLevel = level
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// configValue returns the loaded config, nil if loading failed.
func (c *commandContext) configValue() *core.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// ensureLogger builds the logger once. Console output goes to the command's
// stderr so that stdout carries only command output.
func (c *commandContext) ensureLogger(cmd *cobra.Command) (*logging.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		level := logging.ParseLevel(cfg.LogLevel, zapcore.InfoLevel)
		if cfg.DevMode {
			level = zapcore.DebugLevel
		}
		logger, err := logging.New(logging.Options{
			Development: cfg.DevMode,
			Level:       level,
			FilePath:    cfg.LogFile,
			Console:     zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())),
		})
		if err != nil {
			c.loggerErr = fmt.Errorf("initialize logger: %w", err)
			return
		}
		logger.Debug("configuration loaded",
			zap.String("api_url", cfg.APIURL),
			zap.Duration("generate_timeout", cfg.GenerateTimeout),
			zap.Duration("fonts_timeout", cfg.FontsTimeout),
			zap.String("output_dir", cfg.OutputDir),
			zap.Bool("history_enabled", cfg.HistoryEnabled),
			zap.Bool("allow_self_signed_certs", cfg.AllowSelfSignedCerts),
			zap.Bool("dev_mode", cfg.DevMode))
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// services is the set of collaborators a service-facing command needs.
type services struct {
	cfg     *core.Config
	logger  *logging.Logger
	client  *handwriteapi.Client
	catalog *fontcatalog.Catalog
}

func (c *commandContext) services(cmd *cobra.Command) (*services, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger(cmd)
	if err != nil {
		return nil, err
	}

	client := handwriteapi.NewClient(cfg.APIURL,
		handwriteapi.WithHTTPClient(core.GetHTTPClient(cfg, 0)),
		handwriteapi.WithTimeouts(cfg.FontsTimeout, cfg.GenerateTimeout),
		handwriteapi.WithLogger(logger.Named("api")),
	)
	return &services{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		catalog: fontcatalog.New(client, fontcatalog.WithLogger(logger.Named("fonts"))),
	}, nil
}

// openHistory opens the history database and returns a repository over it.
func (c *commandContext) openHistory() (*db.Database, *db.Repository, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	database, err := db.Open(cfg.HistoryDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open history database: %w", err)
	}
	return database, db.NewRepository(database), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
