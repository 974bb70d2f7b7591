package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"handwrite/core"
	"handwrite/core/preflight"
	"handwrite/db"
)

// minFreeBytes is the free space doctor expects in the output directory.
const minFreeBytes = 100 << 20

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var failFast bool

	cmd := &cobra.Command{
		Use:         "doctor",
		Short:       "Check configuration, the generation service and local storage",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var svc *services
			checks := []preflight.Check{
				{
					Name: "Configuration",
					Run: func(context.Context) (string, error) {
						cfg, err := ctx.ensureConfig()
						if err != nil {
							return "", err
						}
						return cfg.APIURL, nil
					},
				},
				{
					Name:  "Generation service",
					After: "Configuration",
					Run: func(c context.Context) (string, error) {
						var err error
						if svc, err = ctx.services(cmd); err != nil {
							return "", err
						}
						started := time.Now()
						if err := svc.catalog.Load(c); err != nil {
							return "", err
						}
						return fmt.Sprintf("%d fonts available (latency: %v)",
							len(svc.catalog.Fonts()), time.Since(started).Round(time.Millisecond)), nil
					},
				},
				{
					Name:  "Output directory",
					After: "Configuration",
					Run: func(context.Context) (string, error) {
						dir := ctx.configValue().OutputDir
						if err := preflight.CheckWritableDir(dir); err != nil {
							return "", err
						}
						return dir, nil
					},
				},
				{
					Name:  "Disk space",
					After: "Output directory",
					Warn:  true,
					Run: func(context.Context) (string, error) {
						info, err := preflight.CheckDiskSpace(ctx.configValue().OutputDir, minFreeBytes)
						if info == nil {
							return "", err
						}
						return info.String(), err
					},
				},
				{
					Name:  "History database",
					After: "Configuration",
					Run: func(context.Context) (string, error) {
						cfg := ctx.configValue()
						if !cfg.HistoryEnabled {
							return "disabled (" + core.EnvHistoryEnabled + "=false)", nil
						}
						database, err := db.Open(cfg.HistoryDBPath)
						if err != nil {
							return "", err
						}
						defer database.Close()
						version, _, err := database.Version()
						if err != nil {
							return "", err
						}
						return fmt.Sprintf("%s (schema v%d)", cfg.HistoryDBPath, version), nil
					},
				},
			}

			result := preflight.NewSuite("handwrite doctor").
				WithOutput(cmd.OutOrStdout()).
				WithFailFast(failFast).
				Run(cmd.Context(), checks)
			if svc != nil {
				svc.logger.Sync()
			}
			if !result.Success {
				return fmt.Errorf("%s: %w", result.Summary(), result.FirstError())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first failed check")
	return cmd
}
