package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"handwrite/db"
	"handwrite/pages"
	"handwrite/session"
	"handwrite/validation"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		model     modelFlags
		outputDir string
		thumbSize int
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the text and write one image per page",
		Long: "Generate validates the parameters, sends them to the generation service and writes\n" +
			"page-<n>.png files into the output directory. Press Ctrl-C once to cancel the request.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := model.buildStore(cmd)
			if err != nil {
				return err
			}
			svc, err := ctx.services(cmd)
			if err != nil {
				return err
			}
			defer svc.logger.Sync()

			opts := []session.Option{
				session.WithLogger(svc.logger),
				session.WithNotifier(consoleNotifier{out: cmd.ErrOrStderr()}),
			}
			if svc.cfg.HistoryEnabled && !noHistory {
				database, repo, err := ctx.openHistory()
				if err != nil {
					svc.logger.Warn("history disabled for this run", zap.Error(err))
				} else {
					defer database.Close()
					opts = append(opts, session.WithRecorder(db.NewHistoryRecorder(repo)))
				}
			}
			sess := session.New(store, svc.catalog, svc.client, opts...)

			if err := sess.LoadFonts(cmd.Context()); err != nil {
				return fmt.Errorf("load fonts: %w", err)
			}

			result, err := sess.Submit(cmd.Context())
			if err != nil {
				var fieldErrs validation.Errors
				if errors.As(err, &fieldErrs) {
					printFieldErrors(cmd.OutOrStdout(), validation.Report{Errors: fieldErrs})
					return &invalidParamsError{Errors: fieldErrs}
				}
				if errors.Is(err, context.Canceled) {
					return err
				}
				return fmt.Errorf("generate: %w", err)
			}

			decoded, err := pages.Decode(result)
			if err != nil {
				return err
			}
			dir := svc.cfg.OutputDir
			if strings.TrimSpace(outputDir) != "" {
				dir = outputDir
			}
			writerOpts := []pages.WriterOption{pages.WithWriterLogger(svc.logger.Named("pages"))}
			if thumbSize > 0 {
				writerOpts = append(writerOpts, pages.WithThumbnails(thumbSize))
			}
			paths, err := pages.NewWriter(dir, writerOpts...).Write(cmd.Context(), decoded)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, path := range paths {
				fmt.Fprintln(out, path)
			}
			return nil
		},
	}
	model.register(cmd.Flags(), true)
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides HANDWRITE_OUTPUT_DIR)")
	cmd.Flags().IntVar(&thumbSize, "thumbnails", 0, "Also write thumbnails whose longest side is this many pixels")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the history database")
	return cmd
}
