package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"handwrite/handwriteapi"
	"handwrite/session"
	"handwrite/validation"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var (
		model   modelFlags
		offline bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check parameters without generating",
		Long: "Validate builds the parameter model from the preset and flags and reports every invalid field.\n" +
			"The font is checked against the service's catalog unless --offline is set, in which case it stays pending.",
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

			sess := session.New(store, svc.catalog, svc.client,
				session.WithLogger(svc.logger),
				session.WithNotifier(consoleNotifier{out: cmd.ErrOrStderr()}),
			)
			if !offline {
				// A failure was notified; the font stays pending.
				_ = sess.LoadFonts(cmd.Context())
			}

			out := cmd.OutOrStdout()
			report := sess.Check()
			if asJSON {
				body, err := json.MarshalIndent(handwriteapi.NewGenerateRequest(store.Snapshot()), "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(body))
			}

			if len(report.Errors) > 0 || len(report.Pending) > 0 {
				printFieldErrors(out, report)
			}
			switch err := report.Err(); {
			case err == nil:
				fmt.Fprintln(out, "Parameters are valid.")
				return nil
			case len(report.Errors) > 0:
				return &invalidParamsError{Errors: report.Errors}
			default:
				if offline {
					fmt.Fprintln(out, "All other parameters are valid; the font was not checked.")
					return nil
				}
				return fmt.Errorf("font could not be checked: %w", validation.ErrPending)
			}
		},
	}
	model.register(cmd.Flags(), true)
	cmd.Flags().BoolVar(&offline, "offline", false, "Do not fetch the font catalog")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the request body that would be sent")
	return cmd
}
