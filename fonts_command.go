package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newFontsCommand(ctx *commandContext) *cobra.Command {
	var sorted bool

	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "List the fonts offered by the generation service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := ctx.services(cmd)
			if err != nil {
				return err
			}
			defer svc.logger.Sync()

			if err := svc.catalog.Load(cmd.Context()); err != nil {
				return fmt.Errorf("load fonts: %w", err)
			}

			fonts := svc.catalog.Fonts()
			if sorted {
				fonts = svc.catalog.Sorted()
			}
			out := cmd.OutOrStdout()
			if len(fonts) == 0 {
				fmt.Fprintln(out, "The service offers no fonts.")
				return nil
			}
			if !isTerminal(out) {
				for _, font := range fonts {
					fmt.Fprintln(out, font)
				}
				return nil
			}
			rows := make([][]string, 0, len(fonts))
			for i, font := range fonts {
				rows = append(rows, []string{strconv.Itoa(i + 1), font})
			}
			writeTable(out, []string{"#", "FONT"}, rows, []columnAlignment{alignRight, alignLeft})
			return nil
		},
	}
	cmd.Flags().BoolVar(&sorted, "sorted", false, "Sort fonts by name instead of service order")
	return cmd
}
