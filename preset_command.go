package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"handwrite/db"
	"handwrite/params"
)

func newPresetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "preset",
		Short:       "Create and inspect parameter presets",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	cmd.AddCommand(newPresetInitCommand())
	cmd.AddCommand(newPresetShowCommand())
	return cmd
}

func newPresetInitCommand() *cobra.Command {
	var (
		model modelFlags
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init <file.yaml|file.toml>",
		Short: "Write the default parameters, with any flags applied, to a preset file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := params.PresetFormatFromPath(path); err != nil {
				return err
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, os.ErrNotExist) {
					return err
				}
			}

			store, err := model.buildStore(cmd)
			if err != nil {
				return err
			}
			if err := params.SavePreset(path, store.Snapshot()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote preset %s\n", path)
			return nil
		},
	}
	model.register(cmd.Flags(), false)
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newPresetShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print the parameters stored in a preset file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := params.LoadPreset(args[0])
			if err != nil {
				return err
			}
			printModel(cmd.OutOrStdout(), m)
			return nil
		},
	}
}

func printModel(w io.Writer, m params.Model) {
	text := db.Preview(m.Text, 60)
	if text == "" {
		text = "(none)"
	}
	font := m.Font
	if font == "" {
		font = "(unselected)"
	}
	rows := [][]string{
		{"text", text},
		{"font", font},
		{"paper", formatFloat(m.PaperX) + " x " + formatFloat(m.PaperY)},
		{"font_size", formatFloat(m.FontSize)},
		{"line_spacing", formatFloat(m.LineSpacing)},
		{"word_spacing", formatFloat(m.WordSpacing)},
		{"margins", fmt.Sprintf("top %s, bottom %s, left %s, right %s",
			formatFloat(m.Margins.Top), formatFloat(m.Margins.Bottom),
			formatFloat(m.Margins.Left), formatFloat(m.Margins.Right))},
		{"background_color", params.EncodeHex(m.Background)},
		{"font_color", params.EncodeHex(m.FontColor)},
		{"perturbation", fmt.Sprintf("line %s, size %s, word %s, x %s, y %s, rotation %s",
			formatFloat(m.Perturbation.LineSpacing), formatFloat(m.Perturbation.FontSize),
			formatFloat(m.Perturbation.WordSpacing), formatFloat(m.Perturbation.XOffset),
			formatFloat(m.Perturbation.YOffset), formatFloat(m.Perturbation.Rotation))},
		{"rate", strconv.Itoa(m.Rate)},
	}
	writeTable(w, []string{"FIELD", "VALUE"}, rows, nil)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
