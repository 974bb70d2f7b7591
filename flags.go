package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"handwrite/params"
	"handwrite/textsource"
)

// modelFlags holds one flag per model field. Only flags the user set are
// applied, on top of the defaults or the preset.
type modelFlags struct {
	preset   string
	text     string
	textFile string
	font     string

	paperX      float64
	paperY      float64
	fontSize    float64
	lineSpacing float64
	wordSpacing float64

	margins      float64
	marginTop    float64
	marginBottom float64
	marginLeft   float64
	marginRight  float64

	background string
	fontColor  string

	perturbLineSpacing float64
	perturbFontSize    float64
	perturbWordSpacing float64
	perturbXOffset     float64
	perturbYOffset     float64
	perturbRotation    float64

	rate string
}

func (f *modelFlags) register(fs *pflag.FlagSet, withPreset bool) {
	if withPreset {
		fs.StringVarP(&f.preset, "preset", "p", "", "Load parameters from a YAML or TOML preset")
	}
	fs.StringVarP(&f.text, "text", "t", "", "Text to render")
	fs.StringVarP(&f.textFile, "text-file", "f", "", "Read the text from a file, a PDF or - for stdin")
	fs.StringVar(&f.font, "font", "", "Font identifier from the catalog")

	fs.Float64Var(&f.paperX, "paper-x", params.DefaultPaperX, "Paper width")
	fs.Float64Var(&f.paperY, "paper-y", params.DefaultPaperY, "Paper height")
	fs.Float64Var(&f.fontSize, "font-size", params.DefaultFontSize, "Font size")
	fs.Float64Var(&f.lineSpacing, "line-spacing", params.DefaultLineSpacing, "Line spacing")
	fs.Float64Var(&f.wordSpacing, "word-spacing", params.DefaultWordSpacing, "Word spacing")

	fs.Float64Var(&f.margins, "margins", params.DefaultMargin, "Set all four margins")
	fs.Float64Var(&f.marginTop, "margin-top", params.DefaultMargin, "Top margin")
	fs.Float64Var(&f.marginBottom, "margin-bottom", params.DefaultMargin, "Bottom margin")
	fs.Float64Var(&f.marginLeft, "margin-left", params.DefaultMargin, "Left margin")
	fs.Float64Var(&f.marginRight, "margin-right", params.DefaultMargin, "Right margin")

	fs.StringVar(&f.background, "background", "", "Background color as hex or name")
	fs.StringVar(&f.fontColor, "font-color", "", "Ink color as hex or name")

	fs.Float64Var(&f.perturbLineSpacing, "perturb-line-spacing", 0, "Line spacing jitter")
	fs.Float64Var(&f.perturbFontSize, "perturb-font-size", 0, "Font size jitter")
	fs.Float64Var(&f.perturbWordSpacing, "perturb-word-spacing", 0, "Word spacing jitter")
	fs.Float64Var(&f.perturbXOffset, "perturb-x-offset", 0, "Horizontal offset jitter")
	fs.Float64Var(&f.perturbYOffset, "perturb-y-offset", 0, "Vertical offset jitter")
	fs.Float64Var(&f.perturbRotation, "perturb-rotation", 0, "Rotation jitter in radians")

	fs.StringVar(&f.rate, "rate", "", "Render scale: 1-64 or a preset x1, x2, x4 ... x64")
}

// buildStore creates a store from the preset (or the defaults) and applies
// every flag that was set.
func (f *modelFlags) buildStore(cmd *cobra.Command) (*params.Store, error) {
	m := params.Default()
	if f.preset != "" {
		loaded, err := params.LoadPreset(f.preset)
		if err != nil {
			return nil, err
		}
		m = loaded
	}
	store := params.NewStore(m)
	if err := f.apply(cmd, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (f *modelFlags) apply(cmd *cobra.Command, store *params.Store) error {
	changed := cmd.Flags().Changed

	switch {
	case changed("text"):
		store.SetText(f.text)
	case changed("text-file"):
		text, err := textsource.Loader{Stdin: cmd.InOrStdin()}.Load(f.textFile)
		if err != nil {
			return err
		}
		store.SetText(text)
	}
	if changed("font") {
		store.SetFont(strings.TrimSpace(f.font))
	}

	if changed("paper-x") {
		store.SetPaperX(f.paperX)
	}
	if changed("paper-y") {
		store.SetPaperY(f.paperY)
	}
	if changed("font-size") {
		store.SetFontSize(f.fontSize)
	}
	if changed("line-spacing") {
		store.SetLineSpacing(f.lineSpacing)
	}
	if changed("word-spacing") {
		store.SetWordSpacing(f.wordSpacing)
	}

	if changed("margins") {
		store.SetMargins(params.Margins{Top: f.margins, Bottom: f.margins, Left: f.margins, Right: f.margins})
	}
	store.UpdateMargins(func(m params.Margins) params.Margins {
		if changed("margin-top") {
			m.Top = f.marginTop
		}
		if changed("margin-bottom") {
			m.Bottom = f.marginBottom
		}
		if changed("margin-left") {
			m.Left = f.marginLeft
		}
		if changed("margin-right") {
			m.Right = f.marginRight
		}
		return m
	})

	if changed("background") {
		if err := store.SetBackgroundHex(f.background); err != nil {
			return fmt.Errorf("--background: %w", err)
		}
	}
	if changed("font-color") {
		if err := store.SetFontColorHex(f.fontColor); err != nil {
			return fmt.Errorf("--font-color: %w", err)
		}
	}

	store.UpdatePerturbation(func(p params.Perturbation) params.Perturbation {
		if changed("perturb-line-spacing") {
			p.LineSpacing = f.perturbLineSpacing
		}
		if changed("perturb-font-size") {
			p.FontSize = f.perturbFontSize
		}
		if changed("perturb-word-spacing") {
			p.WordSpacing = f.perturbWordSpacing
		}
		if changed("perturb-x-offset") {
			p.XOffset = f.perturbXOffset
		}
		if changed("perturb-y-offset") {
			p.YOffset = f.perturbYOffset
		}
		if changed("perturb-rotation") {
			p.Rotation = f.perturbRotation
		}
		return p
	})

	if changed("rate") {
		rate, err := parseRate(f.rate)
		if err != nil {
			return err
		}
		store.SetRate(rate)
	}
	return nil
}

// parseRate accepts a plain integer or one of params.RatePresets. Range
// checks are left to validation.
func parseRate(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if rate, ok := params.RatePresets[s]; ok {
		return rate, nil
	}
	rate, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("--rate: expected an integer or x1..x64, got %q", s)
	}
	return rate, nil
}
