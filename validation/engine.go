// Package validation checks a parameter model snapshot before it is sent to
// the generation service.
//
// Per-field rules live in a declarative table and every rule runs, so one
// pass reports every problem at once. The margins-vs-paper rule runs only when
// the paper size and all four margins passed their own checks. The engine is
// pure: no I/O, no state between calls.
package validation

import (
	"fmt"
	"math"
	"strings"

	"handwrite/params"
)

// Field names for the individual margin and perturbation components.
const (
	FieldMarginTop    = params.FieldMargins + ".top"
	FieldMarginBottom = params.FieldMargins + ".bottom"
	FieldMarginLeft   = params.FieldMargins + ".left"
	FieldMarginRight  = params.FieldMargins + ".right"

	FieldPerturbLineSpacing = params.FieldPerturbation + ".line_spacing"
	FieldPerturbFontSize    = params.FieldPerturbation + ".font_size"
	FieldPerturbWordSpacing = params.FieldPerturbation + ".word_spacing"
	FieldPerturbXOffset     = params.FieldPerturbation + ".x_offset"
	FieldPerturbYOffset     = params.FieldPerturbation + ".y_offset"
	FieldPerturbRotation    = params.FieldPerturbation + ".rotation"
)

// Field bounds, inclusive.
const (
	MinPaper       = 100
	MaxPaper       = 5000
	MinFontSize    = 1
	MaxFontSize    = 200
	MinLineSpacing = 1
	MaxLineSpacing = 200
	MinWordSpacing = 0
	MaxWordSpacing = 100
	MaxPerturb     = 10
	MaxRotation    = 1
	MinRate        = 1
	MaxRate        = 64
)

// FontCatalog is the view of the font list the engine needs. A catalog that
// has not loaded yet makes the font field pending instead of invalid.
type FontCatalog interface {
	Loaded() bool
	Contains(font string) bool
}

// Fonts is a loaded, fixed catalog.
type Fonts []string

func (f Fonts) Loaded() bool { return true }

func (f Fonts) Contains(font string) bool {
	for _, name := range f {
		if name == font {
			return true
		}
	}
	return false
}

// rule is one row of the per-field table. check returns an empty reason when
// the field is valid.
type rule struct {
	field string
	check func(m params.Model) (Reason, string)
}

// Engine evaluates the rule table. The zero value is not usable; use NewEngine.
type Engine struct {
	rules []rule
}

// NewEngine builds an engine with the standard rule table.
func NewEngine() *Engine {
	return &Engine{rules: defaultRules()}
}

var defaultEngine = NewEngine()

// Validate checks m against the standard rules and fonts.
func Validate(m params.Model, fonts FontCatalog) Report {
	return defaultEngine.Validate(m, fonts)
}

// Validate checks every field of m. A nil fonts behaves like a catalog that
// has not loaded.
func (e *Engine) Validate(m params.Model, fonts FontCatalog) Report {
	report := Report{model: m}
	failed := make(map[string]bool, len(e.rules))

	for _, r := range e.rules {
		if reason, msg := r.check(m); reason != "" {
			report.Errors = append(report.Errors, FieldError{Field: r.field, Reason: reason, Message: msg})
			failed[r.field] = true
		}
	}

	if fe, pending := checkFont(m.Font, fonts); pending {
		report.Pending = append(report.Pending, params.FieldFont)
	} else if fe != nil {
		report.Errors = append(report.Errors, *fe)
	}

	marginInputs := []string{
		params.FieldPaperX, params.FieldPaperY,
		FieldMarginTop, FieldMarginBottom, FieldMarginLeft, FieldMarginRight,
	}
	for _, f := range marginInputs {
		if failed[f] {
			return report
		}
	}
	if fe := checkMarginsFit(m); fe != nil {
		report.Errors = append(report.Errors, *fe)
	}
	return report
}

func checkFont(font string, fonts FontCatalog) (*FieldError, bool) {
	if strings.TrimSpace(font) == "" {
		return &FieldError{Field: params.FieldFont, Reason: ReasonRequired, Message: "a font must be selected"}, false
	}
	if fonts == nil || !fonts.Loaded() {
		return nil, true
	}
	if !fonts.Contains(font) {
		return &FieldError{
			Field:   params.FieldFont,
			Reason:  ReasonNotInCatalog,
			Message: fmt.Sprintf("font %q is not offered by the service", font),
		}, false
	}
	return nil, false
}

// checkMarginsFit requires a printable area on both axes. Equality leaves
// none and is rejected.
func checkMarginsFit(m params.Model) *FieldError {
	var problems []string
	if horizontal := m.Margins.Left + m.Margins.Right; !(horizontal < m.PaperX) {
		problems = append(problems, fmt.Sprintf("left+right (%g) must be less than paper_x (%g)", horizontal, m.PaperX))
	}
	if vertical := m.Margins.Top + m.Margins.Bottom; !(vertical < m.PaperY) {
		problems = append(problems, fmt.Sprintf("top+bottom (%g) must be less than paper_y (%g)", vertical, m.PaperY))
	}
	if len(problems) == 0 {
		return nil
	}
	return &FieldError{
		Field:   params.FieldMargins,
		Reason:  ReasonMarginsExceedPaper,
		Message: strings.Join(problems, "; "),
	}
}

func defaultRules() []rule {
	return []rule{
		{params.FieldText, func(m params.Model) (Reason, string) {
			if strings.TrimSpace(m.Text) == "" {
				return ReasonRequired, "text must not be empty"
			}
			return "", ""
		}},
		{params.FieldPaperX, between(func(m params.Model) float64 { return m.PaperX }, MinPaper, MaxPaper)},
		{params.FieldPaperY, between(func(m params.Model) float64 { return m.PaperY }, MinPaper, MaxPaper)},
		{params.FieldFontSize, between(func(m params.Model) float64 { return m.FontSize }, MinFontSize, MaxFontSize)},
		{params.FieldLineSpacing, between(func(m params.Model) float64 { return m.LineSpacing }, MinLineSpacing, MaxLineSpacing)},
		{params.FieldWordSpacing, between(func(m params.Model) float64 { return m.WordSpacing }, MinWordSpacing, MaxWordSpacing)},
		{FieldMarginTop, atLeastZero(func(m params.Model) float64 { return m.Margins.Top })},
		{FieldMarginBottom, atLeastZero(func(m params.Model) float64 { return m.Margins.Bottom })},
		{FieldMarginLeft, atLeastZero(func(m params.Model) float64 { return m.Margins.Left })},
		{FieldMarginRight, atLeastZero(func(m params.Model) float64 { return m.Margins.Right })},
		{params.FieldBackground, colorInRange(func(m params.Model) params.Color { return m.Background })},
		{params.FieldFontColor, colorInRange(func(m params.Model) params.Color { return m.FontColor })},
		{FieldPerturbLineSpacing, between(func(m params.Model) float64 { return m.Perturbation.LineSpacing }, 0, MaxPerturb)},
		{FieldPerturbFontSize, between(func(m params.Model) float64 { return m.Perturbation.FontSize }, 0, MaxPerturb)},
		{FieldPerturbWordSpacing, between(func(m params.Model) float64 { return m.Perturbation.WordSpacing }, 0, MaxPerturb)},
		{FieldPerturbXOffset, between(func(m params.Model) float64 { return m.Perturbation.XOffset }, 0, MaxPerturb)},
		{FieldPerturbYOffset, between(func(m params.Model) float64 { return m.Perturbation.YOffset }, 0, MaxPerturb)},
		{FieldPerturbRotation, between(func(m params.Model) float64 { return m.Perturbation.Rotation }, 0, MaxRotation)},
		{params.FieldRate, func(m params.Model) (Reason, string) {
			if m.Rate < MinRate || m.Rate > MaxRate {
				return ReasonOutOfRange, fmt.Sprintf("must be between %d and %d, got %d", MinRate, MaxRate, m.Rate)
			}
			return "", ""
		}},
	}
}

func between(get func(params.Model) float64, lo, hi float64) func(params.Model) (Reason, string) {
	return func(m params.Model) (Reason, string) {
		v := get(m)
		if !finite(v) || v < lo || v > hi {
			return ReasonOutOfRange, fmt.Sprintf("must be between %g and %g, got %g", lo, hi, v)
		}
		return "", ""
	}
}

func atLeastZero(get func(params.Model) float64) func(params.Model) (Reason, string) {
	return func(m params.Model) (Reason, string) {
		v := get(m)
		if !finite(v) || v < 0 {
			return ReasonOutOfRange, fmt.Sprintf("must be a non-negative number, got %g", v)
		}
		return "", ""
	}
}

func colorInRange(get func(params.Model) params.Color) func(params.Model) (Reason, string) {
	return func(m params.Model) (Reason, string) {
		c := get(m)
		if c != c.Clamped() {
			return ReasonOutOfRange, fmt.Sprintf("channels must be 0-255 and alpha 0-1, got %s", describeColor(c))
		}
		return "", ""
	}
}

func describeColor(c params.Color) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.R, c.G, c.B, c.A)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
