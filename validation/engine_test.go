package validation

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"handwrite/params"
)

var testFonts = Fonts{"hongzhi_handwriting", "cursive_a"}

func validModel() params.Model {
	m := params.Default()
	m.Text = "Hello"
	m.PaperX = 1000
	m.PaperY = 1000
	m.Font = "hongzhi_handwriting"
	m.Margins = params.Margins{Top: 100, Bottom: 100, Left: 50, Right: 50}
	return m
}

type unloadedCatalog struct{}

func (unloadedCatalog) Loaded() bool         { return false }
func (unloadedCatalog) Contains(string) bool { return false }

func fields(errs Errors) []string {
	out := make([]string, 0, len(errs))
	for _, fe := range errs {
		out = append(out, fe.Field)
	}
	return out
}

func TestValidate_ValidMargins(t *testing.T) {
	report := Validate(validModel(), testFonts)
	if !report.OK() {
		t.Fatalf("Validate() errors = %v, pending = %v", report.Errors, report.Pending)
	}
	vm, ok := report.ValidModel()
	if !ok {
		t.Fatal("ValidModel() ok = false")
	}
	if diff := cmp.Diff(validModel(), vm.Model()); diff != "" {
		t.Errorf("ValidModel().Model() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_MarginsEqualPaperRejected(t *testing.T) {
	m := validModel()
	m.Margins = params.Margins{Top: 500, Bottom: 500, Left: 0, Right: 0}

	report := Validate(m, testFonts)

	want := []string{params.FieldMargins}
	if diff := cmp.Diff(want, fields(report.Errors)); diff != "" {
		t.Fatalf("error fields mismatch (-want +got):\n%s", diff)
	}
	if report.Errors[0].Reason != ReasonMarginsExceedPaper {
		t.Errorf("reason = %s, want %s", report.Errors[0].Reason, ReasonMarginsExceedPaper)
	}
	if _, ok := report.ValidModel(); ok {
		t.Error("ValidModel() ok = true for invalid margins")
	}
}

func TestValidate_MarginsBothAxesSingleError(t *testing.T) {
	m := validModel()
	m.Margins = params.Margins{Top: 600, Bottom: 600, Left: 600, Right: 600}

	report := Validate(m, testFonts)
	if len(report.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(report.Errors), report.Errors)
	}
	if fe := report.Errors[0]; fe.Field != params.FieldMargins || fe.Reason != ReasonMarginsExceedPaper {
		t.Errorf("error = %+v", fe)
	}
}

func TestValidate_MarginsRuleSkippedWhenInputsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *params.Model)
		want   []string
	}{
		{
			name:   "paper out of range",
			mutate: func(m *params.Model) { m.PaperX = 50; m.Margins.Left = 900 },
			want:   []string{params.FieldPaperX},
		},
		{
			name:   "negative margin",
			mutate: func(m *params.Model) { m.Margins.Top = -1; m.Margins.Bottom = 2000 },
			want:   []string{FieldMarginTop},
		},
		{
			name:   "infinite margin",
			mutate: func(m *params.Model) { m.Margins.Right = math.Inf(1) },
			want:   []string{FieldMarginRight},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validModel()
			tt.mutate(&m)
			report := Validate(m, testFonts)
			if diff := cmp.Diff(tt.want, fields(report.Errors)); diff != "" {
				t.Errorf("error fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	m := validModel()
	m.Text = "   "
	m.PaperY = 6000
	m.FontSize = 0
	m.LineSpacing = math.NaN()
	m.WordSpacing = 101
	m.Perturbation.Rotation = 1.5
	m.Perturbation.XOffset = -1
	m.FontColor = params.Color{R: 256, A: 1}
	m.Rate = 65
	m.Font = "missing"

	report := Validate(m, testFonts)

	want := []string{
		params.FieldText,
		params.FieldPaperY,
		params.FieldFontSize,
		params.FieldLineSpacing,
		params.FieldWordSpacing,
		params.FieldFontColor,
		FieldPerturbXOffset,
		FieldPerturbRotation,
		params.FieldRate,
		params.FieldFont,
	}
	if diff := cmp.Diff(want, fields(report.Errors)); diff != "" {
		t.Fatalf("error fields mismatch (-want +got):\n%s", diff)
	}

	reasons := map[string]Reason{}
	for _, fe := range report.Errors {
		reasons[fe.Field] = fe.Reason
	}
	if reasons[params.FieldText] != ReasonRequired {
		t.Errorf("text reason = %s, want Required", reasons[params.FieldText])
	}
	if reasons[params.FieldLineSpacing] != ReasonOutOfRange {
		t.Errorf("line_spacing reason = %s, want OutOfRange", reasons[params.FieldLineSpacing])
	}
	if reasons[params.FieldFont] != ReasonNotInCatalog {
		t.Errorf("font reason = %s, want NotInCatalog", reasons[params.FieldFont])
	}
}

func TestValidate_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *params.Model)
		ok     bool
	}{
		{"paper at minimum", func(m *params.Model) { m.PaperX, m.PaperY = 100, 100; m.Margins = params.Margins{} }, true},
		{"paper at maximum", func(m *params.Model) { m.PaperX, m.PaperY = 5000, 5000 }, true},
		{"paper below minimum", func(m *params.Model) { m.PaperX = 99.9 }, false},
		{"font size range", func(m *params.Model) { m.FontSize = 200 }, true},
		{"word spacing zero", func(m *params.Model) { m.WordSpacing = 0 }, true},
		{"perturbation at max", func(m *params.Model) {
			m.Perturbation = params.Perturbation{LineSpacing: 10, FontSize: 10, WordSpacing: 10, XOffset: 10, YOffset: 10, Rotation: 1}
		}, true},
		{"rate at max", func(m *params.Model) { m.Rate = 64 }, true},
		{"rate zero", func(m *params.Model) { m.Rate = 0 }, false},
		{"translucent colors", func(m *params.Model) { m.Background.A = 0.25 }, true},
		{"alpha above one", func(m *params.Model) { m.Background.A = 1.01 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validModel()
			tt.mutate(&m)
			report := Validate(m, testFonts)
			if report.OK() != tt.ok {
				t.Errorf("OK() = %v, want %v (errors: %v)", report.OK(), tt.ok, report.Errors)
			}
		})
	}
}

func TestValidate_FontPending(t *testing.T) {
	for name, catalog := range map[string]FontCatalog{
		"nil catalog":      nil,
		"unloaded catalog": unloadedCatalog{},
	} {
		t.Run(name, func(t *testing.T) {
			report := Validate(validModel(), catalog)

			if len(report.Errors) != 0 {
				t.Errorf("Errors = %v, want none", report.Errors)
			}
			if !report.IsPending(params.FieldFont) {
				t.Errorf("Pending = %v, want font pending", report.Pending)
			}
			if report.OK() {
				t.Error("OK() = true while font pending")
			}
			if !errors.Is(report.Err(), ErrPending) {
				t.Errorf("Err() = %v, want ErrPending", report.Err())
			}
			if _, ok := report.ValidModel(); ok {
				t.Error("ValidModel() ok = true while font pending")
			}
		})
	}
}

func TestValidate_EmptyFontRequiredEvenWhenPending(t *testing.T) {
	m := validModel()
	m.Font = ""

	report := Validate(m, nil)
	fe, ok := report.Errors.Field(params.FieldFont)
	if !ok || fe.Reason != ReasonRequired {
		t.Errorf("font error = %+v, %v, want Required", fe, ok)
	}
	if report.IsPending(params.FieldFont) {
		t.Error("empty font should not be pending")
	}
}

func TestValidate_Pure(t *testing.T) {
	m := validModel()
	m.Rate = 100
	first := Validate(m, testFonts)
	second := Validate(m, testFonts)
	if diff := cmp.Diff(first.Errors, second.Errors); diff != "" {
		t.Errorf("repeated Validate() differs (-first +second):\n%s", diff)
	}
}

func TestReport_ErrAs(t *testing.T) {
	m := validModel()
	m.Text = ""
	err := Validate(m, testFonts).Err()

	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("Err() = %T, want Errors", err)
	}
	if len(errs) != 1 || errs[0].Field != params.FieldText {
		t.Errorf("Errors = %v", errs)
	}
}

func TestValidModel_ZeroValue(t *testing.T) {
	var vm ValidModel
	if !vm.IsZero() {
		t.Error("zero ValidModel IsZero() = false")
	}
}
