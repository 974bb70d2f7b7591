// Package params holds the handwriting job parameter model.
//
// Model is a plain value: every edit goes through Store, which replaces one
// sub-record at a time so that a snapshot taken for validation is always
// internally consistent. Colors keep alpha as a 0-1 fraction; conversion to
// the 0-255 wire byte happens in the service client.
package params

// Margins are page margins in paper units.
type Margins struct {
	Top    float64 `json:"top" yaml:"top" toml:"top"`
	Bottom float64 `json:"bottom" yaml:"bottom" toml:"bottom"`
	Left   float64 `json:"left" yaml:"left" toml:"left"`
	Right  float64 `json:"right" yaml:"right" toml:"right"`
}

// Perturbation holds the random jitter sigmas applied by the generation
// service. Rotation is in radians, everything else in paper units.
type Perturbation struct {
	LineSpacing float64 `json:"line_spacing" yaml:"line_spacing" toml:"line_spacing"`
	FontSize    float64 `json:"font_size" yaml:"font_size" toml:"font_size"`
	WordSpacing float64 `json:"word_spacing" yaml:"word_spacing" toml:"word_spacing"`
	XOffset     float64 `json:"x_offset" yaml:"x_offset" toml:"x_offset"`
	YOffset     float64 `json:"y_offset" yaml:"y_offset" toml:"y_offset"`
	Rotation    float64 `json:"rotation" yaml:"rotation" toml:"rotation"`
}

// Model is the complete configuration of one rendering job.
type Model struct {
	Text         string
	PaperX       float64
	PaperY       float64
	Font         string
	FontSize     float64
	LineSpacing  float64
	WordSpacing  float64
	Margins      Margins
	Background   Color
	FontColor    Color
	Perturbation Perturbation
	// Rate is the scaling factor the service renders at.
	Rate int
}

// Default values used at session start.
const (
	DefaultPaperX      = 2480
	DefaultPaperY      = 3508
	DefaultMargin      = 200
	DefaultFontSize    = 48
	DefaultLineSpacing = 1.5
	DefaultWordSpacing = 1
	DefaultRate        = 1
)

// Default returns the model a new session starts with. Font is left empty
// until the user picks one from the catalog.
func Default() Model {
	return Model{
		PaperX:      DefaultPaperX,
		PaperY:      DefaultPaperY,
		FontSize:    DefaultFontSize,
		LineSpacing: DefaultLineSpacing,
		WordSpacing: DefaultWordSpacing,
		Margins: Margins{
			Top:    DefaultMargin,
			Bottom: DefaultMargin,
			Left:   DefaultMargin,
			Right:  DefaultMargin,
		},
		Background: Color{R: 255, G: 255, B: 255, A: 1},
		FontColor:  Color{R: 0, G: 0, B: 0, A: 1},
		Rate:       DefaultRate,
	}
}

// RatePresets are the scaling factors offered by the generation service.
var RatePresets = map[string]int{
	"x1":  1,
	"x2":  2,
	"x4":  4,
	"x8":  8,
	"x16": 16,
	"x32": 32,
	"x64": 64,
}
