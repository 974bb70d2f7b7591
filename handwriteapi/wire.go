package handwriteapi

import (
	"handwrite/params"
)

// WireColor is a color as the service expects it: every channel, alpha
// included, is a 0-255 integer.
type WireColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
	A int `json:"a"`
}

type WireMargins struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

type WirePerturbation struct {
	LineSpacing float64 `json:"line_spacing"`
	FontSize    float64 `json:"font_size"`
	WordSpacing float64 `json:"word_spacing"`
	XOffset     float64 `json:"x_offset"`
	YOffset     float64 `json:"y_offset"`
	Rotation    float64 `json:"rotation"`
}

// WireParams is the "params" object of a generate request.
type WireParams struct {
	Rate            int              `json:"rate"`
	PaperX          float64          `json:"paper_x"`
	PaperY          float64          `json:"paper_y"`
	FontSize        float64          `json:"font_size"`
	LineSpacing     float64          `json:"line_spacing"`
	Margins         WireMargins      `json:"margins"`
	WordSpacing     float64          `json:"word_spacing"`
	Perturbation    WirePerturbation `json:"perturbation"`
	Font            string           `json:"font"`
	BackgroundColor WireColor        `json:"background_color"`
	FontColor       WireColor        `json:"font_color"`
}

// GenerateRequest is the body of POST /api/v1/generate.
type GenerateRequest struct {
	Text   string     `json:"text"`
	Params WireParams `json:"params"`
}

// Result is a successful generation: base64 page images keyed by page index.
// The image strings are passed through exactly as received.
type Result struct {
	Images    map[string]string `json:"images"`
	PageCount int               `json:"page_count"`
}

type generateResponse struct {
	Images    map[string]string `json:"images"`
	PageCount *int              `json:"page_count"`
}

// NewWireColor converts a model color. Alpha is the only field that changes
// representation on the way out.
func NewWireColor(c params.Color) WireColor {
	c = c.Clamped()
	return WireColor{R: c.R, G: c.G, B: c.B, A: c.WireAlpha()}
}

// NewGenerateRequest copies m into the wire shape.
func NewGenerateRequest(m params.Model) GenerateRequest {
	return GenerateRequest{
		Text: m.Text,
		Params: WireParams{
			Rate:        m.Rate,
			PaperX:      m.PaperX,
			PaperY:      m.PaperY,
			FontSize:    m.FontSize,
			LineSpacing: m.LineSpacing,
			Margins: WireMargins{
				Top:    m.Margins.Top,
				Bottom: m.Margins.Bottom,
				Left:   m.Margins.Left,
				Right:  m.Margins.Right,
			},
			WordSpacing: m.WordSpacing,
			Perturbation: WirePerturbation{
				LineSpacing: m.Perturbation.LineSpacing,
				FontSize:    m.Perturbation.FontSize,
				WordSpacing: m.Perturbation.WordSpacing,
				XOffset:     m.Perturbation.XOffset,
				YOffset:     m.Perturbation.YOffset,
				Rotation:    m.Perturbation.Rotation,
			},
			Font:            m.Font,
			BackgroundColor: NewWireColor(m.Background),
			FontColor:       NewWireColor(m.FontColor),
		},
	}
}
