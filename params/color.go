package params

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is an RGBA color. R, G and B are bytes in 0-255; A is a fraction in
// 0.0-1.0. Alpha only becomes a byte at the service boundary (see WireAlpha).
type Color struct {
	R int     `json:"r" yaml:"r" toml:"r"`
	G int     `json:"g" yaml:"g" toml:"g"`
	B int     `json:"b" yaml:"b" toml:"b"`
	A float64 `json:"a" yaml:"a" toml:"a"`
}

// MalformedColorError is returned when a hex color string cannot be decoded.
type MalformedColorError struct {
	Input  string
	Reason string
}

func (e *MalformedColorError) Error() string {
	return fmt.Sprintf("malformed color %q: %s", e.Input, e.Reason)
}

// Named colors carried over from the generation service's tool table.
var namedColors = map[string]Color{
	"black":       {R: 0, G: 0, B: 0, A: 1},
	"white":       {R: 255, G: 255, B: 255, A: 1},
	"red":         {R: 255, G: 0, B: 0, A: 1},
	"blue":        {R: 0, G: 0, B: 255, A: 1},
	"transparent": {R: 0, G: 0, B: 0, A: 0},
}

// NewColor builds a Color with every channel clamped into range.
func NewColor(r, g, b int, a float64) Color {
	return Color{R: clampByte(r), G: clampByte(g), B: clampByte(b), A: clampUnit(a)}
}

// Clamped returns c with every channel forced into range.
func (c Color) Clamped() Color {
	return NewColor(c.R, c.G, c.B, c.A)
}

// WireAlpha converts the alpha fraction to the 0-255 byte the service expects.
// Rounding is half away from zero; alpha is never negative here.
func (c Color) WireAlpha() int {
	return int(math.Round(clampUnit(c.A) * 255))
}

// Opaque reports whether the color has full opacity.
func (c Color) Opaque() bool {
	return c.A == 1
}

func (c Color) String() string {
	return EncodeHex(c)
}

// DecodeHex parses a 3, 4, 6 or 8 digit hex color with an optional leading '#'.
// 3 and 6 digit forms are fully opaque.
func DecodeHex(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(hex) {
	case 3, 4:
		expanded := make([]byte, 0, len(hex)*2)
		for i := 0; i < len(hex); i++ {
			expanded = append(expanded, hex[i], hex[i])
		}
		hex = string(expanded)
	case 6, 8:
	default:
		return Color{}, &MalformedColorError{Input: s, Reason: fmt.Sprintf("expected 3, 4, 6 or 8 hex digits, got %d", len(hex))}
	}

	channels := make([]int, 0, 4)
	for i := 0; i < len(hex); i += 2 {
		v, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			return Color{}, &MalformedColorError{Input: s, Reason: fmt.Sprintf("invalid hex digits %q", hex[i:i+2])}
		}
		channels = append(channels, int(v))
	}

	alpha := 255
	if len(channels) == 4 {
		alpha = channels[3]
	}
	return Color{R: channels[0], G: channels[1], B: channels[2], A: float64(alpha) / 255}, nil
}

// EncodeHex renders c as a lowercase hex string. Fully opaque colors use the
// 6 digit form, everything else the 8 digit form.
func EncodeHex(c Color) string {
	c = c.Clamped()
	if c.Opaque() {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.WireAlpha())
}

// ParseColor accepts either a named color or a hex string.
func ParseColor(s string) (Color, error) {
	if named, ok := namedColors[strings.ToLower(strings.TrimSpace(s))]; ok {
		return named, nil
	}
	return DecodeHex(s)
}

// ColorNames lists the accepted color names.
func ColorNames() []string {
	return []string{"black", "blue", "red", "transparent", "white"}
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
