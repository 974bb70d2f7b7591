package params

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// PresetFormat identifies a preset file encoding.
type PresetFormat string

const (
	PresetYAML PresetFormat = "yaml"
	PresetTOML PresetFormat = "toml"
)

// ErrUnknownPresetFormat is returned for preset files with an unrecognised extension.
var ErrUnknownPresetFormat = errors.New("unknown preset format")

// presetFile is the on-disk shape of a Model. Colors are stored as hex strings.
type presetFile struct {
	Text            string       `yaml:"text,omitempty" toml:"text,omitempty"`
	PaperX          float64      `yaml:"paper_x" toml:"paper_x"`
	PaperY          float64      `yaml:"paper_y" toml:"paper_y"`
	Font            string       `yaml:"font" toml:"font"`
	FontSize        float64      `yaml:"font_size" toml:"font_size"`
	LineSpacing     float64      `yaml:"line_spacing" toml:"line_spacing"`
	WordSpacing     float64      `yaml:"word_spacing" toml:"word_spacing"`
	Rate            int          `yaml:"rate" toml:"rate"`
	BackgroundColor string       `yaml:"background_color" toml:"background_color"`
	FontColor       string       `yaml:"font_color" toml:"font_color"`
	Margins         Margins      `yaml:"margins" toml:"margins"`
	Perturbation    Perturbation `yaml:"perturbation" toml:"perturbation"`
}

func toPresetFile(m Model) presetFile {
	return presetFile{
		Text:            m.Text,
		PaperX:          m.PaperX,
		PaperY:          m.PaperY,
		Font:            m.Font,
		FontSize:        m.FontSize,
		LineSpacing:     m.LineSpacing,
		WordSpacing:     m.WordSpacing,
		Rate:            m.Rate,
		BackgroundColor: EncodeHex(m.Background),
		FontColor:       EncodeHex(m.FontColor),
		Margins:         m.Margins,
		Perturbation:    m.Perturbation,
	}
}

func (p presetFile) model() (Model, error) {
	background, err := ParseColor(p.BackgroundColor)
	if err != nil {
		return Model{}, fmt.Errorf("%s: %w", FieldBackground, err)
	}
	fontColor, err := ParseColor(p.FontColor)
	if err != nil {
		return Model{}, fmt.Errorf("%s: %w", FieldFontColor, err)
	}
	return Model{
		Text:         p.Text,
		PaperX:       p.PaperX,
		PaperY:       p.PaperY,
		Font:         p.Font,
		FontSize:     p.FontSize,
		LineSpacing:  p.LineSpacing,
		WordSpacing:  p.WordSpacing,
		Margins:      p.Margins,
		Background:   background,
		FontColor:    fontColor,
		Perturbation: p.Perturbation,
		Rate:         p.Rate,
	}, nil
}

// PresetFormatFromPath picks the encoding from the file extension.
func PresetFormatFromPath(path string) (PresetFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return PresetYAML, nil
	case ".toml":
		return PresetTOML, nil
	default:
		return "", fmt.Errorf("%w: %q (use .yaml, .yml or .toml)", ErrUnknownPresetFormat, filepath.Ext(path))
	}
}

// MarshalPreset encodes m in the given format.
func MarshalPreset(format PresetFormat, m Model) ([]byte, error) {
	file := toPresetFile(m)
	switch format {
	case PresetYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(file); err != nil {
			return nil, fmt.Errorf("encode yaml preset: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml preset: %w", err)
		}
		return buf.Bytes(), nil
	case PresetTOML:
		data, err := toml.Marshal(file)
		if err != nil {
			return nil, fmt.Errorf("encode toml preset: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPresetFormat, format)
	}
}

// UnmarshalPreset decodes a preset. Keys missing from data keep their
// Default() values.
func UnmarshalPreset(format PresetFormat, data []byte) (Model, error) {
	file := toPresetFile(Default())
	switch format {
	case PresetYAML:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Model{}, fmt.Errorf("decode yaml preset: %w", err)
		}
	case PresetTOML:
		if err := toml.Unmarshal(data, &file); err != nil {
			return Model{}, fmt.Errorf("decode toml preset: %w", err)
		}
	default:
		return Model{}, fmt.Errorf("%w: %q", ErrUnknownPresetFormat, format)
	}
	return file.model()
}

// LoadPreset reads a preset file.
func LoadPreset(path string) (Model, error) {
	format, err := PresetFormatFromPath(path)
	if err != nil {
		return Model{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Model{}, fmt.Errorf("read preset: %w", err)
	}
	m, err := UnmarshalPreset(format, data)
	if err != nil {
		return Model{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// SavePreset writes m to path, creating parent directories as needed.
func SavePreset(path string, m Model) error {
	format, err := PresetFormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := MarshalPreset(format, m)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create preset directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	return nil
}
