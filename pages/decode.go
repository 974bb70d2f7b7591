// Package pages turns a generation result into image files on disk.
package pages

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sort"
	"strconv"
	"strings"

	"handwrite/handwriteapi"
)

var (
	ErrEmptyImage   = errors.New("pages: empty image data")
	ErrInvalidImage = errors.New("pages: invalid image data")
	ErrInvalidKey   = errors.New("pages: page key is not a number")
)

// Page is one decoded page of a result.
type Page struct {
	Number int
	Data   []byte
	// Format is the image format name reported by the decoder, e.g. "png".
	Format string
	Width  int
	Height int
}

// Decode converts the base64 images of result into pages ordered by page
// number. Every page must carry a decodable image header.
func Decode(result handwriteapi.Result) ([]Page, error) {
	pages := make([]Page, 0, len(result.Images))
	for key, encoded := range result.Images {
		n, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		p, err := DecodePage(n, encoded)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages, nil
}

// DecodePage decodes one base64 page. A data URL prefix is accepted.
func DecodePage(number int, encoded string) (Page, error) {
	if i := strings.Index(encoded, ";base64,"); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return Page{}, fmt.Errorf("page %d: %w: %v", number, ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return Page{}, fmt.Errorf("page %d: %w", number, ErrEmptyImage)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Page{}, fmt.Errorf("page %d: %w: %v", number, ErrInvalidImage, err)
	}
	return Page{
		Number: number,
		Data:   data,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// Image fully decodes the page.
func (p Page) Image() (image.Image, error) {
	if len(p.Data) == 0 {
		return nil, ErrEmptyImage
	}
	img, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// Ext returns the file extension for the page format.
func (p Page) Ext() string {
	switch p.Format {
	case "jpeg":
		return ".jpg"
	case "":
		return ".png"
	default:
		return "." + p.Format
	}
}
