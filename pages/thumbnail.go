package pages

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

// ErrInvalidDimensions is returned for a non-positive thumbnail size.
var ErrInvalidDimensions = errors.New("pages: invalid dimensions")

// Thumbnail scales img so its longer side is maxSide, keeping the aspect
// ratio. Images already within maxSide are copied unscaled.
func Thumbnail(img image.Image, maxSide int) (*image.RGBA, error) {
	if maxSide <= 0 {
		return nil, ErrInvalidDimensions
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, ErrInvalidDimensions
	}

	longest := max(width, height)
	if longest <= maxSide {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Copy(dst, image.Point{}, img, bounds, draw.Src, nil)
		return dst, nil
	}

	scale := float64(maxSide) / float64(longest)
	newWidth := max(1, int(float64(width)*scale+0.5))
	newHeight := max(1, int(float64(height)*scale+0.5))

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst, nil
}
