package pages

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/go-cmp/cmp"

	"handwrite/handwriteapi"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func encoded(t *testing.T, w, h int) string {
	return base64.StdEncoding.EncodeToString(pngBytes(t, w, h))
}

func TestDecode_OrdersPagesNumerically(t *testing.T) {
	result := handwriteapi.Result{
		Images: map[string]string{
			"10": encoded(t, 3, 3),
			"2":  encoded(t, 2, 2),
			"0":  encoded(t, 4, 5),
		},
		PageCount: 3,
	}

	pages, err := Decode(result)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	var numbers []int
	for _, p := range pages {
		numbers = append(numbers, p.Number)
	}
	if diff := cmp.Diff([]int{0, 2, 10}, numbers); diff != "" {
		t.Errorf("page order mismatch (-want +got):\n%s", diff)
	}
	if pages[0].Width != 4 || pages[0].Height != 5 || pages[0].Format != "png" {
		t.Errorf("page 0 = %dx%d %s, want 4x5 png", pages[0].Width, pages[0].Height, pages[0].Format)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		images  map[string]string
		wantErr error
	}{
		{"non-numeric key", map[string]string{"first": encoded(t, 1, 1)}, ErrInvalidKey},
		{"bad base64", map[string]string{"0": "***"}, ErrInvalidImage},
		{"not an image", map[string]string{"0": base64.StdEncoding.EncodeToString([]byte("hello"))}, ErrInvalidImage},
		{"empty", map[string]string{"0": ""}, ErrEmptyImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(handwriteapi.Result{Images: tt.images, PageCount: len(tt.images)})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodePage_DataURL(t *testing.T) {
	p, err := DecodePage(1, "data:image/png;base64,"+encoded(t, 2, 3))
	if err != nil {
		t.Fatalf("DecodePage() error = %v", err)
	}
	if p.Width != 2 || p.Height != 3 {
		t.Errorf("size = %dx%d, want 2x3", p.Width, p.Height)
	}
}

func TestThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))

	tests := []struct {
		name         string
		maxSide      int
		wantW, wantH int
		wantErr      error
	}{
		{name: "downscale keeps aspect", maxSide: 50, wantW: 50, wantH: 25},
		{name: "no upscale", maxSide: 400, wantW: 200, wantH: 100},
		{name: "invalid size", maxSide: 0, wantErr: ErrInvalidDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Thumbnail(src, tt.maxSide)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Thumbnail() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if b := got.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("Thumbnail() = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	data0, data1 := pngBytes(t, 40, 80), pngBytes(t, 10, 10)
	pages := []Page{
		{Number: 0, Data: data0, Format: "png", Width: 40, Height: 80},
		{Number: 1, Data: data1, Format: "png", Width: 10, Height: 10},
	}

	w := NewWriter(dir, WithThumbnails(20))
	paths, err := w.Write(context.Background(), pages)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := []string{
		filepath.Join(dir, "page-0.png"),
		filepath.Join(dir, "page-0-thumb.png"),
		filepath.Join(dir, "page-1.png"),
		filepath.Join(dir, "page-1-thumb.png"),
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("Write() paths mismatch (-want +got):\n%s", diff)
	}

	got, err := os.ReadFile(want[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data0) {
		t.Error("page-0.png does not hold the page bytes unchanged")
	}

	f, err := os.Open(want[1])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("thumbnail is not a png: %v", err)
	}
	if cfg.Width != 10 || cfg.Height != 20 {
		t.Errorf("thumbnail = %dx%d, want 10x20", cfg.Width, cfg.Height)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, ".page-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestWriter_LockedDirectory(t *testing.T) {
	dir := t.TempDir()
	held := flock.New(filepath.Join(dir, LockFileName))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock() = %v, %v", ok, err)
	}
	defer held.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	_, err = NewWriter(dir).Write(ctx, []Page{{Number: 0, Data: pngBytes(t, 1, 1), Format: "png"}})
	if !errors.Is(err, ErrLocked) {
		t.Errorf("Write() error = %v, want ErrLocked", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "page-0.png")); !os.IsNotExist(statErr) {
		t.Error("page written despite the lock being held")
	}
}

func TestPage_Ext(t *testing.T) {
	tests := map[string]string{"png": ".png", "jpeg": ".jpg", "gif": ".gif", "": ".png"}
	for format, want := range tests {
		if got := (Page{Format: format}).Ext(); got != want {
			t.Errorf("Ext(%q) = %q, want %q", format, got, want)
		}
	}
}
