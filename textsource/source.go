// Package textsource loads the text a handwriting job renders, from a plain
// text file, a PDF or standard input.
package textsource

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// MaxTextBytes caps how much text is read from a file or stream.
const MaxTextBytes = 8 << 20

var (
	// ErrEmptyPath is returned when no path is given.
	ErrEmptyPath = errors.New("empty text source path")
	// ErrTooLarge is returned when the text exceeds MaxTextBytes.
	ErrTooLarge = fmt.Errorf("text exceeds %d bytes", MaxTextBytes)
	// ErrNotText is returned when a non-PDF file is not valid UTF-8.
	ErrNotText = errors.New("file is not UTF-8 text")
)

// Kind is the detected source format.
type Kind string

const (
	KindText  Kind = "text"
	KindPDF   Kind = "pdf"
	KindStdin Kind = "stdin"
)

// KindOf picks the format from the path.
func KindOf(path string) Kind {
	if path == Stdin {
		return KindStdin
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return KindPDF
	}
	return KindText
}

// Loader reads job text. Stdin is read when the path is "-".
type Loader struct {
	Stdin io.Reader
}

// Load reads the text at path using os.Stdin for "-".
func Load(path string) (string, error) {
	return Loader{Stdin: os.Stdin}.Load(path)
}

// Load reads the text at path. Plain text is returned verbatim apart from a
// leading UTF-8 byte order mark.
func (l Loader) Load(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}

	switch KindOf(path) {
	case KindStdin:
		if l.Stdin == nil {
			return "", fmt.Errorf("read stdin: no input stream")
		}
		text, err := readText(l.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return text, nil
	case KindPDF:
		text, _, err := ExtractPDF(path)
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		return text, nil
	default:
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		text, err := readText(f)
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		return text, nil
	}
}

func readText(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxTextBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxTextBytes {
		return "", ErrTooLarge
	}
	if !utf8.Valid(data) {
		return "", ErrNotText
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}
