package textsource

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoPDFText is returned when a PDF contains no extractable text.
var ErrNoPDFText = errors.New("no text content found in PDF")

// PageSeparator is inserted between the texts of consecutive non-empty pages.
const PageSeparator = "\n\n"

// PDFStats describes one extraction.
type PDFStats struct {
	TotalPages     int
	ExtractedPages int
	SkippedPages   int
}

// ExtractPDF returns the text of every non-empty page of the PDF at path.
// A page that fails to decode is skipped; its error is joined into the
// returned error only when no page yielded text.
func ExtractPDF(path string) (string, PDFStats, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", PDFStats{}, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	return extractPages(r)
}

func extractPages(r *pdf.Reader) (string, PDFStats, error) {
	stats := PDFStats{TotalPages: r.NumPage()}
	var (
		b       strings.Builder
		pageErr []error
	)

	// Pages are 1-indexed.
	for i := 1; i <= stats.TotalPages; i++ {
		text, err := pageText(r, i)
		if err != nil {
			pageErr = append(pageErr, fmt.Errorf("page %d: %w", i, err))
			stats.SkippedPages++
			continue
		}
		if text == "" {
			stats.SkippedPages++
			continue
		}
		stats.ExtractedPages++
		if b.Len() > 0 {
			b.WriteString(PageSeparator)
		}
		b.WriteString(text)
	}

	if b.Len() == 0 {
		return "", stats, errors.Join(append([]error{ErrNoPDFText}, pageErr...)...)
	}
	return b.String(), stats, nil
}

func pageText(r *pdf.Reader, index int) (string, error) {
	p := r.Page(index)
	if p.V.IsNull() {
		return "", nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
