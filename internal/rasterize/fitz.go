// Package rasterize renders PDF pages to PNG images via MuPDF (go-fitz).
package rasterize

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"

	"github.com/SkiltonTrading/cmrv2/internal/port"
)

// renderDPI is 2.5x the PDF-native 72dpi base. Handwritten quantities on
// scanned waybills are not legible below this.
const renderDPI = 180

type fitzRasterizer struct{}

// NewRasterizer creates a PageRasterizer backed by go-fitz. Each call opens
// its own document, so the rasterizer is safe for concurrent use.
func NewRasterizer() port.PageRasterizer {
	return &fitzRasterizer{}
}

func (r *fitzRasterizer) PageCount(ctx context.Context, pdf []byte) (int, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return 0, fmt.Errorf("opening document: %w", err)
	}
	defer doc.Close()

	count := doc.NumPage()
	if count == 0 {
		return 0, fmt.Errorf("document has no pages")
	}
	return count, nil
}

func (r *fitzRasterizer) RenderPage(ctx context.Context, pdf []byte, page int) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer doc.Close()

	if page < 1 || page > doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", page, doc.NumPage())
	}

	// go-fitz pages are 0-based.
	img, err := doc.ImageDPI(page-1, renderDPI)
	if err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", page, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding page %d: %w", page, err)
	}
	return buf.Bytes(), nil
}
