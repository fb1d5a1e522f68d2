package port

import "context"

// PageRasterizer renders pages of a PDF document to encoded raster images
// sized for the extraction service.
type PageRasterizer interface {
	// PageCount reports the number of pages in the document.
	PageCount(ctx context.Context, pdf []byte) (int, error)
	// RenderPage renders the given 1-based page to PNG bytes.
	RenderPage(ctx context.Context, pdf []byte, page int) ([]byte, error)
}
