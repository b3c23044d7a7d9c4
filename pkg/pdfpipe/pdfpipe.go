// Package pdfpipe adapts the PDF engine to what the flip viewer needs: load
// a document, rasterize pages to images at a fixed upscale, release the
// engine handle when done.
package pdfpipe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"

	"github.com/gen2brain/go-fitz"
)

const (
	// MaxPDFBytes matches the originals bucket cap.
	MaxPDFBytes = 100 << 20
	// RenderDPI is 2x the 72dpi PDF baseline, fixed for quality.
	RenderDPI = 144.0
)

// ErrLoadFailed is the single error surfaced for malformed, encrypted, or
// otherwise unusable PDFs. The cause is wrapped for logs.
var ErrLoadFailed = errors.New("failed to load PDF")

var pdfMagic = []byte("%PDF-")

// Page is one rasterized page.
type Page struct {
	Number int
	PNG    []byte
	Width  int
	Height int
}

// Document wraps a disposable engine handle. Callers must Close it once the
// pages are no longer needed.
type Document struct {
	doc       *fitz.Document
	pageCount int
}

// CheckSource rejects oversized or non-PDF input before the engine (or the
// network, for uploads) is touched.
func CheckSource(size int64, contentType string) error {
	if size <= 0 {
		return fmt.Errorf("%w: empty file", ErrLoadFailed)
	}
	if size > MaxPDFBytes {
		return fmt.Errorf("%w: file exceeds the %dMB limit", ErrLoadFailed, MaxPDFBytes>>20)
	}
	if contentType != "" && contentType != "application/pdf" {
		return fmt.Errorf("%w: unsupported content type %q", ErrLoadFailed, contentType)
	}
	return nil
}

// LoadFromBytes opens a document held in memory.
func LoadFromBytes(b []byte) (*Document, error) {
	if err := CheckSource(int64(len(b)), ""); err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(b, pdfMagic) {
		return nil, fmt.Errorf("%w: missing PDF header", ErrLoadFailed)
	}

	doc, err := fitz.NewFromMemory(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	return &Document{doc: doc, pageCount: doc.NumPage()}, nil
}

// LoadFromReader buffers and opens a document from a stream.
func LoadFromReader(r io.Reader) (*Document, error) {
	b, err := io.ReadAll(io.LimitReader(r, MaxPDFBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return LoadFromBytes(b)
}

// LoadFromURL fetches and opens a document. The context bounds the fetch.
func LoadFromURL(ctx context.Context, client *http.Client, url string) (*Document, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch returned %s", ErrLoadFailed, resp.Status)
	}

	return LoadFromReader(resp.Body)
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.pageCount
}

// RenderPage rasterizes one page (0-based) at the fixed upscale DPI.
func (d *Document) RenderPage(n int) (Page, error) {
	if n < 0 || n >= d.pageCount {
		return Page{}, fmt.Errorf("page %d out of range [0,%d)", n, d.pageCount)
	}

	img, err := d.doc.ImageDPI(n, RenderDPI)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	bounds := img.Bounds()
	return Page{
		Number: n,
		PNG:    buf.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// RenderAll rasterizes every page, reporting progress after each one. The
// context is checked between pages; a canceled render returns what error the
// context carries and the partial result is discarded by the caller.
func (d *Document) RenderAll(ctx context.Context, progress func(done, total int)) ([]Page, error) {
	pages := make([]Page, 0, d.pageCount)
	for i := 0; i < d.pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := d.RenderPage(i)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
		if progress != nil {
			progress(i+1, d.pageCount)
		}
	}
	return pages, nil
}

// Close releases the engine handle. Safe to call more than once.
func (d *Document) Close() error {
	if d.doc == nil {
		return nil
	}
	err := d.doc.Close()
	d.doc = nil
	return err
}
