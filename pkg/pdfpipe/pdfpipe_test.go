package pdfpipe_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/flipflow/flipflow-backend/pkg/pdfpipe"
)

func TestCheckSource(t *testing.T) {
	cases := []struct {
		name        string
		size        int64
		contentType string
		wantErr     bool
	}{
		{"valid", 1 << 20, "application/pdf", false},
		{"no declared type", 1 << 20, "", false},
		{"empty", 0, "application/pdf", true},
		{"oversized", pdfpipe.MaxPDFBytes + 1, "application/pdf", true},
		{"wrong type", 1024, "image/png", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := pdfpipe.CheckSource(tc.size, tc.contentType)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, pdfpipe.ErrLoadFailed) {
				t.Fatalf("err %v does not wrap ErrLoadFailed", err)
			}
		})
	}
}

func TestLoadFromBytesRejectsNonPDF(t *testing.T) {
	// Anything without the PDF header is rejected before the engine is
	// touched, under the single load-failure error.
	for _, b := range [][]byte{
		[]byte("<html>not a pdf</html>"),
		[]byte("GIF89a....."),
		bytes.Repeat([]byte{0x00}, 512),
	} {
		if _, err := pdfpipe.LoadFromBytes(b); !errors.Is(err, pdfpipe.ErrLoadFailed) {
			t.Fatalf("LoadFromBytes(%q...) err = %v, want ErrLoadFailed", b[:8], err)
		}
	}
}

func TestLoadFromBytesRejectsEmpty(t *testing.T) {
	if _, err := pdfpipe.LoadFromBytes(nil); !errors.Is(err, pdfpipe.ErrLoadFailed) {
		t.Fatalf("err = %v, want ErrLoadFailed", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	var d pdfpipe.Document
	if err := d.Close(); err != nil {
		t.Fatalf("Close on zero document: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
