package source

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFProvider reads the plain text layer of a PDF.
type PDFProvider struct {
	path string
}

// NewPDFProvider creates a provider for the PDF at path.
func NewPDFProvider(path string) *PDFProvider {
	return &PDFProvider{path: path}
}

// Name returns the provider name.
func (p *PDFProvider) Name() string {
	return "pdf"
}

// Documents extracts the text and splits it like a plain text file.
func (p *PDFProvider) Documents(ctx context.Context, fn func(Document) error) error {
	f, r, err := pdf.Open(p.path)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	text, err := r.GetPlainText()
	if err != nil {
		return fmt.Errorf("extract plain text: %w", err)
	}

	docs, err := Parse(text, titleFromPath(p.path))
	if err != nil {
		return fmt.Errorf("read %s: %w", p.path, err)
	}

	return emit(ctx, docs, p.path, fn)
}
