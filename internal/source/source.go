// Package source retrieves prose documents for classification.
package source

import (
	"context"
	"strings"
)

// Document is one chapter-sized unit of prose. Each paragraph is kept as the
// raw lines it was written on; segmentation happens later.
type Document struct {
	Title      string
	URL        string
	Paragraphs [][]string
}

// Text returns the document's prose with paragraphs separated by blank lines.
func (d Document) Text() string {
	parts := make([]string, 0, len(d.Paragraphs))
	for _, p := range d.Paragraphs {
		parts = append(parts, strings.Join(p, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// Provider is the interface for prose sources.
type Provider interface {
	// Name returns the name of this source.
	Name() string

	// Documents calls fn once per document it manages to retrieve. Failures
	// of a single document are logged and skipped; an error is returned only
	// when the source as a whole is unusable or fn fails.
	Documents(ctx context.Context, fn func(Document) error) error
}

// Collect drains a provider into a slice.
func Collect(ctx context.Context, p Provider) ([]Document, error) {
	var docs []Document
	err := p.Documents(ctx, func(d Document) error {
		docs = append(docs, d)
		return nil
	})
	return docs, err
}
