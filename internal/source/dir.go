package source

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

const defaultDirWorkers = 4

// DirProvider reads every supported file under a directory.
type DirProvider struct {
	root    string
	workers int
}

// NewDirProvider creates a provider over root. workers <= 0 uses the default.
func NewDirProvider(root string, workers int) *DirProvider {
	if workers <= 0 {
		workers = defaultDirWorkers
	}
	return &DirProvider{root: root, workers: workers}
}

// Name returns the provider name.
func (p *DirProvider) Name() string {
	return "dir"
}

// Supported reports whether path has an extension some provider reads.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".pdf":
		return true
	}
	return false
}

// ForFile returns the provider for a single file.
func ForFile(path string) (Provider, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return NewTextProvider(path), nil
	case ".pdf":
		return NewPDFProvider(path), nil
	}
	return nil, fmt.Errorf("unsupported file type: %s", path)
}

// Files lists the supported files under root in lexical order.
func (p *DirProvider) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != p.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", p.root, err)
	}

	sort.Strings(files)
	return files, nil
}

// Documents reads files concurrently but yields their documents in file
// order, so the same directory always classifies the same way.
func (p *DirProvider) Documents(ctx context.Context, fn func(Document) error) error {
	files, err := p.Files()
	if err != nil {
		return err
	}

	slog.Debug("reading source directory", "dir", p.root, "files", len(files))

	results := make([][]Document, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, path := range files {
		g.Go(func() error {
			provider, err := ForFile(path)
			if err != nil {
				return err
			}

			docs, err := Collect(gctx, provider)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slog.Warn("source file failed, skipping", "file", path, "error", err)
				return nil
			}

			results[i] = docs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, docs := range results {
		for _, d := range docs {
			if err := fn(d); err != nil {
				return err
			}
		}
	}

	return nil
}
