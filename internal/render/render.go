// Package render writes generated stories to files.
package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abdulachik/cadavre/internal/generator"
)

// Renderer is the interface for story output formats.
type Renderer interface {
	// Ext returns the file extension, without the dot.
	Ext() string

	// Render writes s to w.
	Render(w io.Writer, s *generator.Story) error
}

// Formats lists the names accepted by ByName.
var Formats = []string{"markdown", "html", "text"}

// ByName returns the renderers for a format name. "all" selects every format.
func ByName(name string) ([]Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "markdown", "md":
		return []Renderer{MarkdownRenderer{}}, nil
	case "html":
		return []Renderer{NewHTMLRenderer()}, nil
	case "text", "txt":
		return []Renderer{TextRenderer{}}, nil
	case "all":
		return []Renderer{MarkdownRenderer{}, NewHTMLRenderer(), TextRenderer{}}, nil
	}
	return nil, fmt.Errorf("unknown format %q (want one of %s, all)", name, strings.Join(Formats, ", "))
}

// WriteFiles renders s once per renderer into dir as slug.<ext> and returns
// the written paths. When any of those files exists the stem gets a -2, -3...
// suffix, so an earlier story with the same title is never overwritten.
// Every format is rendered in memory first, so a failing renderer leaves no
// files behind.
func WriteFiles(dir, slug string, s *generator.Story, renderers ...Renderer) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("no story to write")
	}

	rendered := make([][]byte, len(renderers))
	for i, r := range renderers {
		var buf bytes.Buffer
		if err := r.Render(&buf, s); err != nil {
			return nil, fmt.Errorf("render %s: %w", r.Ext(), err)
		}
		rendered[i] = buf.Bytes()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	stem := freeStem(dir, slug, renderers)

	paths := make([]string, 0, len(renderers))
	for i, r := range renderers {
		path := filepath.Join(dir, stem+"."+r.Ext())
		if err := writeAtomic(path, rendered[i]); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// freeStem returns slug, or slug-N for the lowest N >= 2, such that no
// renderer's file exists in dir yet.
func freeStem(dir, slug string, renderers []Renderer) string {
	taken := func(stem string) bool {
		for _, r := range renderers {
			if _, err := os.Stat(filepath.Join(dir, stem+"."+r.Ext())); err == nil {
				return true
			}
		}
		return false
	}

	stem := slug
	for n := 2; taken(stem); n++ {
		stem = fmt.Sprintf("%s-%d", slug, n)
	}
	return stem
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".story-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

const maxSlugLen = 60

// Slug turns a title into a file name stem.
func Slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
		for !utf8.ValidString(slug) {
			slug = slug[:len(slug)-1]
		}
	}
	if slug == "" {
		return "story"
	}
	return slug
}
