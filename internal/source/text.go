package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// headingWords open a chapter heading line.
var headingWords = []string{
	"CHAPTER",
	"PART",
	"BOOK",
	"EPILOGUE",
	"PROLOGUE",
}

// maxHeadingLen keeps long sentences that happen to start with "Part" from
// being read as headings.
const maxHeadingLen = 60

// TextProvider reads a plain text file, Project Gutenberg books included.
type TextProvider struct {
	path string
}

// NewTextProvider creates a provider for the file at path.
func NewTextProvider(path string) *TextProvider {
	return &TextProvider{path: path}
}

// Name returns the provider name.
func (p *TextProvider) Name() string {
	return "text"
}

// Documents yields one document per chapter of the file.
func (p *TextProvider) Documents(ctx context.Context, fn func(Document) error) error {
	f, err := os.Open(p.path)
	if err != nil {
		return fmt.Errorf("open text: %w", err)
	}
	defer f.Close()

	docs, err := Parse(f, titleFromPath(p.path))
	if err != nil {
		return fmt.Errorf("read %s: %w", p.path, err)
	}

	return emit(ctx, docs, p.path, fn)
}

// Parse splits plain text into chapter documents. Gutenberg boilerplate is
// dropped, heading lines start a new chapter, and blank lines separate
// paragraphs. Text without headings becomes a single document named title.
func Parse(r io.Reader, title string) ([]Document, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ParseLines(lines, title), nil
}

// ParseLines is Parse over lines already in memory.
func ParseLines(lines []string, title string) []Document {
	lines = stripGutenbergBoilerplate(lines)

	var docs []Document
	current := Document{Title: title}
	var paragraph []string

	flushParagraph := func() {
		if len(paragraph) > 0 {
			current.Paragraphs = append(current.Paragraphs, paragraph)
			paragraph = nil
		}
	}
	flushDocument := func() {
		flushParagraph()
		if len(current.Paragraphs) > 0 {
			docs = append(docs, current)
		}
	}

	afterBlank := true
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if heading := detectChapter(trimmed, afterBlank); heading != "" {
			flushDocument()
			current = Document{Title: heading}
			afterBlank = true
			continue
		}

		if trimmed == "" {
			flushParagraph()
			afterBlank = true
			continue
		}

		paragraph = append(paragraph, trimmed)
		afterBlank = false
	}
	flushDocument()

	return docs
}

// stripGutenbergBoilerplate removes Project Gutenberg header and footer.
func stripGutenbergBoilerplate(lines []string) []string {
	startIdx := 0
	endIdx := len(lines)

	for i, line := range lines {
		if strings.Contains(line, "*** START OF") ||
			strings.Contains(line, "***START OF") ||
			strings.Contains(line, "*END*THE SMALL PRINT") {
			startIdx = i + 1
			break
		}
	}

	for i := len(lines) - 1; i >= startIdx; i-- {
		if strings.Contains(lines[i], "*** END OF") ||
			strings.Contains(lines[i], "***END OF") ||
			strings.Contains(lines[i], "End of Project Gutenberg") ||
			strings.Contains(lines[i], "End of the Project Gutenberg") {
			endIdx = i
			break
		}
	}

	if startIdx >= endIdx {
		return lines
	}

	return lines[startIdx:endIdx]
}

// detectChapter returns line when it is a chapter heading. afterBlank tells
// whether the previous line was blank or a heading; a lone Roman numeral only
// counts there, so a wrapped "I" inside a paragraph stays prose.
func detectChapter(line string, afterBlank bool) string {
	if line == "" || len(line) > maxHeadingLen {
		return ""
	}

	words := strings.Fields(line)
	if r, _ := utf8.DecodeRuneInString(words[0]); unicode.IsUpper(r) {
		first := strings.TrimRight(strings.ToUpper(words[0]), ".:")
		for _, word := range headingWords {
			if first == word && headingShape(line, words) {
				return line
			}
		}
	}

	// Roman numerals alone (I, II, III, IV, V, etc.)
	if afterBlank && len(line) <= 10 && isRomanNumeral(line) {
		return line
	}

	return ""
}

// headingShape separates "Chapter 3" and "PART ONE" from prose such as
// "Part of me wanted to stay."
func headingShape(line string, words []string) bool {
	if len(words) <= 2 || strings.ToUpper(line) == line {
		return true
	}
	next := strings.TrimRight(words[1], ".:")
	return isNumber(next) || isRomanNumeral(next)
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// isRomanNumeral reports whether s is an upper-case Roman numeral, optionally
// followed by a period.
func isRomanNumeral(s string) bool {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")
	if s == "" {
		return false
	}

	for _, c := range s {
		if !strings.ContainsRune("IVXLCDM", c) {
			return false
		}
	}
	return true
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// emit hands docs to fn, tagging each with url and stopping on cancellation.
func emit(ctx context.Context, docs []Document, url string, fn func(Document) error) error {
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.URL = url
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}
