package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/abdulachik/cadavre/internal/generator"
)

// MarkdownRenderer writes a story as Markdown.
type MarkdownRenderer struct{}

// Ext returns "md".
func (MarkdownRenderer) Ext() string { return "md" }

// Render writes "# Title", one "## Chapter N: Title" per chapter, every block
// as its own paragraph, and the closing marker in italics.
func (MarkdownRenderer) Render(w io.Writer, s *generator.Story) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %s\n", escapeMarkdown(s.Title))
	for _, ch := range s.Chapters {
		fmt.Fprintf(bw, "\n## Chapter %d: %s\n", ch.Number, escapeMarkdown(ch.Title))
		for _, b := range ch.Blocks {
			fmt.Fprintf(bw, "\n%s\n", escapeMarkdown(b.Text()))
		}
	}
	fmt.Fprintf(bw, "\n*%s*\n", escapeMarkdown(s.Closing.Text()))

	return bw.Flush()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"|", `\|`,
)

// escapeMarkdown keeps harvested prose from being read as Markdown syntax.
func escapeMarkdown(s string) string {
	s = markdownEscaper.Replace(s)

	// A leading list marker or numbered item would start a list.
	if len(s) > 0 && strings.ContainsAny(s[:1], "-+") {
		s = `\` + s
	}
	if i := strings.IndexAny(s, ".)"); i > 0 && isNumber(s[:i]) {
		s = s[:i] + `\` + s[i:]
	}
	return s
}

func isNumber(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
