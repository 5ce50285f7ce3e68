package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/abdulachik/cadavre/internal/generator"
)

// TextRenderer writes a story as plain text.
type TextRenderer struct{}

// Ext returns "txt".
func (TextRenderer) Ext() string { return "txt" }

// Render writes the story with underlined headings.
func (TextRenderer) Render(w io.Writer, s *generator.Story) error {
	bw := bufio.NewWriter(w)

	writeHeading(bw, s.Title, "=")
	for _, ch := range s.Chapters {
		bw.WriteString("\n\n")
		writeHeading(bw, fmt.Sprintf("Chapter %d: %s", ch.Number, ch.Title), "-")
		for _, b := range ch.Blocks {
			fmt.Fprintf(bw, "\n%s\n", b.Text())
		}
	}
	fmt.Fprintf(bw, "\n\n%s\n", s.Closing.Text())

	return bw.Flush()
}

func writeHeading(w *bufio.Writer, title, rule string) {
	fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat(rule, len([]rune(title))))
}
