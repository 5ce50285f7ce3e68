package render

import (
	"bytes"
	"html/template"
	"io"

	"github.com/abdulachik/cadavre/internal/generator"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

var pageTemplate = template.Must(template.New("story").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { max-width: 40em; margin: 3em auto; padding: 0 1em; font-family: Georgia, serif; line-height: 1.6; }
h1 { text-align: center; }
h2 { margin-top: 3em; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTMLRenderer converts the Markdown rendering into a standalone page.
type HTMLRenderer struct {
	md goldmark.Markdown
}

// NewHTMLRenderer creates an HTMLRenderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Typographer),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// Ext returns "html".
func (*HTMLRenderer) Ext() string { return "html" }

// Render writes s as an HTML5 document.
func (h *HTMLRenderer) Render(w io.Writer, s *generator.Story) error {
	var source bytes.Buffer
	if err := (MarkdownRenderer{}).Render(&source, s); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := h.md.Convert(source.Bytes(), &body); err != nil {
		return err
	}

	// goldmark omits raw HTML by default, so the body is safe to inline.
	return pageTemplate.Execute(w, struct {
		Title string
		Body  template.HTML
	}{
		Title: s.Title,
		Body:  template.HTML(body.String()),
	})
}
