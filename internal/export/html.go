package export

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"

	"github.com/dgallion1/oimdp/internal/openiti"
)

// HTMLExporter writes a standalone HTML page. The body is the Markdown
// rendering converted by goldmark; the page direction follows the text.
type HTMLExporter struct{}

func (e *HTMLExporter) Export(w io.Writer, doc *openiti.Document, title string) error {
	bs := blocks(doc)

	var src bytes.Buffer
	writeMarkdown(&src, bs, title)

	md := goldmark.New(goldmark.WithParserOptions(parser.WithAutoHeadingID()))
	var body bytes.Buffer
	if err := md.Convert(src.Bytes(), &body); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}

	dir := direction(bs)
	lang := "en"
	if dir == "rtl" {
		lang = "ar"
	}
	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="%s" dir="%s">
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`, lang, dir, html.EscapeString(title), body.String())
	return err
}
