package export

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/oimdp/internal/openiti"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	"#", `\#`,
)

var orderedMarkerRe = regexp.MustCompile(`^\d{1,9}[.)]`)

// escapeMarkdown escapes inline markup and any block marker at the start
// of s, so a line beginning "- " or "1. " stays a paragraph.
func escapeMarkdown(s string) string {
	s = markdownEscaper.Replace(s)
	if s == "" {
		return s
	}
	switch s[0] {
	case '-', '+', '=', '>', '~':
		return `\` + s
	}
	if loc := orderedMarkerRe.FindStringIndex(s); loc != nil {
		return s[:loc[1]-1] + `\` + s[loc[1]-1:]
	}
	return s
}

// MarkdownExporter writes CommonMark. The title is the level-1 heading;
// section headers sit one level below it.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(w io.Writer, doc *openiti.Document, title string) error {
	bw := bufio.NewWriter(w)
	writeMarkdown(bw, blocks(doc), title)
	return bw.Flush()
}

func writeMarkdown(w io.StringWriter, bs []block, title string) {
	shift := 0
	if title != "" {
		w.WriteString("# " + escapeMarkdown(title) + "\n\n")
		shift = 1
	}
	for _, b := range bs {
		text := escapeMarkdown(b.text)
		switch b.kind {
		case blockHeading:
			level := min(b.level+shift, 6)
			w.WriteString(strings.Repeat("#", level) + " " + text + "\n\n")
		case blockParagraph:
			w.WriteString(text + "\n\n")
		case blockVerse:
			w.WriteString("> " + text + "\n\n")
		case blockPage:
			w.WriteString("*" + text + "*\n\n")
		}
	}
}
