package export

import (
	"fmt"
	"io"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/oimdp/internal/openiti"
)

// DOCXExporter writes a Word document. Section headers use the built-in
// heading styles; right-to-left paragraphs are right-aligned.
type DOCXExporter struct{}

func (e *DOCXExporter) Export(w io.Writer, doc *openiti.Document, title string) error {
	f := docx.New().WithDefaultTheme()

	if title != "" {
		p := f.AddParagraph().Style("Title")
		p.AddText(title)
		align(p, title)
	}
	for _, b := range blocks(doc) {
		p := f.AddParagraph()
		switch b.kind {
		case blockHeading:
			p.Style(fmt.Sprintf("Heading%d", min(b.level, 6)))
			p.AddText(b.text)
		case blockParagraph:
			p.AddText(b.text)
		case blockVerse:
			p.AddText(b.text).Italic()
			p.Justification("center")
			continue
		case blockPage:
			p.AddText("[" + b.text + "]").Size("18")
		}
		align(p, b.text)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func align(p *docx.Paragraph, text string) {
	if isRTL(text) {
		p.Justification("end")
	}
}
