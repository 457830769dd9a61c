package export

import (
	"strings"

	"golang.org/x/text/unicode/bidi"

	"github.com/dgallion1/oimdp/internal/openiti"
)

type blockKind int

const (
	blockHeading blockKind = iota
	blockParagraph
	blockVerse
	blockPage
)

// block is one renderable unit shared by the Markdown and DOCX writers.
type block struct {
	kind  blockKind
	level int
	text  string
}

// blocks folds the content list into headings, paragraphs, verses and
// page breaks. Continuation lines join the open paragraph; any
// structural marker closes it.
func blocks(doc *openiti.Document) []block {
	var (
		out  []block
		para []string
	)
	flush := func() {
		if len(para) > 0 {
			out = append(out, block{kind: blockParagraph, text: strings.Join(para, " ")})
			para = nil
		}
	}

	for _, c := range doc.Content {
		switch v := c.(type) {
		case openiti.SectionHeader:
			flush()
			out = append(out, block{kind: blockHeading, level: v.Level, text: v.Value})
		case openiti.PageNumber:
			flush()
			out = append(out, block{kind: blockPage, text: "V" + v.Volume + "P" + v.Page})
		case openiti.Line:
			if !v.HasText() {
				continue
			}
			if v.Kind == openiti.LineVerse {
				flush()
				out = append(out, block{kind: blockVerse, text: v.Text})
				continue
			}
			para = append(para, v.Text)
		default:
			flush()
		}
	}
	flush()
	return out
}

// strongDirection finds the first strongly directional character of s.
// ok is false when s has none.
func strongDirection(s string) (rtl, ok bool) {
	for _, r := range s {
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.R, bidi.AL:
			return true, true
		case bidi.L:
			return false, true
		}
	}
	return false, false
}

func isRTL(s string) bool {
	rtl, _ := strongDirection(s)
	return rtl
}

// direction returns "rtl" or "ltr" for the first block with strong text.
func direction(bs []block) string {
	for _, b := range bs {
		if b.kind == blockPage {
			continue
		}
		if rtl, ok := strongDirection(b.text); ok {
			if rtl {
				return "rtl"
			}
			return "ltr"
		}
	}
	return "ltr"
}
