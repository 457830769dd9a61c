package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
)

func TestHTMLExtractor_PreAndBlocks(t *testing.T) {
	input := `<html><head><title>ignored</title><script>var x;</script></head><body>
<pre>######OpenITI#
#META# 000.SortField :: x
#META#Header#End#
</pre>
<p>### | Kitab
  al-Salat</p>
<p># text<br>~~ more</p>
</body></html>`

	p := &HTMLExtractor{}
	got, err := p.Extract(strings.NewReader(input), "book.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "######OpenITI#\n#META# 000.SortField :: x\n#META#Header#End#\n### | Kitab al-Salat\n# text\n~~ more"
	if got != want {
		t.Errorf("expected:\n%q\ngot:\n%q", want, got)
	}
}

func TestHTMLExtractor_LooseText(t *testing.T) {
	input := `<html><body>######OpenITI#<br>
#META#Header#End#
<div>### | <b>Kitab</b> al-Salat<br># text</div>
tail<p># para</p></body></html>`

	p := &HTMLExtractor{}
	got, err := p.Extract(strings.NewReader(input), "book.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "######OpenITI#\n#META#Header#End#\n### | Kitab al-Salat\n# text\ntail\n# para"
	if got != want {
		t.Errorf("expected:\n%q\ngot:\n%q", want, got)
	}
}

func TestDOCXExtractor_Paragraphs(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText("######OpenITI#")
	w.AddParagraph().AddText("### | باب")
	w.AddParagraph()
	w.AddParagraph().AddText("# نص")

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	p := &DOCXExtractor{}
	got, err := p.Extract(&buf, "book.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "######OpenITI#\n### | باب\n# نص"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestForFile(t *testing.T) {
	cases := []struct {
		name, want string
	}{
		{"book.mARkdown", "*parser.TextExtractor"},
		{"0241IbnHanbal.Ilal.Shamela0023833-ara1", "*parser.TextExtractor"},
		{"0241IbnHanbal.Ilal.Shamela0023833-ara1.completed", "*parser.TextExtractor"},
		{"page.HTM", "*parser.HTMLExtractor"},
		{"scan.pdf", "*parser.PDFExtractor"},
		{"copy.docx", "*parser.DOCXExtractor"},
	}
	for _, tc := range cases {
		ex, err := ForFile(tc.name, Options{})
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
			continue
		}
		if got := typeName(ex); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}

	if _, err := ForFile("sheet.xlsx", Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if IsSupportedExtension("sheet.xlsx") {
		t.Error("xlsx should not be supported")
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *TextExtractor:
		return "*parser.TextExtractor"
	case *HTMLExtractor:
		return "*parser.HTMLExtractor"
	case *PDFExtractor:
		return "*parser.PDFExtractor"
	case *DOCXExtractor:
		return "*parser.DOCXExtractor"
	}
	return "unknown"
}
