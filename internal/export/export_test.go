package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/oimdp/internal/openiti"
)

const sample = `######OpenITI#
#META# 000.SortField :: Shamela_0023833
#META#Header#End#
### | كتاب الصلاة
# قال @PER02 أحمد بن حنبل
~~ في الصلاة PageV01P002
# %~% بيت %~% شعر
PageV01P003
### || باب الأذان
# نص الباب
`

func parseSample(t *testing.T) *openiti.Document {
	t.Helper()
	doc, err := openiti.Parse(sample)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
	}{
		{"", FormatJSON},
		{"JSON", FormatJSON},
		{"yml", FormatYAML},
		{"md", FormatMarkdown},
		{"html", FormatHTML},
		{"docx", FormatDOCX},
		{"csv", FormatCSV},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %s, got %s", tc.in, tc.want, got)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for pdf")
	}
	if FormatDOCX.Extension() != ".docx" || !strings.HasPrefix(FormatHTML.ContentType(), "text/html") {
		t.Error("unexpected format attributes")
	}
}

func TestBlocks(t *testing.T) {
	bs := blocks(parseSample(t))

	kinds := []blockKind{blockHeading, blockParagraph, blockVerse, blockPage, blockHeading, blockParagraph}
	if len(bs) != len(kinds) {
		t.Fatalf("expected %d blocks, got %d: %+v", len(kinds), len(bs), bs)
	}
	for i, k := range kinds {
		if bs[i].kind != k {
			t.Errorf("block %d: expected kind %d, got %d", i, k, bs[i].kind)
		}
	}
	if bs[1].text != "قال أحمد بن حنبل في الصلاة" {
		t.Errorf("expected continuation joined, got %q", bs[1].text)
	}
	if bs[3].text != "V01P003" {
		t.Errorf("expected page block, got %q", bs[3].text)
	}
	if bs[4].level != 2 {
		t.Errorf("expected level 2 heading, got %d", bs[4].level)
	}
	if direction(bs) != "rtl" {
		t.Error("expected rtl direction")
	}
}

func TestMarkdownExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatMarkdown, parseSample(t), "Kitab al-Ilal"); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Kitab al-Ilal\n",
		"## كتاب الصلاة\n",
		"### باب الأذان\n",
		"*V01P003*\n",
		"> ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestMarkdownEscaping(t *testing.T) {
	doc, err := openiti.Parse("######OpenITI#\n# a*b [c]\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, FormatMarkdown, doc, ""); err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `a\*b \[c\]` {
		t.Errorf("unexpected escaping: %q", got)
	}
}

func TestMarkdownEscapesBlockMarkers(t *testing.T) {
	cases := []struct{ in, want string }{
		{"- item", `\- item`},
		{"+ item", `\+ item`},
		{"> quoted", `\> quoted`},
		{"12. numbered", `12\. numbered`},
		{"3) numbered", `3\) numbered`},
		{"===", `\===`},
		{"2024 plain", "2024 plain"},
	}
	for _, tc := range cases {
		if got := escapeMarkdown(tc.in); got != tc.want {
			t.Errorf("escapeMarkdown(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}

	doc, err := openiti.Parse("######OpenITI#\n# - not a list\n# 1. nor this\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, FormatHTML, doc, ""); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<li>") || strings.Contains(out, "<ul>") || strings.Contains(out, "<ol>") {
		t.Errorf("paragraphs became lists:\n%s", out)
	}
	if !strings.Contains(out, "<p>- not a list</p>") {
		t.Errorf("expected literal paragraph in output:\n%s", out)
	}
}

func TestHTMLExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatHTML, parseSample(t), "Kitab <al-Ilal>"); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`dir="rtl"`,
		`lang="ar"`,
		"<title>Kitab &lt;al-Ilal&gt;</title>",
		"<h2",
		"<blockquote>",
		"<em>V01P003</em>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestDOCXExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatDOCX, parseSample(t), "Kitab al-Ilal"); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := docx.Parse(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reparse docx: %v", err)
	}

	var headings []string
	for _, item := range f.Document.Body.Items {
		p, ok := item.(*docx.Paragraph)
		if !ok || p.Properties == nil || p.Properties.Style == nil {
			continue
		}
		if strings.HasPrefix(p.Properties.Style.Val, "Heading") {
			headings = append(headings, p.Properties.Style.Val)
		}
	}
	if len(headings) != 2 || headings[0] != "Heading1" || headings[1] != "Heading2" {
		t.Errorf("unexpected heading styles: %v", headings)
	}
}

func TestCSVExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, parseSample(t), ""); err != nil {
		t.Fatalf("export: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and 1 row, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "item,kind,prefix,extent,text,volume,page" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][1] != "personal" || rows[1][3] != "2" || rows[1][4] != "حنبل بن" {
		t.Errorf("unexpected row: %v", rows[1])
	}
}

func TestJSONAndYAMLExporters(t *testing.T) {
	doc := parseSample(t)

	var jbuf bytes.Buffer
	if err := Write(&jbuf, FormatJSON, doc, ""); err != nil {
		t.Fatalf("json export: %v", err)
	}
	var fromJSON map[string]any
	if err := json.Unmarshal(jbuf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("decode json: %v", err)
	}

	var ybuf bytes.Buffer
	if err := Write(&ybuf, FormatYAML, doc, ""); err != nil {
		t.Fatalf("yaml export: %v", err)
	}
	if strings.Contains(ybuf.String(), "{") {
		t.Errorf("expected block-style yaml, got:\n%s", ybuf.String())
	}
	var fromYAML map[string]any
	if err := yaml.Unmarshal(ybuf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}

	if fromYAML["magic_value"] != fromJSON["magic_value"] {
		t.Errorf("magic differs: %v vs %v", fromYAML["magic_value"], fromJSON["magic_value"])
	}
	content, ok := fromYAML["content"].([]any)
	if !ok || len(content) != len(doc.Content) {
		t.Fatalf("expected %d content items in yaml", len(doc.Content))
	}
	first := content[0].(map[string]any)
	if first["type"] != "section_header" {
		t.Errorf("expected section_header first, got %v", first["type"])
	}
	// Page numbers stay strings.
	for _, c := range content {
		m := c.(map[string]any)
		if m["type"] == "page_number" {
			if _, ok := m["page"].(string); !ok {
				t.Errorf("expected string page, got %T", m["page"])
			}
		}
	}
}
