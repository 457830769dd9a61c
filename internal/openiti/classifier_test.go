package openiti

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const magic = "######OpenITI#"

func doc(lines ...string) string {
	return strings.Join(append([]string{magic}, lines...), "\n")
}

func TestParseMissingMagic(t *testing.T) {
	for _, in := range []string{"", "#META# 000.SortField :: x", "  ###OpenITI#\n~~ text"} {
		d, err := Parse(in)
		require.Error(t, err, "%q", in)
		assert.True(t, errors.Is(err, ErrNoMagicValue))
		assert.Nil(t, d)
	}
}

func TestParseMagicTrimmed(t *testing.T) {
	d, err := Parse("  ######OpenITI#  \n")
	require.NoError(t, err)
	assert.Equal(t, "######OpenITI#", d.Magic)
	assert.Empty(t, d.Content)
}

func TestParseMetadataOnly(t *testing.T) {
	d, err := Parse(doc("#META# 000.SortField\t:: Shamela_0023833", "#META#Header#End#"))
	require.NoError(t, err)

	assert.Equal(t, []string{"000.SortField\t:: Shamela_0023833"}, d.Metadata)
	assert.Empty(t, d.Content)
}

func TestParseMetadataOrder(t *testing.T) {
	d, err := Parse(doc(
		"#META# 000.SortField :: b",
		"#META# 000.SortField :: a",
		"#META# 999.MiscINFO :: NODATA :: more",
		"#META#Header#End#",
	))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"000.SortField :: b",
		"000.SortField :: a",
		"999.MiscINFO :: NODATA :: more",
	}, d.Metadata)
}

func TestParseHeaderLevels(t *testing.T) {
	d, err := Parse(doc(
		"### | One",
		"### || Two",
		"### ||| Three",
		"### |||| Four",
		"### ||||| Five @YB12 Milestone300",
	))
	require.NoError(t, err)
	require.Len(t, d.Content, 5)

	for i, c := range d.Content {
		h, ok := c.(SectionHeader)
		require.True(t, ok)
		assert.Equal(t, i+1, h.Level)
	}
	assert.Equal(t, SectionHeader{Orig: "### ||||| Five @YB12 Milestone300", Value: "Five", Level: 5}, d.Content[4])
}

func TestParseMalformedPage(t *testing.T) {
	var drops []Drop
	p := Parser{OnDrop: func(d Drop) { drops = append(drops, d) }}

	d, err := p.Parse(doc("PageVxxPyy", "PageV01P002"))
	require.NoError(t, err)

	assert.Equal(t, []Content{PageNumber{Volume: "01", Page: "002"}}, d.Content)
	require.Len(t, drops, 1)
	assert.Equal(t, Drop{Line: 1, Text: "PageVxxPyy", Reason: DropMalformedPage}, drops[0])
}

func TestParseDropsDoNotChangeTree(t *testing.T) {
	in := doc("random prose", "PageV", "~~ %~%", "", "~~ kept")

	plain, err := Parse(in)
	require.NoError(t, err)

	var reasons []DropReason
	p := Parser{OnDrop: func(d Drop) { reasons = append(reasons, d.Reason) }}
	hooked, err := p.Parse(in)
	require.NoError(t, err)

	assert.Equal(t, plain, hooked)
	assert.Equal(t, []DropReason{DropUnrecognized, DropMalformedPage, DropEmptyLine}, reasons)
	require.Len(t, plain.Content, 1)
}

func TestParseParagraphs(t *testing.T) {
	d, err := Parse(doc("# first words", "# a %~% b", "# $RWY$ haddathana"))
	require.NoError(t, err)
	require.Len(t, d.Content, 5)

	assert.Equal(t, Paragraph{Orig: "# first words", Kind: ParagraphNormal}, d.Content[0])
	first := d.Content[1].(Line)
	assert.Equal(t, LineNormal, first.Kind)
	assert.Equal(t, "first words", first.Text)

	verse := d.Content[2].(Line)
	assert.Equal(t, LineVerse, verse.Kind)
	assert.Equal(t, []Fragment{TextPart{Text: "a"}, Hemistich{Orig: "%~%"}, TextPart{Text: "b"}}, verse.Fragments)

	assert.Equal(t, Paragraph{Orig: "# $RWY$ haddathana", Kind: ParagraphNarration}, d.Content[3])
	narr := d.Content[4].(Line)
	assert.Equal(t, []Fragment{Isnad{}, TextPart{Text: "haddathana"}}, narr.Fragments)
}

func TestParseRouteLine(t *testing.T) {
	d, err := Parse(doc("#$#FROM Baghdad #$#TOWA Kufa #$#DIST 3 days"))
	require.NoError(t, err)
	require.Len(t, d.Content, 1)

	l := d.Content[0].(Line)
	assert.Equal(t, LineRouteOrDistance, l.Kind)
	assert.Equal(t, RouteFrom{}, l.Fragments[0])
}

func TestParseMorphologicalPattern(t *testing.T) {
	d, err := Parse(doc("#~:nisba: some text"))
	require.NoError(t, err)
	assert.Equal(t, []Content{MorphologicalPattern{Orig: "#~:nisba: some text", Category: "nisba"}}, d.Content)
}

func TestParseEditorial(t *testing.T) {
	d, err := Parse(doc("### |EDITOR| note"))
	require.NoError(t, err)
	assert.Equal(t, []Content{Editorial{Orig: "### |EDITOR| note"}}, d.Content)
}

func TestParseDictionaryKinds(t *testing.T) {
	cases := map[string]DictionaryKind{
		"### $DIC_NIS$ al-Baghdadi": DictionaryNisba,
		"### $DIC_TOP$ Baghdad":     DictionaryTopographic,
		"### $DIC_LEX$ kalima":      DictionaryLexical,
		"### $DIC_BIB$ kitab":       DictionaryBibliographic,
		"### $DIC_XXX$ other":       DictionaryBibliographic,
	}
	for in, kind := range cases {
		d, err := Parse(doc(in))
		require.NoError(t, err)
		require.Len(t, d.Content, 2, in)
		assert.Equal(t, DictionaryUnit{Orig: in, Kind: kind}, d.Content[0], in)
		_, isLine := d.Content[1].(Line)
		assert.True(t, isLine, in)
	}
}

func TestParseDoxographyKinds(t *testing.T) {
	d, err := Parse(doc("### $DOX_POS$ qawl", "### $DOX_SEC$ firqa"))
	require.NoError(t, err)
	require.Len(t, d.Content, 4)

	assert.Equal(t, DoxographicalItem{Orig: "### $DOX_POS$ qawl", Kind: DoxographyPositional}, d.Content[0])
	assert.Equal(t, "qawl", d.Content[1].(Line).Text)
	assert.Equal(t, DoxographicalItem{Orig: "### $DOX_SEC$ firqa", Kind: DoxographySectional}, d.Content[2])
}

func TestParseBioEventKinds(t *testing.T) {
	cases := []struct {
		in   string
		kind BioKind
	}{
		{"### $ Ahmad", BioMan},
		{"### $BIO_MAN$ Ahmad", BioMan},
		{"### $$ Fatima", BioWoman},
		{"### $BIO_WOM$ Fatima", BioWoman},
		{"### $$$ see Ahmad", BioReference},
		{"### $BIO_REF$ see Ahmad", BioReference},
		{"### $$$$ names", BioNameList},
		{"### $BIO_NLI$ names", BioNameList},
		{"### @ year 200", BioEvent},
		{"### $CHR_EVE$ year 200", BioEvent},
		{"### @ RAW events", BioEventList},
		{"### $CHR_RAW$ events", BioEventList},
	}
	for _, tc := range cases {
		d, err := Parse(doc(tc.in))
		require.NoError(t, err)
		require.Len(t, d.Content, 2, tc.in)
		assert.Equal(t, BioOrEvent{Orig: tc.in, Kind: tc.kind}, d.Content[0], tc.in)

		l := d.Content[1].(Line)
		assert.NotContains(t, l.Text, "$", tc.in)
		assert.NotContains(t, l.Text, "@", tc.in)
	}
}

func TestParseHeaderPrecedence(t *testing.T) {
	// Every longer marker must win over the shorter marker it starts with.
	d, err := Parse(doc("### ||| x", "### |EDITOR| y", "### $$$ z", "### $DIC_NIS$ w"))
	require.NoError(t, err)

	assert.Equal(t, 3, d.Content[0].(SectionHeader).Level)
	assert.IsType(t, Editorial{}, d.Content[1])
	assert.Equal(t, BioReference, d.Content[2].(BioOrEvent).Kind)
	assert.IsType(t, DictionaryUnit{}, d.Content[4])
}

func TestParseRegionAfterParagraph(t *testing.T) {
	// Region lines open with "#$", so the paragraph rule claims them first.
	in := "#$#PROV Fars #$#TYPE iqlim #$#STTL Shiraz"
	d, err := Parse(doc(in))
	require.NoError(t, err)
	require.NotEmpty(t, d.Content)
	assert.IsType(t, Paragraph{}, d.Content[0])

	assert.True(t, regionRe.MatchString(in))
	d, err = Parse(doc("x " + in))
	require.NoError(t, err)
	assert.Equal(t, []Content{AdministrativeRegion{Orig: "x " + in}}, d.Content)
}

func TestParseTildeLine(t *testing.T) {
	d, err := Parse(doc("~~continued text PageV01P010"))
	require.NoError(t, err)
	require.Len(t, d.Content, 1)

	l := d.Content[0].(Line)
	assert.Equal(t, "continued text", l.Text)
	assert.Equal(t, []Fragment{TextPart{Text: "continued text"}, PageNumber{Volume: "01", Page: "010"}}, l.Fragments)
}

func TestClassifierRulesOrder(t *testing.T) {
	assert.Equal(t, []string{
		"metadata",
		"page",
		"riwaya",
		"route",
		"morphological_pattern",
		"paragraph",
		"line",
		"editorial",
		"header",
		"dictionary",
		"doxography",
		"bio_event",
		"region",
	}, ClassifierRules())
}

func TestParseConcurrent(t *testing.T) {
	in := doc("# a @SOC02 b c d", "### || h", "~~ PageV01P001 e")
	want, err := Parse(in)
	require.NoError(t, err)

	done := make(chan *Document)
	for i := 0; i < 8; i++ {
		go func() {
			d, _ := Parse(in)
			done <- d
		}()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, want, <-done)
	}
}

func TestParseVeryLongLine(t *testing.T) {
	// Longer than any bufio.Scanner buffer the reader might have used.
	long := "~~ " + strings.Repeat("a ", 9<<20)
	d, err := Parse(doc(long, "# tail"))
	require.NoError(t, err)
	require.Len(t, d.Content, 3)
	line, ok := d.Content[0].(Line)
	require.True(t, ok)
	assert.Greater(t, len(line.Orig), 16<<20)
	assert.Equal(t, "paragraph", d.Content[1].ContentType())
}
