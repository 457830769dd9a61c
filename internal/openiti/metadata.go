package openiti

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// MetadataField is one structured simple-metadata line, e.g.
// "000.SortField :: Shamela_0023833".
type MetadataField struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// metadataGrammar matches "NNN.Key :: value". Keys may contain dots.
//
//nolint:govet // participle grammar tags are not standard struct tags
type metadataGrammar struct {
	Index string `@Int "."`
	Key   string `@Key ( @"." @Key )*`
	Value string `@Value?`
}

var metadataLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Value", Pattern: `::[^\n]*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Key", Pattern: `[^\s:.]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var metadataParser = participle.MustBuild[metadataGrammar](
	participle.Lexer(metadataLexer),
	participle.Elide("Whitespace"),
)

// ParseMetadataField parses one simple-metadata line. It reports false
// for lines that are not of the NNN.Key :: value shape.
func ParseMetadataField(s string) (MetadataField, bool) {
	g, err := metadataParser.ParseString("", strings.TrimSpace(s))
	if err != nil {
		return MetadataField{}, false
	}
	idx, err := strconv.Atoi(g.Index)
	if err != nil {
		return MetadataField{}, false
	}
	return MetadataField{
		Index: idx,
		Key:   g.Key,
		Value: strings.TrimSpace(strings.TrimPrefix(g.Value, "::")),
	}, true
}

// Fields returns the structured metadata lines in document order.
// Lines that do not parse are skipped.
func (d *Document) Fields() []MetadataField {
	var out []MetadataField
	for _, m := range d.Metadata {
		if f, ok := ParseMetadataField(m); ok {
			out = append(out, f)
		}
	}
	return out
}

// Field returns the value of the first field named key.
func (d *Document) Field(key string) (string, bool) {
	for _, f := range d.Fields() {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}
