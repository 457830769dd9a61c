package openiti

import (
	"regexp"
	"strings"
)

var (
	userTagRe = regexp.MustCompile(`^` + userTagPattern + `$`)
	autoTagRe = regexp.MustCompile(`^` + autoTagPattern + `$`)
)

// phraseFragments maps each zero-payload phrase marker to its fragment.
// The hemistich keeps its token text and is handled separately.
var phraseFragments = map[string]Fragment{
	TagMilestone:   Milestone{},
	TagMatn:        Matn{},
	TagHukm:        Hukm{},
	TagRouteFrom:   RouteFrom{},
	TagRouteToward: RouteToward{},
	TagRouteDist:   RouteDistance{},
}

var dateIntroducers = []struct {
	tag  string
	kind DateKind
}{
	{TagYearBirth, DateBirth},
	{TagYearDeath, DateDeath},
	{TagYearOther, DateOther},
}

// namedRefIntroducers is ordered so that every full spelling is tried
// before the short spelling it starts with.
var namedRefIntroducers = []struct {
	tag  string
	kind EntityKind
}{
	{TagTopoFull, EntityTopographic},
	{TagTopo, EntityTopographic},
	{TagPersonFull, EntityPersonal},
	{TagPerson, EntityPersonal},
	{TagSource, EntitySource},
	{TagSocialFull, EntitySocial},
	{TagSocial, EntitySocial},
}

// lookahead is the tokenizer's carried state. A zero value is idle; after
// a named-entity marker it holds the number of words the next free-text
// token owes to that entity.
type lookahead struct {
	words int
	kind  EntityKind
}

func (la lookahead) pending() bool { return la.words > 0 }

// ParseLine tokenizes one line of text into a Line. Leading "~~" markers
// are removed first. It reports false when stripping every tag leaves no
// text and the line carries no page marker.
func ParseLine(text string, kind LineKind, isnad bool) (Line, bool) {
	for strings.HasPrefix(text, TagLine) {
		text = text[len(TagLine):]
	}

	plain := StripPhraseTags(text)
	if plain == "" && !pageRe.MatchString(text) {
		return Line{}, false
	}

	line := Line{Orig: text, Text: plain, Kind: kind}
	if isnad {
		line.Fragments = append(line.Fragments, Isnad{})
	}

	var la lookahead
	last := 0
	for _, loc := range tokenRe.FindAllStringIndex(text, -1) {
		line.Fragments, la = appendText(line.Fragments, text[last:loc[0]], la)
		f, ok := classifyTag(text[loc[0]:loc[1]])
		last = loc[1]
		if !ok {
			continue
		}
		line.Fragments = append(line.Fragments, f)
		if ne, isEntity := f.(NamedEntity); isEntity {
			la = lookahead{words: ne.Extent, kind: ne.Kind}
		}
	}
	line.Fragments, _ = appendText(line.Fragments, text[last:], la)
	return line, true
}

// classifyTag turns one matched tag token into a fragment.
func classifyTag(tok string) (Fragment, bool) {
	if m := pageRe.FindStringSubmatch(tok); m != nil && strings.HasPrefix(tok, TagPage) {
		return PageNumber{Volume: m[1], Page: m[2]}, true
	}
	if m := userTagRe.FindStringSubmatch(tok); m != nil {
		return OpenTagUser{Orig: tok, User: m[1], Type: m[2], Subtype: m[3], SubSubtype: m[4]}, true
	}
	if m := autoTagRe.FindStringSubmatch(tok); m != nil {
		return OpenTagAuto{Orig: tok, Resp: m[1], Type: m[2], Category: m[3], Review: m[4]}, true
	}
	if tok == TagHemistich {
		return Hemistich{Orig: tok}, true
	}
	if f, ok := phraseFragments[tok]; ok {
		return f, true
	}
	for _, d := range dateIntroducers {
		if v, ok := strings.CutPrefix(tok, d.tag); ok {
			return Date{Orig: tok, Value: v, Kind: d.kind}, true
		}
	}
	if v, ok := strings.CutPrefix(tok, TagYearAge); ok {
		return Age{Orig: tok, Value: v}, true
	}
	for _, n := range namedRefIntroducers {
		v, ok := strings.CutPrefix(tok, n.tag)
		if !ok || len(v) != 2 || !isDigit(v[0]) || !isDigit(v[1]) {
			continue
		}
		return NamedEntity{Orig: tok, Prefix: int(v[0] - '0'), Extent: int(v[1] - '0'), Kind: n.kind}, true
	}
	return nil, false
}

// appendText adds the fragments for one free-text token. With a pending
// lookahead the token's trailing words go to the entity; both halves are
// collected right to left and keep that reversed order.
func appendText(frags []Fragment, tok string, la lookahead) ([]Fragment, lookahead) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return frags, la
	}
	if !la.pending() {
		return append(frags, TextPart{Text: tok}), la
	}

	var entity, rest strings.Builder
	words := strings.Split(tok, " ")
	for pos := 0; pos < len(words); pos++ {
		w := words[len(words)-1-pos]
		if pos < la.words {
			entity.WriteString(w)
			entity.WriteByte(' ')
		} else {
			rest.WriteString(w)
			rest.WriteByte(' ')
		}
	}
	if s := strings.TrimSpace(entity.String()); s != "" {
		frags = append(frags, NamedEntityText{Text: s, Kind: la.kind})
	}
	if s := strings.TrimSpace(rest.String()); s != "" {
		frags = append(frags, TextPart{Text: s})
	}
	return frags, lookahead{}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
