package openiti

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoMagicValue is returned when line 0 lacks MagicPrefix.
var ErrNoMagicValue = errors.New("this does not appear to be an OpenITI mARkdown document")

// Drop describes a non-blank line that produced no content. Line is the
// zero-based line index; the magic line is line 0.
type Drop struct {
	Line   int        `json:"line"`
	Text   string     `json:"text"`
	Reason DropReason `json:"reason"`
}

// Parser classifies documents. The zero value is ready to use.
type Parser struct {
	// OnDrop, if set, is called for every non-blank line that was
	// discarded. It does not change the returned Document.
	OnDrop func(Drop)
}

// Parse parses a complete document held in memory.
func Parse(input string) (*Document, error) {
	var p Parser
	return p.Parse(input)
}

// ParseReader parses a document read from r.
func ParseReader(r io.Reader) (*Document, error) {
	var p Parser
	return p.ParseReader(r)
}

func (p *Parser) Parse(input string) (*Document, error) {
	return p.ParseReader(strings.NewReader(input))
}

func (p *Parser) ParseReader(r io.Reader) (*Document, error) {
	br := bufio.NewReader(r)

	doc := &Document{Metadata: []string{}, Content: []Content{}}
	lineNo := 0
	for {
		// ReadString has no line-length cap; whole chapters can sit on
		// one physical line.
		raw, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading document: %w", err)
		}
		if raw == "" && err == io.EOF {
			break
		}
		trimmed := strings.TrimSpace(raw)
		if lineNo == 0 {
			if !strings.HasPrefix(trimmed, MagicPrefix) {
				return nil, fmt.Errorf("line 0: %w", ErrNoMagicValue)
			}
			doc.Magic = trimmed
		} else {
			p.classify(doc, lineNo, trimmed)
		}
		lineNo++
		if err == io.EOF {
			break
		}
	}
	if lineNo == 0 {
		return nil, fmt.Errorf("empty input: %w", ErrNoMagicValue)
	}
	return doc, nil
}

// classify runs the rule cascade over one trimmed line.
func (p *Parser) classify(doc *Document, lineNo int, line string) {
	for _, r := range classifierRules {
		if !r.match(line) {
			continue
		}
		emitted := len(doc.Content)
		if reason, dropped := r.apply(doc, line); dropped {
			p.drop(lineNo, line, reason)
		} else if len(doc.Content) == emitted && r.name != ruleMetadata {
			p.drop(lineNo, line, DropEmptyLine)
		}
		return
	}
	if line != "" {
		p.drop(lineNo, line, DropUnrecognized)
	}
}

func (p *Parser) drop(lineNo int, line string, reason DropReason) {
	if p.OnDrop != nil {
		p.OnDrop(Drop{Line: lineNo, Text: line, Reason: reason})
	}
}

// lineRule is one step of the classifier cascade. apply reports a drop
// reason when the line matched but yielded nothing.
type lineRule struct {
	name  string
	match func(line string) bool
	apply func(doc *Document, line string) (DropReason, bool)
}

const (
	ruleMetadata   = "metadata"
	rulePage       = "page"
	ruleRiwaya     = "riwaya"
	ruleRoute      = "route"
	ruleMorpho     = "morphological_pattern"
	ruleParagraph  = "paragraph"
	ruleLine       = "line"
	ruleEditorial  = "editorial"
	ruleHeader     = "header"
	ruleDictionary = "dictionary"
	ruleDoxography = "doxography"
	ruleBioEvent   = "bio_event"
	ruleRegion     = "region"
)

// classifierRules is evaluated top to bottom and the first match wins.
// Several prefixes overlap, so the order is part of the format.
var classifierRules = []lineRule{
	{ruleMetadata, hasPrefix(TagMeta), applyMetadata},
	{rulePage, hasPrefix(TagPage), applyPage},
	{ruleRiwaya, hasPrefix(TagRiwaya), applyRiwaya},
	{ruleRoute, hasPrefix(TagRouteFrom), applyRoute},
	{ruleMorpho, morphoRe.MatchString, applyMorpho},
	{ruleParagraph, paragraphRe.MatchString, applyParagraph},
	{ruleLine, hasPrefix(TagLine), applyLine},
	{ruleEditorial, hasPrefix(TagEditorial), applyEditorial},
	{ruleHeader, hasPrefix(TagHeader1), applyHeader},
	{ruleDictionary, hasPrefix(TagDictionary), applyDictionary},
	{ruleDoxography, hasPrefix(TagDoxography), applyDoxography},
	{ruleBioEvent, matchBioEvent, applyBioEvent},
	{ruleRegion, regionRe.MatchString, applyRegion},
}

// ClassifierRules returns the rule names in evaluation order.
func ClassifierRules() []string {
	names := make([]string, len(classifierRules))
	for i, r := range classifierRules {
		names[i] = r.name
	}
	return names
}

func hasPrefix(tag string) func(string) bool {
	return func(line string) bool { return strings.HasPrefix(line, tag) }
}

func matchBioEvent(line string) bool {
	return bioRe.MatchString(line) || strings.HasPrefix(line, TagBio) || strings.HasPrefix(line, TagEvent)
}

func appendLine(doc *Document, text string, kind LineKind, isnad bool) {
	if l, ok := ParseLine(text, kind, isnad); ok {
		doc.Content = append(doc.Content, l)
	}
}

func removeAll(line string, tags []string) string {
	for _, t := range tags {
		line = strings.ReplaceAll(line, t, "")
	}
	return line
}

func applyMetadata(doc *Document, line string) (DropReason, bool) {
	if line == TagMetaEnd {
		return 0, false
	}
	for strings.HasPrefix(line, TagMeta) {
		line = line[len(TagMeta):]
	}
	doc.Metadata = append(doc.Metadata, strings.TrimSpace(line))
	return 0, false
}

func applyPage(doc *Document, line string) (DropReason, bool) {
	m := pageRe.FindStringSubmatch(line)
	if m == nil {
		return DropMalformedPage, true
	}
	doc.Content = append(doc.Content, PageNumber{Volume: m[1], Page: m[2]})
	return 0, false
}

func applyRiwaya(doc *Document, line string) (DropReason, bool) {
	doc.Content = append(doc.Content, Paragraph{Orig: line, Kind: ParagraphNarration})
	appendLine(doc, strings.TrimPrefix(line, TagRiwaya), LineNormal, true)
	return 0, false
}

func applyRoute(doc *Document, line string) (DropReason, bool) {
	appendLine(doc, line, LineRouteOrDistance, false)
	return 0, false
}

func applyMorpho(doc *Document, line string) (DropReason, bool) {
	m := morphoRe.FindStringSubmatch(line)
	doc.Content = append(doc.Content, MorphologicalPattern{Orig: line, Category: m[1]})
	return 0, false
}

func applyParagraph(doc *Document, line string) (DropReason, bool) {
	rest := line[len(TagParagraph):]
	if strings.Contains(line, TagHemistich) {
		appendLine(doc, rest, LineVerse, false)
		return 0, false
	}
	doc.Content = append(doc.Content, Paragraph{Orig: line, Kind: ParagraphNormal})
	appendLine(doc, rest, LineNormal, false)
	return 0, false
}

func applyLine(doc *Document, line string) (DropReason, bool) {
	appendLine(doc, line, LineNormal, false)
	return 0, false
}

func applyEditorial(doc *Document, line string) (DropReason, bool) {
	doc.Content = append(doc.Content, Editorial{Orig: line})
	return 0, false
}

func applyHeader(doc *Document, line string) (DropReason, bool) {
	value := StripPhraseTags(removeAll(line, headerTags))
	doc.Content = append(doc.Content, SectionHeader{Orig: line, Value: value, Level: headerLevel(line)})
	return 0, false
}

// headerLevel returns the deepest header marker present, 1 by default.
func headerLevel(line string) int {
	for i, tag := range headerTags {
		if strings.Contains(line, tag) {
			return len(headerTags) - i
		}
	}
	return 1
}

func applyDictionary(doc *Document, line string) (DropReason, bool) {
	kind := DictionaryBibliographic
	switch {
	case strings.Contains(line, TagDicLexical):
		kind = DictionaryLexical
	case strings.Contains(line, TagDicNisba):
		kind = DictionaryNisba
	case strings.Contains(line, TagDicTopo):
		kind = DictionaryTopographic
	}
	doc.Content = append(doc.Content, DictionaryUnit{Orig: line, Kind: kind})
	appendLine(doc, removeAll(line, dictionaryTags), LineNormal, false)
	return 0, false
}

func applyDoxography(doc *Document, line string) (DropReason, bool) {
	kind := DoxographyPositional
	if strings.Contains(line, TagDoxSection) {
		kind = DoxographySectional
	}
	doc.Content = append(doc.Content, DoxographicalItem{Orig: line, Kind: kind})
	appendLine(doc, removeAll(line, doxographyTags), LineNormal, false)
	return 0, false
}

// bioKinds is checked in order; the first literal present decides.
var bioKinds = []struct {
	tags []string
	kind BioKind
}{
	{[]string{TagListNamesFull, TagListNames}, BioNameList},
	{[]string{TagBioRefFull, TagBioRef}, BioReference},
	{[]string{TagBioWomanFull, TagBioWoman}, BioWoman},
	{[]string{TagListEventsFull, TagListEvents}, BioEventList},
	{[]string{TagEventFull, TagEvent}, BioEvent},
}

func bioKind(line string) BioKind {
	for _, bk := range bioKinds {
		for _, tag := range bk.tags {
			if strings.Contains(line, tag) {
				return bk.kind
			}
		}
	}
	return BioMan
}

func applyBioEvent(doc *Document, line string) (DropReason, bool) {
	doc.Content = append(doc.Content, BioOrEvent{Orig: line, Kind: bioKind(line)})
	appendLine(doc, removeAll(line, bioEventTags), LineNormal, false)
	return 0, false
}

func applyRegion(doc *Document, line string) (DropReason, bool) {
	doc.Content = append(doc.Content, AdministrativeRegion{Orig: line})
	return 0, false
}
