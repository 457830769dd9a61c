package openiti

import "fmt"

// enumText is shared by the String methods below.
func enumText(names []string, i int) string {
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("unknown(%d)", i)
}

type ParagraphKind int

const (
	ParagraphNormal ParagraphKind = iota
	ParagraphNarration
)

var paragraphKindNames = []string{"normal", "narration"}

func (k ParagraphKind) String() string               { return enumText(paragraphKindNames, int(k)) }
func (k ParagraphKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

type LineKind int

const (
	LineNormal LineKind = iota
	LineRouteOrDistance
	LineVerse
)

var lineKindNames = []string{"normal", "route_or_distance", "verse"}

func (k LineKind) String() string               { return enumText(lineKindNames, int(k)) }
func (k LineKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

type DictionaryKind int

const (
	DictionaryNisba DictionaryKind = iota
	DictionaryTopographic
	DictionaryLexical
	DictionaryBibliographic
)

var dictionaryKindNames = []string{"nisba", "topographic", "lexical", "bibliographic"}

func (k DictionaryKind) String() string               { return enumText(dictionaryKindNames, int(k)) }
func (k DictionaryKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

type DoxographyKind int

const (
	DoxographyPositional DoxographyKind = iota
	DoxographySectional
)

var doxographyKindNames = []string{"positional", "sectional"}

func (k DoxographyKind) String() string               { return enumText(doxographyKindNames, int(k)) }
func (k DoxographyKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

type BioKind int

const (
	BioMan BioKind = iota
	BioWoman
	BioReference
	BioNameList
	BioEvent
	BioEventList
)

var bioKindNames = []string{"man", "woman", "reference", "name_list", "event", "event_list"}

func (k BioKind) String() string               { return enumText(bioKindNames, int(k)) }
func (k BioKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

type DateKind int

const (
	DateBirth DateKind = iota
	DateDeath
	DateOther
)

var dateKindNames = []string{"birth", "death", "other"}

func (k DateKind) String() string               { return enumText(dateKindNames, int(k)) }
func (k DateKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

type EntityKind int

const (
	EntitySource EntityKind = iota
	EntitySocial
	EntityTopographic
	EntityPersonal
)

var entityKindNames = []string{"source", "social", "topographic", "personal"}

func (k EntityKind) String() string               { return enumText(entityKindNames, int(k)) }
func (k EntityKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// DropReason says why a non-blank line produced no content.
type DropReason int

const (
	DropMalformedPage DropReason = iota
	DropUnrecognized
	DropEmptyLine
)

var dropReasonNames = []string{"malformed_page", "unrecognized", "empty_line"}

func (r DropReason) String() string               { return enumText(dropReasonNames, int(r)) }
func (r DropReason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }
