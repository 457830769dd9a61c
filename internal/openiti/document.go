package openiti

// Document is the parsed form of one OpenITI mARkdown file.
type Document struct {
	Magic    string    `json:"magic_value"`
	Metadata []string  `json:"simple_metadata"`
	Content  []Content `json:"content"`
}

// Content is one classified line of a document. The set of
// implementations is closed; switch on the concrete type.
type Content interface {
	ContentType() string
	isContent()
}

// Fragment is one typed piece of a tokenized Line.
type Fragment interface {
	FragmentType() string
	isFragment()
}

// PageNumber marks the start of a printed page. It appears both as a
// content item and as a fragment inside a Line.
type PageNumber struct {
	Volume string `json:"volume"`
	Page   string `json:"page"`
}

// Paragraph opens a new paragraph; Orig is the whole classified line.
type Paragraph struct {
	Orig string        `json:"orig"`
	Kind ParagraphKind `json:"kind"`
}

// Line is a tokenized run of text. Text is the line with every inline
// tag removed; it is empty when nothing but tags remained.
type Line struct {
	Orig      string     `json:"orig"`
	Text      string     `json:"text,omitempty"`
	Fragments []Fragment `json:"fragments"`
	Kind      LineKind   `json:"kind"`
}

// HasText reports whether the line kept any prose after stripping.
func (l Line) HasText() bool { return l.Text != "" }

type MorphologicalPattern struct {
	Orig     string `json:"orig"`
	Category string `json:"category"`
}

type Editorial struct {
	Orig string `json:"orig"`
}

// SectionHeader is a heading of Level 1 through 5.
type SectionHeader struct {
	Orig  string `json:"orig"`
	Value string `json:"value"`
	Level int    `json:"level"`
}

type DictionaryUnit struct {
	Orig string         `json:"orig"`
	Kind DictionaryKind `json:"kind"`
}

type DoxographicalItem struct {
	Orig string         `json:"orig"`
	Kind DoxographyKind `json:"kind"`
}

type BioOrEvent struct {
	Orig string  `json:"orig"`
	Kind BioKind `json:"kind"`
}

type AdministrativeRegion struct {
	Orig string `json:"orig"`
}

func (PageNumber) ContentType() string           { return "page_number" }
func (Paragraph) ContentType() string            { return "paragraph" }
func (Line) ContentType() string                 { return "line" }
func (MorphologicalPattern) ContentType() string { return "morphological_pattern" }
func (Editorial) ContentType() string            { return "editorial" }
func (SectionHeader) ContentType() string        { return "section_header" }
func (DictionaryUnit) ContentType() string       { return "dictionary_unit" }
func (DoxographicalItem) ContentType() string    { return "doxographical_item" }
func (BioOrEvent) ContentType() string           { return "bio_or_event" }
func (AdministrativeRegion) ContentType() string { return "administrative_region" }

func (PageNumber) isContent()           {}
func (Paragraph) isContent()            {}
func (Line) isContent()                 {}
func (MorphologicalPattern) isContent() {}
func (Editorial) isContent()            {}
func (SectionHeader) isContent()        {}
func (DictionaryUnit) isContent()       {}
func (DoxographicalItem) isContent()    {}
func (BioOrEvent) isContent()           {}
func (AdministrativeRegion) isContent() {}

// Fragments.

// Isnad opens a chain of transmission.
type Isnad struct{}

// OpenTagUser is a human-assigned tag @USER@TYPE_SUBTYPE[_SUBSUBTYPE]@.
type OpenTagUser struct {
	Orig       string `json:"orig"`
	User       string `json:"user"`
	Type       string `json:"tag_type"`
	Subtype    string `json:"subtype"`
	SubSubtype string `json:"subsubtype,omitempty"`
}

// OpenTagAuto is a pipeline-assigned tag @RES@TYPE@Category@[-@rv@].
type OpenTagAuto struct {
	Orig     string `json:"orig"`
	Resp     string `json:"resp"`
	Type     string `json:"tag_type"`
	Category string `json:"category"`
	Review   string `json:"review,omitempty"`
}

type Hemistich struct {
	Orig string `json:"orig"`
}

type Milestone struct{}
type Matn struct{}
type Hukm struct{}
type RouteFrom struct{}
type RouteToward struct{}
type RouteDistance struct{}

type Date struct {
	Orig  string   `json:"orig"`
	Value string   `json:"value"`
	Kind  DateKind `json:"kind"`
}

type Age struct {
	Orig  string `json:"orig"`
	Value string `json:"value"`
}

// NamedEntity announces that the next Extent words name an entity.
type NamedEntity struct {
	Orig   string     `json:"orig"`
	Prefix int        `json:"prefix"`
	Extent int        `json:"extent"`
	Kind   EntityKind `json:"kind"`
}

// NamedEntityText holds the words claimed by the preceding NamedEntity,
// in right-to-left scan order.
type NamedEntityText struct {
	Text string     `json:"text"`
	Kind EntityKind `json:"kind"`
}

type TextPart struct {
	Text string `json:"text"`
}

func (Isnad) FragmentType() string           { return "isnad" }
func (PageNumber) FragmentType() string      { return "page_number" }
func (OpenTagUser) FragmentType() string     { return "open_tag_user" }
func (OpenTagAuto) FragmentType() string     { return "open_tag_auto" }
func (Hemistich) FragmentType() string       { return "hemistich" }
func (Milestone) FragmentType() string       { return "milestone" }
func (Matn) FragmentType() string            { return "matn" }
func (Hukm) FragmentType() string            { return "hukm" }
func (RouteFrom) FragmentType() string       { return "route_from" }
func (RouteToward) FragmentType() string     { return "route_toward" }
func (RouteDistance) FragmentType() string   { return "route_distance" }
func (Date) FragmentType() string            { return "date" }
func (Age) FragmentType() string             { return "age" }
func (NamedEntity) FragmentType() string     { return "named_entity" }
func (NamedEntityText) FragmentType() string { return "named_entity_text" }
func (TextPart) FragmentType() string        { return "text" }

func (Isnad) isFragment()           {}
func (PageNumber) isFragment()      {}
func (OpenTagUser) isFragment()     {}
func (OpenTagAuto) isFragment()     {}
func (Hemistich) isFragment()       {}
func (Milestone) isFragment()       {}
func (Matn) isFragment()            {}
func (Hukm) isFragment()            {}
func (RouteFrom) isFragment()       {}
func (RouteToward) isFragment()     {}
func (RouteDistance) isFragment()   {}
func (Date) isFragment()            {}
func (Age) isFragment()             {}
func (NamedEntity) isFragment()     {}
func (NamedEntityText) isFragment() {}
func (TextPart) isFragment()        {}

// EntityMention is a named-entity marker together with the text it
// claimed, flattened out of the content tree.
type EntityMention struct {
	Item   int        `json:"item"`
	Kind   EntityKind `json:"kind"`
	Prefix int        `json:"prefix"`
	Extent int        `json:"extent"`
	Text   string     `json:"text"`
	Volume string     `json:"volume,omitempty"`
	Page   string     `json:"page,omitempty"`
}

// Entities lists every named-entity marker in document order. Item is
// the index of the Line in Content. Volume and Page give the most
// recent page marker seen before the entity, if any.
func (d *Document) Entities() []EntityMention {
	var (
		out       []EntityMention
		vol, page string
	)
	for i, c := range d.Content {
		switch v := c.(type) {
		case PageNumber:
			vol, page = v.Volume, v.Page
		case Line:
			open := -1
			for _, f := range v.Fragments {
				switch fv := f.(type) {
				case PageNumber:
					vol, page = fv.Volume, fv.Page
				case NamedEntity:
					out = append(out, EntityMention{
						Item:   i,
						Kind:   fv.Kind,
						Prefix: fv.Prefix,
						Extent: fv.Extent,
						Volume: vol,
						Page:   page,
					})
					open = len(out) - 1
				case NamedEntityText:
					if open >= 0 && out[open].Kind == fv.Kind {
						out[open].Text = fv.Text
					}
					open = -1
				case TextPart:
					open = -1
				}
			}
		}
	}
	return out
}

// Stats counts what a document holds.
type Stats struct {
	Items    int            `json:"items"`
	Lines    int            `json:"lines"`
	Pages    int            `json:"pages"`
	Headers  int            `json:"headers"`
	Entities int            `json:"entities"`
	ByType   map[string]int `json:"by_type"`
}

func (d *Document) Stats() Stats {
	s := Stats{Items: len(d.Content), ByType: make(map[string]int)}
	for _, c := range d.Content {
		s.ByType[c.ContentType()]++
		switch v := c.(type) {
		case Line:
			s.Lines++
			for _, f := range v.Fragments {
				switch f.(type) {
				case NamedEntity:
					s.Entities++
				case PageNumber:
					s.Pages++
				}
			}
		case PageNumber:
			s.Pages++
		case SectionHeader:
			s.Headers++
		}
	}
	return s
}
