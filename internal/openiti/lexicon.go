package openiti

import "regexp"

// MagicPrefix opens every OpenITI mARkdown document.
const MagicPrefix = "######OpenITI#"

// Line-level markers.
const (
	TagMeta      = "#META#"
	TagMetaEnd   = "#META#Header#End#"
	TagPage      = "PageV"
	TagRiwaya    = "# $RWY$"
	TagLine      = "~~"
	TagParagraph = "#"
	TagEditorial = "### |EDITOR|"
)

// Phrase-level markers.
const (
	TagHemistich   = "%~%"
	TagMilestone   = "Milestone300"
	TagMatn        = "@MATN@"
	TagHukm        = "@HUKM@"
	TagRouteFrom   = "#$#FROM"
	TagRouteToward = "#$#TOWA"
	TagRouteDist   = "#$#DIST"
)

// Dated single-shot markers, followed by one to four digits.
const (
	TagYearBirth = "@YB"
	TagYearDeath = "@YD"
	TagYearOther = "@YY"
	TagYearAge   = "@YA"
)

// Named-reference introducers, followed by exactly two digits.
const (
	TagSource     = "@SRC"
	TagSocialFull = "@SOC"
	TagSocial     = "@S"
	TagTopoFull   = "@TOP"
	TagTopo       = "@T"
	TagPersonFull = "@PER"
	TagPerson     = "@P"
)

// Section headers.
const (
	TagHeader1 = "### |"
	TagHeader2 = "### ||"
	TagHeader3 = "### |||"
	TagHeader4 = "### ||||"
	TagHeader5 = "### |||||"
)

// Dictionary units.
const (
	TagDictionary = "### $DIC_"
	TagDicNisba   = "### $DIC_NIS$"
	TagDicTopo    = "### $DIC_TOP$"
	TagDicLexical = "### $DIC_LEX$"
	TagDicBiblio  = "### $DIC_BIB$"
)

// Doxographical items.
const (
	TagDoxography  = "### $DOX_"
	TagDoxPosition = "### $DOX_POS$"
	TagDoxSection  = "### $DOX_SEC$"
)

// Biographies and events.
const (
	TagBio            = "### $BIO_"
	TagEvent          = "### @"
	TagListNames      = "### $$$$"
	TagListNamesFull  = "### $BIO_NLI$"
	TagBioMan         = "### $"
	TagBioManFull     = "### $BIO_MAN$"
	TagBioWoman       = "### $$"
	TagBioWomanFull   = "### $BIO_WOM$"
	TagBioRef         = "### $$$"
	TagBioRefFull     = "### $BIO_REF$"
	TagEventFull      = "### $CHR_EVE$"
	TagListEvents     = "### @ RAW"
	TagListEventsFull = "### $CHR_RAW$"
)

// Group is the precedence group a tag literal belongs to. Within a group,
// a literal that is a textual prefix of another must be tested after it.
type Group int

const (
	GroupPhrase Group = iota
	GroupDate
	GroupNamedRef
	GroupHeader
	GroupDictionary
	GroupDoxography
	GroupBioEvent
)

var groupNames = [...]string{"phrase", "date", "named_ref", "header", "dictionary", "doxography", "bio_event"}

func (g Group) String() string {
	if int(g) < len(groupNames) {
		return groupNames[g]
	}
	return "unknown"
}

// Tag is one entry of the lexicon.
type Tag struct {
	Literal string
	Group   Group
	Name    string
}

// lexicon lists every literal in test order. Longer literals precede
// the literals they extend; ClassifierRules and the tokenizer rely on it.
var lexicon = []Tag{
	{TagHemistich, GroupPhrase, "hemistich"},
	{TagMilestone, GroupPhrase, "milestone"},
	{TagMatn, GroupPhrase, "matn"},
	{TagHukm, GroupPhrase, "hukm"},
	{TagRouteFrom, GroupPhrase, "route_from"},
	{TagRouteToward, GroupPhrase, "route_toward"},
	{TagRouteDist, GroupPhrase, "route_distance"},

	{TagYearBirth, GroupDate, "birth"},
	{TagYearDeath, GroupDate, "death"},
	{TagYearOther, GroupDate, "other"},
	{TagYearAge, GroupDate, "age"},

	{TagTopoFull, GroupNamedRef, "topographic"},
	{TagTopo, GroupNamedRef, "topographic"},
	{TagPersonFull, GroupNamedRef, "personal"},
	{TagPerson, GroupNamedRef, "personal"},
	{TagSource, GroupNamedRef, "source"},
	{TagSocialFull, GroupNamedRef, "social"},
	{TagSocial, GroupNamedRef, "social"},

	{TagHeader5, GroupHeader, "header5"},
	{TagHeader4, GroupHeader, "header4"},
	{TagHeader3, GroupHeader, "header3"},
	{TagHeader2, GroupHeader, "header2"},
	{TagHeader1, GroupHeader, "header1"},

	{TagDicNisba, GroupDictionary, "nis"},
	{TagDicTopo, GroupDictionary, "top"},
	{TagDicLexical, GroupDictionary, "lex"},
	{TagDicBiblio, GroupDictionary, "bib"},

	{TagDoxPosition, GroupDoxography, "pos"},
	{TagDoxSection, GroupDoxography, "sec"},

	{TagListNamesFull, GroupBioEvent, "names"},
	{TagListNames, GroupBioEvent, "names"},
	{TagBioWomanFull, GroupBioEvent, "wom"},
	{TagBioManFull, GroupBioEvent, "man"},
	{TagBioRefFull, GroupBioEvent, "ref"},
	{TagEventFull, GroupBioEvent, "event"},
	{TagListEventsFull, GroupBioEvent, "events"},
	{TagListEvents, GroupBioEvent, "events"},
	{TagEvent, GroupBioEvent, "event"},
	{TagBioRef, GroupBioEvent, "ref"},
	{TagBioWoman, GroupBioEvent, "wom"},
	{TagBioMan, GroupBioEvent, "man"},
}

// Lexicon returns a copy of the ordered tag table.
func Lexicon() []Tag {
	out := make([]Tag, len(lexicon))
	copy(out, lexicon)
	return out
}

// literals returns the group's literals in lexicon order.
func literals(g Group) []string {
	var out []string
	for _, t := range lexicon {
		if t.Group == g {
			out = append(out, t.Literal)
		}
	}
	return out
}

var (
	phraseTags     = literals(GroupPhrase)
	headerTags     = literals(GroupHeader)
	dictionaryTags = literals(GroupDictionary)
	doxographyTags = literals(GroupDoxography)
	bioEventTags   = literals(GroupBioEvent)
)

// Inline shapes shared by the stripper and the tokenizer.
const (
	pagePattern     = `PageV(\d+)P(\d+)`
	userTagPattern  = `@([^@]+?)@([^_@]+?)_([^_@]+?)(?:_([^_@]+?))?@`
	autoTagPattern  = `@([A-Z]{3})@([A-Z]{3,})@([A-Za-z]+)@(?:-@([0tf][ftalmr])@)?`
	datePattern     = `@Y[ABDY]\d{1,4}`
	namedRefPattern = `@TOP\d{2}|@T\d{2}|@PER\d{2}|@P\d{2}|@SRC\d{2}|@SOC\d{2}|@S\d{2}`
)

// Compiled patterns. Package-level values are read-only after init and
// safe for concurrent use.
var (
	pageRe = regexp.MustCompile(pagePattern)

	// strippable covers every inline tag StripPhraseTags removes after
	// the literal phrase markers are gone.
	strippableRe = regexp.MustCompile(
		datePattern + `|` + namedRefPattern + `|` + userTagPattern + `|` + autoTagPattern + `|` + pagePattern,
	)

	// tokenRe splits a line into tags and free text. Branch order decides
	// which tag wins when two could start at the same offset.
	tokenRe = regexp.MustCompile(
		`PageV\d+P\d+` +
			`|@[A-Z]{3}@[A-Z]{3,}@[A-Za-z]+@(?:-@[0tf][ftalmr]@)?` +
			`|@[^@]+?@[^_@]+?_[^_@]+?(?:_[^_@]+?)?@` +
			`|%~%|Milestone300|@MATN@|@HUKM@` +
			`|#\$#FROM|#\$#TOWA|#\$#DIST` +
			`|@YA\d{1,4}|@YD\d{1,4}|@YB\d{1,4}|@YY\d{1,4}` +
			`|@TOP\d{2}|@T\d{2}|@PER\d{2}|@P\d{2}|@SRC\d{2}|@SOC\d{2}|@S\d{2}`,
	)

	whitespaceRunRe = regexp.MustCompile(`[\s\p{Zs}]{2,}`)

	morphoRe    = regexp.MustCompile(`#~:([^:]+?):`)
	paragraphRe = regexp.MustCompile(`^#($|[^#])`)
	bioRe       = regexp.MustCompile(`### \$[^#]`)
	regionRe    = regexp.MustCompile(`(#\$#PROV|#\$#REG\d) .*? #\$#TYPE .*? (#\$#REG\d|#\$#STTL) ([\p{L}\p{N}_# ]+)\s*$`)
)
