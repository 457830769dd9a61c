package doctree

import (
	"fmt"
	"regexp"
	"strconv"
)

// Locator is a printed-page position taken from a PageV..P.. marker.
type Locator struct {
	Volume int `json:"volume"`
	Page   int `json:"page"`
}

// IsZero reports whether no page marker has been seen.
func (l Locator) IsZero() bool { return l.Volume == 0 && l.Page == 0 }

// String renders the locator the way the markup writes it, e.g. "V01P023".
func (l Locator) String() string {
	if l.IsZero() {
		return ""
	}
	return fmt.Sprintf("V%02dP%03d", l.Volume, l.Page)
}

var locatorRe = regexp.MustCompile(`^V(\d+)P(\d+)$`)

// ParseLocator reverses String. The empty string is the zero locator.
func ParseLocator(s string) (Locator, bool) {
	if s == "" {
		return Locator{}, true
	}
	m := locatorRe.FindStringSubmatch(s)
	if m == nil {
		return Locator{}, false
	}
	v, _ := strconv.Atoi(m[1])
	p, _ := strconv.Atoi(m[2])
	return Locator{Volume: v, Page: p}, true
}

// Before orders locators by volume, then page.
func (l Locator) Before(o Locator) bool {
	if l.Volume != o.Volume {
		return l.Volume < o.Volume
	}
	return l.Page < o.Page
}

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Level    int        // Header level 1-5, 0 for leaf text
	Text     string     // Text content of this node (may be empty for container nodes)
	Start    Locator    // Page marker in force when the node's text began
	End      Locator    // Last page marker seen inside the node
	Children []*DocNode // Subsections
}

// Chunk is a sized text segment with structural context.
type Chunk struct {
	ID         string   // ULID
	Text       string   // Chunk text content
	Index      int      // Sequence number within document
	Breadcrumb []string // Section hierarchy, e.g. ["Kitab al-Salat", "Bab al-Adhan"]
	PageStart  Locator
	PageEnd    Locator
}
