package parser

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/oimdp/internal/doctree"
	"github.com/dgallion1/oimdp/internal/openiti"
)

// BuildTree folds a classified document into nested sections. Section
// headers open nodes by level; paragraphs and structural items start new
// text blocks; "~~" continuation lines join the current block.
func BuildTree(doc *openiti.Document, filename string) *doctree.DocTree {
	tree := &doctree.DocTree{Title: documentTitle(doc, filename)}

	type stackEntry struct {
		node  *doctree.DocNode
		level int
	}
	root := &doctree.DocNode{Title: tree.Title}
	stack := []stackEntry{{node: root, level: 0}}

	var (
		loc        doctree.Locator
		block      strings.Builder
		blockStart doctree.Locator
	)

	top := func() *doctree.DocNode { return stack[len(stack)-1].node }

	flushText := func() {
		t := strings.TrimSpace(block.String())
		block.Reset()
		if t == "" {
			return
		}
		n := top()
		if n.Text != "" {
			n.Text += "\n\n" + t
		} else {
			n.Text = t
			n.Start = blockStart
		}
		if n.End.Before(loc) {
			n.End = loc
		}
	}

	seePage := func(vol, page string) {
		loc = toLocator(vol, page)
		if n := top(); n.End.Before(loc) {
			n.End = loc
		}
	}

	for _, c := range doc.Content {
		switch v := c.(type) {
		case openiti.SectionHeader:
			flushText()
			newNode := &doctree.DocNode{Title: v.Value, Level: v.Level, Start: loc, End: loc}

			// Pop stack until we find a parent with lower level.
			for len(stack) > 1 && stack[len(stack)-1].level >= v.Level {
				stack = stack[:len(stack)-1]
			}
			parent := top()
			parent.Children = append(parent.Children, newNode)
			stack = append(stack, stackEntry{node: newNode, level: v.Level})

		case openiti.PageNumber:
			seePage(v.Volume, v.Page)

		case openiti.Line:
			if v.Text != "" {
				if block.Len() > 0 {
					block.WriteByte(' ')
				} else {
					blockStart = loc
				}
				block.WriteString(v.Text)
			}
			for _, f := range v.Fragments {
				if p, ok := f.(openiti.PageNumber); ok {
					seePage(p.Volume, p.Page)
				}
			}

		case openiti.Paragraph, openiti.DictionaryUnit, openiti.DoxographicalItem,
			openiti.BioOrEvent, openiti.Editorial:
			flushText()
		}
	}
	flushText()

	tree.Children = root.Children
	if root.Text != "" {
		lead := &doctree.DocNode{Text: root.Text, Start: root.Start, End: root.End}
		tree.Children = append([]*doctree.DocNode{lead}, tree.Children...)
	}
	return tree
}

func toLocator(vol, page string) doctree.Locator {
	v, _ := strconv.Atoi(vol)
	p, _ := strconv.Atoi(page)
	return doctree.Locator{Volume: v, Page: p}
}

// documentTitle prefers the BookTITLE metadata field, then any other
// title field, then the file name.
func documentTitle(doc *openiti.Document, filename string) string {
	var fallback string
	for _, f := range doc.Fields() {
		if f.Value == "" || f.Value == "NODATA" {
			continue
		}
		if strings.EqualFold(f.Key, "BookTITLE") {
			return f.Value
		}
		if fallback == "" && strings.Contains(strings.ToUpper(f.Key), "TITLE") {
			fallback = f.Value
		}
	}
	if fallback != "" {
		return fallback
	}
	if filename == "" {
		return ""
	}
	base := filepath.Base(filename)
	if ext := extension(base); ext != "" {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base
}
