package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/oimdp/internal/doctree"
	"github.com/dgallion1/oimdp/internal/openiti"
)

// Extractor pulls the raw mARkdown text out of a source file.
type Extractor interface {
	Extract(r io.Reader, filename string) (string, error)
}

// SupportedExtensions lists file extensions this service can handle.
// OpenITI text files are commonly published without an extension or with
// their workflow status as the extension.
var SupportedExtensions = map[string]bool{
	"":            true,
	".txt":        true,
	".md":         true,
	".markdown":   true,
	".mark":       true,
	".completed":  true,
	".inprogress": true,
	".html":       true,
	".htm":        true,
	".pdf":        true,
	".docx":       true,
}

// Options tune extraction.
type Options struct {
	FallbackPdftotext bool
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string, opts Options) (Extractor, error) {
	ext := extension(filename)
	switch ext {
	case "", ".txt", ".md", ".markdown", ".mark", ".completed", ".inprogress":
		return &TextExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[extension(filename)]
}

// extension lowercases the extension. OpenITI URIs such as
// "0241IbnHanbal.Musnad.Shamela0025794-ara1" contain dots that are not
// extensions, so only known suffixes count.
func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || SupportedExtensions[ext] {
		return ext
	}
	if strings.Contains(ext, "-") {
		return ""
	}
	return ext
}

// Result is the outcome of one parse.
type Result struct {
	Source   string
	Document *openiti.Document
	Tree     *doctree.DocTree
	Drops    []openiti.Drop
}

// Parse extracts the text of r, classifies it and builds the section tree.
func Parse(r io.Reader, filename string, opts Options) (*Result, error) {
	ex, err := ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	src, err := ex.Extract(r, filename)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	return ParseText(src, filename)
}

// ParseText classifies already-extracted text.
func ParseText(src, filename string) (*Result, error) {
	res := &Result{Source: src}
	p := openiti.Parser{OnDrop: func(d openiti.Drop) { res.Drops = append(res.Drops, d) }}
	doc, err := p.Parse(src)
	if err != nil {
		return nil, err
	}
	res.Document = doc
	res.Tree = BuildTree(doc, filename)
	return res, nil
}
