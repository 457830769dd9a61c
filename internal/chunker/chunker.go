package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/oimdp/internal/doctree"
	"github.com/oklog/ulid/v2"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Minimum chunk size to emit.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		MinChunk:     100,
	}
}

// ChunkTree walks a DocTree and produces structure-aware chunks. Every
// chunk carries the section headers above it and the page range of the
// node it was cut from.
func ChunkTree(tree *doctree.DocTree, cfg Config) []doctree.Chunk {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1500
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = 100
	}

	var chunks []doctree.Chunk
	index := 0

	for _, child := range tree.Children {
		index = walkNode(child, nil, cfg, &chunks, index)
	}

	return chunks
}

// walkNode recursively visits DocNodes, collecting text and splitting into chunks.
func walkNode(node *doctree.DocNode, breadcrumb []string, cfg Config, chunks *[]doctree.Chunk, index int) int {
	// Build breadcrumb for this node.
	var bc []string
	bc = append(bc, breadcrumb...)
	if node.Title != "" {
		bc = append(bc, node.Title)
	}

	// If this node has text, chunk it.
	if node.Text != "" {
		tokens := EstimateTokens(node.Text)
		if tokens <= cfg.ChunkSize {
			// Fits in one chunk.
			if tokens >= cfg.MinChunk {
				*chunks = append(*chunks, newChunk(node, node.Text, bc, index))
				index++
			}
		} else {
			// Split the text.
			parts := splitText(node.Text, cfg.ChunkSize, cfg.ChunkOverlap)
			for _, part := range parts {
				if EstimateTokens(part) >= cfg.MinChunk {
					*chunks = append(*chunks, newChunk(node, part, bc, index))
					index++
				}
			}
		}
	}

	// Recurse into children.
	for _, child := range node.Children {
		index = walkNode(child, bc, cfg, chunks, index)
	}

	return index
}

func newChunk(node *doctree.DocNode, text string, bc []string, index int) doctree.Chunk {
	return doctree.Chunk{
		ID:         ulid.Make().String(),
		Text:       text,
		Index:      index,
		Breadcrumb: copyBreadcrumb(bc),
		PageStart:  node.Start,
		PageEnd:    node.End,
	}
}

// splitText breaks text into chunks of approximately targetTokens, with
// overlap. Paragraphs are packed whole; an oversized paragraph is split by
// sentences, and an oversized sentence by words, since much classical
// Arabic prose carries no punctuation at all.
func splitText(text string, targetTokens, overlapTokens int) []string {
	p := &packer{target: targetTokens, overlap: overlapTokens, sep: "\n\n"}
	for _, para := range splitByParagraphs(text) {
		tokens := EstimateTokens(para)
		if tokens > targetTokens {
			p.flush(false)
			p.parts = append(p.parts, splitBySentences(para, targetTokens, overlapTokens)...)
			continue
		}
		p.add(para, tokens)
	}
	return p.finish()
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitBySentences breaks a large paragraph into sentence-based chunks.
func splitBySentences(text string, targetTokens, overlapTokens int) []string {
	p := &packer{target: targetTokens, overlap: overlapTokens, sep: " "}
	// Word runs leave room for the carried overlap.
	runSize := targetTokens - overlapTokens
	if runSize <= 0 {
		runSize = targetTokens
	}
	for _, sent := range splitSentences(text) {
		tokens := EstimateTokens(sent)
		if tokens <= targetTokens {
			p.add(sent, tokens)
			continue
		}
		for _, run := range splitWords(sent, runSize) {
			p.add(run, EstimateTokens(run))
		}
	}
	return p.finish()
}

// splitWords cuts text into runs of whole words of at most targetTokens.
func splitWords(text string, targetTokens int) []string {
	var (
		runs   []string
		run    []string
		tokens float64
	)
	for _, w := range strings.Fields(text) {
		wt := wordTokens(w)
		if len(run) > 0 && tokens+wt > float64(targetTokens) {
			runs = append(runs, strings.Join(run, " "))
			run, tokens = nil, 0
		}
		run = append(run, w)
		tokens += wt
	}
	if len(run) > 0 {
		runs = append(runs, strings.Join(run, " "))
	}
	return runs
}

// packer accumulates pieces into parts of about target tokens. Each new
// part after a full one starts with the tail of the previous part.
type packer struct {
	target  int
	overlap int
	sep     string

	parts   []string
	buf     strings.Builder
	tokens  int
	carried bool // buf holds only overlap from the previous part
}

func (p *packer) add(piece string, tokens int) {
	if p.tokens > 0 && p.tokens+tokens > p.target {
		if p.carried {
			p.buf.Reset()
			p.tokens = 0
		} else {
			p.flush(true)
		}
	}
	if p.buf.Len() > 0 {
		p.buf.WriteString(p.sep)
	}
	p.buf.WriteString(piece)
	p.tokens += tokens
	p.carried = false
}

func (p *packer) flush(carry bool) {
	if p.tokens == 0 || p.carried {
		p.buf.Reset()
		p.tokens = 0
		p.carried = false
		return
	}
	text := p.buf.String()
	p.parts = append(p.parts, text)
	p.buf.Reset()
	p.tokens = 0
	if !carry {
		return
	}
	if tail := getOverlapText(text, p.overlap); tail != "" {
		p.buf.WriteString(tail)
		p.tokens = EstimateTokens(tail)
		p.carried = true
	}
}

func (p *packer) finish() []string {
	p.flush(false)
	return p.parts
}

// splitSentences splits after Latin and Arabic sentence punctuation
// followed by a space.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		next := i + utf8.RuneLen(r)
		if isSentenceEnd(r) && next < len(text) && text[next] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}

	return sentences
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '؟', '۔':
		return true
	}
	return false
}

// getOverlapText returns the trailing words of text worth at most
// targetTokens. It returns "" when that would be the whole text.
func getOverlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	budget := float64(targetTokens)
	start := len(words)
	for start > 0 {
		wt := wordTokens(words[start-1])
		if wt > budget {
			break
		}
		budget -= wt
		start--
	}
	if start == len(words) || start == 0 {
		return ""
	}
	return strings.Join(words[start:], " ")
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}
