package pathstore

import (
	"context"
	"fmt"

	"github.com/dgallion1/oimdp/internal/doctree"
)

const keyPrefix = "oimdp/docs/"

// DocumentKey is the node path of a mirrored document summary.
func DocumentKey(docID string) string { return keyPrefix + docID }

// ChunkKey is the node path of one mirrored chunk.
func ChunkKey(docID string, index int) string {
	return fmt.Sprintf("%s%s/chunks/%05d", keyPrefix, docID, index)
}

// DocumentNode is the mirrored form of a stored document.
type DocumentNode struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Filename    string            `json:"filename"`
	ContentHash string            `json:"content_hash"`
	Fields      map[string]string `json:"fields,omitempty"`
	Items       int               `json:"items"`
	Entities    int               `json:"entities"`
	Chunks      int               `json:"chunks"`
}

// ChunkNode is the mirrored form of one chunk.
type ChunkNode struct {
	ID         string   `json:"id"`
	Index      int      `json:"index"`
	Text       string   `json:"text"`
	Breadcrumb []string `json:"breadcrumb,omitempty"`
	PageStart  string   `json:"page_start,omitempty"`
	PageEnd    string   `json:"page_end,omitempty"`
}

// PutDocument mirrors a document summary.
func (c *Client) PutDocument(ctx context.Context, doc DocumentNode) error {
	return c.PutNode(ctx, DocumentKey(doc.ID), NodeRequest{Value: doc, MergeMode: "replace", Source: "oimdp"})
}

// PutChunk mirrors one chunk and links it to its document.
func (c *Client) PutChunk(ctx context.Context, docID string, ch doctree.Chunk) error {
	key := ChunkKey(docID, ch.Index)
	node := ChunkNode{
		ID:         ch.ID,
		Index:      ch.Index,
		Text:       ch.Text,
		Breadcrumb: ch.Breadcrumb,
		PageStart:  ch.PageStart.String(),
		PageEnd:    ch.PageEnd.String(),
	}
	if err := c.PutNode(ctx, key, NodeRequest{Value: node, MergeMode: "replace", Source: "oimdp"}); err != nil {
		return err
	}
	return c.PutLink(ctx, LinkRequest{From: key, To: DocumentKey(docID), Weight: 1, Summary: "chunk_of"})
}

// DeleteDocument removes a mirrored document and its chunks.
func (c *Client) DeleteDocument(ctx context.Context, docID string) error {
	return c.DeleteNode(ctx, DocumentKey(docID), true)
}
