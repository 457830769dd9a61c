// Package store persists parsed documents in SQLite.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
	_ "modernc.org/sqlite"

	"github.com/dgallion1/oimdp/internal/doctree"
	"github.com/dgallion1/oimdp/internal/openiti"
)

var (
	// ErrNotFound is returned when no document has the requested ID.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a document with the same content hash
	// is already stored.
	ErrDuplicate = errors.New("document already stored")
)

// Store is a SQLite-backed document store. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Summary describes a stored document without its content.
type Summary struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash"`
	Items       int       `json:"items"`
	Lines       int       `json:"lines"`
	Pages       int       `json:"pages"`
	Headers     int       `json:"headers"`
	Entities    int       `json:"entities"`
	Chunks      int       `json:"chunks"`
	CreatedAt   time.Time `json:"created_at"`
}

// Record is a stored document with its source text and encoded content.
type Record struct {
	Summary
	Magic    string                  `json:"magic_value"`
	Metadata []string                `json:"simple_metadata"`
	Fields   []openiti.MetadataField `json:"fields,omitempty"`
	Source   string                  `json:"-"`
	Content  json.RawMessage         `json:"content"`
}

// NewDocument is the input to SaveDocument.
type NewDocument struct {
	Filename string
	Title    string
	Source   string
	Document *openiti.Document
	Chunks   []doctree.Chunk
}

// ContentHash returns the hex BLAKE3 digest used for deduplication.
func ContentHash(source string) string {
	sum := blake3.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Open opens (creating if needed) the database at path with WAL mode and
// foreign keys enabled.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	title TEXT NOT NULL,
	magic TEXT NOT NULL,
	content_hash TEXT UNIQUE NOT NULL,
	source BLOB NOT NULL,
	content_json TEXT NOT NULL,
	items INTEGER NOT NULL DEFAULT 0,
	lines INTEGER NOT NULL DEFAULT 0,
	pages INTEGER NOT NULL DEFAULT 0,
	headers INTEGER NOT NULL DEFAULT 0,
	entities INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
	doc_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	raw TEXT NOT NULL,
	field_index INTEGER,
	field_key TEXT,
	field_value TEXT,
	PRIMARY KEY(doc_id, position),
	FOREIGN KEY(doc_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS chunks (
	id TEXT PRIMARY KEY,
	doc_id TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	text TEXT NOT NULL,
	breadcrumb TEXT NOT NULL,
	page_start TEXT NOT NULL,
	page_end TEXT NOT NULL,
	FOREIGN KEY(doc_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS entities (
	doc_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	item INTEGER NOT NULL,
	kind TEXT NOT NULL,
	prefix INTEGER NOT NULL,
	extent INTEGER NOT NULL,
	text TEXT NOT NULL,
	volume TEXT NOT NULL,
	page TEXT NOT NULL,
	PRIMARY KEY(doc_id, position),
	FOREIGN KEY(doc_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_chunks_doc ON chunks(doc_id, chunk_index);
CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities(kind, text);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveDocument stores a parsed document with its metadata, chunks and
// named entities in one transaction. It returns ErrDuplicate when the
// same source text is already stored.
func (s *Store) SaveDocument(ctx context.Context, in NewDocument) (Summary, error) {
	if in.Document == nil {
		return Summary{}, errors.New("save document: nil document")
	}
	hash := ContentHash(in.Source)
	if _, found, err := s.FindByHash(ctx, hash); err != nil {
		return Summary{}, err
	} else if found {
		return Summary{}, ErrDuplicate
	}

	content, err := openiti.MarshalContent(in.Document.Content)
	if err != nil {
		return Summary{}, fmt.Errorf("encode content: %w", err)
	}
	packed, err := compress(in.Source)
	if err != nil {
		return Summary{}, fmt.Errorf("compress source: %w", err)
	}

	st := in.Document.Stats()
	sum := Summary{
		ID:          ulid.Make().String(),
		Filename:    in.Filename,
		Title:       in.Title,
		ContentHash: hash,
		Items:       st.Items,
		Lines:       st.Lines,
		Pages:       st.Pages,
		Headers:     st.Headers,
		Entities:    st.Entities,
		Chunks:      len(in.Chunks),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Summary{}, err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO documents (id, filename, title, magic, content_hash, source, content_json,
	items, lines, pages, headers, entities, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(content_hash) DO NOTHING;
`
	res, err := tx.ExecContext(ctx, stmt,
		sum.ID, sum.Filename, sum.Title, in.Document.Magic, hash, packed, string(content),
		sum.Items, sum.Lines, sum.Pages, sum.Headers, sum.Entities,
		sum.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Summary{}, fmt.Errorf("insert document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Summary{}, ErrDuplicate
	}

	if err := insertMetadata(ctx, tx, sum.ID, in.Document.Metadata); err != nil {
		return Summary{}, err
	}
	if err := insertChunks(ctx, tx, sum.ID, in.Chunks); err != nil {
		return Summary{}, err
	}
	if err := insertEntities(ctx, tx, sum.ID, in.Document.Entities()); err != nil {
		return Summary{}, err
	}

	if err := tx.Commit(); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func insertMetadata(ctx context.Context, tx *sql.Tx, docID string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO metadata (doc_id, position, raw, field_index, field_key, field_value)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, raw := range lines {
		var idx, key, value any
		if f, ok := openiti.ParseMetadataField(raw); ok {
			idx, key, value = f.Index, f.Key, f.Value
		}
		if _, err := stmt.ExecContext(ctx, docID, i, raw, idx, key, value); err != nil {
			return fmt.Errorf("insert metadata: %w", err)
		}
	}
	return nil
}

func insertChunks(ctx context.Context, tx *sql.Tx, docID string, chunks []doctree.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO chunks (id, doc_id, chunk_index, text, breadcrumb, page_start, page_end)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range chunks {
		bc, err := json.Marshal(c.Breadcrumb)
		if err != nil {
			return err
		}
		id := c.ID
		if id == "" {
			id = ulid.Make().String()
		}
		if _, err := stmt.ExecContext(ctx, id, docID, c.Index, c.Text, string(bc),
			c.PageStart.String(), c.PageEnd.String()); err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}
	return nil
}

func insertEntities(ctx context.Context, tx *sql.Tx, docID string, ents []openiti.EntityMention) error {
	if len(ents) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO entities (doc_id, position, item, kind, prefix, extent, text, volume, page)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, e := range ents {
		if _, err := stmt.ExecContext(ctx, docID, i, e.Item, e.Kind.String(), e.Prefix, e.Extent,
			e.Text, e.Volume, e.Page); err != nil {
			return fmt.Errorf("insert entity: %w", err)
		}
	}
	return nil
}

const summaryColumns = `d.id, d.filename, d.title, d.content_hash, d.items, d.lines, d.pages,
	d.headers, d.entities, (SELECT COUNT(*) FROM chunks c WHERE c.doc_id = d.id), d.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner, extra ...any) (Summary, error) {
	var (
		sum     Summary
		created string
	)
	dest := []any{&sum.ID, &sum.Filename, &sum.Title, &sum.ContentHash, &sum.Items, &sum.Lines,
		&sum.Pages, &sum.Headers, &sum.Entities, &sum.Chunks, &created}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return Summary{}, err
	}
	sum.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return sum, nil
}

// FindByHash looks up a document by content hash.
func (s *Store) FindByHash(ctx context.Context, hash string) (Summary, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+summaryColumns+` FROM documents d WHERE d.content_hash = ?`, hash)
	sum, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, false, nil
	}
	if err != nil {
		return Summary{}, false, err
	}
	return sum, true, nil
}

// ListDocuments returns stored documents, newest first.
func (s *Store) ListDocuments(ctx context.Context, limit, offset int) ([]Summary, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+summaryColumns+` FROM documents d ORDER BY d.created_at DESC, d.id DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// GetDocument loads a document with its source text and metadata.
func (s *Store) GetDocument(ctx context.Context, id string) (*Record, error) {
	var (
		rec     Record
		packed  []byte
		content string
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+summaryColumns+`, d.magic, d.source, d.content_json FROM documents d WHERE d.id = ?`, id)
	sum, err := scanSummary(row, &rec.Magic, &packed, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Summary = sum
	rec.Content = json.RawMessage(content)
	if rec.Source, err = decompress(packed); err != nil {
		return nil, fmt.Errorf("decompress source: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT raw, field_index, field_key, field_value FROM metadata WHERE doc_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rec.Metadata = []string{}
	for rows.Next() {
		var (
			raw   string
			idx   sql.NullInt64
			key   sql.NullString
			value sql.NullString
		)
		if err := rows.Scan(&raw, &idx, &key, &value); err != nil {
			return nil, err
		}
		rec.Metadata = append(rec.Metadata, raw)
		if key.Valid {
			rec.Fields = append(rec.Fields, openiti.MetadataField{
				Index: int(idx.Int64),
				Key:   key.String,
				Value: value.String,
			})
		}
	}
	return &rec, rows.Err()
}

// ListChunks returns a document's chunks in order.
func (s *Store) ListChunks(ctx context.Context, docID string) ([]doctree.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, chunk_index, text, breadcrumb, page_start, page_end
FROM chunks WHERE doc_id = ? ORDER BY chunk_index`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []doctree.Chunk
	for rows.Next() {
		var (
			c              doctree.Chunk
			bc, start, end string
		)
		if err := rows.Scan(&c.ID, &c.Index, &c.Text, &bc, &start, &end); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(bc), &c.Breadcrumb); err != nil {
			return nil, fmt.Errorf("decode breadcrumb: %w", err)
		}
		c.PageStart, _ = doctree.ParseLocator(start)
		c.PageEnd, _ = doctree.ParseLocator(end)
		out = append(out, c)
	}
	return out, rows.Err()
}

// EntityRow is a stored named-entity mention.
type EntityRow struct {
	DocID  string `json:"doc_id"`
	Item   int    `json:"item"`
	Kind   string `json:"kind"`
	Prefix int    `json:"prefix"`
	Extent int    `json:"extent"`
	Text   string `json:"text"`
	Volume string `json:"volume,omitempty"`
	Page   string `json:"page,omitempty"`
}

// ListEntities returns a document's named-entity mentions, optionally
// filtered by kind ("source", "social", "topographic", "personal").
func (s *Store) ListEntities(ctx context.Context, docID, kind string) ([]EntityRow, error) {
	q := `SELECT doc_id, item, kind, prefix, extent, text, volume, page FROM entities WHERE doc_id = ?`
	args := []any{docID}
	if kind != "" {
		q += ` AND kind = ?`
		args = append(args, strings.ToLower(kind))
	}
	q += ` ORDER BY position`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EntityRow
	for rows.Next() {
		var e EntityRow
		if err := rows.Scan(&e.DocID, &e.Item, &e.Kind, &e.Prefix, &e.Extent, &e.Text, &e.Volume, &e.Page); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteDocument removes a document and everything attached to it.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

func compress(s string) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, s); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(b []byte) (string, error) {
	r, err := xz.NewReader(bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
