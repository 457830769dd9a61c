package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/oimdp/internal/export"
	"github.com/dgallion1/oimdp/internal/openiti"
	"github.com/dgallion1/oimdp/internal/store"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// handleListDocuments lists stored documents, newest first.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	offset := max(queryInt(r, "offset", 0), 0)

	docs, err := s.store.ListDocuments(r.Context(), limit, offset)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	total, err := s.store.Count(r.Context())
	if err != nil {
		jsonError(w, "failed to count documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []store.Summary{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"documents": docs,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

func (s *Server) handleListChunks(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	chunks, err := s.store.ListChunks(r.Context(), docID)
	if err != nil {
		jsonError(w, "failed to list chunks: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"doc_id": docID, "chunks": chunks})
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	ents, err := s.store.ListEntities(r.Context(), docID, r.URL.Query().Get("kind"))
	if err != nil {
		jsonError(w, "failed to list entities: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if ents == nil {
		ents = []store.EntityRow{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"doc_id": docID, "entities": ents})
}

// handleExportDocument re-parses the stored source and renders it.
func (s *Server) handleExportDocument(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	doc, err := openiti.Parse(rec.Source)
	if err != nil {
		jsonError(w, "stored document no longer parses: "+err.Error(), http.StatusInternalServerError)
		return
	}

	base := strings.TrimSuffix(rec.Filename, filepath.Ext(rec.Filename))
	writeExport(w, format, doc, rec.Title, base)
}

// handleDeleteDocument removes a document with its chunks and entities,
// and its mirror when one is configured.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	ctx := r.Context()

	err := s.store.DeleteDocument(ctx, docID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]any{"deleted": docID, "mirror_deleted": false}
	if ps := s.orchestrator.PathstoreClient(); ps != nil {
		if err := ps.DeleteDocument(ctx, docID); err != nil {
			s.log.Warn("mirror delete failed", "doc_id", docID, "error", err)
			resp["mirror_error"] = err.Error()
		} else {
			resp["mirror_deleted"] = true
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) loadDocument(w http.ResponseWriter, r *http.Request) (*store.Record, bool) {
	rec, err := s.store.GetDocument(r.Context(), chi.URLParam(r, "docID"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		jsonError(w, "failed to load document: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return rec, true
}

// writeExport renders into a buffer first so a failed export still gets
// a JSON error instead of a truncated body.
func writeExport(w http.ResponseWriter, format export.Format, doc *openiti.Document, title, base string) {
	var buf bytes.Buffer
	if err := export.Write(&buf, format, doc, title); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	if base != "" {
		w.Header().Set("Content-Disposition",
			mime.FormatMediaType("attachment", map[string]string{"filename": base + format.Extension()}))
	}
	w.Write(buf.Bytes())
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
