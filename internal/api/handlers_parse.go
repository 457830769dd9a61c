package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dgallion1/oimdp/internal/export"
	"github.com/dgallion1/oimdp/internal/openiti"
	"github.com/dgallion1/oimdp/internal/parser"
	"github.com/dgallion1/oimdp/internal/stats"
)

// handleParse parses the request body synchronously and returns the
// document in the requested format. Nothing is stored.
//
// Query parameters: format (default json), filename (selects the
// extractor, default plain text) and title.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var filename string
	if v := q.Get("filename"); v != "" {
		filename = sanitizeFilename(v)
	}
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	start := time.Now()
	res, err := parser.Parse(r.Body, filename, parser.Options{FallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		case errors.Is(err, openiti.ErrNoMagicValue):
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			jsonError(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	st := res.Document.Stats()
	if s.stats != nil {
		s.stats.Record(stats.Sample{
			Duration: time.Since(start),
			Bytes:    len(res.Source),
			Items:    st.Items,
			Drops:    len(res.Drops),
		})
	}

	title := q.Get("title")
	if title == "" {
		title = res.Tree.Title
	}
	w.Header().Set("X-Content-Items", strconv.Itoa(st.Items))
	w.Header().Set("X-Dropped-Lines", strconv.Itoa(len(res.Drops)))
	writeExport(w, format, res.Document, title, "")
}
