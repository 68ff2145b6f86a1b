package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ogenlabs/hipus"
	"github.com/ogenlabs/hipus/core"
	"github.com/ogenlabs/hipus/search"
	"github.com/ogenlabs/hipus/storage"
)

// maxPageSize caps the limit query parameter.
const maxPageSize = 100

// Engine is the slice of the search engine the HTTP surface uses.
type Engine interface {
	IndexDocument(ctx context.Context, id core.DocID, text string, metadata map[string]string) error
	RemoveDocument(ctx context.Context, id core.DocID) error
	GetDocument(ctx context.Context, id core.DocID) (*core.Document, error)
	Search(ctx context.Context, query string, opts search.Options) ([]core.SearchHit, error)
	Suggest(prefix string, limit int) []core.Suggestion
	Rebuild(ctx context.Context) error
	Stats() hipus.Stats
}

var _ Engine = (*hipus.Engine)(nil)

// Handler serves the HTTP API over one engine.
type Handler struct {
	engine Engine
	logger *slog.Logger
}

// NewHandler creates a handler around an engine.
func NewHandler(engine Engine) *Handler {
	return &Handler{
		engine: engine,
		logger: slog.Default().With("component", "httpapi"),
	}
}

// Routes registers every endpoint on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /documents", h.indexDocument)
	mux.HandleFunc("GET /documents/{id}", h.getDocument)
	mux.HandleFunc("DELETE /documents/{id}", h.removeDocument)
	mux.HandleFunc("GET /search", h.search)
	mux.HandleFunc("GET /suggest", h.suggest)
	mux.HandleFunc("POST /rebuild", h.rebuild)
	mux.HandleFunc("GET /healthz", h.healthz)
	return mux
}

type indexRequest struct {
	Id       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type documentResponse struct {
	Id         core.DocID        `json:"id"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	IndexedAt  time.Time         `json:"indexedAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	TokenCount uint32            `json:"tokenCount"`
}

type searchResponse struct {
	Query string           `json:"query"`
	Mode  string           `json:"mode"`
	Count int              `json:"count"`
	Hits  []core.SearchHit `json:"hits"`
}

type suggestResponse struct {
	Prefix      string            `json:"prefix"`
	Suggestions []core.Suggestion `json:"suggestions"`
}

type healthResponse struct {
	Status string `json:"status"`
	hipus.Stats
}

func (h *Handler) indexDocument(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.engine.IndexDocument(r.Context(), core.DocID(req.Id), req.Text, req.Metadata); err != nil {
		if errors.Is(err, core.ErrInvalidDocument) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("index document failed", "id", req.Id, "err", err)
		h.writeError(w, http.StatusInternalServerError, "indexing failed")
		return
	}

	h.logger.Info("document indexed", "id", req.Id)
	h.writeJSON(w, http.StatusCreated, map[string]string{"id": req.Id})
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	id := core.DocID(r.PathValue("id"))
	doc, err := h.engine.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "document not found")
			return
		}
		h.logger.Error("get document failed", "id", id, "err", err)
		h.writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	h.writeJSON(w, http.StatusOK, documentResponse{
		Id:         doc.Id,
		Text:       doc.Text,
		Metadata:   doc.Metadata,
		IndexedAt:  doc.IndexedAt,
		UpdatedAt:  doc.UpdatedAt,
		TokenCount: doc.TokenCount,
	})
}

func (h *Handler) removeDocument(w http.ResponseWriter, r *http.Request) {
	id := core.DocID(r.PathValue("id"))
	if err := h.engine.RemoveDocument(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "document not found")
			return
		}
		h.logger.Error("remove document failed", "id", id, "err", err)
		h.writeError(w, http.StatusInternalServerError, "removal failed")
		return
	}

	h.logger.Info("document removed", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	opts := search.Options{Mode: search.Mode(r.URL.Query().Get("mode"))}

	limit, ok := h.positiveIntParam(w, r, "limit")
	if !ok {
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	opts.Limit = limit

	offset, ok := h.positiveIntParam(w, r, "offset")
	if !ok {
		return
	}
	opts.Offset = offset

	hits, err := h.engine.Search(r.Context(), query, opts)
	if err != nil {
		if errors.Is(err, search.ErrUnsupportedMode) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("search failed", "query", query, "err", err)
		h.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if hits == nil {
		hits = []core.SearchHit{}
	}

	mode := opts.Mode
	if mode == "" {
		mode = search.ModeHybrid
	}
	h.logger.Debug("search served", "query", query, "mode", mode, "hits", len(hits))
	h.writeJSON(w, http.StatusOK, searchResponse{
		Query: query,
		Mode:  string(mode),
		Count: len(hits),
		Hits:  hits,
	})
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	limit, ok := h.positiveIntParam(w, r, "limit")
	if !ok {
		return
	}
	if limit == 0 {
		limit = search.DefaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	suggestions := h.engine.Suggest(prefix, limit)
	if suggestions == nil {
		suggestions = []core.Suggestion{}
	}

	h.writeJSON(w, http.StatusOK, suggestResponse{
		Prefix:      prefix,
		Suggestions: suggestions,
	})
}

func (h *Handler) rebuild(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Rebuild(r.Context()); err != nil {
		if errors.Is(err, hipus.ErrRebuildRunning) {
			h.writeError(w, http.StatusConflict, "rebuild already running")
			return
		}
		h.logger.Error("rebuild failed", "err", err)
		h.writeError(w, http.StatusInternalServerError, "rebuild failed")
		return
	}

	h.logger.Info("vectors rebuilt")
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Stats:  h.engine.Stats(),
	})
}

// positiveIntParam parses an optional non-negative integer query
// parameter. A missing parameter yields 0; a malformed or negative one
// writes a 400 and reports ok=false.
func (h *Handler) positiveIntParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		h.writeError(w, http.StatusBadRequest, name+" must be a non-negative integer")
		return 0, false
	}
	return parsed, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
