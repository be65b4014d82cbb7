package http

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lexora/lexora/internal/middleware"
	"github.com/lexora/lexora/internal/store"
)

// maxUploadBytes bounds a single document upload.
const maxUploadBytes = 32 << 20

// DocumentService defines the blob-pairing operations required by the
// document handlers.
type DocumentService interface {
	Upload(ctx context.Context, owner, filename, contentType string, r io.Reader) (store.Record, error)
	Open(ctx context.Context, owner, id string) (io.ReadCloser, store.Record, error)
	URL(id string) string
	Delete(ctx context.Context, owner, id string) (blobErr error, err error)
}

// DocumentHandler handles the document endpoints that touch blobs.
// Plain metadata reads go through the generic collection handler.
type DocumentHandler struct {
	Documents DocumentService
}

// Upload handles POST /api/documents/upload with a multipart "file" part.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file part required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	owner := middleware.GetUserIDFromContext(r.Context())
	rec, err := h.Documents.Upload(r.Context(), owner, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// URL handles GET /api/documents/{id}/url, returning where the blob can
// be downloaded.
func (h *DocumentHandler) URL(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Resolve the row first so foreign ids 404 instead of leaking a path.
	owner := middleware.GetUserIDFromContext(r.Context())
	reader, _, err := h.Documents.Open(r.Context(), owner, id)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = reader.Close()

	writeJSON(w, http.StatusOK, map[string]string{"url": h.Documents.URL(id)})
}

// Download handles GET /api/documents/{id}/download, streaming the blob.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetUserIDFromContext(r.Context())
	reader, rec, err := h.Documents.Open(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer reader.Close()

	if contentType, _ := rec["type"].(string); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if name, _ := rec["name"].(string); name != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	}
	_, _ = io.Copy(w, reader)
}

// Delete handles DELETE /api/documents/{id}. The metadata row goes
// first; a blob that could not be removed afterwards is reported in the
// response rather than rolled back.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetUserIDFromContext(r.Context())
	blobErr, err := h.Documents.Delete(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	body := map[string]any{"status": "deleted"}
	if blobErr != nil {
		body["blob_error"] = blobErr.Error()
	}
	writeJSON(w, http.StatusOK, body)
}
