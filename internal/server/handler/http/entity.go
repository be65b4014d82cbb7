package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lexora/lexora/internal/middleware"
	"github.com/lexora/lexora/internal/store"
)

// EntityService defines the record operations required by the generic
// collection handlers.
type EntityService interface {
	Create(ctx context.Context, owner, collection string, data store.Record) (store.Record, error)
	List(ctx context.Context, owner, collection string, opts store.ListOptions) ([]store.Record, error)
	Get(ctx context.Context, owner, collection, id string) (store.Record, error)
	Update(ctx context.Context, owner, collection, id string, partial store.Record) (store.Record, error)
	Delete(ctx context.Context, owner, collection, id string) error
	Query(ctx context.Context, owner, collection string, conds []store.Condition, opts store.ListOptions) ([]store.Record, error)
}

// EntityHandler serves the uniform CRUD surface every collection page
// consumes. Each route closure fixes the collection name.
type EntityHandler struct {
	Entities EntityService
}

// listOptions reads ordering and the active-items filter from the query
// string: order_by, dir=desc, active=true.
func listOptions(r *http.Request) store.ListOptions {
	q := r.URL.Query()
	return store.ListOptions{
		OrderBy:    q.Get("order_by"),
		Desc:       q.Get("dir") == "desc",
		ActiveOnly: q.Get("active") == "true",
	}
}

// List handles GET /api/<collection>. A status query parameter narrows
// by exact match through the store's filter chain.
func (h *EntityHandler) List(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middleware.GetUserIDFromContext(r.Context())
		opts := listOptions(r)

		var (
			records []store.Record
			err     error
		)
		if status := r.URL.Query().Get("status"); status != "" {
			conds := []store.Condition{{Field: "status", Op: "==", Value: status}}
			records, err = h.Entities.Query(r.Context(), owner, collection, conds, opts)
		} else {
			records, err = h.Entities.List(r.Context(), owner, collection, opts)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		if records == nil {
			records = []store.Record{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

// Create handles POST /api/<collection>.
func (h *EntityHandler) Create(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data store.Record
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		owner := middleware.GetUserIDFromContext(r.Context())
		rec, err := h.Entities.Create(r.Context(), owner, collection, data)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

// Get handles GET /api/<collection>/{id}.
func (h *EntityHandler) Get(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middleware.GetUserIDFromContext(r.Context())
		rec, err := h.Entities.Get(r.Context(), owner, collection, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// Update handles PATCH /api/<collection>/{id} with a partial field map.
func (h *EntityHandler) Update(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var partial store.Record
		if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		owner := middleware.GetUserIDFromContext(r.Context())
		rec, err := h.Entities.Update(r.Context(), owner, collection, chi.URLParam(r, "id"), partial)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// Delete handles DELETE /api/<collection>/{id}.
func (h *EntityHandler) Delete(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middleware.GetUserIDFromContext(r.Context())
		if err := h.Entities.Delete(r.Context(), owner, collection, chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
