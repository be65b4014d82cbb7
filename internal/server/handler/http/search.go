package http

import (
	"context"
	"net/http"

	"github.com/lexora/lexora/internal/middleware"
	"github.com/lexora/lexora/internal/service"
)

// SearchService defines the global-search operation required by the
// search handler.
type SearchService interface {
	Search(ctx context.Context, owner, term string) ([]service.SearchResult, error)
}

// SearchHandler serves GET /api/search.
type SearchHandler struct {
	Search SearchService
}

// Handle runs a global search for the q query parameter.
func (h *SearchHandler) Handle(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetUserIDFromContext(r.Context())
	results, err := h.Search.Search(r.Context(), owner, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	if results == nil {
		results = []service.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
