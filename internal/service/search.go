package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lexora/lexora/internal/models"
	"github.com/lexora/lexora/internal/store"
)

// perCollectionCap bounds each collection's contribution so a search
// never turns into an unbounded payload.
const perCollectionCap = 50

// searchedCollections are scanned in order; results keep that order.
var searchedCollections = []models.Collection{models.Clients, models.Cases, models.Billing}

// SearchResult is one global-search hit.
type SearchResult struct {
	Type  string `json:"type"` // collection name
	ID    string `json:"id"`
	Label string `json:"label"`
}

// SearchService implements global search as a fan-out over collections
// with a case-insensitive substring match on each record's flattened
// field values. There is no ranking beyond discovery order.
type SearchService struct {
	store store.Store
}

// NewSearchService constructs a SearchService.
func NewSearchService(st store.Store) *SearchService {
	return &SearchService{store: st}
}

// Search scans the owner's collections for the term. An empty term
// returns nothing.
func (s *SearchService) Search(ctx context.Context, owner, term string) ([]SearchResult, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}

	var results []SearchResult
	for _, collection := range searchedCollections {
		records, err := s.store.GetAll(ctx, owner, string(collection), store.ListOptions{})
		if err != nil {
			return nil, err
		}
		hits := 0
		for _, rec := range records {
			if hits == perCollectionCap {
				break
			}
			if !strings.Contains(flatten(rec), term) {
				continue
			}
			id, _ := rec["id"].(string)
			results = append(results, SearchResult{
				Type:  string(collection),
				ID:    id,
				Label: label(collection, rec),
			})
			hits++
		}
	}
	return results, nil
}

// flatten joins a record's field values into one lowercase string.
// Field order is fixed so matching is deterministic.
func flatten(rec store.Record) string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		switch k {
		case "id", "owner", "created_at", "updated_at", "completed":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(strings.ToLower(fmt.Sprint(rec[k])))
		sb.WriteByte(' ')
	}
	return sb.String()
}

// label picks the display string per collection.
func label(collection models.Collection, rec store.Record) string {
	switch collection {
	case models.Clients:
		return str(rec, "name")
	case models.Cases:
		return str(rec, "title")
	case models.Billing:
		if client, number := models.SplitInvoiceNotes(str(rec, "notes")); client != "" || number != "" {
			return strings.TrimSpace(strings.Join([]string{client, number}, " "))
		}
		return str(rec, "notes")
	}
	return str(rec, "name")
}
