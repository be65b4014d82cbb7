package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexora/lexora/internal/store"
)

func TestSearchMatchesAcrossCollections(t *testing.T) {
	st := store.NewMemory(nil)
	svc := NewSearchService(st)
	ctx := context.Background()

	seed(t, st, "user-1", "clients", store.Record{"name": "Acme Co", "email": "contact@acme.com"})
	seed(t, st, "user-1", "cases", store.Record{"title": "Acme contract dispute", "status": "active"})
	seed(t, st, "user-1", "billing", store.Record{"amount": 500.0, "notes": "Acme Co | INV-001"})
	seed(t, st, "user-1", "clients", store.Record{"name": "Other LLC"})

	results, err := svc.Search(ctx, "user-1", "ACME")
	require.NoError(t, err)
	require.Len(t, results, 3, "match must be case-insensitive across collections")

	types := map[string]int{}
	for _, res := range results {
		types[res.Type]++
		require.NotEmpty(t, res.ID)
	}
	require.Equal(t, map[string]int{"clients": 1, "cases": 1, "billing": 1}, types)
}

func TestSearchExactSubset(t *testing.T) {
	st := store.NewMemory(nil)
	svc := NewSearchService(st)
	ctx := context.Background()

	seed(t, st, "user-1", "clients",
		store.Record{"name": "Smith & Sons"},
		store.Record{"name": "Jones Ltd", "company": "smithfield"},
		store.Record{"name": "Unrelated"},
	)

	results, err := svc.Search(ctx, "user-1", "smith")
	require.NoError(t, err)
	require.Len(t, results, 2, "result must be exactly the matching subset")
}

func TestSearchEmptyTermAndOwnerScope(t *testing.T) {
	st := store.NewMemory(nil)
	svc := NewSearchService(st)
	ctx := context.Background()

	seed(t, st, "user-2", "clients", store.Record{"name": "Acme Co"})

	results, err := svc.Search(ctx, "user-1", "")
	require.NoError(t, err)
	require.Empty(t, results)

	results, err = svc.Search(ctx, "user-1", "acme")
	require.NoError(t, err)
	require.Empty(t, results, "a foreign owner's rows must never surface")
}

func TestSearchPerCollectionCap(t *testing.T) {
	st := store.NewMemory(nil)
	svc := NewSearchService(st)
	ctx := context.Background()

	for i := 0; i < perCollectionCap+10; i++ {
		seed(t, st, "user-1", "clients", store.Record{"name": fmt.Sprintf("Acme %d", i)})
	}

	results, err := svc.Search(ctx, "user-1", "acme")
	require.NoError(t, err)
	require.Len(t, results, perCollectionCap)
}

func TestSearchBillingLabelFromPackedNotes(t *testing.T) {
	st := store.NewMemory(nil)
	svc := NewSearchService(st)
	ctx := context.Background()

	seed(t, st, "user-1", "billing", store.Record{"amount": 100.0, "notes": "Acme Co | INV-007"})

	results, err := svc.Search(ctx, "user-1", "inv-007")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "Acme Co INV-007", results[0].Label)
}
