package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexora/lexora/internal/apperr"
)

func TestMemoryCreateReadRoundTrip(t *testing.T) {
	st := NewMemory(nil)
	ctx := context.Background()

	created, err := st.Create(ctx, "user-1", "clients", Record{"name": "Acme Co", "email": "a@acme.com"})
	require.NoError(t, err)

	records, err := st.GetAll(ctx, "user-1", "clients", ListOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, created["id"], records[0]["id"])
	require.Equal(t, "Acme Co", records[0]["name"])
	require.Equal(t, "a@acme.com", records[0]["email"])
	require.Equal(t, "user-1", records[0]["owner"])
}

func TestMemoryTenantIsolation(t *testing.T) {
	st := NewMemory(nil)
	ctx := context.Background()

	created, err := st.Create(ctx, "alice", "clients", Record{"name": "Acme Co"})
	require.NoError(t, err)
	id := created["id"].(string)

	// Bob can neither see, change, nor remove Alice's record.
	_, err = st.GetByID(ctx, "bob", "clients", id)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = st.Update(ctx, "bob", "clients", id, Record{"name": "stolen"})
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))

	err = st.Delete(ctx, "bob", "clients", id)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))

	records, err := st.GetAll(ctx, "bob", "clients", ListOptions{})
	require.NoError(t, err)
	require.Empty(t, records)

	// Alice still sees the untouched record.
	rec, err := st.GetByID(ctx, "alice", "clients", id)
	require.NoError(t, err)
	require.Equal(t, "Acme Co", rec["name"])
}

func TestMemoryPartialUpdate(t *testing.T) {
	st := NewMemory(nil)
	ctx := context.Background()

	created, err := st.Create(ctx, "user-1", "billing", Record{"amount": 500.0, "status": "pending"})
	require.NoError(t, err)
	id := created["id"].(string)
	before := created["updated_at"].(time.Time)

	time.Sleep(2 * time.Millisecond)
	updated, err := st.Update(ctx, "user-1", "billing", id, Record{"status": "paid"})
	require.NoError(t, err)

	require.Equal(t, "paid", updated["status"])
	require.Equal(t, 500.0, updated["amount"], "absent fields must keep their values")
	require.True(t, updated["updated_at"].(time.Time).After(before), "updated_at must advance")
	require.Equal(t, created["created_at"], updated["created_at"])
}

func TestMemoryDeleteTwice(t *testing.T) {
	st := NewMemory(nil)
	ctx := context.Background()

	created, err := st.Create(ctx, "user-1", "clients", Record{"name": "x"})
	require.NoError(t, err)
	id := created["id"].(string)

	require.NoError(t, st.Delete(ctx, "user-1", "clients", id))
	err = st.Delete(ctx, "user-1", "clients", id)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestMemoryNoOwner(t *testing.T) {
	st := NewMemory(nil)
	_, err := st.GetAll(context.Background(), "", "clients", ListOptions{})
	require.True(t, apperr.IsKind(err, apperr.KindPrecondition))
}

func TestMemoryQueryAndOrdering(t *testing.T) {
	st := NewMemory(nil)
	ctx := context.Background()

	for _, c := range []Record{
		{"title": "B", "status": "active", "priority": "high"},
		{"title": "A", "status": "closed", "priority": "low"},
		{"title": "C", "status": "active", "priority": "medium"},
	} {
		_, err := st.Create(ctx, "user-1", "cases", c)
		require.NoError(t, err)
	}

	active, err := st.Query(ctx, "user-1", "cases",
		[]Condition{{Field: "status", Op: "==", Value: "active"}},
		ListOptions{OrderBy: "title"})
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, "B", active[0]["title"])
	require.Equal(t, "C", active[1]["title"])

	desc, err := st.GetAll(ctx, "user-1", "cases", ListOptions{OrderBy: "title", Desc: true})
	require.NoError(t, err)
	require.Equal(t, "C", desc[0]["title"])
	require.Equal(t, "A", desc[2]["title"])
}

func TestMemoryActiveOnly(t *testing.T) {
	st := NewMemory(nil)
	ctx := context.Background()

	_, err := st.Create(ctx, "user-1", "appointments", Record{"title": "open"})
	require.NoError(t, err)
	done, err := st.Create(ctx, "user-1", "appointments", Record{"title": "done"})
	require.NoError(t, err)
	_, err = st.Update(ctx, "user-1", "appointments", done["id"].(string), Record{"completed": true})
	require.NoError(t, err)

	all, err := st.GetAll(ctx, "user-1", "appointments", ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2, "the active filter must be opt-in, not a hidden default")

	active, err := st.GetAll(ctx, "user-1", "appointments", ListOptions{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "open", active[0]["title"])
}

type capturePublisher struct {
	events []Event
}

func (p *capturePublisher) Publish(ev Event) { p.events = append(p.events, ev) }

func TestMemoryPublishesEvents(t *testing.T) {
	pub := &capturePublisher{}
	st := NewMemory(pub)
	ctx := context.Background()

	created, err := st.Create(ctx, "user-1", "clients", Record{"name": "x"})
	require.NoError(t, err)
	id := created["id"].(string)
	_, err = st.Update(ctx, "user-1", "clients", id, Record{"name": "y"})
	require.NoError(t, err)
	require.NoError(t, st.Delete(ctx, "user-1", "clients", id))

	require.Len(t, pub.events, 3)
	require.Equal(t, ActionCreated, pub.events[0].Action)
	require.Equal(t, ActionUpdated, pub.events[1].Action)
	require.Equal(t, ActionDeleted, pub.events[2].Action)
	require.Equal(t, "user-1", pub.events[0].Owner)
}
