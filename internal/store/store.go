// Package store provides the owner-scoped record store the rest of the
// application talks to instead of a backend SDK. Every call takes the
// owner id explicitly; there is no ambient current-user state.
package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/lexora/lexora/internal/apperr"
	"github.com/lexora/lexora/internal/models"
)

// Record is one row of a collection in its generic map form. Metadata
// fields (id, owner, completed, created_at, updated_at) live alongside
// the collection-specific fields.
type Record map[string]any

// Condition is a single filter predicate ANDed with the owner filter.
type Condition struct {
	Field string `json:"field"`
	Op    string `json:"operator"`
	Value any    `json:"value"`
}

// ListOptions controls ordering and the active-items filter.
type ListOptions struct {
	// OrderBy names the field to sort on; created_at when empty.
	OrderBy string
	// Desc flips the sort direction.
	Desc bool
	// ActiveOnly restricts results to records with completed == false.
	// It replaces the hidden default the old client baked into getAll.
	ActiveOnly bool
}

// Store is the uniform data-access contract. Implementations must scope
// every statement by owner: a call targeting a foreign-owned row affects
// zero rows and reports not-found without leaking its existence.
type Store interface {
	Create(ctx context.Context, owner, collection string, data Record) (Record, error)
	GetAll(ctx context.Context, owner, collection string, opts ListOptions) ([]Record, error)
	GetByID(ctx context.Context, owner, collection, id string) (Record, error)
	Update(ctx context.Context, owner, collection, id string, partial Record) (Record, error)
	Delete(ctx context.Context, owner, collection, id string) error
	Query(ctx context.Context, owner, collection string, conds []Condition, opts ListOptions) ([]Record, error)
}

// Event describes a committed write, delivered to subscribers.
type Event struct {
	Collection string `json:"collection"`
	Action     string `json:"action"` // created, updated, deleted
	Owner      string `json:"-"`
	Record     Record `json:"record"`
}

// Event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Publisher receives events after successful writes. A nil Publisher is
// valid and drops everything.
type Publisher interface {
	Publish(Event)
}

// metaFields are managed by the store and stripped from caller payloads.
var metaFields = map[string]bool{
	"id":         true,
	"owner":      true,
	"created_at": true,
	"updated_at": true,
}

var fieldPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// checkCall validates the owner and collection shared by every operation.
func checkCall(owner, collection string) error {
	if owner == "" {
		return apperr.Precondition("no owner set for data call")
	}
	if !models.Known(collection) {
		return apperr.Validation(map[string]string{"collection": fmt.Sprintf("unknown collection %q", collection)})
	}
	return nil
}

// orderField resolves and sanitizes the sort field.
func orderField(opts ListOptions) (string, error) {
	field := opts.OrderBy
	if field == "" {
		field = "created_at"
	}
	if !fieldPattern.MatchString(field) {
		return "", apperr.Validation(map[string]string{"order_by": fmt.Sprintf("invalid order field %q", field)})
	}
	return field, nil
}

// newRecord assembles the stored form of a caller payload: generated id,
// owner, completed default, and both timestamps.
func newRecord(owner string, data Record) Record {
	now := time.Now().UTC()
	rec := Record{}
	for k, v := range data {
		if metaFields[k] {
			continue
		}
		rec[k] = v
	}
	if _, ok := rec["completed"]; !ok {
		rec["completed"] = false
	}
	rec["id"] = uuid.NewString()
	rec["owner"] = owner
	rec["created_at"] = now
	rec["updated_at"] = now
	return rec
}

func notFound(collection, id string) error {
	return apperr.NotFound(fmt.Sprintf("%s record %s not found", collection, id))
}

func condErr(c Condition, msg string) error {
	return apperr.Validation(map[string]string{c.Field: fmt.Sprintf("%s: %q %s", msg, c.Field, c.Op)})
}

// payloadOf splits a record into its collection-specific fields and the
// completed flag, leaving the managed metadata out.
func payloadOf(rec Record) (fields Record, completed bool) {
	fields = Record{}
	for k, v := range rec {
		if metaFields[k] || k == "completed" {
			continue
		}
		fields[k] = v
	}
	if b, ok := rec["completed"].(bool); ok {
		completed = b
	}
	return fields, completed
}
