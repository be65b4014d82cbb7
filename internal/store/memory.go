package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory implements Store in process memory. It is the second backend
// variant behind the same interface and the double the service and
// handler tests run against.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]Record // collection -> id -> record
	pub  Publisher
}

// NewMemory creates an empty in-memory store with an optional publisher.
func NewMemory(pub Publisher) *Memory {
	return &Memory{data: map[string]map[string]Record{}, pub: pub}
}

func (s *Memory) publish(ev Event) {
	if s.pub != nil {
		s.pub.Publish(ev)
	}
}

func (s *Memory) table(collection string) map[string]Record {
	t, ok := s.data[collection]
	if !ok {
		t = map[string]Record{}
		s.data[collection] = t
	}
	return t
}

func clone(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// Create stores the record and returns its stored form.
func (s *Memory) Create(ctx context.Context, owner, collection string, data Record) (Record, error) {
	if err := checkCall(owner, collection); err != nil {
		return nil, err
	}

	rec := newRecord(owner, data)
	s.mu.Lock()
	s.table(collection)[rec["id"].(string)] = rec
	s.mu.Unlock()

	s.publish(Event{Collection: collection, Action: ActionCreated, Owner: owner, Record: clone(rec)})
	return clone(rec), nil
}

// GetAll returns the owner's records ordered per opts.
func (s *Memory) GetAll(ctx context.Context, owner, collection string, opts ListOptions) ([]Record, error) {
	return s.Query(ctx, owner, collection, nil, opts)
}

// GetByID fetches one record scoped by (id, owner).
func (s *Memory) GetByID(ctx context.Context, owner, collection, id string) (Record, error) {
	if err := checkCall(owner, collection); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[collection][id]
	if !ok || rec["owner"] != owner {
		return nil, notFound(collection, id)
	}
	return clone(rec), nil
}

// Update merges partial fields into the stored record.
func (s *Memory) Update(ctx context.Context, owner, collection, id string, partial Record) (Record, error) {
	if err := checkCall(owner, collection); err != nil {
		return nil, err
	}

	s.mu.Lock()
	rec, ok := s.table(collection)[id]
	if !ok || rec["owner"] != owner {
		s.mu.Unlock()
		return nil, notFound(collection, id)
	}
	for k, v := range partial {
		if metaFields[k] {
			continue
		}
		if k == "completed" {
			if b, isBool := v.(bool); isBool {
				rec["completed"] = b
			}
			continue
		}
		rec[k] = v
	}
	rec["updated_at"] = time.Now().UTC()
	out := clone(rec)
	s.mu.Unlock()

	s.publish(Event{Collection: collection, Action: ActionUpdated, Owner: owner, Record: clone(out)})
	return out, nil
}

// Delete removes the record scoped by (id, owner).
func (s *Memory) Delete(ctx context.Context, owner, collection, id string) error {
	if err := checkCall(owner, collection); err != nil {
		return err
	}

	s.mu.Lock()
	rec, ok := s.table(collection)[id]
	if !ok || rec["owner"] != owner {
		s.mu.Unlock()
		return notFound(collection, id)
	}
	delete(s.table(collection), id)
	s.mu.Unlock()

	s.publish(Event{Collection: collection, Action: ActionDeleted, Owner: owner, Record: Record{"id": id}})
	return nil
}

// Query filters the owner's records by the ANDed conditions.
func (s *Memory) Query(ctx context.Context, owner, collection string, conds []Condition, opts ListOptions) ([]Record, error) {
	if err := checkCall(owner, collection); err != nil {
		return nil, err
	}
	field, err := orderField(opts)
	if err != nil {
		return nil, err
	}
	for _, c := range conds {
		if _, ok := sqlOps[c.Op]; !ok {
			return nil, condErr(c, "unsupported operator")
		}
	}

	s.mu.RLock()
	var out []Record
	for _, rec := range s.data[collection] {
		if rec["owner"] != owner {
			continue
		}
		if opts.ActiveOnly {
			if done, _ := rec["completed"].(bool); done {
				continue
			}
		}
		if matchesAll(rec, conds) {
			out = append(out, clone(rec))
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		less := compareValues(out[i][field], out[j][field]) < 0
		if opts.Desc {
			return !less
		}
		return less
	})
	return out, nil
}

func matchesAll(rec Record, conds []Condition) bool {
	for _, c := range conds {
		cmp := compareValues(rec[c.Field], c.Value)
		switch c.Op {
		case "==", "eq":
			if cmp != 0 {
				return false
			}
		case "!=", "neq":
			if cmp == 0 {
				return false
			}
		case ">", "gt":
			if cmp <= 0 {
				return false
			}
		case ">=", "gte":
			if cmp < 0 {
				return false
			}
		case "<", "lt":
			if cmp >= 0 {
				return false
			}
		case "<=", "lte":
			if cmp > 0 {
				return false
			}
		}
	}
	return true
}

// compareValues orders two record values: times and numbers compare on
// their own axis, everything else as strings.
func compareValues(a, b any) int {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
