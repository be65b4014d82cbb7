// Package store: PostgreSQL implementation. Each collection is one table
// with managed columns plus a JSONB payload, every statement carrying the
// owner predicate.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lexora/lexora/internal/apperr"
)

// Postgres implements Store against a PostgreSQL database.
type Postgres struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
	// pub receives events after committed writes; may be nil.
	pub Publisher
}

// NewPostgres creates a Postgres store with the given database connection
// and optional event publisher.
func NewPostgres(db *sql.DB, pub Publisher) *Postgres {
	return &Postgres{DB: db, pub: pub}
}

func (s *Postgres) publish(ev Event) {
	if s.pub != nil {
		s.pub.Publish(ev)
	}
}

// orderClause builds the ORDER BY expression. Managed columns sort on the
// column itself, everything else on the JSONB payload field.
func orderClause(opts ListOptions) (string, error) {
	field, err := orderField(opts)
	if err != nil {
		return "", err
	}
	expr := fmt.Sprintf("data->>'%s'", field)
	switch field {
	case "id", "created_at", "updated_at", "completed":
		expr = field
	}
	dir := "ASC"
	if opts.Desc {
		dir = "DESC"
	}
	return expr + " " + dir, nil
}

// Create inserts the record and returns its stored form.
func (s *Postgres) Create(ctx context.Context, owner, collection string, data Record) (Record, error) {
	if err := checkCall(owner, collection); err != nil {
		return nil, err
	}

	rec := newRecord(owner, data)
	fields, completed := payloadOf(rec)
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (id, owner, completed, created_at, updated_at, data) VALUES ($1, $2, $3, $4, $5, $6)`,
		collection,
	)
	if _, err := s.DB.ExecContext(ctx, query,
		rec["id"], owner, completed, rec["created_at"], rec["updated_at"], payload,
	); err != nil {
		return nil, apperr.Backend(fmt.Sprintf("insert %s", collection), err)
	}

	s.publish(Event{Collection: collection, Action: ActionCreated, Owner: owner, Record: rec})
	return rec, nil
}

// GetAll returns every record owned by owner, ordered per opts.
func (s *Postgres) GetAll(ctx context.Context, owner, collection string, opts ListOptions) ([]Record, error) {
	if err := checkCall(owner, collection); err != nil {
		return nil, err
	}
	order, err := orderClause(opts)
	if err != nil {
		return nil, err
	}

	var filter string
	if opts.ActiveOnly {
		filter = " AND completed = FALSE"
	}
	query := fmt.Sprintf(
		`SELECT id, completed, created_at, updated_at, data FROM %s WHERE owner = $1%s ORDER BY %s`,
		collection, filter, order,
	)
	rows, err := s.DB.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, apperr.Backend(fmt.Sprintf("select %s", collection), err)
	}
	defer rows.Close()

	return scanRecords(rows, owner)
}

// GetByID fetches one record scoped by (id, owner).
func (s *Postgres) GetByID(ctx context.Context, owner, collection, id string) (Record, error) {
	if err := checkCall(owner, collection); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT id, completed, created_at, updated_at, data FROM %s WHERE id = $1 AND owner = $2`,
		collection,
	)
	rec, err := scanRecord(s.DB.QueryRowContext(ctx, query, id, owner), owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(collection, id)
		}
		return nil, apperr.Backend(fmt.Sprintf("select %s by id", collection), err)
	}
	return rec, nil
}

// Update merges the partial fields into the stored payload and re-stamps
// updated_at. Fields absent from partial keep their stored values. A miss,
// including a row owned by someone else, reports not-found.
func (s *Postgres) Update(ctx context.Context, owner, collection, id string, partial Record) (Record, error) {
	if err := checkCall(owner, collection); err != nil {
		return nil, err
	}

	fields := Record{}
	var completed *bool
	for k, v := range partial {
		if metaFields[k] {
			continue
		}
		if k == "completed" {
			if b, ok := v.(bool); ok {
				completed = &b
			}
			continue
		}
		fields[k] = v
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal partial: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s SET data = data || $1::jsonb,
			completed = COALESCE($2, completed),
			updated_at = $3
		WHERE id = $4 AND owner = $5
		RETURNING id, completed, created_at, updated_at, data`,
		collection,
	)
	rec, err := scanRecord(
		s.DB.QueryRowContext(ctx, query, payload, completed, time.Now().UTC(), id, owner),
		owner,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(collection, id)
		}
		return nil, apperr.Backend(fmt.Sprintf("update %s", collection), err)
	}

	s.publish(Event{Collection: collection, Action: ActionUpdated, Owner: owner, Record: rec})
	return rec, nil
}

// Delete removes the record scoped by (id, owner). Deleting a missing or
// foreign-owned record reports not-found; a second delete of the same id
// behaves the same way, never worse.
func (s *Postgres) Delete(ctx context.Context, owner, collection, id string) error {
	if err := checkCall(owner, collection); err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND owner = $2`, collection)
	res, err := s.DB.ExecContext(ctx, query, id, owner)
	if err != nil {
		return apperr.Backend(fmt.Sprintf("delete %s", collection), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(collection, id)
	}

	s.publish(Event{Collection: collection, Action: ActionDeleted, Owner: owner, Record: Record{"id": id}})
	return nil
}

// Query applies the conditions ANDed with the owner filter. Numeric
// values compare numerically, everything else as text.
func (s *Postgres) Query(ctx context.Context, owner, collection string, conds []Condition, opts ListOptions) ([]Record, error) {
	if err := checkCall(owner, collection); err != nil {
		return nil, err
	}
	order, err := orderClause(opts)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb,
		`SELECT id, completed, created_at, updated_at, data FROM %s WHERE owner = $1`,
		collection,
	)
	if opts.ActiveOnly {
		sb.WriteString(" AND completed = FALSE")
	}
	args := []any{owner}
	for _, c := range conds {
		if !fieldPattern.MatchString(c.Field) {
			return nil, condErr(c, "invalid field")
		}
		op, ok := sqlOps[c.Op]
		if !ok {
			return nil, condErr(c, "unsupported operator")
		}
		expr := fmt.Sprintf("data->>'%s'", c.Field)
		if c.Field == "completed" {
			expr = "completed::text"
		}
		switch c.Value.(type) {
		case int, int64, float64:
			fmt.Fprintf(&sb, " AND (%s)::numeric %s $%d", expr, op, len(args)+1)
		default:
			fmt.Fprintf(&sb, " AND %s %s $%d", expr, op, len(args)+1)
		}
		args = append(args, fmt.Sprint(c.Value))
	}
	fmt.Fprintf(&sb, " ORDER BY %s", order)

	rows, err := s.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, apperr.Backend(fmt.Sprintf("query %s", collection), err)
	}
	defer rows.Close()

	return scanRecords(rows, owner)
}

// sqlOps maps condition operators (both the symbolic forms the old client
// sent and word forms) to SQL.
var sqlOps = map[string]string{
	"==": "=", "eq": "=",
	"!=": "<>", "neq": "<>",
	">": ">", "gt": ">",
	">=": ">=", "gte": ">=",
	"<": "<", "lt": "<",
	"<=": "<=", "lte": "<=",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner, owner string) (Record, error) {
	var (
		id, payload          string
		completed            bool
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &completed, &createdAt, &updatedAt, &payload); err != nil {
		return nil, err
	}

	rec := Record{}
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	rec["id"] = id
	rec["owner"] = owner
	rec["completed"] = completed
	rec["created_at"] = createdAt
	rec["updated_at"] = updatedAt
	return rec, nil
}

func scanRecords(rows *sql.Rows, owner string) ([]Record, error) {
	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows, owner)
		if err != nil {
			return nil, apperr.Backend("scan row", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Backend("read rows", err)
	}
	return records, nil
}
