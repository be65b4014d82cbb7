package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexora/lexora/internal/apperr"
	"github.com/lexora/lexora/internal/models"
	"github.com/lexora/lexora/internal/store"
)

// EntityService applies per-collection validation and defaulting before
// delegating to the record store. It serves every collection surface
// except the document blob pairing, which DocumentService layers on top.
type EntityService struct {
	store store.Store
}

// NewEntityService constructs an EntityService over the given store.
func NewEntityService(st store.Store) *EntityService {
	return &EntityService{store: st}
}

// Create validates the payload, applies collection defaults, and inserts.
func (s *EntityService) Create(ctx context.Context, owner, collection string, data store.Record) (store.Record, error) {
	if data == nil {
		data = store.Record{}
	}
	applyDefaults(collection, data)
	if err := validate(collection, data, false); err != nil {
		return nil, err
	}
	return s.store.Create(ctx, owner, collection, data)
}

// List returns the owner's records.
func (s *EntityService) List(ctx context.Context, owner, collection string, opts store.ListOptions) ([]store.Record, error) {
	return s.store.GetAll(ctx, owner, collection, opts)
}

// Get fetches one record.
func (s *EntityService) Get(ctx context.Context, owner, collection, id string) (store.Record, error) {
	return s.store.GetByID(ctx, owner, collection, id)
}

// Update validates the provided fields only and merges them. Fields not
// present in partial keep their stored values.
func (s *EntityService) Update(ctx context.Context, owner, collection, id string, partial store.Record) (store.Record, error) {
	if err := validate(collection, partial, true); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, owner, collection, id, partial)
}

// Delete removes one record.
func (s *EntityService) Delete(ctx context.Context, owner, collection, id string) error {
	return s.store.Delete(ctx, owner, collection, id)
}

// Query runs a filtered read.
func (s *EntityService) Query(ctx context.Context, owner, collection string, conds []store.Condition, opts store.ListOptions) ([]store.Record, error) {
	return s.store.Query(ctx, owner, collection, conds, opts)
}

// applyDefaults fills collection defaults on create.
func applyDefaults(collection string, data store.Record) {
	switch models.Collection(collection) {
	case models.Cases:
		if str(data, "status") == "" {
			data["status"] = models.CaseActive
		}
		if str(data, "priority") == "" {
			data["priority"] = models.PriorityMedium
		}
	case models.Billing:
		if str(data, "status") == "" {
			data["status"] = models.InvoicePending
		}
		// Invoices carry the client name and invoice number packed into
		// notes; callers may send them as separate fields instead.
		if str(data, "notes") == "" {
			if notes := models.PackInvoiceNotes(str(data, "client_name"), str(data, "invoice_number")); notes != "" {
				data["notes"] = notes
				delete(data, "client_name")
				delete(data, "invoice_number")
			}
		}
	case models.Appointments:
		if str(data, "status") == "" {
			data["status"] = models.AppointmentScheduled
		}
	}
}

// enums lists the allowed categorical values per collection field.
var enums = map[string]map[string][]string{
	string(models.Cases): {
		"status":   {models.CaseActive, models.CasePending, models.CaseClosed},
		"priority": {models.PriorityHigh, models.PriorityMedium, models.PriorityLow},
	},
	string(models.Billing): {
		"status": {models.InvoicePaid, models.InvoicePending, models.InvoiceOverdue},
	},
	string(models.Appointments): {
		"status": {models.AppointmentScheduled, models.AppointmentCompleted, models.AppointmentTaken},
	},
}

// required lists the fields a create must carry per collection.
var required = map[string][]string{
	string(models.Clients):      {"name"},
	string(models.Cases):        {"title"},
	string(models.Billing):      {"amount", "due_date"},
	string(models.Appointments): {"title", "date"},
	string(models.Documents):    {"name", "path"},
}

// validate checks required fields (creates only), the positive-amount
// rule, and enum membership for any provided categorical field.
func validate(collection string, data store.Record, partial bool) error {
	fields := map[string]string{}

	if !partial {
		for _, f := range required[collection] {
			if f == "amount" {
				continue // checked below with the numeric rule
			}
			if str(data, f) == "" {
				fields[f] = fmt.Sprintf("%s is required", f)
			}
		}
	}

	if collection == string(models.Billing) {
		_, present := data["amount"]
		amount, ok := num(data, "amount")
		switch {
		case !ok && (present || !partial):
			fields["amount"] = "a valid amount is required"
		case ok && amount <= 0:
			fields["amount"] = "amount must be positive"
		}
	}

	for field, allowed := range enums[collection] {
		v, present := data[field]
		if !present {
			continue
		}
		val, _ := v.(string)
		if !contains(allowed, val) {
			fields[field] = fmt.Sprintf("%s must be one of %s", field, strings.Join(allowed, ", "))
		}
	}

	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

func str(rec store.Record, field string) string {
	s, _ := rec[field].(string)
	return strings.TrimSpace(s)
}

func num(rec store.Record, field string) (float64, bool) {
	switch n := rec[field].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
