// Package models defines the core data structures for accounts and the
// owner-scoped collections the practice works with.
package models

import "time"

// User represents an application account with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Email is the sign-in address, unique across the system.
	Email string `json:"email"`
	// Name is the optional display name captured at sign-up.
	Name string `json:"name,omitempty"`
	// PasswordHash is the encoded argon2id hash of the password.
	PasswordHash string `json:"-"`
	// CreatedAt is the account creation timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Collection identifies one of the owner-scoped record tables.
type Collection string

const (
	// Clients holds client contact records.
	Clients Collection = "clients"
	// Cases holds legal case records.
	Cases Collection = "cases"
	// Billing holds invoice records.
	Billing Collection = "billing"
	// Appointments holds calendar entries.
	Appointments Collection = "appointments"
	// Documents holds file metadata rows paired with blobs.
	Documents Collection = "documents"
)

// Collections lists every record table the store serves.
var Collections = []Collection{Clients, Cases, Billing, Appointments, Documents}

// Known reports whether name is a served collection.
func Known(name string) bool {
	for _, c := range Collections {
		if string(c) == name {
			return true
		}
	}
	return false
}

// Case status values.
const (
	CaseActive  = "active"
	CasePending = "pending"
	CaseClosed  = "closed"
)

// Case priority values.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Invoice status values.
const (
	InvoicePaid    = "paid"
	InvoicePending = "pending"
	InvoiceOverdue = "overdue"
)

// Appointment status values.
const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentTaken     = "taken"
)
