// Package domain contains the core business entities and domain logic for the Inkwell bookstore.
package domain

import "time"

// Record provides the common identity and timestamp fields embedded in every
// stored entity.
type Record struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the underlying entity changes.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (r *Record) InitTimestamps() {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
}

// Status is the lifecycle state shared by books, gift cards and promo codes.
// Entities start Active; Archived and Deleted are terminal (no restore
// transition is defined).
type Status string

const (
	// StatusActive is the initial state of every entity.
	StatusActive Status = "active"
	// StatusArchived marks an entity hidden from normal listings.
	StatusArchived Status = "archived"
	// StatusDeleted marks a soft-deleted entity. Deleted entities stay in the
	// store with a DeletedBy record.
	StatusDeleted Status = "deleted"
)

// Currency is an ISO currency code from the supported set.
type Currency string

// Supported currencies.
const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
	CurrencyCAD Currency = "CAD"
	CurrencyEUR Currency = "EUR"
)

// DefaultCurrency is used when a cart or voucher does not specify one.
const DefaultCurrency = CurrencyINR

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyINR, CurrencyUSD, CurrencyCAD, CurrencyEUR:
		return true
	}
	return false
}

// ActorType identifies the kind of actor issuing or deleting a voucher.
type ActorType string

// Actor kinds.
const (
	ActorUser       ActorType = "User"
	ActorAdmin      ActorType = "Admin"
	ActorSuperAdmin ActorType = "SuperAdmin"
)

// IssuedBy records who issued a gift card or promo code. Super-admins are
// identified by email, everyone else by user ID.
type IssuedBy struct {
	ID    string    `json:"id,omitempty"`
	Type  ActorType `json:"user_type"`
	Email string    `json:"email,omitempty"`
}

// DeletedBy records the actor behind a soft delete.
type DeletedBy struct {
	Role  ActorType `json:"role"`
	ID    string    `json:"id,omitempty"`
	Email string    `json:"email,omitempty"`
}
