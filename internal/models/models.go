package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is what a user is allowed to do. Stored as text in the users table,
// validated at the boundary (handlers + middleware), enforced by the
// authorization gate in internal/auth.
type Role string

const (
	// RoleSuperadmin runs the provisioning console. Not tied to any store —
	// its users row has store_id NULL, and its token carries uuid.Nil.
	RoleSuperadmin Role = "superadmin"
	// RoleStoreAdmin is the owning account created with the store. Full
	// control over its own store, including teammates and branding.
	RoleStoreAdmin Role = "storeadmin"
	// RoleEditor can manage the catalog but not teammates, branding, or
	// destructive bulk operations.
	RoleEditor Role = "editor"
	// RoleViewer is read-only.
	RoleViewer Role = "viewer"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleStoreAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Store is the tenant — one retail store account, the unit of data isolation.
// Every product, scan log, and non-superadmin user belongs to exactly one store.
//
// SubscriptionEnd is a *time.Time because NULL is meaningful: no end date set.
// The slug is what customers hit in the QR URL (/scan/:slug/:barcode), so it
// is unique and treated as immutable once printed on labels.
type Store struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	Address         string     `json:"address"`
	ContactPerson   string     `json:"contact_person"`
	Phone           string     `json:"phone"`
	Email           string     `json:"email"`
	SubscriptionEnd *time.Time `json:"subscription_end"`
	LogoURL         string     `json:"logo_url"`
	PrimaryColor    string     `json:"primary_color"`
	BackgroundURL   string     `json:"background_url"`
	Currency        string     `json:"currency"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Branding is the public subset of a store that the customer-facing scan page
// needs to render a themed page. This is what the public endpoints return and
// what the Redis cache holds — never the full Store row.
type Branding struct {
	Name          string `json:"name"`
	LogoURL       string `json:"logo_url"`
	PrimaryColor  string `json:"primary_color"`
	BackgroundURL string `json:"background_url"`
	Currency      string `json:"currency"`
}

// Branding extracts the public-facing fields from a store row.
func (s *Store) Branding() Branding {
	return Branding{
		Name:          s.Name,
		LogoURL:       s.LogoURL,
		PrimaryColor:  s.PrimaryColor,
		BackgroundURL: s.BackgroundURL,
		Currency:      s.Currency,
	}
}

// User is a back-office account.
//
// StoreID is uuid.Nil for superadmins (NULL in the database). Everyone else
// is owned by exactly one store, and every query for them is scoped to it.
// PasswordHash is json:"-" so it can never leak through a handler response.
type User struct {
	ID           uuid.UUID `json:"id"`
	StoreID      uuid.UUID `json:"store_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Product is one catalog entry. (StoreID, Barcode) is unique — re-adding the
// same barcode replaces the row (upsert), never duplicates it.
type Product struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"store_id"`
	Barcode     string    `json:"barcode"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ScanEvent is one customer price lookup, appended once per successful public
// scan and never updated.
//
// Why int64 for ID (not UUID)?
//   - scan_logs is the highest-volume table by far. bigserial is smaller,
//     naturally ordered (higher ID = newer scan), and B-tree friendly.
//   - Scans only ever enter through this API, so a single sequence is fine.
type ScanEvent struct {
	ID        int64     `json:"id"`
	StoreID   uuid.UUID `json:"store_id"`
	ProductID uuid.UUID `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}
