package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lookprice/lookprice/internal/models"
)

// Every method takes a context (all of these touch the network) and — unless
// the operation is inherently global, like login-by-email or the console's
// cross-tenant listing — a store id. The handler resolves the effective store
// id once and passes it down; the repository never trusts anything else to
// have scoped the query. Even a guessed product UUID is useless without the
// matching store id.
//
// Not-found is (nil, nil), never an error: the handlers translate it to 404,
// and real errors stay distinguishable for logging.

// StoreParams carries the client-settable fields of a store. ID and
// CreatedAt are always server-generated.
type StoreParams struct {
	Name            string
	Slug            string
	Address         string
	ContactPerson   string
	Phone           string
	Email           string
	SubscriptionEnd *time.Time
	LogoURL         string
	PrimaryColor    string
	BackgroundURL   string
	Currency        string
}

// StoreSummary is a store row plus the owner/catalog context the console
// list view shows.
type StoreSummary struct {
	models.Store
	OwnerEmail   string `json:"owner_email"`
	ProductCount int64  `json:"product_count"`
}

// SystemStats are the console dashboard counters.
type SystemStats struct {
	Stores   int64 `json:"stores"`
	Products int64 `json:"products"`
	Users    int64 `json:"users"`
	Scans    int64 `json:"scans"`
}

// StoreRepository manages tenants. Creation and provisioning are
// superadmin-console operations; branding updates come from the store itself.
type StoreRepository interface {
	// CreateWithOwner inserts the store and its owning storeadmin user in
	// one transaction — a store never exists without an owner, and a failed
	// user insert (duplicate email) rolls the store back too.
	CreateWithOwner(ctx context.Context, store StoreParams, ownerEmail, ownerPasswordHash string) (*models.Store, *models.User, error)

	GetByID(ctx context.Context, storeID uuid.UUID) (*models.Store, error)

	// GetBySlug resolves the public QR URL path segment.
	GetBySlug(ctx context.Context, slug string) (*models.Store, error)

	// List returns every tenant with owner email and product count,
	// newest first. Console-only.
	List(ctx context.Context) ([]StoreSummary, error)

	// Update replaces the client-settable fields. Slug is included — the
	// console may fix a typo before labels are printed.
	Update(ctx context.Context, storeID uuid.UUID, params StoreParams) (*models.Store, error)

	// UpdateBranding touches only the branding fields and leaves billing and
	// contact data alone. Returns the updated store.
	UpdateBranding(ctx context.Context, storeID uuid.UUID, b models.Branding) (*models.Store, error)

	// ExtendSubscriptions pushes subscription_end forward by days for each
	// store: from today when unset or already past, from the existing date
	// when still in the future. One statement — all listed stores move or
	// none do. Returns how many rows changed.
	ExtendSubscriptions(ctx context.Context, storeIDs []uuid.UUID, days int) (int64, error)

	// Stats returns the system-wide row counts for the console dashboard.
	Stats(ctx context.Context) (*SystemStats, error)
}

// UserRepository manages back-office accounts.
type UserRepository interface {
	// Create inserts a user. storeID uuid.Nil means a NULL store_id
	// (superadmin accounts only).
	Create(ctx context.Context, storeID uuid.UUID, email, passwordHash string, role models.Role) (*models.User, error)

	// GetByEmail is global, not store-scoped: it backs login, where the
	// email is all we have.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Get fetches by id alone, store-independent. It backs /me, where the
	// token already identifies the caller — who may be a superadmin with
	// no store at all.
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// GetByID is store-scoped: a superadmin row (NULL store_id) never
	// matches, whatever storeID is passed.
	GetByID(ctx context.Context, storeID, userID uuid.UUID) (*models.User, error)

	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.User, error)

	// Delete removes a teammate. Scoped to the store; reports whether a row
	// was actually deleted.
	Delete(ctx context.Context, storeID, userID uuid.UUID) (bool, error)
}

// ProductParams carries the client-settable fields of a product.
type ProductParams struct {
	Barcode     string
	Name        string
	Price       float64
	Currency    string
	Description string
}

// ProductRepository manages the per-tenant catalog.
type ProductRepository interface {
	// Upsert inserts, or replaces every field when (store_id, barcode)
	// already exists. (T, B) is unique, so upserting twice leaves exactly
	// one row carrying the latest fields.
	Upsert(ctx context.Context, storeID uuid.UUID, params ProductParams) (*models.Product, error)

	GetByID(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error)

	// GetByBarcode backs the public scan lookup.
	GetByBarcode(ctx context.Context, storeID uuid.UUID, barcode string) (*models.Product, error)

	// ListByStore returns the catalog, newest first. Empty slice, not nil.
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error)

	// Update rewrites an existing product by id. Returns nil, nil when the
	// id does not exist in this store.
	Update(ctx context.Context, storeID, productID uuid.UUID, params ProductParams) (*models.Product, error)

	// Delete removes one product; its scan logs go with it (FK cascade).
	Delete(ctx context.Context, storeID, productID uuid.UUID) (bool, error)

	// DeleteAll wipes the store's catalog. Returns rows removed.
	DeleteAll(ctx context.Context, storeID uuid.UUID) (int64, error)
}

// ProductScanCount is one row of the top-products leaderboard.
type ProductScanCount struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Barcode   string    `json:"barcode"`
	Count     int64     `json:"count"`
}

// RecentScan is one row of the recent-activity feed, joined with the product
// so the dashboard needs no second lookup.
type RecentScan struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Barcode   string    `json:"barcode"`
	ScannedAt time.Time `json:"scanned_at"`
}

// ScanRepository is the append-only ledger behind analytics.
type ScanRepository interface {
	// Append records one successful public lookup.
	Append(ctx context.Context, storeID, productID uuid.UUID) (*models.ScanEvent, error)

	TotalByStore(ctx context.Context, storeID uuid.UUID) (int64, error)

	// DailyCounts groups scans since the given instant by UTC day
	// ("2006-01-02" keys). Days with no scans are simply absent — the
	// analytics handler fills the zeros, so the SQL stays a plain GROUP BY.
	DailyCounts(ctx context.Context, storeID uuid.UUID, since time.Time) (map[string]int64, error)

	TopProducts(ctx context.Context, storeID uuid.UUID, limit int) ([]ProductScanCount, error)

	Recent(ctx context.Context, storeID uuid.UUID, limit int) ([]RecentScan, error)
}
