package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lookprice/lookprice/internal/models"
	"github.com/lookprice/lookprice/internal/repository"
)

const storeColumns = `id, name, slug, address, contact_person, phone, email,
	subscription_end, logo_url, primary_color, background_url, currency, created_at`

type StoreStore struct {
	pool *pgxpool.Pool
}

func NewStoreStore(pool *pgxpool.Pool) *StoreStore {
	return &StoreStore{pool: pool}
}

func scanStore(row pgx.Row) (*models.Store, error) {
	var s models.Store
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Slug,
		&s.Address,
		&s.ContactPerson,
		&s.Phone,
		&s.Email,
		&s.SubscriptionEnd,
		&s.LogoURL,
		&s.PrimaryColor,
		&s.BackgroundURL,
		&s.Currency,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateWithOwner provisions a tenant: the store row and its owning
// storeadmin in one transaction. If the owner insert fails (say the email is
// already registered), the store row rolls back with it — a store never
// exists without exactly one owner.
func (s *StoreStore) CreateWithOwner(ctx context.Context, store repository.StoreParams, ownerEmail, ownerPasswordHash string) (*models.Store, *models.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin provisioning tx: %w", err)
	}
	// Rollback after Commit is a harmless no-op.
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO stores (name, slug, address, contact_person, phone, email,
			subscription_end, logo_url, primary_color, background_url, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + storeColumns

	created, err := scanStore(tx.QueryRow(ctx, query,
		store.Name,
		store.Slug,
		store.Address,
		store.ContactPerson,
		store.Phone,
		store.Email,
		store.SubscriptionEnd,
		store.LogoURL,
		store.PrimaryColor,
		store.BackgroundURL,
		store.Currency,
	))
	if err != nil {
		return nil, nil, fmt.Errorf("insert store: %w", err)
	}

	var owner models.User
	err = tx.QueryRow(ctx, `
		INSERT INTO users (store_id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, store_id, email, password_hash, role, created_at`,
		created.ID, ownerEmail, ownerPasswordHash, models.RoleStoreAdmin,
	).Scan(&owner.ID, &owner.StoreID, &owner.Email, &owner.PasswordHash, &owner.Role, &owner.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("insert owner user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit provisioning tx: %w", err)
	}
	return created, &owner, nil
}

func (s *StoreStore) GetByID(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	st, err := scanStore(s.pool.QueryRow(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE id = $1`, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return st, nil
}

func (s *StoreStore) GetBySlug(ctx context.Context, slug string) (*models.Store, error) {
	st, err := scanStore(s.pool.QueryRow(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store by slug: %w", err)
	}
	return st, nil
}

// List joins each store with its owner email and catalog size for the console
// list view. The owner is the storeadmin created at provisioning time.
func (s *StoreStore) List(ctx context.Context) ([]repository.StoreSummary, error) {
	query := `
		SELECT s.id, s.name, s.slug, s.address, s.contact_person, s.phone, s.email,
			s.subscription_end, s.logo_url, s.primary_color, s.background_url,
			s.currency, s.created_at,
			COALESCE(u.email, '') AS owner_email,
			(SELECT count(*) FROM products p WHERE p.store_id = s.id) AS product_count
		FROM stores s
		LEFT JOIN users u ON u.store_id = s.id AND u.role = 'storeadmin'
		ORDER BY s.created_at DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	summaries := make([]repository.StoreSummary, 0)
	for rows.Next() {
		var sum repository.StoreSummary
		if err := rows.Scan(
			&sum.ID,
			&sum.Name,
			&sum.Slug,
			&sum.Address,
			&sum.ContactPerson,
			&sum.Phone,
			&sum.Email,
			&sum.SubscriptionEnd,
			&sum.LogoURL,
			&sum.PrimaryColor,
			&sum.BackgroundURL,
			&sum.Currency,
			&sum.CreatedAt,
			&sum.OwnerEmail,
			&sum.ProductCount,
		); err != nil {
			return nil, fmt.Errorf("scan store summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stores: %w", err)
	}

	return summaries, nil
}

func (s *StoreStore) Update(ctx context.Context, storeID uuid.UUID, params repository.StoreParams) (*models.Store, error) {
	query := `
		UPDATE stores
		SET name = $2, slug = $3, address = $4, contact_person = $5, phone = $6,
			email = $7, subscription_end = $8, logo_url = $9, primary_color = $10,
			background_url = $11, currency = $12
		WHERE id = $1
		RETURNING ` + storeColumns

	st, err := scanStore(s.pool.QueryRow(ctx, query,
		storeID,
		params.Name,
		params.Slug,
		params.Address,
		params.ContactPerson,
		params.Phone,
		params.Email,
		params.SubscriptionEnd,
		params.LogoURL,
		params.PrimaryColor,
		params.BackgroundURL,
		params.Currency,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update store: %w", err)
	}
	return st, nil
}

func (s *StoreStore) UpdateBranding(ctx context.Context, storeID uuid.UUID, b models.Branding) (*models.Store, error) {
	query := `
		UPDATE stores
		SET logo_url = $2, primary_color = $3, background_url = $4, currency = $5
		WHERE id = $1
		RETURNING ` + storeColumns

	st, err := scanStore(s.pool.QueryRow(ctx, query,
		storeID, b.LogoURL, b.PrimaryColor, b.BackgroundURL, b.Currency))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update branding: %w", err)
	}
	return st, nil
}

// ExtendSubscriptions moves subscription_end forward for every listed store
// in a single UPDATE, so the batch applies atomically. A NULL or already-past
// end date restarts from today; a date still in the future extends from that
// date — paying early never costs the remaining days.
func (s *StoreStore) ExtendSubscriptions(ctx context.Context, storeIDs []uuid.UUID, days int) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE stores
		SET subscription_end = CASE
			WHEN subscription_end IS NULL OR subscription_end < CURRENT_DATE
				THEN CURRENT_DATE + $2
			ELSE subscription_end + $2
		END
		WHERE id = ANY($1)`,
		storeIDs, days,
	)
	if err != nil {
		return 0, fmt.Errorf("extend subscriptions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *StoreStore) Stats(ctx context.Context) (*repository.SystemStats, error) {
	var stats repository.SystemStats
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM stores),
			(SELECT count(*) FROM products),
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM scan_logs)`,
	).Scan(&stats.Stores, &stats.Products, &stats.Users, &stats.Scans)
	if err != nil {
		return nil, fmt.Errorf("system stats: %w", err)
	}
	return &stats, nil
}
