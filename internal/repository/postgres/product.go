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

const productColumns = `id, store_id, barcode, name, price, currency, description, created_at`

type ProductStore struct {
	pool *pgxpool.Pool
}

func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID,
		&p.StoreID,
		&p.Barcode,
		&p.Name,
		&p.Price,
		&p.Currency,
		&p.Description,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert inserts, or replaces every field when the barcode already exists in
// this store. ON CONFLICT on the (store_id, barcode) unique key makes a
// re-import of the same label an overwrite, never a duplicate.
func (s *ProductStore) Upsert(ctx context.Context, storeID uuid.UUID, params repository.ProductParams) (*models.Product, error) {
	query := `
		INSERT INTO products (store_id, barcode, name, price, currency, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (store_id, barcode) DO UPDATE
		SET name = EXCLUDED.name,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			description = EXCLUDED.description
		RETURNING ` + productColumns

	p, err := scanProduct(s.pool.QueryRow(ctx, query,
		storeID, params.Barcode, params.Name, params.Price, params.Currency, params.Description))
	if err != nil {
		return nil, fmt.Errorf("upsert product: %w", err)
	}
	return p, nil
}

func (s *ProductStore) GetByID(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND store_id = $2`,
		productID, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *ProductStore) GetByBarcode(ctx context.Context, storeID uuid.UUID, barcode string) (*models.Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE store_id = $1 AND barcode = $2`,
		storeID, barcode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by barcode: %w", err)
	}
	return p, nil
}

func (s *ProductStore) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE store_id = $1 ORDER BY created_at DESC`,
		storeID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (s *ProductStore) Update(ctx context.Context, storeID, productID uuid.UUID, params repository.ProductParams) (*models.Product, error) {
	query := `
		UPDATE products
		SET barcode = $3, name = $4, price = $5, currency = $6, description = $7
		WHERE id = $1 AND store_id = $2
		RETURNING ` + productColumns

	p, err := scanProduct(s.pool.QueryRow(ctx, query,
		productID, storeID, params.Barcode, params.Name, params.Price, params.Currency, params.Description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// Delete removes one product. scan_logs rows referencing it go with it via
// the ON DELETE CASCADE foreign key — no orphaned scan events.
func (s *ProductStore) Delete(ctx context.Context, storeID, productID uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM products WHERE id = $1 AND store_id = $2`, productID, storeID)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *ProductStore) DeleteAll(ctx context.Context, storeID uuid.UUID) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM products WHERE store_id = $1`, storeID)
	if err != nil {
		return 0, fmt.Errorf("delete all products: %w", err)
	}
	return tag.RowsAffected(), nil
}
