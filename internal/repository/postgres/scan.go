package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lookprice/lookprice/internal/models"
	"github.com/lookprice/lookprice/internal/repository"
)

type ScanStore struct {
	pool *pgxpool.Pool
}

func NewScanStore(pool *pgxpool.Pool) *ScanStore {
	return &ScanStore{pool: pool}
}

func (s *ScanStore) Append(ctx context.Context, storeID, productID uuid.UUID) (*models.ScanEvent, error) {
	query := `
		INSERT INTO scan_logs (store_id, product_id)
		VALUES ($1, $2)
		RETURNING id, store_id, product_id, created_at`

	var ev models.ScanEvent
	err := s.pool.QueryRow(ctx, query, storeID, productID).Scan(
		&ev.ID,
		&ev.StoreID,
		&ev.ProductID,
		&ev.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert scan log: %w", err)
	}
	return &ev, nil
}

func (s *ScanStore) TotalByStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var total int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM scan_logs WHERE store_id = $1`, storeID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count scans: %w", err)
	}
	return total, nil
}

// DailyCounts groups scans by UTC day. Only days that actually saw a scan
// appear in the map — the analytics handler is the one that knows the window
// and fills the zero days.
func (s *ScanStore) DailyCounts(ctx context.Context, storeID uuid.UUID, since time.Time) (map[string]int64, error) {
	query := `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, count(*)
		FROM scan_logs
		WHERE store_id = $1 AND created_at >= $2
		GROUP BY day`

	rows, err := s.pool.Query(ctx, query, storeID, since)
	if err != nil {
		return nil, fmt.Errorf("daily scan counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var day string
		var count int64
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		counts[day] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily counts: %w", err)
	}

	return counts, nil
}

func (s *ScanStore) TopProducts(ctx context.Context, storeID uuid.UUID, limit int) ([]repository.ProductScanCount, error) {
	query := `
		SELECT p.id, p.name, p.barcode, count(*) AS scans
		FROM scan_logs l
		JOIN products p ON p.id = l.product_id
		WHERE l.store_id = $1
		GROUP BY p.id, p.name, p.barcode
		ORDER BY scans DESC, p.name ASC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, storeID, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	top := make([]repository.ProductScanCount, 0)
	for rows.Next() {
		var pc repository.ProductScanCount
		if err := rows.Scan(&pc.ProductID, &pc.Name, &pc.Barcode, &pc.Count); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		top = append(top, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top products: %w", err)
	}

	return top, nil
}

func (s *ScanStore) Recent(ctx context.Context, storeID uuid.UUID, limit int) ([]repository.RecentScan, error) {
	query := `
		SELECT p.id, p.name, p.barcode, l.created_at
		FROM scan_logs l
		JOIN products p ON p.id = l.product_id
		WHERE l.store_id = $1
		ORDER BY l.id DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, storeID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent scans: %w", err)
	}
	defer rows.Close()

	recent := make([]repository.RecentScan, 0)
	for rows.Next() {
		var rs repository.RecentScan
		if err := rows.Scan(&rs.ProductID, &rs.Name, &rs.Barcode, &rs.ScannedAt); err != nil {
			return nil, fmt.Errorf("scan recent scan: %w", err)
		}
		recent = append(recent, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent scans: %w", err)
	}

	return recent, nil
}
