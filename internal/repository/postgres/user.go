package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lookprice/lookprice/internal/models"
)

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// scanUser handles the nullable store_id: superadmin rows store NULL, which
// comes back as uuid.Nil on the model.
func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var storeID uuid.NullUUID
	err := row.Scan(
		&u.ID,
		&storeID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.StoreID = storeID.UUID
	return &u, nil
}

// Create inserts a user row. storeID uuid.Nil is written as NULL — that is
// only ever done for superadmin accounts.
func (s *UserStore) Create(ctx context.Context, storeID uuid.UUID, email, passwordHash string, role models.Role) (*models.User, error) {
	query := `
		INSERT INTO users (store_id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, store_id, email, password_hash, role, created_at`

	u, err := scanUser(s.pool.QueryRow(ctx, query,
		uuid.NullUUID{UUID: storeID, Valid: storeID != uuid.Nil},
		email, passwordHash, role,
	))
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetByEmail looks up a user by email (globally, not store-scoped).
// Backs login — the email is the only identifier the caller has yet.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, store_id, email, password_hash, role, created_at
		FROM users
		WHERE email = $1`

	u, err := scanUser(s.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// Get fetches by id alone. Store-independent on purpose — it backs /me, and
// a superadmin's row has store_id NULL, which no store-scoped WHERE clause
// would ever match.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, store_id, email, password_hash, role, created_at
		FROM users
		WHERE id = $1`

	u, err := scanUser(s.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByID(ctx context.Context, storeID, userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, store_id, email, password_hash, role, created_at
		FROM users
		WHERE id = $1 AND store_id = $2`

	u, err := scanUser(s.pool.QueryRow(ctx, query, userID, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.User, error) {
	query := `
		SELECT id, store_id, email, password_hash, role, created_at
		FROM users
		WHERE store_id = $1
		ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// Delete removes a teammate, scoped to the store. The handler has already
// checked the target is not the owning storeadmin.
func (s *UserStore) Delete(ctx context.Context, storeID, userID uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM users WHERE id = $1 AND store_id = $2`, userID, storeID)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
