package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/collections/internal/domain"
	"github.com/utafrali/collections/pkg/database"
	apperrors "github.com/utafrali/collections/pkg/errors"
)

// CartRepository implements repository.CartRepository using PostgreSQL.
type CartRepository struct {
	pool database.DBTX
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool database.DBTX) *CartRepository {
	return &CartRepository{pool: pool}
}

// UpsertItem adds delta to the quantity of the (user, variant) row, creating
// it when absent. The increment runs as a single upsert statement so two
// concurrent adds of the same variant never lose an update.
func (r *CartRepository) UpsertItem(ctx context.Context, userID, variantID string, delta int) (*domain.CartItem, error) {
	query := `
		INSERT INTO cart_items (user_id, variant_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, variant_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING user_id, variant_id, quantity, created_at, updated_at`

	var item domain.CartItem
	err := r.pool.QueryRow(ctx, query, userID, variantID, delta).Scan(
		&item.UserID,
		&item.VariantID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert cart item: %w", err)
	}

	return &item, nil
}

// SetQuantity replaces the quantity of an existing row.
func (r *CartRepository) SetQuantity(ctx context.Context, userID, variantID string, quantity int) (*domain.CartItem, error) {
	query := `
		UPDATE cart_items
		SET quantity = $3, updated_at = NOW()
		WHERE user_id = $1 AND variant_id = $2
		RETURNING user_id, variant_id, quantity, created_at, updated_at`

	var item domain.CartItem
	err := r.pool.QueryRow(ctx, query, userID, variantID, quantity).Scan(
		&item.UserID,
		&item.VariantID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("cart item", variantID)
		}
		return nil, fmt.Errorf("update cart quantity: %w", err)
	}

	return &item, nil
}

// ListByUser returns all cart rows of a user.
func (r *CartRepository) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	query := `
		SELECT user_id, variant_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.UserID,
			&item.VariantID,
			&item.Quantity,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart rows: %w", err)
	}

	return items, nil
}

// Remove deletes one (user, variant) row.
func (r *CartRepository) Remove(ctx context.Context, userID, variantID string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND variant_id = $2`, userID, variantID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("cart item", variantID)
	}

	return nil
}

// Clear deletes all cart rows of a user.
func (r *CartRepository) Clear(ctx context.Context, userID string) (int64, error) {
	ct, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}

	return ct.RowsAffected(), nil
}
