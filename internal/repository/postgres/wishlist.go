package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/utafrali/collections/internal/domain"
	"github.com/utafrali/collections/pkg/database"
	apperrors "github.com/utafrali/collections/pkg/errors"
)

// WishlistRepository implements repository.WishlistRepository using PostgreSQL.
type WishlistRepository struct {
	pool database.DBTX
}

// NewWishlistRepository creates a new PostgreSQL-backed wishlist repository.
func NewWishlistRepository(pool database.DBTX) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

// AddItem inserts a wishlist row. The new row copies the owner's current
// share metadata from any existing row, so a row added while a share is live
// carries the same share_id and expiry as the rest of the collection.
func (r *WishlistRepository) AddItem(ctx context.Context, userID, variantID string) (*domain.WishlistItem, error) {
	query := `
		INSERT INTO wishlist_items (id, user_id, variant_id, is_shared, share_id, share_expires_at)
		SELECT $1, $2, $3, COALESCE(w.is_shared, FALSE), w.share_id, w.share_expires_at
		FROM (SELECT 1) AS one
		LEFT JOIN LATERAL (
			SELECT is_shared, share_id, share_expires_at
			FROM wishlist_items
			WHERE user_id = $2
			LIMIT 1
		) AS w ON TRUE
		RETURNING id, user_id, variant_id, is_shared, share_id, share_expires_at, created_at, updated_at`

	var item domain.WishlistItem
	err := r.pool.QueryRow(ctx, query, uuid.New().String(), userID, variantID).Scan(
		&item.ID,
		&item.UserID,
		&item.VariantID,
		&item.IsShared,
		&item.ShareID,
		&item.ShareExpiresAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(fmt.Sprintf("variant %s is already in the wishlist", variantID))
		}
		return nil, fmt.Errorf("insert wishlist item: %w", err)
	}

	return &item, nil
}

// ListByUser returns all wishlist rows of a user.
func (r *WishlistRepository) ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	query := `
		SELECT id, user_id, variant_id, is_shared, share_id, share_expires_at, created_at, updated_at
		FROM wishlist_items
		WHERE user_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist items: %w", err)
	}
	defer rows.Close()

	return scanWishlistRows(rows)
}

// Remove deletes one (user, variant) row.
func (r *WishlistRepository) Remove(ctx context.Context, userID, variantID string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND variant_id = $2`, userID, variantID)
	if err != nil {
		return fmt.Errorf("delete wishlist item: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist item", variantID)
	}

	return nil
}

// Clear deletes all wishlist rows of a user.
func (r *WishlistRepository) Clear(ctx context.Context, userID string) (int64, error) {
	ct, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear wishlist: %w", err)
	}

	return ct.RowsAffected(), nil
}

// IssueShare applies share metadata to every row of the user in one
// transaction. The user's rows are locked first so two concurrent issues
// cannot interleave and leave the collection with mixed tokens.
func (r *WishlistRepository) IssueShare(ctx context.Context, userID, newShareID string, expiresAt time.Time, force bool) (*domain.ShareLink, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT share_id FROM wishlist_items WHERE user_id = $1 FOR UPDATE`, userID)
	if err != nil {
		return nil, fmt.Errorf("lock wishlist rows: %w", err)
	}

	var (
		rowCount int
		existing *string
	)
	for rows.Next() {
		var shareID *string
		if err := rows.Scan(&shareID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan share id: %w", err)
		}
		rowCount++
		if existing == nil && shareID != nil {
			existing = shareID
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate share rows: %w", err)
	}

	if rowCount == 0 {
		return nil, apperrors.NotFound("wishlist", userID)
	}

	shareID := newShareID
	if !force && existing != nil {
		shareID = *existing
	}

	_, err = tx.Exec(ctx, `
		UPDATE wishlist_items
		SET is_shared = TRUE, share_id = $2, share_expires_at = $3, updated_at = NOW()
		WHERE user_id = $1`,
		userID, shareID, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("apply share metadata: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &domain.ShareLink{ShareID: shareID, ExpiresAt: expiresAt}, nil
}

// RevokeShare clears share metadata on every row of the user in one
// multi-row statement. Revoking an already-private collection is a no-op.
func (r *WishlistRepository) RevokeShare(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE wishlist_items
		SET is_shared = FALSE, share_id = NULL, share_expires_at = NULL, updated_at = NOW()
		WHERE user_id = $1 AND is_shared = TRUE`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("revoke share: %w", err)
	}

	return nil
}

// GetByShareID returns every row covered by a live share token. Share
// metadata is collection-level, so the rows carrying the token are the
// owner's whole wishlist.
func (r *WishlistRepository) GetByShareID(ctx context.Context, shareID string) ([]domain.WishlistItem, error) {
	query := `
		SELECT id, user_id, variant_id, is_shared, share_id, share_expires_at, created_at, updated_at
		FROM wishlist_items
		WHERE share_id = $1 AND is_shared = TRUE`

	rows, err := r.pool.Query(ctx, query, shareID)
	if err != nil {
		return nil, fmt.Errorf("resolve share: %w", err)
	}
	defer rows.Close()

	items, err := scanWishlistRows(rows)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, apperrors.NotFound("share", shareID)
	}

	return items, nil
}

func scanWishlistRows(rows pgx.Rows) ([]domain.WishlistItem, error) {
	items := make([]domain.WishlistItem, 0)
	for rows.Next() {
		var item domain.WishlistItem
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.VariantID,
			&item.IsShared,
			&item.ShareID,
			&item.ShareExpiresAt,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist rows: %w", err)
	}

	return items, nil
}
