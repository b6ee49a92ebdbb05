package repository

import (
	"context"
	"time"

	"github.com/utafrali/collections/internal/domain"
)

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	// UpsertItem adds delta to the quantity of the (user, variant) row,
	// creating the row when absent. The increment is atomic.
	UpsertItem(ctx context.Context, userID, variantID string, delta int) (*domain.CartItem, error)

	// SetQuantity replaces the quantity of an existing row.
	SetQuantity(ctx context.Context, userID, variantID string, quantity int) (*domain.CartItem, error)

	// ListByUser returns all cart rows of a user in no particular order.
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)

	// Remove deletes one (user, variant) row.
	Remove(ctx context.Context, userID, variantID string) error

	// Clear deletes all cart rows of a user and returns the number removed.
	Clear(ctx context.Context, userID string) (int64, error)
}

// WishlistRepository defines the interface for wishlist persistence
// operations, including the share-link metadata that is duplicated across
// every row of one user's collection.
type WishlistRepository interface {
	// AddItem inserts a wishlist row. The new row inherits the owner's
	// current share metadata so a live share covers it immediately.
	AddItem(ctx context.Context, userID, variantID string) (*domain.WishlistItem, error)

	// ListByUser returns all wishlist rows of a user in no particular order.
	ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error)

	// Remove deletes one (user, variant) row.
	Remove(ctx context.Context, userID, variantID string) error

	// Clear deletes all wishlist rows of a user and returns the number removed.
	Clear(ctx context.Context, userID string) (int64, error)

	// IssueShare applies share metadata to every row of the user in one
	// transaction. When the user already carries a share token and force is
	// false, that token is reused; the expiry is refreshed either way.
	IssueShare(ctx context.Context, userID, newShareID string, expiresAt time.Time, force bool) (*domain.ShareLink, error)

	// RevokeShare clears share metadata on every row of the user. Revoking
	// an already-private collection is a no-op.
	RevokeShare(ctx context.Context, userID string) error

	// GetByShareID returns every row covered by a live share token.
	GetByShareID(ctx context.Context, shareID string) ([]domain.WishlistItem, error)
}
