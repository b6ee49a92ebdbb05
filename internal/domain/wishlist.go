package domain

import "time"

// Share lifecycle states of a wishlist collection.
const (
	ShareStatePrivate = "private"
	ShareStateShared  = "shared"
	ShareStateExpired = "expired"
)

// WishlistItem represents one row of a user's wishlist. Share metadata is
// collection-level: every row of one user's wishlist carries the same
// share_id and share_expires_at while a share is live.
type WishlistItem struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	VariantID      string     `json:"variant_id"`
	IsShared       bool       `json:"is_shared"`
	ShareID        *string    `json:"share_id,omitempty"`
	ShareExpiresAt *time.Time `json:"share_expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ShareState reports the share lifecycle state of the row at the given time.
func (w *WishlistItem) ShareState(now time.Time) string {
	if !w.IsShared || w.ShareID == nil {
		return ShareStatePrivate
	}
	if w.ShareExpiresAt != nil && now.After(*w.ShareExpiresAt) {
		return ShareStateExpired
	}
	return ShareStateShared
}

// HasActiveShare reports whether the row carries a share that has not expired.
func (w *WishlistItem) HasActiveShare(now time.Time) bool {
	return w.ShareState(now) == ShareStateShared
}

// EnrichedWishlistItem is a wishlist row joined with its catalog payload.
type EnrichedWishlistItem struct {
	WishlistItem
	Producto *VariantPayload `json:"producto"`
	Error    string          `json:"error,omitempty"`
}

// ShareLink is the result of issuing a share for a wishlist.
type ShareLink struct {
	ShareID   string    `json:"share_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SharedItem is one row of a resolved share. It deliberately carries no owner
// identity; consumers of a share link see catalog data only.
type SharedItem struct {
	VariantID string          `json:"variant_id"`
	Producto  *VariantPayload `json:"producto"`
	Error     string          `json:"error,omitempty"`
}
