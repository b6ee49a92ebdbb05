package domain

import "time"

// CartItem represents one row of a user's cart. A user holds at most one row
// per variant; quantity accumulates on repeated adds.
type CartItem struct {
	UserID    string    `json:"user_id"`
	VariantID string    `json:"variant_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EnrichedCartItem is a cart row joined with its catalog payload. Producto is
// nil when the variant lookup failed; Error then carries the reason.
type EnrichedCartItem struct {
	CartItem
	Producto *VariantPayload `json:"producto"`
	Error    string          `json:"error,omitempty"`
}
