package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/collections/internal/domain"
	"github.com/utafrali/collections/internal/repository"
	apperrors "github.com/utafrali/collections/pkg/errors"
)

// CartService implements the business logic for cart operations.
type CartService struct {
	repo     repository.CartRepository
	identity IdentityLookup
	catalog  VariantLookup
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, identity IdentityLookup, catalog VariantLookup, logger *slog.Logger) *CartService {
	return &CartService{
		repo:     repo,
		identity: identity,
		catalog:  catalog,
		logger:   logger,
	}
}

// AddItemInput holds the parameters for adding a variant to a cart.
type AddItemInput struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// AddItem adds quantity of a variant to the user's cart. Repeated adds of the
// same variant accumulate. The user and variant are both validated upstream
// before the store is touched; either failure aborts the operation.
func (s *CartService) AddItem(ctx context.Context, input *AddItemInput) (*domain.CartItem, error) {
	if input == nil {
		return nil, apperrors.InvalidInput("cart input is required")
	}
	if input.Quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}

	if _, err := s.identity.GetUser(ctx, input.UserID); err != nil {
		return nil, err
	}
	if _, err := s.catalog.GetVariant(ctx, input.VariantID); err != nil {
		return nil, err
	}

	item, err := s.repo.UpsertItem(ctx, input.UserID, input.VariantID, input.Quantity)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "cart item added",
		slog.String("user_id", input.UserID),
		slog.String("variant_id", input.VariantID),
		slog.Int("quantity", item.Quantity),
	)

	return item, nil
}

// SetQuantity replaces the quantity of an existing cart row.
func (s *CartService) SetQuantity(ctx context.Context, userID, variantID string, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}

	if _, err := s.identity.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	item, err := s.repo.SetQuantity(ctx, userID, variantID, quantity)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "cart quantity updated",
		slog.String("user_id", userID),
		slog.String("variant_id", variantID),
		slog.Int("quantity", quantity),
	)

	return item, nil
}

// ListCart returns the user's cart with catalog payloads attached. A failed
// variant lookup degrades that single item; the listing itself succeeds.
func (s *CartService) ListCart(ctx context.Context, userID string) ([]domain.EnrichedCartItem, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	variantIDs := make([]string, len(items))
	for i, item := range items {
		variantIDs[i] = item.VariantID
	}

	results := enrichVariants(ctx, variantIDs, s.catalog)

	enriched := make([]domain.EnrichedCartItem, len(items))
	for i, item := range items {
		enriched[i] = domain.EnrichedCartItem{CartItem: item, Producto: results[i].payload}
		if results[i].err != nil {
			enriched[i].Error = results[i].err.Error()
			s.logger.WarnContext(ctx, "variant enrichment failed",
				slog.String("variant_id", item.VariantID),
				slog.String("error", results[i].err.Error()),
			)
		}
	}

	return enriched, nil
}

// RemoveItem deletes one variant from the user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, variantID string) error {
	if _, err := s.identity.GetUser(ctx, userID); err != nil {
		return err
	}

	if err := s.repo.Remove(ctx, userID, variantID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "cart item removed",
		slog.String("user_id", userID),
		slog.String("variant_id", variantID),
	)

	return nil
}

// ClearCart removes every row of the user's cart and returns the count.
func (s *CartService) ClearCart(ctx context.Context, userID string) (int64, error) {
	if _, err := s.identity.GetUser(ctx, userID); err != nil {
		return 0, err
	}

	count, err := s.repo.Clear(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("user_id", userID),
		slog.Int64("items_removed", count),
	)

	return count, nil
}
