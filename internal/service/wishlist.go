package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/collections/internal/domain"
	"github.com/utafrali/collections/internal/event"
	"github.com/utafrali/collections/internal/repository"
	apperrors "github.com/utafrali/collections/pkg/errors"
)

// WishlistService implements the business logic for wishlist operations.
type WishlistService struct {
	repo     repository.WishlistRepository
	identity IdentityLookup
	catalog  VariantLookup
	producer *event.Producer
	logger   *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(
	repo repository.WishlistRepository,
	identity IdentityLookup,
	catalog VariantLookup,
	producer *event.Producer,
	logger *slog.Logger,
) *WishlistService {
	return &WishlistService{
		repo:     repo,
		identity: identity,
		catalog:  catalog,
		producer: producer,
		logger:   logger,
	}
}

// SaveItemInput holds the parameters for saving a variant to a wishlist.
type SaveItemInput struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	VariantID string `json:"variant_id" validate:"required,uuid"`
}

// AddItem saves a variant to the user's wishlist. Saving a variant that is
// already present fails with Conflict. After a successful save a reminder
// event is published; publish failures are logged, never surfaced.
func (s *WishlistService) AddItem(ctx context.Context, input *SaveItemInput) (*domain.WishlistItem, error) {
	if input == nil {
		return nil, apperrors.InvalidInput("wishlist input is required")
	}

	user, err := s.identity.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalog.GetVariant(ctx, input.VariantID); err != nil {
		return nil, err
	}

	item, err := s.repo.AddItem(ctx, input.UserID, input.VariantID)
	if err != nil {
		return nil, err
	}

	if err := s.producer.PublishReminder(ctx, user.ID, user.Email, input.VariantID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.reminder event",
			slog.String("user_id", user.ID),
			slog.String("variant_id", input.VariantID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "wishlist item added",
		slog.String("user_id", input.UserID),
		slog.String("variant_id", input.VariantID),
		slog.Bool("covered_by_share", item.IsShared),
	)

	return item, nil
}

// ListWishlist returns the user's wishlist with catalog payloads attached.
// Per-item lookup failures degrade that item only.
func (s *WishlistService) ListWishlist(ctx context.Context, userID string) ([]domain.EnrichedWishlistItem, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	variantIDs := make([]string, len(items))
	for i, item := range items {
		variantIDs[i] = item.VariantID
	}

	results := enrichVariants(ctx, variantIDs, s.catalog)

	enriched := make([]domain.EnrichedWishlistItem, len(items))
	for i, item := range items {
		enriched[i] = domain.EnrichedWishlistItem{WishlistItem: item, Producto: results[i].payload}
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

// RemoveItem deletes one variant from the user's wishlist.
func (s *WishlistService) RemoveItem(ctx context.Context, userID, variantID string) error {
	if _, err := s.identity.GetUser(ctx, userID); err != nil {
		return err
	}

	if err := s.repo.Remove(ctx, userID, variantID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "wishlist item removed",
		slog.String("user_id", userID),
		slog.String("variant_id", variantID),
	)

	return nil
}

// ClearWishlist removes every row of the user's wishlist and returns the count.
func (s *WishlistService) ClearWishlist(ctx context.Context, userID string) (int64, error) {
	if _, err := s.identity.GetUser(ctx, userID); err != nil {
		return 0, err
	}

	count, err := s.repo.Clear(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "wishlist cleared",
		slog.String("user_id", userID),
		slog.Int64("items_removed", count),
	)

	return count, nil
}
