package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/utafrali/collections/internal/domain"
	"github.com/utafrali/collections/internal/event"
	"github.com/utafrali/collections/internal/repository"
	apperrors "github.com/utafrali/collections/pkg/errors"
)

const (
	// shareTokenPrefix marks share tokens as wishlist links without leaking
	// anything about the owner.
	shareTokenPrefix = "wl_"
	shareTokenBytes  = 16

	defaultShareExpiryHours = 72
	minShareExpiryHours     = 1
)

// generateShareToken returns an opaque URL-safe share token: the wl_ prefix
// followed by 32 hex characters from crypto/rand.
func generateShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return shareTokenPrefix + hex.EncodeToString(buf), nil
}

// ShareService manages the share-link lifecycle of wishlist collections:
// Private -> Shared -> Expired, and back to Private via revoke.
type ShareService struct {
	repo     repository.WishlistRepository
	identity IdentityLookup
	catalog  VariantLookup
	producer *event.Producer
	logger   *slog.Logger

	// publicBaseURL is the externally visible prefix for share URLs.
	publicBaseURL string

	// now and newToken are injection points for tests.
	now      func() time.Time
	newToken func() (string, error)
}

// NewShareService creates a new share-link service.
func NewShareService(
	repo repository.WishlistRepository,
	identity IdentityLookup,
	catalog VariantLookup,
	producer *event.Producer,
	publicBaseURL string,
	logger *slog.Logger,
) *ShareService {
	return &ShareService{
		repo:          repo,
		identity:      identity,
		catalog:       catalog,
		producer:      producer,
		logger:        logger,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
		newToken:      generateShareToken,
	}
}

// IssueShareInput holds the parameters for issuing a share link.
type IssueShareInput struct {
	ExpiresInHours int  `json:"expires_in_hours" validate:"omitempty,gte=1,lte=8760"`
	ForceRefresh   bool `json:"force_refresh"`
}

// ShareLinkOutput is the result of issuing a share link.
type ShareLinkOutput struct {
	ShareID   string    `json:"share_id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issue makes the user's wishlist publicly resolvable under a share token.
// An existing token is reused unless forceRefresh is set; the expiry window
// restarts either way. Issuing against an empty wishlist fails with NotFound.
func (s *ShareService) Issue(ctx context.Context, userID string, input *IssueShareInput) (*ShareLinkOutput, error) {
	if input == nil {
		input = &IssueShareInput{}
	}

	hours := input.ExpiresInHours
	if hours == 0 {
		hours = defaultShareExpiryHours
	}
	if hours < minShareExpiryHours {
		return nil, apperrors.InvalidInput("expires_in_hours must be at least 1")
	}

	if _, err := s.identity.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	token, err := s.newToken()
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().UTC().Add(time.Duration(hours) * time.Hour)

	link, err := s.repo.IssueShare(ctx, userID, token, expiresAt, input.ForceRefresh)
	if err != nil {
		return nil, err
	}

	reused := link.ShareID != token
	if err := s.producer.PublishShareIssued(ctx, userID, link.ShareID, link.ExpiresAt, reused); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.share.issued event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "share link issued",
		slog.String("user_id", userID),
		slog.String("share_id", link.ShareID),
		slog.Bool("reused", reused),
		slog.Time("expires_at", link.ExpiresAt),
	)

	return &ShareLinkOutput{
		ShareID:   link.ShareID,
		URL:       s.publicBaseURL + "/wishlist/shared/" + link.ShareID,
		ExpiresAt: link.ExpiresAt,
	}, nil
}

// Revoke returns the user's wishlist to the private state. Revoking an
// already-private collection succeeds silently.
func (s *ShareService) Revoke(ctx context.Context, userID string) error {
	if _, err := s.identity.GetUser(ctx, userID); err != nil {
		return err
	}

	if err := s.repo.RevokeShare(ctx, userID); err != nil {
		return err
	}

	if err := s.producer.PublishShareRevoked(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.share.revoked event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "share link revoked", slog.String("user_id", userID))
	return nil
}

// Resolve returns the enriched contents behind a share token. Unknown or
// revoked tokens fail with NotFound; a token past its expiry fails with Gone.
// The returned items carry no owner identity.
func (s *ShareService) Resolve(ctx context.Context, shareID string) ([]domain.SharedItem, error) {
	items, err := s.repo.GetByShareID(ctx, shareID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if len(items) > 0 && items[0].ShareExpiresAt != nil && now.After(*items[0].ShareExpiresAt) {
		return nil, apperrors.Gone("share link has expired")
	}

	variantIDs := make([]string, len(items))
	for i, item := range items {
		variantIDs[i] = item.VariantID
	}

	results := enrichVariants(ctx, variantIDs, s.catalog)

	shared := make([]domain.SharedItem, len(items))
	for i, item := range items {
		shared[i] = domain.SharedItem{VariantID: item.VariantID, Producto: results[i].payload}
		if results[i].err != nil {
			shared[i].Error = results[i].err.Error()
		}
	}

	return shared, nil
}
