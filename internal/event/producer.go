package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	pkgkafka "github.com/utafrali/collections/pkg/kafka"
)

// Kafka topic constants for wishlist domain events.
const (
	TopicWishlistReminder = "shop.wishlist.reminder"
	TopicShareIssued      = "shop.wishlist.share.issued"
	TopicShareRevoked     = "shop.wishlist.share.revoked"
)

// Aggregate type constant.
const AggregateTypeWishlist = "wishlist"

// Source identifier for events originating from this service.
const SourceCollectionsService = "collections-service"

// ReminderData is the payload for a wishlist.reminder event. The notification
// pipeline consumes it to schedule a delayed email for the saved variant.
type ReminderData struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	VariantID string `json:"variant_id"`
}

// ShareIssuedData is the payload for a wishlist.share.issued event.
type ShareIssuedData struct {
	UserID    string    `json:"user_id"`
	ShareID   string    `json:"share_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Reused    bool      `json:"reused"`
}

// ShareRevokedData is the payload for a wishlist.share.revoked event.
type ShareRevokedData struct {
	UserID string `json:"user_id"`
}

// Producer publishes wishlist domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the collections service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReminder publishes a wishlist.reminder event.
func (p *Producer) PublishReminder(ctx context.Context, userID, email, variantID string) error {
	data := ReminderData{
		UserID:    userID,
		Email:     email,
		VariantID: variantID,
	}

	event, err := pkgkafka.NewEvent(TopicWishlistReminder, userID, AggregateTypeWishlist, SourceCollectionsService, data)
	if err != nil {
		return fmt.Errorf("create wishlist.reminder event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicWishlistReminder, event); err != nil {
		return fmt.Errorf("publish wishlist.reminder event: %w", err)
	}

	p.logger.DebugContext(ctx, "published wishlist.reminder event",
		slog.String("user_id", userID),
		slog.String("variant_id", variantID),
	)

	return nil
}

// PublishShareIssued publishes a wishlist.share.issued event.
func (p *Producer) PublishShareIssued(ctx context.Context, userID, shareID string, expiresAt time.Time, reused bool) error {
	data := ShareIssuedData{
		UserID:    userID,
		ShareID:   shareID,
		ExpiresAt: expiresAt,
		Reused:    reused,
	}

	event, err := pkgkafka.NewEvent(TopicShareIssued, userID, AggregateTypeWishlist, SourceCollectionsService, data)
	if err != nil {
		return fmt.Errorf("create wishlist.share.issued event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicShareIssued, event); err != nil {
		return fmt.Errorf("publish wishlist.share.issued event: %w", err)
	}

	p.logger.DebugContext(ctx, "published wishlist.share.issued event",
		slog.String("user_id", userID),
		slog.String("share_id", shareID),
	)

	return nil
}

// PublishShareRevoked publishes a wishlist.share.revoked event.
func (p *Producer) PublishShareRevoked(ctx context.Context, userID string) error {
	event, err := pkgkafka.NewEvent(TopicShareRevoked, userID, AggregateTypeWishlist, SourceCollectionsService, ShareRevokedData{UserID: userID})
	if err != nil {
		return fmt.Errorf("create wishlist.share.revoked event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicShareRevoked, event); err != nil {
		return fmt.Errorf("publish wishlist.share.revoked event: %w", err)
	}

	p.logger.DebugContext(ctx, "published wishlist.share.revoked event",
		slog.String("user_id", userID),
	)

	return nil
}
