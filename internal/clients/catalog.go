package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/collections/internal/domain"
	"github.com/utafrali/collections/pkg/httpclient"
)

// CatalogClient fetches variant payloads from the catalog service. An
// optional short-TTL Redis cache sits in front of the HTTP call: per-user
// enrichment fans out over the same hot variants, so even a few seconds of
// caching absorbs most of the load. Cache failures fall through to HTTP.
type CatalogClient struct {
	http     HTTPDoer
	baseURL  string
	timeout  time.Duration
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewCatalogClient creates a client for the catalog service. cache may be
// nil, which disables variant caching.
func NewCatalogClient(doer HTTPDoer, baseURL string, timeout time.Duration, cache *redis.Client, cacheTTL time.Duration, logger *slog.Logger) *CatalogClient {
	return &CatalogClient{
		http:     doer,
		baseURL:  strings.TrimRight(baseURL, "/"),
		timeout:  timeout,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func variantCacheKey(variantID string) string {
	return "catalog:variant:" + variantID
}

// GetVariant fetches one variant by id, serving from the cache when possible.
// A 404 from the catalog maps to NotFound.
func (c *CatalogClient) GetVariant(ctx context.Context, variantID string) (*domain.VariantPayload, error) {
	if payload := c.cacheGet(ctx, variantID); payload != nil {
		return payload, nil
	}

	payload, err := c.fetchVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}

	c.cacheSet(ctx, variantID, payload)
	return payload, nil
}

func (c *CatalogClient) fetchVariant(ctx context.Context, variantID string) (*domain.VariantPayload, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/variant/"+variantID, nil)
	if err != nil {
		return nil, fmt.Errorf("create variant request: %w", err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var payload domain.VariantPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode variant response: %w", err)
	}

	return &payload, nil
}

func (c *CatalogClient) cacheGet(ctx context.Context, variantID string) *domain.VariantPayload {
	if c.cache == nil {
		return nil
	}

	data, err := c.cache.Get(ctx, variantCacheKey(variantID)).Bytes()
	if err != nil {
		if c.logger != nil && err != redis.Nil {
			c.logger.DebugContext(ctx, "variant cache read failed",
				slog.String("variant_id", variantID),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	var payload domain.VariantPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}
	return &payload
}

func (c *CatalogClient) cacheSet(ctx context.Context, variantID string, payload *domain.VariantPayload) {
	if c.cache == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	if err := c.cache.Set(ctx, variantCacheKey(variantID), data, c.cacheTTL).Err(); err != nil && c.logger != nil {
		c.logger.DebugContext(ctx, "variant cache write failed",
			slog.String("variant_id", variantID),
			slog.String("error", err.Error()),
		)
	}
}
