package service

import (
	"context"
	"sync"

	"github.com/utafrali/collections/internal/domain"
)

// IdentityLookup validates acting users against the identity service.
type IdentityLookup interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// VariantLookup fetches catalog payloads for variants.
type VariantLookup interface {
	GetVariant(ctx context.Context, variantID string) (*domain.VariantPayload, error)
}

type enrichResult struct {
	payload *domain.VariantPayload
	err     error
}

// enrichVariants fans out one catalog lookup per variant id and collects the
// results in input order. Every lookup is issued before any result is
// consumed. A failed lookup fills its slot with a nil payload and the error;
// the batch itself never fails.
func enrichVariants(ctx context.Context, variantIDs []string, catalog VariantLookup) []enrichResult {
	results := make([]enrichResult, len(variantIDs))

	var wg sync.WaitGroup
	for i, id := range variantIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			payload, err := catalog.GetVariant(ctx, id)
			results[i] = enrichResult{payload: payload, err: err}
		}(i, id)
	}
	wg.Wait()

	return results
}
