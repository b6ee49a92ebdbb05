package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/collections/internal/domain"
)

// stubCatalog serves canned variant payloads, failing the ids listed in fail.
type stubCatalog struct {
	mu    sync.Mutex
	fail  map[string]error
	calls []string
	gate  chan struct{}
}

func (s *stubCatalog) GetVariant(ctx context.Context, variantID string) (*domain.VariantPayload, error) {
	s.mu.Lock()
	s.calls = append(s.calls, variantID)
	s.mu.Unlock()

	if s.gate != nil {
		<-s.gate
	}

	if err, ok := s.fail[variantID]; ok {
		return nil, err
	}
	return &domain.VariantPayload{
		Producto:  domain.ProductInfo{Nombre: "variant " + variantID, Precio: 9.99},
		ImagenURL: "https://cdn.example.com/" + variantID + ".png",
	}, nil
}

func TestEnrichVariants_PreservesCountAndOrder(t *testing.T) {
	catalog := &stubCatalog{}
	ids := []string{"var-3", "var-1", "var-2"}

	results := enrichVariants(context.Background(), ids, catalog)

	require.Len(t, results, 3)
	for i, id := range ids {
		require.NotNil(t, results[i].payload, "slot %d", i)
		assert.Equal(t, "variant "+id, results[i].payload.Producto.Nombre)
		assert.NoError(t, results[i].err)
	}
}

func TestEnrichVariants_OneFailureOfThreeIsIsolated(t *testing.T) {
	catalog := &stubCatalog{fail: map[string]error{"var-2": errors.New("catalog unreachable")}}

	results := enrichVariants(context.Background(), []string{"var-1", "var-2", "var-3"}, catalog)

	require.Len(t, results, 3)
	assert.NotNil(t, results[0].payload)
	assert.NoError(t, results[0].err)

	assert.Nil(t, results[1].payload)
	assert.EqualError(t, results[1].err, "catalog unreachable")

	assert.NotNil(t, results[2].payload)
	assert.NoError(t, results[2].err)
}

func TestEnrichVariants_AllLookupsIssuedConcurrently(t *testing.T) {
	// Every fetch blocks on the gate until released. If lookups ran
	// sequentially the first would deadlock, so completion proves all
	// fetches were in flight before any result was consumed.
	const n = 5
	catalog := &stubCatalog{gate: make(chan struct{})}

	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("var-%d", i)
	}

	done := make(chan []enrichResult, 1)
	go func() {
		done <- enrichVariants(context.Background(), ids, catalog)
	}()

	// Wait until every lookup has been issued, then release them all.
	require.Eventually(t, func() bool {
		catalog.mu.Lock()
		defer catalog.mu.Unlock()
		return len(catalog.calls) == n
	}, 2*time.Second, 5*time.Millisecond, "all lookups should be in flight at once")

	close(catalog.gate)

	results := <-done
	require.Len(t, results, n)
	for i := range results {
		assert.NotNil(t, results[i].payload)
	}
}

func TestEnrichVariants_EmptyInput(t *testing.T) {
	results := enrichVariants(context.Background(), nil, &stubCatalog{})
	assert.Empty(t, results)
}
