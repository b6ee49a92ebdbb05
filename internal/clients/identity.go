package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/utafrali/collections/internal/domain"
	"github.com/utafrali/collections/pkg/httpclient"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// IdentityClient looks up accounts in the identity service. Collection
// mutations validate the acting user through it before touching the store.
type IdentityClient struct {
	http    HTTPDoer
	baseURL string
	timeout time.Duration
}

// NewIdentityClient creates a client for the identity service.
func NewIdentityClient(doer HTTPDoer, baseURL string, timeout time.Duration) *IdentityClient {
	return &IdentityClient{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

// GetUser fetches one account by id. Upstream statuses are preserved: a 404
// maps to NotFound, 401/403 pass through unchanged.
func (c *IdentityClient) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/identity/"+userID, nil)
	if err != nil {
		return nil, fmt.Errorf("create identity request: %w", err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call identity service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "identity")
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}

	return &user, nil
}
