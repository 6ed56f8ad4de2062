// Package jwks fetches and caches the identity provider's JSON Web Key Set.
package jwks

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jamesprial/coffee-shop/internal/metrics"
	"github.com/jamesprial/coffee-shop/internal/oauth/oautherr"
)

// maxBodyBytes bounds the key set response.
const maxBodyBytes = 1 << 20

// JWKS represents a JSON Web Key Set.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a single JSON Web Key.
type JWK struct {
	KeyType   string `json:"kty"`
	Use       string `json:"use,omitempty"`
	KeyID     string `json:"kid"`
	Algorithm string `json:"alg,omitempty"`
	N         string `json:"n,omitempty"`
	E         string `json:"e,omitempty"`
}

// Options configures a Client.
type Options struct {
	// CacheTTL is how long a fetched set is served without refetching.
	CacheTTL time.Duration

	// FetchTimeout bounds a single fetch.
	FetchTimeout time.Duration

	// MinRefreshInterval rate-limits refetches triggered by unknown kids.
	MinRefreshInterval time.Duration

	// HTTPClient overrides the default client. Optional.
	HTTPClient *http.Client
}

// Client fetches the key set from a single JWKS URL and caches it.
type Client struct {
	httpClient   *http.Client
	jwksURL      string
	cache        *Cache
	fetchTimeout time.Duration
	minRefresh   time.Duration
	group        singleflight.Group

	mu          sync.Mutex
	lastAttempt time.Time
}

// NewClient creates a new JWKS client.
func NewClient(jwksURL string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient:   httpClient,
		jwksURL:      jwksURL,
		cache:        NewCache(opts.CacheTTL),
		fetchTimeout: opts.FetchTimeout,
		minRefresh:   opts.MinRefreshInterval,
	}
}

// GetKey returns the RSA public key for keyID.
//
// A stale cache is refetched. An unknown kid on a fresh cache triggers one
// refetch, at most once per MinRefreshInterval, so rotated keys are picked up.
// Fetch failures are 503 identity_provider_unavailable; a kid missing after
// the refetch is 401 invalid_header.
func (c *Client) GetKey(ctx context.Context, keyID string) (any, error) {
	if keyID == "" {
		return nil, oautherr.NewMalformedError(oautherr.ErrMissingKeyID)
	}

	key, found, fresh := c.cache.Get(keyID)
	if found && fresh {
		return key, nil
	}

	if fresh && !c.refreshAllowed() {
		return nil, oautherr.NewKeyNotFoundError(fmt.Errorf("%w: %s", oautherr.ErrKeyNotFound, keyID))
	}

	if err := c.RefreshKeys(ctx); err != nil {
		// Keep serving a known key when the provider is briefly unreachable.
		if found {
			slog.Warn("serving stale signing key after refresh failure", "kid", keyID, "error", err)
			return key, nil
		}
		return nil, err
	}

	key, found, _ = c.cache.Get(keyID)
	if !found {
		return nil, oautherr.NewKeyNotFoundError(fmt.Errorf("%w: %s", oautherr.ErrKeyNotFound, keyID))
	}
	return key, nil
}

// RefreshKeys fetches the key set and replaces the cache.
// Concurrent callers share a single in-flight fetch.
func (c *Client) RefreshKeys(ctx context.Context) error {
	ch := c.group.DoChan("jwks", func() (any, error) {
		c.mu.Lock()
		c.lastAttempt = time.Now()
		c.mu.Unlock()

		keys, err := c.fetch(context.WithoutCancel(ctx))
		metrics.RecordJWKSRefresh(err == nil)
		if err != nil {
			return nil, err
		}
		c.cache.Replace(keys)
		slog.Debug("jwks refreshed", "url", c.jwksURL, "keys", c.cache.Size())
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return oautherr.NewUnavailableError(fmt.Errorf("%w: %v", oautherr.ErrJWKSFetchFailed, ctx.Err()))
	}
}

func (c *Client) refreshAllowed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastAttempt.IsZero() || time.Since(c.lastAttempt) >= c.minRefresh
}

// fetch downloads and decodes the key set. Keys that are not usable RSA
// signing keys are skipped.
func (c *Client) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return nil, oautherr.NewUnavailableError(fmt.Errorf("%w: %v", oautherr.ErrJWKSFetchFailed, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, oautherr.NewUnavailableError(fmt.Errorf("%w: %v", oautherr.ErrJWKSFetchFailed, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, oautherr.NewUnavailableError(
			fmt.Errorf("%w: jwks endpoint returned status %d", oautherr.ErrJWKSFetchFailed, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, oautherr.NewUnavailableError(fmt.Errorf("%w: %v", oautherr.ErrJWKSFetchFailed, err))
	}

	var set JWKS
	if err := json.Unmarshal(body, &set); err != nil {
		return nil, oautherr.NewUnavailableError(fmt.Errorf("%w: %v", oautherr.ErrJWKSFetchFailed, err))
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for i := range set.Keys {
		jwk := &set.Keys[i]
		if jwk.KeyID == "" || (jwk.Use != "" && jwk.Use != "sig") {
			continue
		}
		key, err := rsaPublicKey(jwk)
		if err != nil {
			slog.Debug("skipping jwk", "kid", jwk.KeyID, "error", err)
			continue
		}
		keys[jwk.KeyID] = key
	}
	return keys, nil
}
