package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/shared"
	"golang.org/x/oauth2"
)

// CredentialStore persists one [models.Credential] per (user, provider).
//
// Load returns (nil, nil) when nothing is linked.
type CredentialStore interface {
	Load(ctx context.Context, userID string, provider models.Provider) (*models.Credential, error)
	Save(ctx context.Context, userID string, provider models.Provider, cred *models.Credential) error
	Clear(ctx context.Context, userID string, provider models.Provider) error
}

// Authority is the OAuth side of a provider: authorization URLs, grants, and the "who am I" lookup.
type Authority interface {
	Provider() models.Provider

	// Configured reports whether client credentials are present.
	Configured() bool

	// AuthURL builds the consent page URL carrying state.
	AuthURL(state string) string

	// Exchange trades an authorization code for a token pair.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// Profile calls the profile endpoint with accessToken.
	//
	// A 401 yields [shared.ErrAuthExpired]; transport failures and any other non-2xx status yield [shared.ErrProviderUnavailable].
	Profile(ctx context.Context, accessToken string) (*models.ProviderProfile, error)

	// Refresh runs a refresh-token grant.
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)

	// AppToken runs a client-credentials grant. Providers without one return [shared.ErrNotConfigured].
	AppToken(ctx context.Context) (*oauth2.Token, error)
}

// Catalog is an upstream music catalog that can be searched for one [models.ItemKind] at a time.
type Catalog interface {
	Source() models.Provider

	// AuthRequired reports whether Search needs a bearer token.
	AuthRequired() bool

	// Search returns up to limit normalized items for query. Records that cannot be normalized are skipped.
	Search(ctx context.Context, token, query string, kind models.ItemKind, limit int) ([]models.CatalogItem, error)
}

// Option configures a provider client.
type Option func(*client)

// WithHTTPClient sets the HTTP client used for API calls and token grants.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) { cl.httpClient = c }
}

// WithAPIURL overrides the API base URL.
func WithAPIURL(u string) Option {
	return func(cl *client) { cl.apiURL = u }
}

// WithEndpoint overrides the OAuth authorize and token URLs.
func WithEndpoint(e oauth2.Endpoint) Option {
	return func(cl *client) { cl.endpoint = e }
}

// WithTimeout sets the per-call timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *client) { cl.httpClient = &http.Client{Timeout: d} }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(cl *client) { cl.logger = l }
}

// client holds the plumbing shared by every provider client.
type client struct {
	httpClient *http.Client
	apiURL     string
	endpoint   oauth2.Endpoint
	logger     *log.Logger
}

func newClient(apiURL string, endpoint oauth2.Endpoint, opts []Option) client {
	c := client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		apiURL:     apiURL,
		endpoint:   endpoint,
		logger:     shared.NewLogger(nil),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// oauthContext makes the oauth2 package use the client's HTTP client for token grants.
func (c client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// get issues an optionally authenticated GET and returns the body of a 2xx response.
//
// A 401 maps to [shared.ErrAuthExpired]; everything else that is not 2xx maps to [shared.ErrProviderUnavailable].
func (c client) get(ctx context.Context, url, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: status %d", shared.ErrAuthExpired, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d", shared.ErrProviderUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrProviderUnavailable, err)
	}
	return body, nil
}

// clampLimit bounds a page size to [1, max].
func clampLimit(limit, max int) int {
	if limit <= 0 {
		return 1
	}
	if limit > max {
		return max
	}
	return limit
}
