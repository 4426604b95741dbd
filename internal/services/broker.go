package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/shared"
	"golang.org/x/oauth2"
)

// appTokenSkew is subtracted from an app token's expiry so a cached token is never handed out in its last seconds.
const appTokenSkew = 30 * time.Second

// TokenBroker hands out bearer tokens for one upstream call at a time.
//
// User tokens are verified against the provider on every request and refreshed on a 401.
// Concurrent refreshes of the same credential are not coordinated; the last save wins.
type TokenBroker struct {
	store       CredentialStore
	authorities map[models.Provider]Authority
	logger      *log.Logger
	now         func() time.Time

	mu        sync.Mutex
	appTokens map[models.Provider]*oauth2.Token
}

// NewTokenBroker creates a broker over store for the given provider authorities.
func NewTokenBroker(store CredentialStore, logger *log.Logger, authorities ...Authority) *TokenBroker {
	b := &TokenBroker{
		store:       store,
		authorities: make(map[models.Provider]Authority, len(authorities)),
		logger:      logger,
		now:         time.Now,
		appTokens:   make(map[models.Provider]*oauth2.Token),
	}
	for _, a := range authorities {
		b.authorities[a.Provider()] = a
	}
	return b
}

// Authority returns the registered authority for provider, or [shared.ErrNotConfigured].
func (b *TokenBroker) Authority(provider models.Provider) (Authority, error) {
	a, ok := b.authorities[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotConfigured, provider)
	}
	return a, nil
}

// GetUserToken returns a token for cred that the provider accepted moments ago.
//
// A successful profile lookup returns the stored token without writing. A 401 triggers a refresh-token grant whose result
// is saved exactly once. A missing refresh token or a failed grant is [shared.ErrAuthExpired]; transport errors
// and other statuses are [shared.ErrProviderUnavailable]. Neither failure writes to the store.
func (b *TokenBroker) GetUserToken(ctx context.Context, cred *models.Credential) (string, error) {
	if !cred.Linked() {
		return "", fmt.Errorf("%w: no access token stored", shared.ErrAuthExpired)
	}

	authority, err := b.Authority(cred.Provider)
	if err != nil {
		return "", err
	}

	_, err = authority.Profile(ctx, cred.AccessToken)
	switch {
	case err == nil:
		return cred.AccessToken, nil
	case !errors.Is(err, shared.ErrAuthExpired):
		return "", fmt.Errorf("%w: %s profile: %v", shared.ErrProviderUnavailable, cred.Provider, err)
	}

	if !cred.CanRefresh() {
		return "", fmt.Errorf("%w: %s token rejected and no refresh token stored", shared.ErrAuthExpired, cred.Provider)
	}

	token, err := authority.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		if !errors.Is(err, shared.ErrAuthExpired) {
			err = fmt.Errorf("%w: %v", shared.ErrAuthExpired, err)
		}
		return "", err
	}

	cred.Rotate(token.AccessToken, token.RefreshToken)
	if err := b.store.Save(ctx, cred.UserID, cred.Provider, cred); err != nil {
		b.logger.Error("failed to persist refreshed token", "provider", cred.Provider, "user", cred.UserID, "error", err)
	} else {
		b.logger.Info("refreshed provider token", "provider", cred.Provider, "user", cred.UserID)
	}

	return cred.AccessToken, nil
}

// UserToken loads the stored credential and runs [TokenBroker.GetUserToken] on it.
//
// Returns [shared.ErrNotLinked] when the user has no credential for provider.
func (b *TokenBroker) UserToken(ctx context.Context, userID string, provider models.Provider) (string, error) {
	cred, err := b.store.Load(ctx, userID, provider)
	if err != nil {
		return "", fmt.Errorf("failed to load credential: %w", err)
	}
	if !cred.Linked() {
		return "", fmt.Errorf("%w: %s", shared.ErrNotLinked, provider)
	}
	return b.GetUserToken(ctx, cred)
}

// ResolveToken prefers the user's own token and falls back to the app token.
//
// relink is true when the user had linked provider but the link can no longer be refreshed.
func (b *TokenBroker) ResolveToken(ctx context.Context, userID string, provider models.Provider) (token string, relink bool) {
	token, err := b.UserToken(ctx, userID, provider)
	switch {
	case err == nil:
		return token, false
	case errors.Is(err, shared.ErrNotLinked):
	case errors.Is(err, shared.ErrAuthExpired):
		relink = true
		b.logger.Warn("user token expired, using app token", "provider", provider, "user", userID)
	default:
		b.logger.Warn("user token unavailable, using app token", "provider", provider, "user", userID, "error", err)
	}
	return b.GetAppToken(ctx, provider), relink
}

// GetAppToken returns an app-level token from the client-credentials grant, or "" when none can be had.
//
// Tokens are cached in memory until shortly before they expire. Failures are logged, never returned.
func (b *TokenBroker) GetAppToken(ctx context.Context, provider models.Provider) string {
	authority, err := b.Authority(provider)
	if err != nil || !authority.Configured() {
		b.logger.Warn("app token unavailable", "provider", provider, "error", shared.ErrNotConfigured)
		return ""
	}

	if token := b.cachedAppToken(provider); token != "" {
		return token
	}

	tok, err := authority.AppToken(ctx)
	if err != nil {
		b.logger.Warn("app token unavailable", "provider", provider, "error", err)
		return ""
	}

	if !tok.Expiry.IsZero() {
		b.mu.Lock()
		b.appTokens[provider] = tok
		b.mu.Unlock()
	}
	return tok.AccessToken
}

// cachedAppToken returns the cached token for provider if it is still fresh. Stale entries are dropped.
// The lock is never held across a grant, so concurrent misses may each fetch a token; the last one is kept.
func (b *TokenBroker) cachedAppToken(provider models.Provider) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	tok, ok := b.appTokens[provider]
	if !ok {
		return ""
	}
	if b.now().Before(tok.Expiry.Add(-appTokenSkew)) {
		return tok.AccessToken
	}
	delete(b.appTokens, provider)
	return ""
}

// AuthURL returns the consent page URL for provider.
func (b *TokenBroker) AuthURL(provider models.Provider, state string) (string, error) {
	authority, err := b.Authority(provider)
	if err != nil {
		return "", err
	}
	if !authority.Configured() {
		return "", fmt.Errorf("%w: %s", shared.ErrNotConfigured, provider)
	}
	return authority.AuthURL(state), nil
}

// Link exchanges code, snapshots the provider profile, and saves the credential for userID.
//
// Returns [shared.ErrAlreadyLinked] when the provider account belongs to another user.
func (b *TokenBroker) Link(ctx context.Context, userID string, provider models.Provider, code string) (*models.Credential, error) {
	authority, err := b.Authority(provider)
	if err != nil {
		return nil, err
	}

	token, err := authority.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	profile, err := authority.Profile(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch %s profile: %v", shared.ErrAuthFailed, provider, err)
	}

	cred := tokenCredential(provider, token, profile)
	if err := b.store.Save(ctx, userID, provider, cred); err != nil {
		return nil, err
	}

	b.logger.Info("linked provider account", "provider", provider, "user", userID, "account", profile.ID)
	return cred, nil
}

// Unlink clears the stored credential for (userID, provider).
func (b *TokenBroker) Unlink(ctx context.Context, userID string, provider models.Provider) error {
	if err := b.store.Clear(ctx, userID, provider); err != nil {
		return fmt.Errorf("failed to unlink %s: %w", provider, err)
	}
	return nil
}
