package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// oauthClient implements the grant half of [Authority] on top of [oauth2.Config].
type oauthClient struct {
	client
	config   oauth2.Config
	authOpts []oauth2.AuthCodeOption
}

func newOAuthClient(cfg shared.OAuthConfig, scopes []string, c client, authOpts ...oauth2.AuthCodeOption) oauthClient {
	return oauthClient{
		client: c,
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       scopes,
			Endpoint:     c.endpoint,
		},
		authOpts: authOpts,
	}
}

func (o *oauthClient) Configured() bool {
	return o.config.ClientID != "" && o.config.ClientSecret != ""
}

// AuthURL returns the provider consent page URL with state attached.
func (o *oauthClient) AuthURL(state string) string {
	return o.config.AuthCodeURL(state, o.authOpts...)
}

// Exchange trades an authorization code for a token pair.
func (o *oauthClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if !o.Configured() {
		return nil, shared.ErrNotConfigured
	}
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code", shared.ErrMissingArgument)
	}

	token, err := o.config.Exchange(o.oauthContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// Refresh runs a refresh-token grant. Any failure of the grant is reported as [shared.ErrAuthExpired].
func (o *oauthClient) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if !o.Configured() {
		return nil, shared.ErrNotConfigured
	}
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", shared.ErrAuthExpired)
	}

	// An empty access token forces the source to hit the token endpoint.
	src := o.config.TokenSource(o.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: refresh grant failed: %v", shared.ErrAuthExpired, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: refresh grant returned no access token", shared.ErrAuthExpired)
	}
	return token, nil
}

// AppToken runs a client-credentials grant against the token endpoint.
func (o *oauthClient) AppToken(ctx context.Context) (*oauth2.Token, error) {
	if !o.Configured() {
		return nil, shared.ErrNotConfigured
	}

	cc := clientcredentials.Config{
		ClientID:     o.config.ClientID,
		ClientSecret: o.config.ClientSecret,
		TokenURL:     o.config.Endpoint.TokenURL,
	}

	token, err := cc.Token(o.oauthContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: client credentials grant failed: %v", shared.ErrProviderUnavailable, err)
	}
	return token, nil
}

// tokenCredential converts a freshly exchanged token and profile into a [models.Credential].
func tokenCredential(provider models.Provider, token *oauth2.Token, profile *models.ProviderProfile) *models.Credential {
	cred := &models.Credential{
		Provider:     provider,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if profile != nil {
		cred.ProviderUserID = profile.ID
		cred.DisplayName = profile.DisplayName
		cred.ProviderEmail = profile.Email
	}
	return cred
}
