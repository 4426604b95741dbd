package services

import (
	"context"

	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/shared"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const googleBaseURL = "https://www.googleapis.com"

var googleScopes = []string{"openid", "email", "profile"}

// GoogleClient is an identity-only [Authority]; Google offers no catalog here.
type GoogleClient struct {
	oauthClient
}

// NewGoogleClient creates a Google OAuth client. Offline access is requested so a refresh token is issued.
func NewGoogleClient(cfg shared.OAuthConfig, opts ...Option) *GoogleClient {
	c := newClient(googleBaseURL, endpoints.Google, opts)
	return &GoogleClient{
		oauthClient: newOAuthClient(cfg, googleScopes, c, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")),
	}
}

func (g *GoogleClient) Provider() models.Provider { return models.ProviderGoogle }

// Profile calls the OpenID userinfo endpoint.
func (g *GoogleClient) Profile(ctx context.Context, accessToken string) (*models.ProviderProfile, error) {
	body, err := g.get(ctx, g.apiURL+"/oauth2/v3/userinfo", accessToken)
	if err != nil {
		return nil, err
	}

	info := gjson.ParseBytes(body)
	return &models.ProviderProfile{
		ID:          info.Get("sub").String(),
		DisplayName: info.Get("name").String(),
		Email:       info.Get("email").String(),
	}, nil
}

// AppToken is unsupported: Google has no app-level grant for these scopes.
func (g *GoogleClient) AppToken(context.Context) (*oauth2.Token, error) {
	return nil, shared.ErrNotConfigured
}
