package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/shared"
	tu "github.com/desertthunder/moodmusic/internal/testing"
	"golang.org/x/oauth2"
)

// fakeAuthority is a scripted [Authority] that counts grants.
type fakeAuthority struct {
	provider    models.Provider
	configured  bool
	profileErr  error
	profile     *models.ProviderProfile
	refreshTok  *oauth2.Token
	refreshErr  error
	appTok      *oauth2.Token
	appErr      error
	exchangeTok *oauth2.Token
	exchangeErr error

	profileCalls, refreshes, appCalls int
}

func newFakeAuthority() *fakeAuthority {
	return &fakeAuthority{
		provider:   models.ProviderSpotify,
		configured: true,
		profile:    &models.ProviderProfile{ID: "acct-1", DisplayName: "Listener", Email: "listener@example.com"},
	}
}

func (f *fakeAuthority) Provider() models.Provider { return f.provider }
func (f *fakeAuthority) Configured() bool          { return f.configured }
func (f *fakeAuthority) AuthURL(state string) string {
	return "https://accounts.example.com/authorize?state=" + state
}

func (f *fakeAuthority) Exchange(context.Context, string) (*oauth2.Token, error) {
	return f.exchangeTok, f.exchangeErr
}

func (f *fakeAuthority) Profile(context.Context, string) (*models.ProviderProfile, error) {
	f.profileCalls++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeAuthority) Refresh(context.Context, string) (*oauth2.Token, error) {
	f.refreshes++
	return f.refreshTok, f.refreshErr
}

func (f *fakeAuthority) AppToken(context.Context) (*oauth2.Token, error) {
	f.appCalls++
	return f.appTok, f.appErr
}

// blockingAuthority holds its app token grant open until release is closed.
type blockingAuthority struct {
	*fakeAuthority
	started chan struct{}
	release chan struct{}
}

func (b *blockingAuthority) AppToken(context.Context) (*oauth2.Token, error) {
	close(b.started)
	<-b.release
	return &oauth2.Token{AccessToken: "app-slow", Expiry: time.Now().Add(time.Hour)}, nil
}

func newTestBroker(store CredentialStore, authorities ...Authority) *TokenBroker {
	return NewTokenBroker(store, shared.NewLogger(io.Discard), authorities...)
}

func linkedCredential() models.Credential {
	return models.Credential{
		UserID:       "user-1",
		Provider:     models.ProviderSpotify,
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
	}
}

func TestTokenBroker(t *testing.T) {
	ctx := context.Background()
	expired := fmt.Errorf("%w: status 401", shared.ErrAuthExpired)

	t.Run("GetUserToken", func(t *testing.T) {
		t.Run("valid token is returned without writes", func(t *testing.T) {
			store := tu.NewMemoryStore()
			auth := newFakeAuthority()
			broker := newTestBroker(store, auth)

			cred := linkedCredential()
			token, err := broker.GetUserToken(ctx, &cred)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if token != "stale" {
				t.Errorf("expected stored token, got %s", token)
			}
			if store.Saves != 0 || auth.refreshes != 0 {
				t.Errorf("expected zero writes and refreshes, got %d saves and %d refreshes", store.Saves, auth.refreshes)
			}
		})

		t.Run("401 with refresh token refreshes and saves once", func(t *testing.T) {
			store := tu.NewMemoryStore()
			auth := newFakeAuthority()
			auth.profileErr = expired
			auth.refreshTok = &oauth2.Token{AccessToken: "fresh"}
			broker := newTestBroker(store, auth)

			cred := linkedCredential()
			token, err := broker.GetUserToken(ctx, &cred)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if token != "fresh" {
				t.Errorf("expected refreshed token, got %s", token)
			}
			if store.Saves != 1 {
				t.Errorf("expected exactly one save, got %d", store.Saves)
			}

			saved, _ := store.Load(ctx, "user-1", models.ProviderSpotify)
			if saved.AccessToken != "fresh" {
				t.Errorf("expected saved access token fresh, got %s", saved.AccessToken)
			}
			if saved.RefreshToken != "refresh-1" {
				t.Errorf("refresh token should be kept when none is returned, got %s", saved.RefreshToken)
			}
		})

		t.Run("new refresh token replaces the old one", func(t *testing.T) {
			store := tu.NewMemoryStore()
			auth := newFakeAuthority()
			auth.profileErr = expired
			auth.refreshTok = &oauth2.Token{AccessToken: "fresh", RefreshToken: "refresh-2"}
			broker := newTestBroker(store, auth)

			cred := linkedCredential()
			if _, err := broker.GetUserToken(ctx, &cred); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			saved, _ := store.Load(ctx, "user-1", models.ProviderSpotify)
			if saved.RefreshToken != "refresh-2" {
				t.Errorf("expected rotated refresh token, got %s", saved.RefreshToken)
			}
		})

		t.Run("401 without refresh token is AuthExpired", func(t *testing.T) {
			store := tu.NewMemoryStore()
			auth := newFakeAuthority()
			auth.profileErr = expired
			broker := newTestBroker(store, auth)

			cred := linkedCredential()
			cred.RefreshToken = ""
			_, err := broker.GetUserToken(ctx, &cred)
			if !errors.Is(err, shared.ErrAuthExpired) {
				t.Fatalf("expected ErrAuthExpired, got %v", err)
			}
			if store.Saves != 0 || auth.refreshes != 0 {
				t.Errorf("expected zero writes and refreshes, got %d saves and %d refreshes", store.Saves, auth.refreshes)
			}
		})

		t.Run("failed refresh is AuthExpired", func(t *testing.T) {
			store := tu.NewMemoryStore()
			auth := newFakeAuthority()
			auth.profileErr = expired
			auth.refreshErr = errors.New("invalid_grant")
			broker := newTestBroker(store, auth)

			cred := linkedCredential()
			_, err := broker.GetUserToken(ctx, &cred)
			if !errors.Is(err, shared.ErrAuthExpired) {
				t.Fatalf("expected ErrAuthExpired, got %v", err)
			}
			if store.Saves != 0 {
				t.Errorf("expected zero writes, got %d", store.Saves)
			}
		})

		t.Run("provider outage is ProviderUnavailable", func(t *testing.T) {
			store := tu.NewMemoryStore()
			auth := newFakeAuthority()
			auth.profileErr = fmt.Errorf("%w: status 503", shared.ErrProviderUnavailable)
			broker := newTestBroker(store, auth)

			cred := linkedCredential()
			_, err := broker.GetUserToken(ctx, &cred)
			if !errors.Is(err, shared.ErrProviderUnavailable) {
				t.Fatalf("expected ErrProviderUnavailable, got %v", err)
			}
			if errors.Is(err, shared.ErrAuthExpired) {
				t.Error("outage must not be reported as an expired link")
			}
			if store.Saves != 0 || auth.refreshes != 0 {
				t.Errorf("expected zero writes and refreshes, got %d saves and %d refreshes", store.Saves, auth.refreshes)
			}
		})

		t.Run("empty access token is AuthExpired without a profile call", func(t *testing.T) {
			auth := newFakeAuthority()
			broker := newTestBroker(tu.NewMemoryStore(), auth)

			cred := linkedCredential()
			cred.AccessToken = ""
			if _, err := broker.GetUserToken(ctx, &cred); !errors.Is(err, shared.ErrAuthExpired) {
				t.Fatalf("expected ErrAuthExpired, got %v", err)
			}
			if auth.profileCalls != 0 {
				t.Errorf("expected no profile call, got %d", auth.profileCalls)
			}
		})

		t.Run("failed save still returns the refreshed token", func(t *testing.T) {
			store := tu.NewMemoryStore()
			store.SaveErr = errors.New("disk full")
			auth := newFakeAuthority()
			auth.profileErr = expired
			auth.refreshTok = &oauth2.Token{AccessToken: "fresh"}
			broker := newTestBroker(store, auth)

			cred := linkedCredential()
			token, err := broker.GetUserToken(ctx, &cred)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if token != "fresh" {
				t.Errorf("expected refreshed token, got %s", token)
			}
			if store.Saves != 1 {
				t.Errorf("expected one save attempt, got %d", store.Saves)
			}
		})

		t.Run("unknown provider is NotConfigured", func(t *testing.T) {
			broker := newTestBroker(tu.NewMemoryStore(), newFakeAuthority())

			cred := linkedCredential()
			cred.Provider = models.ProviderGoogle
			if _, err := broker.GetUserToken(ctx, &cred); !errors.Is(err, shared.ErrNotConfigured) {
				t.Fatalf("expected ErrNotConfigured, got %v", err)
			}
		})
	})

	t.Run("GetAppToken", func(t *testing.T) {
		t.Run("unconfigured returns empty without a grant", func(t *testing.T) {
			auth := newFakeAuthority()
			auth.configured = false
			broker := newTestBroker(tu.NewMemoryStore(), auth)

			if token := broker.GetAppToken(ctx, models.ProviderSpotify); token != "" {
				t.Errorf("expected empty token, got %s", token)
			}
			if auth.appCalls != 0 {
				t.Errorf("expected no grant, got %d", auth.appCalls)
			}
		})

		t.Run("rejected grant returns empty", func(t *testing.T) {
			auth := newFakeAuthority()
			auth.appErr = errors.New("invalid_client")
			broker := newTestBroker(tu.NewMemoryStore(), auth)

			if token := broker.GetAppToken(ctx, models.ProviderSpotify); token != "" {
				t.Errorf("expected empty token, got %s", token)
			}
		})

		t.Run("token is cached until expiry", func(t *testing.T) {
			now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
			auth := newFakeAuthority()
			auth.appTok = &oauth2.Token{AccessToken: "app-1", Expiry: now.Add(time.Hour)}
			broker := newTestBroker(tu.NewMemoryStore(), auth)
			broker.now = func() time.Time { return now }

			for range 3 {
				if token := broker.GetAppToken(ctx, models.ProviderSpotify); token != "app-1" {
					t.Fatalf("expected app-1, got %s", token)
				}
			}
			if auth.appCalls != 1 {
				t.Errorf("expected one grant, got %d", auth.appCalls)
			}

			auth.appTok = &oauth2.Token{AccessToken: "app-2", Expiry: now.Add(2 * time.Hour)}
			broker.now = func() time.Time { return now.Add(time.Hour - 10*time.Second) }

			if token := broker.GetAppToken(ctx, models.ProviderSpotify); token != "app-2" {
				t.Errorf("expected a fresh token near expiry, got %s", token)
			}
			if auth.appCalls != 2 {
				t.Errorf("expected two grants, got %d", auth.appCalls)
			}
		})

		t.Run("grant in flight does not block cached tokens", func(t *testing.T) {
			slow := &blockingAuthority{
				fakeAuthority: newFakeAuthority(),
				started:       make(chan struct{}),
				release:       make(chan struct{}),
			}
			cached := newFakeAuthority()
			cached.provider = models.ProviderGoogle
			cached.appTok = &oauth2.Token{AccessToken: "google-app", Expiry: time.Now().Add(time.Hour)}
			broker := newTestBroker(tu.NewMemoryStore(), slow, cached)

			if token := broker.GetAppToken(ctx, models.ProviderGoogle); token != "google-app" {
				t.Fatalf("expected google-app, got %s", token)
			}

			done := make(chan string, 1)
			go func() { done <- broker.GetAppToken(ctx, models.ProviderSpotify) }()
			<-slow.started

			got := make(chan string, 1)
			go func() { got <- broker.GetAppToken(ctx, models.ProviderGoogle) }()
			select {
			case token := <-got:
				if token != "google-app" {
					t.Errorf("expected cached google-app, got %s", token)
				}
			case <-time.After(time.Second):
				t.Error("cached token lookup waited on another provider's grant")
			}

			close(slow.release)
			if token := <-done; token != "app-slow" {
				t.Errorf("expected app-slow, got %s", token)
			}
			if cached.appCalls != 1 {
				t.Errorf("expected one grant for the cached provider, got %d", cached.appCalls)
			}
		})

		t.Run("unknown provider returns empty", func(t *testing.T) {
			broker := newTestBroker(tu.NewMemoryStore(), newFakeAuthority())
			if token := broker.GetAppToken(ctx, models.ProviderJioSaavn); token != "" {
				t.Errorf("expected empty token, got %s", token)
			}
		})
	})

	t.Run("ResolveToken", func(t *testing.T) {
		t.Run("unlinked user gets the app token", func(t *testing.T) {
			auth := newFakeAuthority()
			auth.appTok = &oauth2.Token{AccessToken: "app", Expiry: time.Now().Add(time.Hour)}
			broker := newTestBroker(tu.NewMemoryStore(), auth)

			token, relink := broker.ResolveToken(ctx, "user-1", models.ProviderSpotify)
			if token != "app" || relink {
				t.Errorf("expected app token without relink, got %q, %v", token, relink)
			}
		})

		t.Run("linked user gets their own token", func(t *testing.T) {
			store := tu.NewMemoryStore()
			store.Put(linkedCredential())
			broker := newTestBroker(store, newFakeAuthority())

			token, relink := broker.ResolveToken(ctx, "user-1", models.ProviderSpotify)
			if token != "stale" || relink {
				t.Errorf("expected user token without relink, got %q, %v", token, relink)
			}
		})

		t.Run("expired link falls back and asks for relink", func(t *testing.T) {
			store := tu.NewMemoryStore()
			cred := linkedCredential()
			cred.RefreshToken = ""
			store.Put(cred)

			auth := newFakeAuthority()
			auth.profileErr = expired
			auth.appTok = &oauth2.Token{AccessToken: "app", Expiry: time.Now().Add(time.Hour)}
			broker := newTestBroker(store, auth)

			token, relink := broker.ResolveToken(ctx, "user-1", models.ProviderSpotify)
			if token != "app" || !relink {
				t.Errorf("expected app token with relink, got %q, %v", token, relink)
			}
		})
	})

	t.Run("UserToken not linked", func(t *testing.T) {
		broker := newTestBroker(tu.NewMemoryStore(), newFakeAuthority())
		if _, err := broker.UserToken(ctx, "user-1", models.ProviderSpotify); !errors.Is(err, shared.ErrNotLinked) {
			t.Errorf("expected ErrNotLinked, got %v", err)
		}
	})

	t.Run("Link and Unlink", func(t *testing.T) {
		store := tu.NewMemoryStore()
		auth := newFakeAuthority()
		auth.exchangeTok = &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}
		broker := newTestBroker(store, auth)

		cred, err := broker.Link(ctx, "user-1", models.ProviderSpotify, "code")
		if err != nil {
			t.Fatalf("failed to link: %v", err)
		}
		if cred.ProviderUserID != "acct-1" || cred.DisplayName != "Listener" {
			t.Errorf("expected profile snapshot, got %+v", cred)
		}

		saved, _ := store.Load(ctx, "user-1", models.ProviderSpotify)
		if saved == nil || saved.RefreshToken != "refresh" {
			t.Fatalf("expected saved credential, got %+v", saved)
		}

		if err := broker.Unlink(ctx, "user-1", models.ProviderSpotify); err != nil {
			t.Fatalf("failed to unlink: %v", err)
		}
		if saved, _ := store.Load(ctx, "user-1", models.ProviderSpotify); saved != nil {
			t.Error("credential should be cleared after unlink")
		}
	})

	t.Run("Link with failed exchange", func(t *testing.T) {
		store := tu.NewMemoryStore()
		auth := newFakeAuthority()
		auth.exchangeErr = fmt.Errorf("%w: bad code", shared.ErrAuthFailed)
		broker := newTestBroker(store, auth)

		if _, err := broker.Link(ctx, "user-1", models.ProviderSpotify, "code"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		if store.Saves != 0 {
			t.Errorf("expected no saves, got %d", store.Saves)
		}
	})

	t.Run("AuthURL", func(t *testing.T) {
		auth := newFakeAuthority()
		broker := newTestBroker(tu.NewMemoryStore(), auth)

		u, err := broker.AuthURL(models.ProviderSpotify, "state-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if u != "https://accounts.example.com/authorize?state=state-1" {
			t.Errorf("unexpected auth URL %s", u)
		}

		auth.configured = false
		if _, err := broker.AuthURL(models.ProviderSpotify, "state-1"); !errors.Is(err, shared.ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured, got %v", err)
		}
	})
}
