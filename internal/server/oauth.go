package server

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/services"
	"github.com/desertthunder/moodmusic/internal/shared"
)

// CallbackHandler completes the OAuth2 authorization code flow for any provider known to the broker.
//
// The state parameter is a signed token naming the user who asked for the consent URL, so the callback
// needs no session of its own.
type CallbackHandler struct {
	broker      *services.TokenBroker
	auth        *Authenticator
	frontendURL string
	logger      *log.Logger
}

// NewCallbackHandler creates a [CallbackHandler].
func NewCallbackHandler(broker *services.TokenBroker, auth *Authenticator, frontendURL string, logger *log.Logger) *CallbackHandler {
	return &CallbackHandler{broker: broker, auth: auth, frontendURL: frontendURL, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"GET /{provider}/callback"}
}

// ServeHTTP validates state, exchanges the code, snapshots the provider profile and saves the credential.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	provider, err := pathProvider(r)
	if err != nil {
		fail(w, h.logger, err)
		return
	}

	q := r.URL.Query()
	userID, err := h.auth.ParseState(q.Get("state"), provider)
	if err != nil {
		h.logger.Warn("rejected oauth callback", "provider", provider, "error", err)
		writeError(w, http.StatusBadRequest, CodeInvalidState, "Invalid state parameter")
		return
	}

	code := q.Get("code")
	if code == "" {
		msg := fmt.Sprintf("Authorization failed: %s %s", q.Get("error"), q.Get("error_description"))
		writeError(w, http.StatusBadRequest, CodeInvalidInput, msg)
		return
	}

	cred, err := h.broker.Link(r.Context(), userID, provider, code)
	if err != nil {
		fail(w, h.logger, err)
		return
	}

	if h.frontendURL != "" {
		http.Redirect(w, r, h.redirectURL(provider), http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	err = linkedPage.Execute(w, map[string]string{
		"Provider": provider.Label(),
		"Account":  cred.DisplayName,
	})
	if err != nil {
		h.logger.Error("failed to render linked page", "provider", provider, "error", err)
	}
}

func (h *CallbackHandler) redirectURL(provider models.Provider) string {
	u, err := url.Parse(h.frontendURL)
	if err != nil {
		return h.frontendURL
	}
	q := u.Query()
	q.Set("linked", string(provider))
	u.RawQuery = q.Encode()
	return u.String()
}

var linkedPage = template.Must(template.New("linked").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Account Linked</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ {{.Provider}} linked</h1>
        <p>{{if .Account}}Signed in as {{.Account}}. {{end}}You can close this window.</p>
    </div>
</body>
</html>
`))

// loginURL returns the consent page URL for the provider, with a signed state naming the caller.
func (a *API) loginURL(w http.ResponseWriter, r *http.Request) {
	provider, err := pathProvider(r)
	if err != nil {
		fail(w, a.logger, err)
		return
	}

	state, err := a.Auth.IssueState(UserID(r.Context()), provider)
	if err != nil {
		fail(w, a.logger, err)
		return
	}

	authURL, err := a.Broker.AuthURL(provider, state)
	if err != nil {
		fail(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": authURL})
}

// unlink clears the stored credential for the provider.
func (a *API) unlink(w http.ResponseWriter, r *http.Request) {
	provider, err := pathProvider(r)
	if err != nil {
		fail(w, a.logger, err)
		return
	}

	if err := a.Broker.Unlink(r.Context(), UserID(r.Context()), provider); err != nil {
		fail(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: provider.Label() + " account unlinked"})
}

// refresh runs the broker's check and refresh cycle on demand. The token itself is never returned.
func (a *API) refresh(w http.ResponseWriter, r *http.Request) {
	provider, err := pathProvider(r)
	if err != nil {
		fail(w, a.logger, err)
		return
	}

	if _, err := a.Broker.UserToken(r.Context(), UserID(r.Context()), provider); err != nil {
		if errors.Is(err, shared.ErrNotLinked) {
			writeError(w, http.StatusNotFound, CodeNotLinked, "No "+provider.Label()+" account linked")
			return
		}
		fail(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: provider.Label() + " token is valid"})
}
