package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/shared"
)

const minPasswordLength = 8

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type tokenResponse struct {
	Message string `json:"message,omitempty"`
	Token   string `json:"token"`
	UserID  string `json:"userId"`
}

// register creates a local account and signs the caller in.
func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, a.logger, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "Email and password required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		fail(w, a.logger, err)
		return
	}

	user := models.NewUser(0, req.Email, strings.TrimSpace(req.Name))
	user.SetPasswordHash(hash)
	if err := a.Users.Create(user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, CodeConflict, "User already exists")
			return
		}
		fail(w, a.logger, err)
		return
	}

	token, err := a.Auth.IssueToken(user.ID())
	if err != nil {
		fail(w, a.logger, err)
		return
	}

	a.logger.Info("registered user", "user", user.ID())
	writeJSON(w, http.StatusCreated, tokenResponse{Message: "User registered successfully", Token: token, UserID: user.ID()})
}

// login verifies a password and returns a session token.
func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, a.logger, err)
		return
	}

	user, err := a.Users.GetByEmail(req.Email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		fail(w, a.logger, err)
		return
	}
	if user == nil || !ComparePassword(user.PasswordHash(), req.Password) {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Invalid credentials")
		return
	}

	token, err := a.Auth.IssueToken(user.ID())
	if err != nil {
		fail(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, UserID: user.ID()})
}

type providerLink struct {
	Linked  bool                    `json:"linked"`
	Account *models.ProviderProfile `json:"account"`
}

type meResponse struct {
	ID            string                           `json:"id"`
	Email         string                           `json:"email"`
	Name          string                           `json:"name"`
	Providers     map[models.Provider]providerLink `json:"providers"`
	SpotifyLinked bool                             `json:"spotifyLinked"`
	SpotifyUser   *models.ProviderProfile          `json:"spotifyUser"`
}

// me returns the profile and a summary of every linkable provider.
func (a *API) me(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	user, err := a.Users.Get(userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			writeError(w, http.StatusNotFound, CodeNotFound, "User not found")
			return
		}
		fail(w, a.logger, err)
		return
	}

	creds, err := a.Credentials.ListByUser(r.Context(), userID)
	if err != nil {
		fail(w, a.logger, err)
		return
	}

	resp := meResponse{
		ID:        user.ID(),
		Email:     user.Email(),
		Name:      user.Name(),
		Providers: map[models.Provider]providerLink{models.ProviderSpotify: {}, models.ProviderGoogle: {}},
	}
	for _, c := range creds {
		resp.Providers[c.Provider] = providerLink{Linked: c.Linked(), Account: c.Summary()}
	}
	spotify := resp.Providers[models.ProviderSpotify]
	resp.SpotifyLinked, resp.SpotifyUser = spotify.Linked, spotify.Account

	writeJSON(w, http.StatusOK, resp)
}

// deleteMe soft-deletes the account after clearing every provider link.
func (a *API) deleteMe(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	if err := a.Credentials.ClearAll(r.Context(), userID); err != nil {
		fail(w, a.logger, err)
		return
	}
	if err := a.Users.Delete(userID); err != nil {
		fail(w, a.logger, err)
		return
	}

	a.logger.Info("deleted user", "user", userID)
	writeJSON(w, http.StatusOK, message{Message: "Account deleted"})
}
