package models

import "time"

// Credential is a user's stored token pair and profile snapshot for one provider.
//
// AccessToken is never asserted to be currently valid; validity is discovered on use.
// An empty RefreshToken means the token cannot be renewed without a re-link.
type Credential struct {
	UserID         string
	Provider       Provider
	AccessToken    string
	RefreshToken   string
	ProviderUserID string
	DisplayName    string
	ProviderEmail  string
	UpdatedAt      time.Time
}

// Linked reports whether the credential holds an access token.
func (c *Credential) Linked() bool {
	return c != nil && c.AccessToken != ""
}

// CanRefresh reports whether a refresh-token grant can be attempted.
func (c *Credential) CanRefresh() bool {
	return c != nil && c.RefreshToken != ""
}

// Rotate applies a refreshed token pair. The refresh token is only replaced when the provider issued a new one.
func (c *Credential) Rotate(accessToken, refreshToken string) {
	c.AccessToken = accessToken
	if refreshToken != "" {
		c.RefreshToken = refreshToken
	}
	c.UpdatedAt = time.Now()
}

// ProviderProfile is the "who am I" snapshot copied onto a [Credential] at link time.
type ProviderProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	Email       string `json:"email"`
}

// Summary returns the profile part of the credential for API responses, or nil when unlinked.
func (c *Credential) Summary() *ProviderProfile {
	if !c.Linked() {
		return nil
	}
	return &ProviderProfile{ID: c.ProviderUserID, DisplayName: c.DisplayName, Email: c.ProviderEmail}
}
