package models

import (
	"fmt"
	"strings"
)

// Provider names an external identity or catalog system.
type Provider string

const (
	ProviderSpotify  Provider = "spotify"
	ProviderGoogle   Provider = "google"
	ProviderJioSaavn Provider = "jiosaavn"

	// SourceBuiltin marks the static items served when every upstream catalog came back empty.
	SourceBuiltin Provider = "builtin"
)

// ParseProvider converts a case-insensitive name into a [Provider].
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderSpotify, ProviderGoogle, ProviderJioSaavn:
		return p, nil
	default:
		return "", fmt.Errorf("unknown provider %q", s)
	}
}

// Label returns the display name used in API responses ("Spotify", "JioSaavn", ...).
func (p Provider) Label() string {
	switch p {
	case ProviderSpotify:
		return "Spotify"
	case ProviderGoogle:
		return "Google"
	case ProviderJioSaavn:
		return "JioSaavn"
	case SourceBuiltin:
		return "Default"
	default:
		return string(p)
	}
}
