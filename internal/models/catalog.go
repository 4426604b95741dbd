package models

import "strings"

// ArtistSeparator joins multi-valued artist lists into one display string.
const ArtistSeparator = ", "

// ItemKind is the upstream entity type a [CatalogItem] was built from.
type ItemKind string

const (
	KindTrack    ItemKind = "track"
	KindAlbum    ItemKind = "album"
	KindPlaylist ItemKind = "playlist"
	KindArtist   ItemKind = "artist"
)

// ParseItemKind maps a query parameter to an [ItemKind], defaulting to [KindTrack].
func ParseItemKind(s string) ItemKind {
	switch k := ItemKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindAlbum, KindPlaylist, KindArtist:
		return k
	default:
		return KindTrack
	}
}

// CatalogItem is one normalized music entity. It is produced per request and never persisted.
type CatalogItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Artists  []string `json:"artists"`
	Artist   string   `json:"artist"`
	Album    string   `json:"album,omitempty"`
	Subtitle string   `json:"subtitle,omitempty"`
	ImageURL *string  `json:"imageUrl"`
	URI      string   `json:"uri,omitempty"`
	URL      string   `json:"url,omitempty"`
	Source   Provider `json:"source"`
	Kind     ItemKind `json:"kind"`
}

// SetArtists stores the ordered artist names and their joined display string.
func (c *CatalogItem) SetArtists(names []string) {
	c.Artists = names
	c.Artist = strings.Join(names, ArtistSeparator)
}

// Image returns the image URL or "" when absent.
func (c CatalogItem) Image() string {
	if c.ImageURL == nil {
		return ""
	}
	return *c.ImageURL
}
