// Spotify Web API implementation of [Authority] and [Catalog]
//
// Response shapes follow https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/shared"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"

	// spotifyPageCap is the largest page the search and browse endpoints accept.
	spotifyPageCap = 50
)

var spotifyScopes = []string{
	"user-read-email",
	"playlist-read-private",
	"user-read-playback-state",
	"user-modify-playback-state",
	"streaming",
}

// SpotifyClient talks to the Spotify accounts service and Web API.
//
// It holds no user state: every call takes the bearer token to use.
type SpotifyClient struct {
	oauthClient
}

// NewSpotifyClient creates a Spotify client for the given OAuth client credentials.
func NewSpotifyClient(cfg shared.OAuthConfig, opts ...Option) *SpotifyClient {
	c := newClient(spotifyBaseURL, endpoints.Spotify, opts)
	return &SpotifyClient{
		oauthClient: newOAuthClient(cfg, spotifyScopes, c, oauth2.SetAuthURLParam("show_dialog", "true")),
	}
}

func (s *SpotifyClient) Provider() models.Provider { return models.ProviderSpotify }
func (s *SpotifyClient) Source() models.Provider   { return models.ProviderSpotify }
func (s *SpotifyClient) AuthRequired() bool        { return true }

// Profile calls GET /me and returns the profile of the token's owner.
func (s *SpotifyClient) Profile(ctx context.Context, accessToken string) (*models.ProviderProfile, error) {
	body, err := s.get(ctx, s.apiURL+"/me", accessToken)
	if err != nil {
		return nil, err
	}

	me := gjson.ParseBytes(body)
	return &models.ProviderProfile{
		ID:          me.Get("id").String(),
		DisplayName: me.Get("display_name").String(),
		Email:       me.Get("email").String(),
	}, nil
}

// Search calls GET /search for one item type.
func (s *SpotifyClient) Search(ctx context.Context, token, query string, kind models.ItemKind, limit int) ([]models.CatalogItem, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", string(kind))
	params.Set("limit", strconv.Itoa(clampLimit(limit, spotifyPageCap)))

	body, err := s.get(ctx, s.apiURL+"/search?"+params.Encode(), token)
	if err != nil {
		return nil, fmt.Errorf("spotify search %q: %w", query, err)
	}

	return s.collect(gjson.GetBytes(body, string(kind)+"s.items"), kind), nil
}

// NewReleases calls GET /browse/new-releases and returns albums.
func (s *SpotifyClient) NewReleases(ctx context.Context, token string, limit int) ([]models.CatalogItem, error) {
	endpoint := fmt.Sprintf("%s/browse/new-releases?limit=%d", s.apiURL, clampLimit(limit, spotifyPageCap))

	body, err := s.get(ctx, endpoint, token)
	if err != nil {
		return nil, fmt.Errorf("spotify new releases: %w", err)
	}

	return s.collect(gjson.GetBytes(body, "albums.items"), models.KindAlbum), nil
}

func (s *SpotifyClient) collect(items gjson.Result, kind models.ItemKind) []models.CatalogItem {
	out := []models.CatalogItem{}
	items.ForEach(func(_, raw gjson.Result) bool {
		item, err := normalizeSpotify(raw, kind)
		if err != nil {
			s.logger.Debug("skipping spotify record", "kind", kind, "error", err)
			return true
		}
		out = append(out, item)
		return true
	})
	return out
}

// normalizeSpotify maps one Spotify track, album, playlist or artist object onto a [models.CatalogItem].
//
// Search pages may contain null entries; those and records without an id are rejected with [shared.ErrMalformedResponse].
func normalizeSpotify(raw gjson.Result, kind models.ItemKind) (models.CatalogItem, error) {
	id := raw.Get("id").String()
	if !raw.IsObject() || id == "" {
		return models.CatalogItem{}, fmt.Errorf("%w: spotify %s without id", shared.ErrMalformedResponse, kind)
	}

	item := models.CatalogItem{
		ID:     id,
		Title:  raw.Get("name").String(),
		URI:    raw.Get("uri").String(),
		URL:    raw.Get("external_urls.spotify").String(),
		Source: models.ProviderSpotify,
		Kind:   kind,
	}
	images := raw.Get("images")

	switch kind {
	case models.KindTrack:
		item.SetArtists(stringList(raw.Get("artists.#.name")))
		item.Album = raw.Get("album.name").String()
		item.Subtitle = item.Artist
		images = raw.Get("album.images")
	case models.KindAlbum:
		item.SetArtists(stringList(raw.Get("artists.#.name")))
		item.Album = item.Title
		item.Subtitle = item.Artist
	case models.KindPlaylist:
		item.SetArtists(stringList(raw.Get("owner.display_name")))
		item.Subtitle = fmt.Sprintf("%d tracks", raw.Get("tracks.total").Int())
	case models.KindArtist:
		item.SetArtists([]string{item.Title})
		item.Subtitle = fmt.Sprintf("%d followers", raw.Get("followers.total").Int())
	}

	item.ImageURL = rankedImage(images)
	return item, nil
}

// rankedImage picks from a largest-first image list: index 1 (medium) when present, else index 0, else nil.
func rankedImage(images gjson.Result) *string {
	list := images.Array()
	var pick gjson.Result
	switch {
	case len(list) >= 2:
		pick = list[1]
	case len(list) == 1:
		pick = list[0]
	default:
		return nil
	}

	u := pick.Get("url").String()
	if u == "" {
		return nil
	}
	return &u
}

// stringList flattens a gjson string or array of strings, dropping empty values.
func stringList(r gjson.Result) []string {
	names := []string{}
	if !r.Exists() {
		return names
	}
	for _, v := range r.Array() {
		if s := v.String(); s != "" {
			names = append(names, s)
		}
	}
	return names
}
