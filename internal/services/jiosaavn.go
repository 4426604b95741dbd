package services

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/shared"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

const (
	jioSaavnBaseURL = "https://saavn.dev/api"
	jioSaavnPageCap = 50
)

// JioSaavnClient searches the public JioSaavn API. It needs no credentials.
type JioSaavnClient struct {
	client
}

// NewJioSaavnClient creates a client for the API at baseURL, defaulting to saavn.dev.
func NewJioSaavnClient(baseURL string, opts ...Option) *JioSaavnClient {
	if baseURL == "" {
		baseURL = jioSaavnBaseURL
	}
	return &JioSaavnClient{client: newClient(strings.TrimSuffix(baseURL, "/"), oauth2.Endpoint{}, opts)}
}

func (j *JioSaavnClient) Source() models.Provider { return models.ProviderJioSaavn }
func (j *JioSaavnClient) AuthRequired() bool      { return false }

// Search calls GET /search/{songs|albums|playlists|artists}. The token is ignored.
func (j *JioSaavnClient) Search(ctx context.Context, _ string, query string, kind models.ItemKind, limit int) ([]models.CatalogItem, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(clampLimit(limit, jioSaavnPageCap)))

	endpoint := fmt.Sprintf("%s/search/%s?%s", j.apiURL, jioSaavnCollection(kind), params.Encode())
	body, err := j.get(ctx, endpoint, "")
	if err != nil {
		return nil, fmt.Errorf("jiosaavn search %q: %w", query, err)
	}

	// Newer deployments wrap results as data.results; older ones return data as the list.
	results := gjson.GetBytes(body, "data.results")
	if !results.IsArray() {
		results = gjson.GetBytes(body, "data")
	}

	items := []models.CatalogItem{}
	results.ForEach(func(_, raw gjson.Result) bool {
		item, err := normalizeJioSaavn(raw, kind)
		if err != nil {
			j.logger.Debug("skipping jiosaavn record", "kind", kind, "error", err)
			return true
		}
		items = append(items, item)
		return true
	})
	return items, nil
}

func jioSaavnCollection(kind models.ItemKind) string {
	switch kind {
	case models.KindAlbum:
		return "albums"
	case models.KindPlaylist:
		return "playlists"
	case models.KindArtist:
		return "artists"
	default:
		return "songs"
	}
}

// normalizeJioSaavn maps one JioSaavn search record onto a [models.CatalogItem].
func normalizeJioSaavn(raw gjson.Result, kind models.ItemKind) (models.CatalogItem, error) {
	id := raw.Get("id").String()
	if !raw.IsObject() || id == "" {
		return models.CatalogItem{}, fmt.Errorf("%w: jiosaavn %s without id", shared.ErrMalformedResponse, kind)
	}

	title := raw.Get("name").String()
	if title == "" {
		title = raw.Get("title").String()
	}

	item := models.CatalogItem{
		ID:       id,
		Title:    unescapeHTML(title),
		URL:      raw.Get("url").String(),
		Source:   models.ProviderJioSaavn,
		Kind:     kind,
		ImageURL: lastImage(raw.Get("image")),
	}

	switch kind {
	case models.KindPlaylist:
		item.Subtitle = fmt.Sprintf("%d songs", raw.Get("songCount").Int())
	case models.KindArtist:
		item.SetArtists([]string{item.Title})
		item.Subtitle = raw.Get("role").String()
	default:
		item.SetArtists(jioSaavnArtists(raw))
		item.Album = unescapeHTML(raw.Get("album.name").String())
		if album := raw.Get("album"); item.Album == "" && album.Type == gjson.String {
			item.Album = unescapeHTML(album.String())
		}
		item.Subtitle = item.Artist
	}

	return item, nil
}

// jioSaavnArtists reads artists.primary[].name, artists[].name, or the comma-joined primaryArtists string.
func jioSaavnArtists(raw gjson.Result) []string {
	for _, path := range []string{"artists.primary.#.name", "artists.#.name"} {
		if names := stringList(raw.Get(path)); len(names) > 0 {
			return names
		}
	}

	names := []string{}
	for _, n := range strings.Split(raw.Get("primaryArtists").String(), ",") {
		if n = unescapeHTML(strings.TrimSpace(n)); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// lastImage picks the last (largest) entry of a JioSaavn image list.
//
// Entries are objects carrying "url" or "link", or bare strings; a single object or string is accepted too.
func lastImage(images gjson.Result) *string {
	if !images.Exists() {
		return nil
	}

	pick := images
	if images.IsArray() {
		list := images.Array()
		if len(list) == 0 {
			return nil
		}
		pick = list[len(list)-1]
	}

	var u string
	switch {
	case pick.IsObject():
		u = pick.Get("url").String()
		if u == "" {
			u = pick.Get("link").String()
		}
	case pick.Type == gjson.String:
		u = pick.String()
	}

	if u == "" {
		return nil
	}
	return &u
}

// unescapeHTML undoes the entity encoding JioSaavn applies to titles.
func unescapeHTML(s string) string {
	return html.UnescapeString(s)
}
