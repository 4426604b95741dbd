package services

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodmusic/internal/models"
)

const (
	// DefaultLimit is the number of items returned when a request names none.
	DefaultLimit = 10
	maxLimit     = 50
)

// BrowsableCatalog is a [Catalog] that also lists new releases.
type BrowsableCatalog interface {
	Catalog
	NewReleases(ctx context.Context, token string, limit int) ([]models.CatalogItem, error)
}

// Listing is a list of catalog items with the name of the fallback step that produced it.
type Listing struct {
	Items  []models.CatalogItem `json:"items"`
	Source string               `json:"source"`
	Relink bool                 `json:"relink,omitempty"`
}

// Feed holds two mutually exclusive sections: global trending items and items from one regional industry.
type Feed struct {
	Trending []models.CatalogItem `json:"trending"`
	Industry []models.CatalogItem `json:"industry"`
	Source   string               `json:"source"`
	Relink   bool                 `json:"relink,omitempty"`
}

// RecommendationQuery selects mood recommendations.
type RecommendationQuery struct {
	Emotion   string
	Language  string
	Wellbeing bool
	Limit     int
}

// Discovery answers the browse and recommendation endpoints.
//
// Every section tries Spotify (the user's token when linked, else the app token), then JioSaavn, then a built-in list.
type Discovery struct {
	broker   *TokenBroker
	spotify  *CatalogAggregator
	releases BrowsableCatalog
	saavn    *CatalogAggregator
	logger   *log.Logger
}

// NewDiscovery wires the broker and both catalogs.
func NewDiscovery(broker *TokenBroker, spotify BrowsableCatalog, saavn Catalog, logger *log.Logger) *Discovery {
	return &Discovery{
		broker:   broker,
		spotify:  NewCatalogAggregator(spotify, logger),
		releases: spotify,
		saavn:    NewCatalogAggregator(saavn, logger),
		logger:   logger,
	}
}

// Recommendations searches for "<mood> <language>" where mood comes from [MoodFor].
func (d *Discovery) Recommendations(ctx context.Context, userID string, q RecommendationQuery) Listing {
	req := SearchRequest{
		Variants:    []string{MoodQuery(MoodFor(q.Emotion, q.Wellbeing), q.Language)},
		Kind:        models.KindTrack,
		TargetCount: normalizeLimit(q.Limit),
	}
	return d.search(ctx, userID, req, []models.CatalogItem{})
}

// Search runs a free-text catalog search.
func (d *Discovery) Search(ctx context.Context, userID, query string, kind models.ItemKind, limit int) Listing {
	req := SearchRequest{
		Variants:    []string{query},
		Kind:        kind,
		TargetCount: normalizeLimit(limit),
	}
	return d.search(ctx, userID, req, []models.CatalogItem{})
}

func (d *Discovery) search(ctx context.Context, userID string, req SearchRequest, fallback []models.CatalogItem) Listing {
	token, relink := d.broker.ResolveToken(ctx, userID, d.spotify.Source())
	items, source := d.searchToken(ctx, token, req, fallback)
	return Listing{Items: items, Source: source, Relink: relink}
}

func (d *Discovery) searchToken(ctx context.Context, token string, req SearchRequest, fallback []models.CatalogItem) ([]models.CatalogItem, string) {
	return FirstOf(ctx, fallback,
		Strategy[[]models.CatalogItem]{Name: string(models.ProviderSpotify), Run: func(ctx context.Context) Outcome[[]models.CatalogItem] {
			return Items(d.spotify.Search(ctx, token, req))
		}},
		Strategy[[]models.CatalogItem]{Name: string(models.ProviderJioSaavn), Run: func(ctx context.Context) Outcome[[]models.CatalogItem] {
			return Items(d.saavn.Search(ctx, "", req))
		}},
	)
}

// Trending lists Spotify new releases, else JioSaavn "trending" songs, else a built-in list.
func (d *Discovery) Trending(ctx context.Context, userID string, limit int) Listing {
	limit = normalizeLimit(limit)
	token, relink := d.broker.ResolveToken(ctx, userID, d.spotify.Source())

	items, source := FirstOf(ctx, defaultTrending(),
		Strategy[[]models.CatalogItem]{Name: string(models.ProviderSpotify), Run: func(ctx context.Context) Outcome[[]models.CatalogItem] {
			if token == "" {
				return NoResult[[]models.CatalogItem]()
			}
			releases, err := d.releases.NewReleases(ctx, token, limit)
			if err != nil {
				d.logger.Warn("new releases failed", "error", err)
				return NoResult[[]models.CatalogItem]()
			}
			return Items(uniqueItems(releases, limit))
		}},
		Strategy[[]models.CatalogItem]{Name: string(models.ProviderJioSaavn), Run: func(ctx context.Context) Outcome[[]models.CatalogItem] {
			return Items(d.saavn.Search(ctx, "", SearchRequest{Variants: []string{"trending"}, Kind: models.KindTrack, TargetCount: limit}))
		}},
	)
	return Listing{Items: items, Source: source, Relink: relink}
}

// Feed builds the trending and industry sections. Items in the trending section are excluded from the industry section.
func (d *Discovery) Feed(ctx context.Context, userID, industry string, limit int) Feed {
	limit = normalizeLimit(limit)
	industry = strings.ToLower(strings.TrimSpace(industry))
	if industry == "" {
		industry = defaultIndustry
	}

	token, relink := d.broker.ResolveToken(ctx, userID, d.spotify.Source())

	trending, source := d.searchToken(ctx, token, SearchRequest{Variants: trendingVariants, Kind: models.KindTrack, TargetCount: limit}, []models.CatalogItem{})
	regional, _ := d.searchToken(ctx, token, SearchRequest{
		Variants:    industryVariants(industry),
		Kind:        models.KindTrack,
		TargetCount: limit,
		Exclude:     IDs(trending),
	}, []models.CatalogItem{})

	return Feed{Trending: trending, Industry: regional, Source: source, Relink: relink}
}

// FeaturedPlaylists picks one playlist per genre, never the same playlist twice.
func (d *Discovery) FeaturedPlaylists(ctx context.Context, userID string) Listing {
	token, relink := d.broker.ResolveToken(ctx, userID, d.spotify.Source())

	items, source := FirstOf(ctx, defaultPlaylists(),
		Strategy[[]models.CatalogItem]{Name: string(models.ProviderSpotify), Run: func(ctx context.Context) Outcome[[]models.CatalogItem] {
			return Items(onePerGenre(ctx, d.spotify, token, Genres))
		}},
		Strategy[[]models.CatalogItem]{Name: string(models.ProviderJioSaavn), Run: func(ctx context.Context) Outcome[[]models.CatalogItem] {
			return Items(onePerGenre(ctx, d.saavn, "", jioSaavnGenres))
		}},
	)
	return Listing{Items: items, Source: source, Relink: relink}
}

// Artists looks up each of [PopularArtists] on Spotify, skipping repeats by id or name.
func (d *Discovery) Artists(ctx context.Context, userID string) Listing {
	token, relink := d.broker.ResolveToken(ctx, userID, d.spotify.Source())

	items, source := FirstOf(ctx, defaultArtists(),
		Strategy[[]models.CatalogItem]{Name: string(models.ProviderSpotify), Run: func(ctx context.Context) Outcome[[]models.CatalogItem] {
			if token == "" {
				return NoResult[[]models.CatalogItem]()
			}

			var (
				found []models.CatalogItem
				names = map[string]struct{}{}
			)
			for _, name := range PopularArtists {
				hits := d.spotify.Search(ctx, token, SearchRequest{Variants: []string{name}, Kind: models.KindArtist, TargetCount: 1, Exclude: IDs(found)})
				if len(hits) == 0 {
					continue
				}
				key := strings.ToLower(strings.TrimSpace(hits[0].Title))
				if _, dup := names[key]; dup {
					continue
				}
				names[key] = struct{}{}
				found = append(found, hits[0])
			}
			return Items(found)
		}},
	)
	return Listing{Items: items, Source: source, Relink: relink}
}

// onePerGenre runs a single-item playlist search per genre, sharing one exclusion list across genres.
func onePerGenre(ctx context.Context, agg *CatalogAggregator, token string, genres []Genre) []models.CatalogItem {
	found := []models.CatalogItem{}
	for _, g := range genres {
		hits := agg.Search(ctx, token, SearchRequest{
			Variants:    []string{g.Query},
			Kind:        models.KindPlaylist,
			TargetCount: 1,
			Exclude:     IDs(found),
		})
		if len(hits) == 0 {
			continue
		}
		item := hits[0]
		item.Subtitle = g.Name + " • " + item.Subtitle
		found = append(found, item)
	}
	return found
}

// uniqueItems drops repeated ids and truncates to limit.
func uniqueItems(items []models.CatalogItem, limit int) []models.CatalogItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]models.CatalogItem, 0, min(len(items), limit))
	for _, item := range items {
		if len(out) == limit {
			break
		}
		if _, dup := seen[item.ID]; dup || item.ID == "" {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, maxLimit)
}
