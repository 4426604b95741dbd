package services

import (
	"context"
	"io"
	"testing"

	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/shared"
	tu "github.com/desertthunder/moodmusic/internal/testing"
)

func newSpotifyFake() *tu.FakeCatalog {
	return &tu.FakeCatalog{
		Provider: models.ProviderSpotify,
		NeedAuth: true,
		Results:  map[string][]models.CatalogItem{},
		Errors:   map[string]error{},
	}
}

func ids(items []models.CatalogItem) []string {
	return IDs(items)
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCatalogAggregator(t *testing.T) {
	ctx := context.Background()
	logger := shared.NewLogger(io.Discard)

	t.Run("merges variants in first-seen order", func(t *testing.T) {
		catalog := newSpotifyFake()
		// 6 unique plus a repeat of its own first item
		catalog.Results["chart hits"] = tu.Tracks(models.ProviderSpotify, "a", "b", "c", "d", "e", "f", "a")
		// 5 unique of which 2 were already returned
		catalog.Results["viral songs"] = tu.Tracks(models.ProviderSpotify, "c", "g", "e", "h", "i")

		agg := NewCatalogAggregator(catalog, logger)
		items := agg.Search(ctx, "token", SearchRequest{
			Variants:    []string{"chart hits", "viral songs"},
			Kind:        models.KindTrack,
			TargetCount: 10,
		})

		want := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
		if !equalIDs(ids(items), want) {
			t.Errorf("expected %v, got %v", want, ids(items))
		}
		if len(catalog.Calls) != 2 {
			t.Errorf("expected 2 upstream calls, got %d", len(catalog.Calls))
		}
		for _, call := range catalog.Calls {
			if call.Limit != 20 {
				t.Errorf("expected over-fetch of 20, got %d", call.Limit)
			}
		}
	})

	t.Run("stops once the target is met", func(t *testing.T) {
		catalog := newSpotifyFake()
		catalog.Results["one"] = tu.Tracks(models.ProviderSpotify, "a", "b", "c", "d")
		catalog.Results["two"] = tu.Tracks(models.ProviderSpotify, "e", "f")

		agg := NewCatalogAggregator(catalog, logger)
		items := agg.Search(ctx, "token", SearchRequest{Variants: []string{"one", "two"}, TargetCount: 3})

		if !equalIDs(ids(items), []string{"a", "b", "c"}) {
			t.Errorf("expected first three items, got %v", ids(items))
		}
		if len(catalog.Calls) != 1 {
			t.Errorf("expected a single upstream call, got %d", len(catalog.Calls))
		}
	})

	t.Run("excluded ids never appear", func(t *testing.T) {
		catalog := newSpotifyFake()
		catalog.Results["hits"] = tu.Tracks(models.ProviderSpotify, "abc123", "x", "y")

		agg := NewCatalogAggregator(catalog, logger)
		items := agg.Search(ctx, "token", SearchRequest{
			Variants:    []string{"hits"},
			TargetCount: 5,
			Exclude:     []string{"abc123"},
		})

		if !equalIDs(ids(items), []string{"x", "y"}) {
			t.Errorf("expected [x y], got %v", ids(items))
		}
	})

	t.Run("failed variants are skipped", func(t *testing.T) {
		catalog := newSpotifyFake()
		catalog.Errors["broken"] = shared.ErrProviderUnavailable
		catalog.Results["working"] = tu.Tracks(models.ProviderSpotify, "a")

		agg := NewCatalogAggregator(catalog, logger)
		items := agg.Search(ctx, "token", SearchRequest{Variants: []string{"broken", "working"}, TargetCount: 5})

		if !equalIDs(ids(items), []string{"a"}) {
			t.Errorf("expected [a], got %v", ids(items))
		}
	})

	t.Run("all variants failing is an empty result", func(t *testing.T) {
		catalog := newSpotifyFake()
		catalog.Errors["one"] = shared.ErrProviderUnavailable
		catalog.Errors["two"] = shared.ErrAuthExpired

		agg := NewCatalogAggregator(catalog, logger)
		items := agg.Search(ctx, "token", SearchRequest{Variants: []string{"one", "two"}, TargetCount: 5})

		if items == nil || len(items) != 0 {
			t.Errorf("expected empty non-nil result, got %v", items)
		}
	})

	t.Run("items without ids are dropped", func(t *testing.T) {
		catalog := newSpotifyFake()
		catalog.Results["q"] = append(tu.Tracks(models.ProviderSpotify, "a"), models.CatalogItem{Title: "no id"})

		agg := NewCatalogAggregator(catalog, logger)
		if items := agg.Search(ctx, "token", SearchRequest{Variants: []string{"q"}, TargetCount: 5}); len(items) != 1 {
			t.Errorf("expected 1 item, got %d", len(items))
		}
	})

	t.Run("short circuits", func(t *testing.T) {
		tests := []struct {
			name  string
			token string
			req   SearchRequest
		}{
			{"empty variants", "token", SearchRequest{TargetCount: 10}},
			{"zero target", "token", SearchRequest{Variants: []string{"q"}}},
			{"no token", "", SearchRequest{Variants: []string{"q"}, TargetCount: 10}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				catalog := newSpotifyFake()
				catalog.Results["q"] = tu.Tracks(models.ProviderSpotify, "a")

				items := NewCatalogAggregator(catalog, logger).Search(ctx, tt.token, tt.req)
				if items == nil || len(items) != 0 {
					t.Errorf("expected empty non-nil result, got %v", items)
				}
				if len(catalog.Calls) != 0 {
					t.Errorf("expected no upstream calls, got %d", len(catalog.Calls))
				}
			})
		}
	})

	t.Run("tokenless catalogs search without a token", func(t *testing.T) {
		catalog := &tu.FakeCatalog{
			Provider: models.ProviderJioSaavn,
			Results:  map[string][]models.CatalogItem{"q": tu.Tracks(models.ProviderJioSaavn, "a")},
		}

		if items := NewCatalogAggregator(catalog, logger).Search(ctx, "", SearchRequest{Variants: []string{"q"}, TargetCount: 1}); len(items) != 1 {
			t.Errorf("expected 1 item, got %d", len(items))
		}
	})

	t.Run("page size is capped", func(t *testing.T) {
		catalog := newSpotifyFake()
		NewCatalogAggregator(catalog, logger).Search(ctx, "token", SearchRequest{Variants: []string{"q"}, TargetCount: 40})

		if len(catalog.Calls) != 1 || catalog.Calls[0].Limit != 50 {
			t.Errorf("expected one call of 50, got %+v", catalog.Calls)
		}
	})

	t.Run("SearchWith", func(t *testing.T) {
		t.Run("token failure is an empty result", func(t *testing.T) {
			catalog := newSpotifyFake()
			catalog.Results["q"] = tu.Tracks(models.ProviderSpotify, "a")

			items := NewCatalogAggregator(catalog, logger).SearchWith(ctx, func(context.Context) (string, error) {
				return "", shared.ErrAuthExpired
			}, SearchRequest{Variants: []string{"q"}, TargetCount: 1})

			if len(items) != 0 || len(catalog.Calls) != 0 {
				t.Errorf("expected no items and no calls, got %d items and %d calls", len(items), len(catalog.Calls))
			}
		})

		t.Run("acquired token is used", func(t *testing.T) {
			catalog := newSpotifyFake()
			catalog.Results["q"] = tu.Tracks(models.ProviderSpotify, "a")

			items := NewCatalogAggregator(catalog, logger).SearchWith(ctx, func(context.Context) (string, error) {
				return "user-token", nil
			}, SearchRequest{Variants: []string{"q"}, TargetCount: 1})

			if len(items) != 1 {
				t.Fatalf("expected 1 item, got %d", len(items))
			}
			if catalog.Calls[0].Token != "user-token" {
				t.Errorf("expected user-token, got %s", catalog.Calls[0].Token)
			}
		})
	})
}

func TestFirstOf(t *testing.T) {
	ctx := context.Background()
	miss := Strategy[int]{Name: "miss", Run: func(context.Context) Outcome[int] { return NoResult[int]() }}
	hit := func(name string, v int) Strategy[int] {
		return Strategy[int]{Name: name, Run: func(context.Context) Outcome[int] { return Found(v) }}
	}

	t.Run("first found wins", func(t *testing.T) {
		v, name := FirstOf(ctx, -1, miss, hit("a", 1), hit("b", 2))
		if v != 1 || name != "a" {
			t.Errorf("expected 1 from a, got %d from %s", v, name)
		}
	})

	t.Run("all miss uses the default", func(t *testing.T) {
		v, name := FirstOf(ctx, -1, miss, miss)
		if v != -1 || name != DefaultStrategy {
			t.Errorf("expected default, got %d from %s", v, name)
		}
	})

	t.Run("later strategies are not run", func(t *testing.T) {
		ran := false
		spy := Strategy[int]{Name: "spy", Run: func(context.Context) Outcome[int] {
			ran = true
			return Found(9)
		}}
		FirstOf(ctx, 0, hit("a", 1), spy)
		if ran {
			t.Error("strategy after a hit should not run")
		}
	})

	t.Run("Items", func(t *testing.T) {
		if _, ok := Items(nil).Get(); ok {
			t.Error("empty list should be no result")
		}
		if v, ok := Items(tu.Tracks(models.ProviderSpotify, "a")).Get(); !ok || len(v) != 1 {
			t.Error("non-empty list should be found")
		}
	})
}

func TestMood(t *testing.T) {
	t.Run("MoodFor", func(t *testing.T) {
		tests := []struct {
			emotion   string
			wellbeing bool
			want      string
		}{
			{"sad", true, "motivational"},
			{"Depressed", true, "healing"},
			{"angry", true, "calm"},
			{"stressed", true, "relaxing"},
			{"fear", true, "courage"},
			{"anxious", true, "soothing"},
			{"happy", true, "happy"},
			{"sad", false, "sad"},
		}

		for _, tt := range tests {
			if got := MoodFor(tt.emotion, tt.wellbeing); got != tt.want {
				t.Errorf("MoodFor(%q, %v) = %q, want %q", tt.emotion, tt.wellbeing, got, tt.want)
			}
		}
	})

	t.Run("MoodQuery", func(t *testing.T) {
		if got := MoodQuery("calm", "Hindi"); got != "calm Hindi" {
			t.Errorf("unexpected query %q", got)
		}
	})

	t.Run("ParseLanguage", func(t *testing.T) {
		if lang, ok := ParseLanguage(" tamil "); !ok || lang != "Tamil" {
			t.Errorf("expected Tamil, got %q %v", lang, ok)
		}
		if _, ok := ParseLanguage("klingon"); ok {
			t.Error("expected unknown language to be rejected")
		}
	})
}
