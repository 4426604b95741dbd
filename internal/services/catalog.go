package services

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodmusic/internal/models"
)

const (
	// overFetchFactor is how many raw results are requested per wanted item to absorb duplicates.
	overFetchFactor = 2

	// maxPageSize caps a single upstream request.
	maxPageSize = 50
)

// SearchRequest describes one aggregated search.
type SearchRequest struct {
	// Variants are alternative phrasings tried in order until TargetCount items are found.
	Variants []string
	Kind     models.ItemKind

	// TargetCount is the most items returned.
	TargetCount int

	// Exclude holds provider ids treated as already seen.
	Exclude []string
}

// CatalogAggregator merges the results of several search calls against one [Catalog] into a deduplicated list.
//
// It never returns an error: upstream failures are logged and yield fewer (possibly zero) items.
type CatalogAggregator struct {
	catalog Catalog
	logger  *log.Logger
}

// NewCatalogAggregator creates an aggregator over catalog.
func NewCatalogAggregator(catalog Catalog, logger *log.Logger) *CatalogAggregator {
	return &CatalogAggregator{catalog: catalog, logger: logger.With("catalog", catalog.Source())}
}

// Source returns the provider of the underlying catalog.
func (a *CatalogAggregator) Source() models.Provider {
	return a.catalog.Source()
}

// Search runs the variants in order and returns at most req.TargetCount items in first-seen order.
//
// Each variant costs one upstream call of min(2*TargetCount, 50) results. No call is made once the target
// is met, or at all when the catalog needs a token and token is empty.
func (a *CatalogAggregator) Search(ctx context.Context, token string, req SearchRequest) []models.CatalogItem {
	items := []models.CatalogItem{}
	if req.TargetCount <= 0 || len(req.Variants) == 0 {
		return items
	}
	if token == "" && a.catalog.AuthRequired() {
		a.logger.Debug("no token, skipping search")
		return items
	}

	kind := req.Kind
	if kind == "" {
		kind = models.KindTrack
	}

	seen := make(map[string]struct{}, len(req.Exclude)+req.TargetCount)
	for _, id := range req.Exclude {
		seen[id] = struct{}{}
	}

	pageSize := min(req.TargetCount*overFetchFactor, maxPageSize)

	for _, variant := range req.Variants {
		if len(items) >= req.TargetCount {
			break
		}

		batch, err := a.catalog.Search(ctx, token, variant, kind, pageSize)
		if err != nil {
			a.logger.Warn("search variant failed", "query", variant, "error", err)
			continue
		}

		for _, item := range batch {
			if item.ID == "" {
				continue
			}
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			items = append(items, item)

			if len(items) == req.TargetCount {
				break
			}
		}
	}

	return items
}

// SearchWith acquires a token through tokenFn first; an acquisition error yields an empty result.
func (a *CatalogAggregator) SearchWith(ctx context.Context, tokenFn func(context.Context) (string, error), req SearchRequest) []models.CatalogItem {
	token, err := tokenFn(ctx)
	if err != nil {
		a.logger.Warn("token unavailable, skipping search", "error", err)
		return []models.CatalogItem{}
	}
	return a.Search(ctx, token, req)
}

// IDs returns the provider ids of items, for use as a later request's Exclude list.
func IDs(items []models.CatalogItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
