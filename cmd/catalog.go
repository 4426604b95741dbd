package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/moodmusic/internal/formatter"
	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/services"
	"github.com/desertthunder/moodmusic/internal/shared"
	"github.com/urfave/cli/v3"
)

// browser builds an app-token-only [services.Discovery] from the command's config.
func (r *Runner) browser(cmd *cli.Command) (*services.Discovery, error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	_, discovery := r.discovery(config, appOnly{})
	return discovery, nil
}

// Search runs a catalog search for the joined arguments.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	discovery, err := r.browser(cmd)
	if err != nil {
		return err
	}

	kind := models.ParseItemKind(cmd.String("type"))
	listing := discovery.Search(ctx, "", query, kind, cmd.Int("limit"))
	r.logger.Debug("search complete", "query", query, "kind", kind, "source", listing.Source, "count", len(listing.Items))

	return r.emit(cmd, fmt.Sprintf("Search: %s (%s)", query, listing.Source), listing.Items)
}

// Trending prints trending songs.
func (r *Runner) Trending(ctx context.Context, cmd *cli.Command) error {
	discovery, err := r.browser(cmd)
	if err != nil {
		return err
	}
	listing := discovery.Trending(ctx, "", cmd.Int("limit"))
	return r.emit(cmd, fmt.Sprintf("Trending (%s)", listing.Source), listing.Items)
}

// FeaturedPlaylists prints one playlist per genre.
func (r *Runner) FeaturedPlaylists(ctx context.Context, cmd *cli.Command) error {
	discovery, err := r.browser(cmd)
	if err != nil {
		return err
	}
	listing := discovery.FeaturedPlaylists(ctx, "")
	return r.emit(cmd, fmt.Sprintf("Featured playlists (%s)", listing.Source), listing.Items)
}

// Artists prints popular artists.
func (r *Runner) Artists(ctx context.Context, cmd *cli.Command) error {
	discovery, err := r.browser(cmd)
	if err != nil {
		return err
	}
	listing := discovery.Artists(ctx, "")
	return r.emit(cmd, fmt.Sprintf("Artists (%s)", listing.Source), listing.Items)
}

// Feed prints the trending and industry sections. JSON output keeps both sections in one document.
func (r *Runner) Feed(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	discovery, err := r.browser(cmd)
	if err != nil {
		return err
	}

	industry := cmd.String("industry")
	feed := discovery.Feed(ctx, "", industry, cmd.Int("limit"))

	if format == formatter.FormatJSON {
		data, err := json.MarshalIndent(feed, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return r.deliver(cmd, append(data, '\n'))
	}

	if industry == "" {
		industry = "regional"
	}

	var out []byte
	for _, section := range []struct {
		title string
		items []models.CatalogItem
	}{
		{fmt.Sprintf("Trending (%s)", feed.Source), feed.Trending},
		{fmt.Sprintf("Industry: %s", industry), feed.Industry},
	} {
		data, err := formatter.Render(format, section.title, section.items)
		if err != nil {
			return err
		}
		if len(out) > 0 {
			out = append(out, '\n')
		}
		out = append(out, data...)
	}
	return r.deliver(cmd, out)
}

// Recommend prints mood recommendations for --emotion in --language.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	language, ok := services.ParseLanguage(cmd.String("language"))
	if !ok {
		return fmt.Errorf("%w: language must be one of %s", shared.ErrInvalidArgument, strings.Join(services.Languages, ", "))
	}

	discovery, err := r.browser(cmd)
	if err != nil {
		return err
	}

	q := services.RecommendationQuery{
		Emotion:   cmd.String("emotion"),
		Language:  language,
		Wellbeing: cmd.Bool("wellbeing"),
		Limit:     cmd.Int("limit"),
	}
	listing := discovery.Recommendations(ctx, "", q)

	mood := services.MoodFor(q.Emotion, q.Wellbeing)
	return r.emit(cmd, fmt.Sprintf("%s %s for %s (%s)", mood, language, q.Emotion, listing.Source), listing.Items)
}
