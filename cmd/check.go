package main

import (
	"context"

	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/urfave/cli/v3"
)

// providerStatus is one row of the check report.
type providerStatus struct {
	Provider   models.Provider `json:"provider"`
	Configured bool            `json:"configured"`
	Usable     bool            `json:"usable"`
	Detail     string          `json:"detail,omitempty"`
}

// Check reports whether each provider has credentials and answers requests.
//
// Spotify is usable when a client-credentials token can be issued, Google when client credentials are set,
// and JioSaavn when a one-item search returns a result.
func (r *Runner) Check(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	spotify, google, saavn := r.clients(config)
	broker, _ := r.discovery(config, appOnly{})

	statuses := []providerStatus{}

	spotifyStatus := providerStatus{Provider: models.ProviderSpotify, Configured: spotify.Configured()}
	switch {
	case !spotifyStatus.Configured:
		spotifyStatus.Detail = "client id and secret not set"
	case broker.GetAppToken(ctx, models.ProviderSpotify) == "":
		spotifyStatus.Detail = "client credentials grant failed"
	default:
		spotifyStatus.Usable = true
		spotifyStatus.Detail = "app token issued"
	}
	statuses = append(statuses, spotifyStatus)

	googleStatus := providerStatus{Provider: models.ProviderGoogle, Configured: google.Configured(), Usable: google.Configured()}
	if !googleStatus.Configured {
		googleStatus.Detail = "client id and secret not set"
	}
	statuses = append(statuses, googleStatus)

	saavnStatus := providerStatus{Provider: models.ProviderJioSaavn, Configured: config.Providers.JioSaavn.BaseURL != ""}
	if items, err := saavn.Search(ctx, "", "trending", models.KindTrack, 1); err != nil {
		saavnStatus.Detail = err.Error()
	} else if len(items) == 0 {
		saavnStatus.Detail = "no results"
	} else {
		saavnStatus.Usable = true
		saavnStatus.Detail = config.Providers.JioSaavn.BaseURL
	}
	statuses = append(statuses, saavnStatus)

	if cmd.Bool("json") {
		return r.writeJSON(statuses, true)
	}

	lines := make([]string, len(statuses))
	for i, s := range statuses {
		lines[i] = r.palette.Check(s.Provider.Label(), s.Usable, s.Detail)
	}
	return r.writePlain("%s", r.palette.Lines("Providers", lines...))
}
