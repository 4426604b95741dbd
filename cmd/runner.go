package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodmusic/internal/formatter"
	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/services"
	"github.com/desertthunder/moodmusic/internal/shared"
	"github.com/desertthunder/moodmusic/internal/ui"
	"github.com/urfave/cli/v3"
)

// SpotifyProvider is the OAuth authority and browsable catalog of Spotify.
type SpotifyProvider interface {
	services.Authority
	services.BrowsableCatalog
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    SpotifyProvider
	google     services.Authority
	saavn      services.Catalog
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	palette    *ui.Palette
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Nil providers are built from the loaded config when a command needs them.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    SpotifyProvider
	Google     services.Authority
	JioSaavn   services.Catalog
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		google:     opts.Google,
		saavn:      opts.JioSaavn,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		palette:    ui.Default(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, searchCommand, browseCommand, checkCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig returns the runner's config unless --config names another file.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	path := cmd.String("config")
	if path == "" || path == r.configPath {
		return r.config, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := shared.ApplyEnv(config, ".env"); err != nil {
		return nil, err
	}
	return config, nil
}

// clients returns the injected providers, building any missing one from config.
func (r *Runner) clients(config *shared.Config) (SpotifyProvider, services.Authority, services.Catalog) {
	opts := []services.Option{
		services.WithHTTPClient(r.httpClient),
		services.WithTimeout(config.Providers.Timeout()),
		services.WithLogger(r.logger),
	}

	spotify, google, saavn := r.spotify, r.google, r.saavn
	if spotify == nil {
		spotify = services.NewSpotifyClient(config.Providers.Spotify, opts...)
	}
	if google == nil {
		google = services.NewGoogleClient(config.Providers.Google, opts...)
	}
	if saavn == nil {
		saavn = services.NewJioSaavnClient(config.Providers.JioSaavn.BaseURL, opts...)
	}
	return spotify, google, saavn
}

// discovery wires a broker over store and a [services.Discovery] over the provider clients.
func (r *Runner) discovery(config *shared.Config, store services.CredentialStore) (*services.TokenBroker, *services.Discovery) {
	spotify, google, saavn := r.clients(config)
	broker := services.NewTokenBroker(store, r.logger, spotify, google)
	return broker, services.NewDiscovery(broker, spotify, saavn, r.logger)
}

// appOnly is a credential store with no linked users, so every lookup resolves to the app token.
type appOnly struct{}

func (appOnly) Load(context.Context, string, models.Provider) (*models.Credential, error) {
	return nil, nil
}

func (appOnly) Save(context.Context, string, models.Provider, *models.Credential) error {
	return fmt.Errorf("%w: no user credentials outside the API", shared.ErrNotImplemented)
}

func (appOnly) Clear(context.Context, string, models.Provider) error {
	return nil
}

// emit renders items in the --format of cmd and writes them to --output or the runner's output.
func (r *Runner) emit(cmd *cli.Command, title string, items []models.CatalogItem) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	data, err := formatter.Render(format, title, items)
	if err != nil {
		return err
	}
	return r.deliver(cmd, data)
}

func (r *Runner) deliver(cmd *cli.Command, data []byte) error {
	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteFile(path, data, cmd.Bool("force")); err != nil {
			return err
		}
		r.logger.Info("output written", "path", path, "bytes", len(data))
		return nil
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
