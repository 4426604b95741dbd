package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/services"
	"github.com/desertthunder/moodmusic/internal/shared"
)

// UserStore persists local accounts.
type UserStore interface {
	Create(user *models.User) error
	Get(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Delete(id string) error
}

// CredentialLister lists and removes every provider link of a user.
type CredentialLister interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Credential, error)
	ClearAll(ctx context.Context, userID string) error
}

// EmotionStore records emotions reported by clients.
type EmotionStore interface {
	Create(ctx context.Context, userID, emotion string) (*models.EmotionLog, error)
	Latest(ctx context.Context, userID string) (*models.EmotionLog, error)
}

// LikeStore persists liked songs.
type LikeStore interface {
	Like(ctx context.Context, song *models.LikedSong) (bool, error)
	Unlike(ctx context.Context, userID string, source models.Provider, externalID string) error
	List(ctx context.Context, userID string) ([]*models.LikedSong, error)
}

// PlaylistStore persists user-created playlists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	List(ctx context.Context, userID string) ([]*models.Playlist, error)
}

// HistoryStore persists played songs.
type HistoryStore interface {
	Record(ctx context.Context, song *models.PlayedSong) error
	List(ctx context.Context, userID string, limit int) ([]*models.PlayedSong, error)
}

// ControlStore persists gesture mappings and voice commands.
type ControlStore interface {
	MapGesture(ctx context.Context, mapping *models.GestureMapping) error
	Gestures(ctx context.Context, userID string) ([]*models.GestureMapping, error)
	LogVoiceCommand(ctx context.Context, cmd *models.VoiceCommand) error
}

// APIConfig carries the dependencies of [API]. Everything is constructed once by the caller and shared.
type APIConfig struct {
	Users       UserStore
	Credentials CredentialLister
	Emotions    EmotionStore
	Likes       LikeStore
	Playlists   PlaylistStore
	History     HistoryStore
	Controls    ControlStore
	Broker      *services.TokenBroker
	Discovery   *services.Discovery
	Auth        *Authenticator

	// FrontendURL receives the browser after a provider callback. Empty renders a confirmation page instead.
	FrontendURL string
	Logger      *log.Logger
}

// API serves the moodmusic JSON endpoints.
type API struct {
	APIConfig
	logger *log.Logger
}

// NewAPI creates an [API].
func NewAPI(cfg APIConfig) *API {
	logger := cfg.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &API{APIConfig: cfg, logger: shared.WithLogger(logger, "component", "api")}
}

// Register adds every route to r. Routes under /api require a session token.
func (a *API) Register(r Router) {
	protect := func(h http.HandlerFunc) http.Handler { return a.Auth.Require(h) }

	r.Handle(http.MethodGet, "/{$}", http.HandlerFunc(a.health))
	r.Handle(http.MethodPost, "/register", http.HandlerFunc(a.register))
	r.Handle(http.MethodPost, "/login", http.HandlerFunc(a.login))

	r.Handle(http.MethodGet, "/api/me", protect(a.me))
	r.Handle(http.MethodDelete, "/api/me", protect(a.deleteMe))

	r.Handle(http.MethodGet, "/api/{provider}/login-url", protect(a.loginURL))
	r.Handle(http.MethodDelete, "/api/{provider}/link", protect(a.unlink))
	r.Handle(http.MethodPost, "/api/{provider}/refresh", protect(a.refresh))
	r.Handler(NewCallbackHandler(a.Broker, a.Auth, a.FrontendURL, a.logger))

	r.Handle(http.MethodPost, "/api/emotions", protect(a.logEmotion))
	r.Handle(http.MethodGet, "/api/recommendations", protect(a.recommendations))
	r.Handle(http.MethodGet, "/api/search", protect(a.search))
	r.Handle(http.MethodGet, "/api/feed", protect(a.feed))
	r.Handle(http.MethodGet, "/api/trending-songs", protect(a.trending))
	r.Handle(http.MethodGet, "/api/featured-playlists", protect(a.featuredPlaylists))
	r.Handle(http.MethodGet, "/api/artists", protect(a.artists))

	r.Handle(http.MethodPost, "/api/songs/like", protect(a.like))
	r.Handle(http.MethodDelete, "/api/songs/like", protect(a.unlike))
	r.Handle(http.MethodGet, "/api/liked-songs", protect(a.likedSongs))

	r.Handle(http.MethodGet, "/api/playlists", protect(a.playlists))
	r.Handle(http.MethodPost, "/api/playlists", protect(a.createPlaylist))
	r.Handle(http.MethodGet, "/api/song-history", protect(a.songHistory))
	r.Handle(http.MethodPost, "/api/song-history", protect(a.recordSong))
	r.Handle(http.MethodGet, "/api/gestures", protect(a.gestures))
	r.Handle(http.MethodPost, "/api/gestures/map", protect(a.mapGesture))
	r.Handle(http.MethodPost, "/api/voice/command", protect(a.voiceCommand))
}

// NewRouter builds a [BasicRouter] with the standard middleware stack and every [API] route.
func NewRouter(api *API, allowedOrigins []string, limiter *RateLimiter) *BasicRouter {
	router := NewBasicRouter()
	router.Use(
		Recover(api.logger),
		Logging(api.logger),
		CORS(allowedOrigins),
		limiter.Middleware(),
	)
	api.Register(router)
	return router
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, message{Message: "Mood-Based Music API is live!"})
}

// pathProvider parses the {provider} path segment.
func pathProvider(r *http.Request) (models.Provider, error) {
	p, err := models.ParseProvider(r.PathValue("provider"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrNotFound, err)
	}
	return p, nil
}
