package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/services"
	"github.com/desertthunder/moodmusic/internal/shared"
)

type emotionRequest struct {
	Emotion string `json:"emotion"`
}

// logEmotion records an emotion detected by the client.
func (a *API) logEmotion(w http.ResponseWriter, r *http.Request) {
	var req emotionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, a.logger, err)
		return
	}
	if strings.TrimSpace(req.Emotion) == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "Emotion field required")
		return
	}

	entry, err := a.Emotions.Create(r.Context(), UserID(r.Context()), req.Emotion)
	if err != nil {
		fail(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Logged emotion: " + entry.Emotion,
		"emotion": entry,
	})
}

type languagePrompt struct {
	Message   string   `json:"message"`
	Languages []string `json:"available_languages"`
}

type recommendationResponse struct {
	Emotion   string `json:"emotion"`
	Mood      string `json:"mood"`
	Language  string `json:"language"`
	Wellbeing bool   `json:"wellbeing"`
	services.Listing
}

// recommendations searches for songs matching the requested (or latest logged) emotion.
func (a *API) recommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := UserID(r.Context())

	emotion := strings.ToLower(strings.TrimSpace(q.Get("emotion")))
	if emotion == "" {
		latest, err := a.Emotions.Latest(r.Context(), userID)
		if errors.Is(err, shared.ErrNotFound) {
			writeError(w, http.StatusNotFound, CodeNotFound, "No emotion detected yet")
			return
		}
		if err != nil {
			fail(w, a.logger, err)
			return
		}
		emotion = latest.Emotion
	}

	if strings.TrimSpace(q.Get("language")) == "" {
		writeJSON(w, http.StatusOK, languagePrompt{Message: "Please select a language to continue.", Languages: services.Languages})
		return
	}
	language, ok := services.ParseLanguage(q.Get("language"))
	if !ok {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "Unsupported language: "+q.Get("language"))
		return
	}

	wellbeing := queryBool(q.Get("wellbeing"))
	listing := a.Discovery.Recommendations(r.Context(), userID, services.RecommendationQuery{
		Emotion:   emotion,
		Language:  language,
		Wellbeing: wellbeing,
		Limit:     queryInt(q.Get("limit")),
	})

	writeJSON(w, http.StatusOK, recommendationResponse{
		Emotion:   emotion,
		Mood:      services.MoodFor(emotion, wellbeing),
		Language:  language,
		Wellbeing: wellbeing,
		Listing:   listing,
	})
}

type searchResponse struct {
	Query string          `json:"query"`
	Kind  models.ItemKind `json:"type"`
	services.Listing
}

// search runs a free-text catalog search.
func (a *API) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "Missing search query")
		return
	}

	kind := models.ParseItemKind(q.Get("type"))
	listing := a.Discovery.Search(r.Context(), UserID(r.Context()), query, kind, queryInt(q.Get("limit")))
	writeJSON(w, http.StatusOK, searchResponse{Query: query, Kind: kind, Listing: listing})
}

func (a *API) feed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, a.Discovery.Feed(r.Context(), UserID(r.Context()), q.Get("industry"), queryInt(q.Get("limit"))))
}

func (a *API) trending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Discovery.Trending(r.Context(), UserID(r.Context()), queryInt(r.URL.Query().Get("limit"))))
}

func (a *API) featuredPlaylists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Discovery.FeaturedPlaylists(r.Context(), UserID(r.Context())))
}

func (a *API) artists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Discovery.Artists(r.Context(), UserID(r.Context())))
}

type likeRequest struct {
	Source     string `json:"source"`
	ExternalID string `json:"external_id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
}

func (req likeRequest) provider() (models.Provider, bool) {
	p, err := models.ParseProvider(req.Source)
	return p, err == nil && strings.TrimSpace(req.ExternalID) != ""
}

// like stores a liked song. Liking twice is not an error.
func (a *API) like(w http.ResponseWriter, r *http.Request) {
	var req likeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, a.logger, err)
		return
	}
	source, ok := req.provider()
	if !ok || strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "source, external_id and title are required")
		return
	}

	created, err := a.Likes.Like(r.Context(), &models.LikedSong{
		UserID:     UserID(r.Context()),
		Source:     source,
		ExternalID: strings.TrimSpace(req.ExternalID),
		Title:      req.Title,
		Artist:     req.Artist,
		Album:      req.Album,
	})
	if err != nil {
		fail(w, a.logger, err)
		return
	}

	if !created {
		writeJSON(w, http.StatusOK, message{Message: "Song already liked"})
		return
	}
	writeJSON(w, http.StatusCreated, message{Message: "Song liked successfully"})
}

func (a *API) unlike(w http.ResponseWriter, r *http.Request) {
	var req likeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, a.logger, err)
		return
	}
	source, ok := req.provider()
	if !ok {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "source and external_id are required")
		return
	}

	err := a.Likes.Unlike(r.Context(), UserID(r.Context()), source, strings.TrimSpace(req.ExternalID))
	if errors.Is(err, shared.ErrNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "Song not found in liked songs")
		return
	}
	if err != nil {
		fail(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "Song unliked successfully"})
}

func (a *API) likedSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := a.Likes.List(r.Context(), UserID(r.Context()))
	if err != nil {
		fail(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

func queryInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func queryBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
