package server

import (
	"net/http"
	"strings"

	"github.com/desertthunder/moodmusic/internal/models"
)

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (a *API) playlists(w http.ResponseWriter, r *http.Request) {
	playlists, err := a.Playlists.List(r.Context(), UserID(r.Context()))
	if err != nil {
		fail(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (a *API) createPlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, a.logger, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "Missing playlist name")
		return
	}

	playlist := &models.Playlist{UserID: UserID(r.Context()), Name: req.Name, Description: req.Description}
	if err := a.Playlists.Create(r.Context(), playlist); err != nil {
		fail(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message":    "Playlist created",
		"playlistId": playlist.ID,
	})
}

// songHistory lists played songs, most recent first.
func (a *API) songHistory(w http.ResponseWriter, r *http.Request) {
	songs, err := a.History.List(r.Context(), UserID(r.Context()), queryInt(r.URL.Query().Get("limit")))
	if err != nil {
		fail(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

// recordSong appends a play to the history. It takes the same body as a like.
func (a *API) recordSong(w http.ResponseWriter, r *http.Request) {
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

	err := a.History.Record(r.Context(), &models.PlayedSong{
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
	writeJSON(w, http.StatusCreated, message{Message: "Song added to history"})
}

type gestureRequest struct {
	Gesture string `json:"gestureName"`
	Action  string `json:"action"`
}

func (a *API) gestures(w http.ResponseWriter, r *http.Request) {
	mappings, err := a.Controls.Gestures(r.Context(), UserID(r.Context()))
	if err != nil {
		fail(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mappings)
}

// mapGesture binds a gesture to a playback action. Mapping the same gesture again replaces the action.
func (a *API) mapGesture(w http.ResponseWriter, r *http.Request) {
	var req gestureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, a.logger, err)
		return
	}
	if strings.TrimSpace(req.Gesture) == "" || strings.TrimSpace(req.Action) == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "Invalid gesture name or action")
		return
	}

	mapping := &models.GestureMapping{UserID: UserID(r.Context()), Gesture: req.Gesture, Action: req.Action}
	if err := a.Controls.MapGesture(r.Context(), mapping); err != nil {
		fail(w, a.logger, err)
		return
	}
	a.logger.Debug("gesture mapped", "gesture", mapping.Gesture, "action", mapping.Action)
	writeJSON(w, http.StatusOK, message{Message: "Gesture mapped successfully"})
}

type voiceRequest struct {
	Command string `json:"commandPhrase"`
}

// voiceCommand resolves a spoken phrase to a playback action and logs it.
func (a *API) voiceCommand(w http.ResponseWriter, r *http.Request) {
	var req voiceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, a.logger, err)
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "Missing command phrase")
		return
	}

	action, ok := models.VoiceAction(req.Command)
	if !ok {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "Unrecognized command")
		return
	}

	cmd := &models.VoiceCommand{UserID: UserID(r.Context()), Command: strings.TrimSpace(req.Command), Action: action}
	if err := a.Controls.LogVoiceCommand(r.Context(), cmd); err != nil {
		fail(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":        "Voice command processed",
		"actionExecuted": action,
	})
}
