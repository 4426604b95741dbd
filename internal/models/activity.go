package models

import (
	"strings"
	"time"
)

// EmotionLog records an emotion reported by a client for a user.
type EmotionLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Emotion   string    `json:"emotion"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikedSong is a song a user liked from a given source.
type LikedSong struct {
	ID         string    `json:"-"`
	UserID     string    `json:"-"`
	Source     Provider  `json:"source"`
	ExternalID string    `json:"external_id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      string    `json:"album"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Playlist is a user-created playlist.
type Playlist struct {
	ID          string    `json:"playlistId"`
	UserID      string    `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PlayedSong is one entry of a user's listening history.
type PlayedSong struct {
	ID         string    `json:"-"`
	UserID     string    `json:"-"`
	Source     Provider  `json:"source"`
	ExternalID string    `json:"external_id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      string    `json:"album"`
	PlayedAt   time.Time `json:"playedAt"`
}

// GestureMapping binds a named hand gesture to a player action.
type GestureMapping struct {
	UserID    string    `json:"-"`
	Gesture   string    `json:"gestureName"`
	Action    string    `json:"action"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VoiceCommand is a recognized spoken command and the player action it resolved to.
type VoiceCommand struct {
	ID        string    `json:"-"`
	UserID    string    `json:"-"`
	Command   string    `json:"commandPhrase"`
	Action    string    `json:"actionExecuted"`
	CreatedAt time.Time `json:"createdAt"`
}

// voiceActions maps lowercased command phrases to player actions.
var voiceActions = map[string]string{
	"play next song":     "next_song",
	"play previous song": "previous_song",
	"pause song":         "pause",
	"play song":          "play",
}

// VoiceAction resolves a spoken phrase, case-insensitively, to a player action.
func VoiceAction(phrase string) (string, bool) {
	action, ok := voiceActions[strings.ToLower(strings.Join(strings.Fields(phrase), " "))]
	return action, ok
}
