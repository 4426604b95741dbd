package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/shared"
)

// PlaylistRepository stores user-created playlists.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new [PlaylistRepository] with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a playlist for its user. A name is required.
func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	playlist.Name = strings.TrimSpace(playlist.Name)
	if playlist.Name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}

	playlist.ID = shared.GenerateID()
	playlist.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO playlists (id, user_id, name, description, created_at) VALUES (?, ?, ?, ?, ?)",
		playlist.ID, playlist.UserID, playlist.Name, playlist.Description, playlist.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}
	return nil
}

// List returns the user's playlists in creation order.
func (r *PlaylistRepository) List(ctx context.Context, userID string) ([]*models.Playlist, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, created_at
		FROM playlists
		WHERE user_id = ?
		ORDER BY created_at, rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	playlists := []*models.Playlist{}
	for rows.Next() {
		var p models.Playlist
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return playlists, nil
}

// SongHistoryRepository stores the songs a user has played. Replays are kept as separate entries.
type SongHistoryRepository struct {
	db *sql.DB
}

// NewSongHistoryRepository creates a new [SongHistoryRepository] with the given database connection
func NewSongHistoryRepository(db *sql.DB) *SongHistoryRepository {
	return &SongHistoryRepository{db: db}
}

// Record appends a played song to the user's history.
func (r *SongHistoryRepository) Record(ctx context.Context, song *models.PlayedSong) error {
	if song.ExternalID == "" || song.Title == "" {
		return fmt.Errorf("%w: song id and title are required", shared.ErrInvalidInput)
	}
	if song.Source == "" {
		song.Source = models.ProviderSpotify
	}

	song.ID = shared.GenerateID()
	song.PlayedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO song_history (id, user_id, source, external_id, title, artist, album, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, song.ID, song.UserID, string(song.Source), song.ExternalID, song.Title, song.Artist, song.Album, song.PlayedAt)
	if err != nil {
		return fmt.Errorf("failed to insert song history: %w", err)
	}
	return nil
}

// List returns the user's history, most recent first. A positive limit caps the result.
func (r *SongHistoryRepository) List(ctx context.Context, userID string, limit int) ([]*models.PlayedSong, error) {
	query := `
		SELECT id, user_id, source, external_id, title, artist, album, played_at
		FROM song_history
		WHERE user_id = ?
		ORDER BY played_at DESC, rowid DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query song history: %w", err)
	}
	defer rows.Close()

	songs := []*models.PlayedSong{}
	for rows.Next() {
		var (
			song   models.PlayedSong
			source string
		)
		if err := rows.Scan(&song.ID, &song.UserID, &source, &song.ExternalID, &song.Title, &song.Artist, &song.Album, &song.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan song history: %w", err)
		}
		song.Source = models.Provider(source)
		songs = append(songs, &song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return songs, nil
}

// ControlRepository stores gesture mappings and recognized voice commands.
type ControlRepository struct {
	db *sql.DB
}

// NewControlRepository creates a new [ControlRepository] with the given database connection
func NewControlRepository(db *sql.DB) *ControlRepository {
	return &ControlRepository{db: db}
}

// MapGesture binds gesture to action for the user, replacing an earlier mapping of the same gesture.
func (r *ControlRepository) MapGesture(ctx context.Context, mapping *models.GestureMapping) error {
	mapping.Gesture = strings.ToLower(strings.TrimSpace(mapping.Gesture))
	mapping.Action = strings.TrimSpace(mapping.Action)
	if mapping.Gesture == "" || mapping.Action == "" {
		return fmt.Errorf("%w: gesture and action are required", shared.ErrInvalidInput)
	}
	mapping.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO gesture_mappings (user_id, gesture, action, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, gesture) DO UPDATE SET
			action = excluded.action,
			updated_at = excluded.updated_at
	`, mapping.UserID, mapping.Gesture, mapping.Action, mapping.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save gesture mapping: %w", err)
	}
	return nil
}

// Gestures returns the user's gesture mappings ordered by gesture name.
func (r *ControlRepository) Gestures(ctx context.Context, userID string) ([]*models.GestureMapping, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id, gesture, action, updated_at FROM gesture_mappings WHERE user_id = ? ORDER BY gesture",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query gesture mappings: %w", err)
	}
	defer rows.Close()

	mappings := []*models.GestureMapping{}
	for rows.Next() {
		var m models.GestureMapping
		if err := rows.Scan(&m.UserID, &m.Gesture, &m.Action, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan gesture mapping: %w", err)
		}
		mappings = append(mappings, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return mappings, nil
}

// LogVoiceCommand records a recognized voice command.
func (r *ControlRepository) LogVoiceCommand(ctx context.Context, cmd *models.VoiceCommand) error {
	if cmd.Command == "" || cmd.Action == "" {
		return fmt.Errorf("%w: command and action are required", shared.ErrInvalidInput)
	}

	cmd.ID = shared.GenerateID()
	cmd.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO voice_commands (id, user_id, command, action, created_at) VALUES (?, ?, ?, ?, ?)",
		cmd.ID, cmd.UserID, cmd.Command, cmd.Action, cmd.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert voice command: %w", err)
	}
	return nil
}
