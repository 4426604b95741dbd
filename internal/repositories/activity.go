package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/shared"
)

// EmotionLogRepository stores the emotions a user reports.
type EmotionLogRepository struct {
	db *sql.DB
}

// NewEmotionLogRepository creates a new [EmotionLogRepository] with the given database connection
func NewEmotionLogRepository(db *sql.DB) *EmotionLogRepository {
	return &EmotionLogRepository{db: db}
}

// Create records an emotion for the user. The emotion is stored lowercased.
func (r *EmotionLogRepository) Create(ctx context.Context, userID, emotion string) (*models.EmotionLog, error) {
	emotion = strings.ToLower(strings.TrimSpace(emotion))
	if emotion == "" {
		return nil, fmt.Errorf("%w: emotion is required", shared.ErrInvalidInput)
	}

	entry := &models.EmotionLog{
		ID:        shared.GenerateID(),
		UserID:    userID,
		Emotion:   emotion,
		CreatedAt: time.Now(),
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO emotion_logs (id, user_id, emotion, created_at) VALUES (?, ?, ?, ?)",
		entry.ID, entry.UserID, entry.Emotion, entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert emotion log: %w", err)
	}
	return entry, nil
}

// Latest returns the most recent emotion for the user or [shared.ErrNotFound].
func (r *EmotionLogRepository) Latest(ctx context.Context, userID string) (*models.EmotionLog, error) {
	var entry models.EmotionLog
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, emotion, created_at FROM emotion_logs
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, userID).Scan(&entry.ID, &entry.UserID, &entry.Emotion, &entry.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no emotion recorded", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query emotion log: %w", err)
	}
	return &entry, nil
}

// LikedSongRepository stores songs users have liked.
//
// Likes are deduplicated on (user, source, external id); liking twice is a no-op.
type LikedSongRepository struct {
	db *sql.DB
}

// NewLikedSongRepository creates a new [LikedSongRepository] with the given database connection
func NewLikedSongRepository(db *sql.DB) *LikedSongRepository {
	return &LikedSongRepository{db: db}
}

// Like stores the song for the user. It reports whether a new row was created.
func (r *LikedSongRepository) Like(ctx context.Context, song *models.LikedSong) (bool, error) {
	if song.ExternalID == "" || song.Title == "" {
		return false, fmt.Errorf("%w: song id and title are required", shared.ErrInvalidInput)
	}
	if song.Source == "" {
		song.Source = models.ProviderSpotify
	}

	song.ID = shared.GenerateID()
	song.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO liked_songs (id, user_id, source, external_id, title, artist, album, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, song.ID, song.UserID, string(song.Source), song.ExternalID, song.Title, song.Artist, song.Album, song.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert liked song: %w", err)
	}
	return true, nil
}

// Unlike removes a liked song. Returns [shared.ErrNotFound] when the song was not liked.
func (r *LikedSongRepository) Unlike(ctx context.Context, userID string, source models.Provider, externalID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM liked_songs WHERE user_id = ? AND source = ? AND external_id = ?",
		userID, string(source), externalID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete liked song: %w", err)
	}
	return expectRow(result, "liked song", externalID)
}

// List returns the user's liked songs, newest first.
func (r *LikedSongRepository) List(ctx context.Context, userID string) ([]*models.LikedSong, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, source, external_id, title, artist, album, created_at
		FROM liked_songs
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query liked songs: %w", err)
	}
	defer rows.Close()

	songs := []*models.LikedSong{}
	for rows.Next() {
		var (
			song   models.LikedSong
			source string
		)
		if err := rows.Scan(&song.ID, &song.UserID, &source, &song.ExternalID, &song.Title, &song.Artist, &song.Album, &song.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan liked song: %w", err)
		}
		song.Source = models.Provider(source)
		songs = append(songs, &song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return songs, nil
}
