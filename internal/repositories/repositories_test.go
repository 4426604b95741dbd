package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) *models.User {
	t.Helper()

	user := models.NewUser(0, email, "Test User")
	user.SetPasswordHash("$2a$10$hash")
	if err := NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestUserRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user := createTestUser(t, db, "test@example.com")

		if user.ID() == "" {
			t.Error("user ID should be set after creation")
		}
		if user.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", user.Sequence())
		}
	})

	t.Run("Create rejects missing password hash", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user := models.NewUser(0, "test@example.com", "Test User")
		err := NewUserRepository(db).Create(user)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Create duplicate email", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		createTestUser(t, db, "test@example.com")

		dup := models.NewUser(0, "TEST@example.com", "Other")
		dup.SetPasswordHash("hash")
		err := NewUserRepository(db).Create(dup)
		if !errors.Is(err, shared.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("Get and GetByEmail", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := createTestUser(t, db, "test@example.com")

		retrieved, err := repo.Get(user.ID())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if retrieved.Email() != user.Email() {
			t.Errorf("expected email %s, got %s", user.Email(), retrieved.Email())
		}
		if retrieved.PasswordHash() != "$2a$10$hash" {
			t.Errorf("password hash not round-tripped: %q", retrieved.PasswordHash())
		}

		byEmail, err := repo.GetByEmail("  Test@Example.com ")
		if err != nil {
			t.Fatalf("failed to get user by email: %v", err)
		}
		if byEmail.ID() != user.ID() {
			t.Errorf("expected ID %s, got %s", user.ID(), byEmail.ID())
		}
	})

	t.Run("Get not found", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewUserRepository(db).Get("nonexistent-id")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := createTestUser(t, db, "test@example.com")

		user.SetName("Updated Name")
		if err := repo.Update(user); err != nil {
			t.Fatalf("failed to update user: %v", err)
		}

		retrieved, err := repo.Get(user.ID())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if retrieved.Name() != "Updated Name" {
			t.Errorf("expected name 'Updated Name', got %s", retrieved.Name())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := createTestUser(t, db, "test@example.com")

		if err := repo.Delete(user.ID()); err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}

		if _, err := repo.Get(user.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after soft delete, got %v", err)
		}

		if err := repo.Delete(user.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		createTestUser(t, db, "a@example.com")
		createTestUser(t, db, "b@example.com")

		users, err := NewUserRepository(db).List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("expected 2 users, got %d", len(users))
		}
		if users[0].Sequence() > users[1].Sequence() {
			t.Error("users should be ordered by sequence")
		}

		filtered, err := NewUserRepository(db).List(map[string]any{"email": "B@example.com"})
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(filtered) != 1 {
			t.Errorf("expected 1 filtered user, got %d", len(filtered))
		}
	})
}

func TestCredentialRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Load with nothing linked", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user := createTestUser(t, db, "test@example.com")
		cred, err := NewCredentialRepository(db).Load(ctx, user.ID(), models.ProviderSpotify)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cred != nil {
			t.Errorf("expected nil credential, got %+v", cred)
		}
	})

	t.Run("Save then Load", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		user := createTestUser(t, db, "test@example.com")

		cred := &models.Credential{
			AccessToken:    "access-1",
			RefreshToken:   "refresh-1",
			ProviderUserID: "spotify-user",
			DisplayName:    "Listener",
			ProviderEmail:  "listener@example.com",
		}
		if err := repo.Save(ctx, user.ID(), models.ProviderSpotify, cred); err != nil {
			t.Fatalf("failed to save credential: %v", err)
		}

		loaded, err := repo.Load(ctx, user.ID(), models.ProviderSpotify)
		if err != nil {
			t.Fatalf("failed to load credential: %v", err)
		}
		if loaded.AccessToken != "access-1" || loaded.RefreshToken != "refresh-1" {
			t.Errorf("unexpected tokens: %+v", loaded)
		}
		if loaded.DisplayName != "Listener" {
			t.Errorf("expected display name Listener, got %s", loaded.DisplayName)
		}
		if loaded.UpdatedAt.IsZero() {
			t.Error("updated at should be set")
		}
	})

	t.Run("Save overwrites existing pair", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		user := createTestUser(t, db, "test@example.com")

		first := &models.Credential{AccessToken: "old", RefreshToken: "refresh", ProviderUserID: "acct"}
		if err := repo.Save(ctx, user.ID(), models.ProviderSpotify, first); err != nil {
			t.Fatalf("failed to save credential: %v", err)
		}

		first.Rotate("new", "")
		if err := repo.Save(ctx, user.ID(), models.ProviderSpotify, first); err != nil {
			t.Fatalf("failed to save rotated credential: %v", err)
		}

		loaded, err := repo.Load(ctx, user.ID(), models.ProviderSpotify)
		if err != nil {
			t.Fatalf("failed to load credential: %v", err)
		}
		if loaded.AccessToken != "new" {
			t.Errorf("expected access token new, got %s", loaded.AccessToken)
		}
		if loaded.RefreshToken != "refresh" {
			t.Errorf("refresh token should be kept, got %s", loaded.RefreshToken)
		}
	})

	t.Run("Save rejects account linked to another user", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		alice := createTestUser(t, db, "alice@example.com")
		bob := createTestUser(t, db, "bob@example.com")

		if err := repo.Save(ctx, alice.ID(), models.ProviderSpotify, &models.Credential{AccessToken: "a", ProviderUserID: "shared"}); err != nil {
			t.Fatalf("failed to save credential: %v", err)
		}

		err := repo.Save(ctx, bob.ID(), models.ProviderSpotify, &models.Credential{AccessToken: "b", ProviderUserID: "shared"})
		if !errors.Is(err, shared.ErrAlreadyLinked) {
			t.Errorf("expected ErrAlreadyLinked, got %v", err)
		}
	})

	t.Run("Clear and ClearAll", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		user := createTestUser(t, db, "test@example.com")

		for _, p := range []models.Provider{models.ProviderSpotify, models.ProviderGoogle} {
			if err := repo.Save(ctx, user.ID(), p, &models.Credential{AccessToken: "tok-" + string(p)}); err != nil {
				t.Fatalf("failed to save %s credential: %v", p, err)
			}
		}

		creds, err := repo.ListByUser(ctx, user.ID())
		if err != nil {
			t.Fatalf("failed to list credentials: %v", err)
		}
		if len(creds) != 2 {
			t.Fatalf("expected 2 credentials, got %d", len(creds))
		}
		if creds[0].Provider != models.ProviderGoogle {
			t.Errorf("expected google first, got %s", creds[0].Provider)
		}

		if err := repo.Clear(ctx, user.ID(), models.ProviderSpotify); err != nil {
			t.Fatalf("failed to clear credential: %v", err)
		}
		if cred, _ := repo.Load(ctx, user.ID(), models.ProviderSpotify); cred != nil {
			t.Error("spotify credential should be cleared")
		}

		if err := repo.Clear(ctx, user.ID(), models.ProviderSpotify); err != nil {
			t.Errorf("clearing an unlinked provider should succeed: %v", err)
		}

		if err := repo.ClearAll(ctx, user.ID()); err != nil {
			t.Fatalf("failed to clear all credentials: %v", err)
		}
		creds, _ = repo.ListByUser(ctx, user.ID())
		if len(creds) != 0 {
			t.Errorf("expected no credentials, got %d", len(creds))
		}
	})
}

func TestEmotionLogRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Latest without entries", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user := createTestUser(t, db, "test@example.com")
		_, err := NewEmotionLogRepository(db).Latest(ctx, user.ID())
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Create and Latest", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewEmotionLogRepository(db)
		user := createTestUser(t, db, "test@example.com")

		for _, e := range []string{"happy", " Sad "} {
			if _, err := repo.Create(ctx, user.ID(), e); err != nil {
				t.Fatalf("failed to log emotion: %v", err)
			}
		}

		latest, err := repo.Latest(ctx, user.ID())
		if err != nil {
			t.Fatalf("failed to read latest emotion: %v", err)
		}
		if latest.Emotion != "sad" {
			t.Errorf("expected sad, got %s", latest.Emotion)
		}
	})

	t.Run("Create rejects blank emotion", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user := createTestUser(t, db, "test@example.com")
		if _, err := NewEmotionLogRepository(db).Create(ctx, user.ID(), "  "); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestLikedSongRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Like is idempotent", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewLikedSongRepository(db)
		user := createTestUser(t, db, "test@example.com")

		song := func() *models.LikedSong {
			return &models.LikedSong{UserID: user.ID(), ExternalID: "t1", Title: "Song", Artist: "Artist"}
		}

		created, err := repo.Like(ctx, song())
		if err != nil || !created {
			t.Fatalf("expected first like to create a row, got %v, %v", created, err)
		}

		created, err = repo.Like(ctx, song())
		if err != nil {
			t.Fatalf("unexpected error on duplicate like: %v", err)
		}
		if created {
			t.Error("duplicate like should not create a row")
		}

		songs, err := repo.List(ctx, user.ID())
		if err != nil {
			t.Fatalf("failed to list liked songs: %v", err)
		}
		if len(songs) != 1 {
			t.Fatalf("expected 1 liked song, got %d", len(songs))
		}
		if songs[0].Source != models.ProviderSpotify {
			t.Errorf("expected default source spotify, got %s", songs[0].Source)
		}
	})

	t.Run("Unlike", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewLikedSongRepository(db)
		user := createTestUser(t, db, "test@example.com")

		if _, err := repo.Like(ctx, &models.LikedSong{UserID: user.ID(), Source: models.ProviderJioSaavn, ExternalID: "js1", Title: "Song"}); err != nil {
			t.Fatalf("failed to like song: %v", err)
		}

		if err := repo.Unlike(ctx, user.ID(), models.ProviderJioSaavn, "js1"); err != nil {
			t.Fatalf("failed to unlike song: %v", err)
		}

		if err := repo.Unlike(ctx, user.ID(), models.ProviderJioSaavn, "js1"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List empty", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user := createTestUser(t, db, "test@example.com")
		songs, err := NewLikedSongRepository(db).List(ctx, user.ID())
		if err != nil {
			t.Fatalf("failed to list liked songs: %v", err)
		}
		if songs == nil || len(songs) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", songs)
		}
	})
}

func TestPlaylistRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create and List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		user := createTestUser(t, db, "test@example.com")
		other := createTestUser(t, db, "other@example.com")

		for _, name := range []string{"Morning", " Evening "} {
			if err := repo.Create(ctx, &models.Playlist{UserID: user.ID(), Name: name}); err != nil {
				t.Fatalf("failed to create playlist: %v", err)
			}
		}
		if err := repo.Create(ctx, &models.Playlist{UserID: other.ID(), Name: "Other"}); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		playlists, err := repo.List(ctx, user.ID())
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(playlists) != 2 || playlists[0].Name != "Morning" || playlists[1].Name != "Evening" {
			t.Errorf("unexpected playlists %+v", playlists)
		}
		if playlists[0].ID == "" {
			t.Error("playlist id should be set")
		}
	})

	t.Run("Create requires a name", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user := createTestUser(t, db, "test@example.com")
		err := NewPlaylistRepository(db).Create(ctx, &models.Playlist{UserID: user.ID(), Name: "  "})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSongHistoryRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Record keeps replays, newest first", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongHistoryRepository(db)
		user := createTestUser(t, db, "test@example.com")

		for _, id := range []string{"t1", "t2", "t1"} {
			if err := repo.Record(ctx, &models.PlayedSong{UserID: user.ID(), ExternalID: id, Title: "Song " + id}); err != nil {
				t.Fatalf("failed to record song: %v", err)
			}
		}

		songs, err := repo.List(ctx, user.ID(), 0)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(songs) != 3 || songs[0].ExternalID != "t1" || songs[1].ExternalID != "t2" {
			t.Errorf("unexpected history %+v", songs)
		}
		if songs[0].Source != models.ProviderSpotify {
			t.Errorf("expected default source spotify, got %s", songs[0].Source)
		}

		limited, err := repo.List(ctx, user.ID(), 2)
		if err != nil || len(limited) != 2 {
			t.Errorf("expected 2 entries, got %d, %v", len(limited), err)
		}
	})

	t.Run("Record requires id and title", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		err := NewSongHistoryRepository(db).Record(ctx, &models.PlayedSong{UserID: "u", Title: "Song"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestControlRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("MapGesture replaces earlier mappings", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewControlRepository(db)
		user := createTestUser(t, db, "test@example.com")

		for _, m := range []models.GestureMapping{
			{UserID: user.ID(), Gesture: "Swipe_Left", Action: "previous_song"},
			{UserID: user.ID(), Gesture: "fist", Action: "pause"},
			{UserID: user.ID(), Gesture: "swipe_left", Action: "next_song"},
		} {
			if err := repo.MapGesture(ctx, &m); err != nil {
				t.Fatalf("failed to map gesture: %v", err)
			}
		}

		mappings, err := repo.Gestures(ctx, user.ID())
		if err != nil {
			t.Fatalf("failed to list gestures: %v", err)
		}
		if len(mappings) != 2 || mappings[1].Gesture != "swipe_left" || mappings[1].Action != "next_song" {
			t.Errorf("unexpected mappings %+v", mappings)
		}

		if err := repo.MapGesture(ctx, &models.GestureMapping{UserID: user.ID(), Gesture: "wave"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("LogVoiceCommand", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewControlRepository(db)
		user := createTestUser(t, db, "test@example.com")

		cmd := &models.VoiceCommand{UserID: user.ID(), Command: "pause song", Action: "pause"}
		if err := repo.LogVoiceCommand(ctx, cmd); err != nil {
			t.Fatalf("failed to log voice command: %v", err)
		}
		if cmd.ID == "" {
			t.Error("voice command id should be set")
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM voice_commands WHERE user_id = ?", user.ID()).Scan(&count); err != nil || count != 1 {
			t.Errorf("expected 1 voice command row, got %d, %v", count, err)
		}

		if err := repo.LogVoiceCommand(ctx, &models.VoiceCommand{UserID: user.ID(), Command: "pause song"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
