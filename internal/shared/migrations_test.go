package shared

import (
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) != 4 {
			t.Fatalf("expected 4 migrations, got %d", len(migrations))
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		if migrations[1].Name != "create_credentials" {
			t.Errorf("expected migration 1 to be create_credentials, got %s", migrations[1].Name)
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		applied, err := RunMigrations(db)
		if err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		if applied != 4 {
			t.Errorf("expected 4 migrations applied, got %d", applied)
		}

		for _, table := range []string{"users", "credentials", "emotion_logs", "liked_songs", "playlists", "song_history", "gesture_mappings", "voice_commands"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		version, err := RollbackMigration(db)
		if err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}
		if version != 3 {
			t.Errorf("expected version 3 rolled back, got %d", version)
		}
		if _, err := db.Exec("SELECT 1 FROM playlists LIMIT 1"); err == nil {
			t.Error("playlists should be dropped after rollback")
		}

		version, err = RollbackMigration(db)
		if err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}
		if version != 2 {
			t.Errorf("expected version 2 rolled back, got %d", version)
		}

		if _, err := db.Exec("SELECT 1 FROM liked_songs LIMIT 1"); err == nil {
			t.Error("liked_songs should be dropped after rollback")
		}

		current, err := CurrentVersion(db)
		if err != nil {
			t.Fatalf("failed to read current version: %v", err)
		}
		if current != 1 {
			t.Errorf("expected current version 1, got %d", current)
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if _, err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		applied, err := RunMigrations(db)
		if err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}
		if applied != 0 {
			t.Errorf("expected no migrations on second run, got %d", applied)
		}
	})

	t.Run("Rollback with nothing applied", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := createMigrationsTable(db); err != nil {
			t.Fatalf("failed to create migrations table: %v", err)
		}

		if _, err := RollbackMigration(db); err == nil {
			t.Error("expected error when rolling back an empty database")
		}
	})

	t.Run("comments may contain semicolons", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := createMigrationsTable(db); err != nil {
			t.Fatalf("failed to create migrations table: %v", err)
		}

		script := "-- notes; more notes\nCREATE TABLE notes (id INT); -- trailing; comment\nCREATE TABLE tags (id INT);"
		if err := migrate(db, script, "INSERT INTO schema_migrations (version) VALUES (?)", 99); err != nil {
			t.Fatalf("migrate failed: %v", err)
		}
		for _, table := range []string{"notes", "tags"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist: %v", table, err)
			}
		}
	})

	t.Run("removeComments", func(t *testing.T) {
		got := removeComments("-- heading\nCREATE TABLE x (id INT); -- trailing\n\n")
		if got != "CREATE TABLE x (id INT);" {
			t.Errorf("unexpected result %q", got)
		}
	})
}
