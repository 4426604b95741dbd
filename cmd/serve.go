package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/moodmusic/internal/repositories"
	"github.com/desertthunder/moodmusic/internal/server"
	"github.com/desertthunder/moodmusic/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve opens the database, applies pending migrations, and runs the API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if host := cmd.String("host"); host != "" {
		config.Server.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		config.Server.Port = port
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	applied, err := shared.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Debug("migrations applied", "count", applied)

	secret := config.Server.JWTSecret
	if secret == "" {
		if secret, err = shared.GenerateSecret(); err != nil {
			return err
		}
		r.logger.Warn("no jwt secret configured, sessions will not survive a restart")
	}

	auth, err := server.NewAuthenticator(secret, server.DefaultTokenTTL)
	if err != nil {
		return err
	}

	credentials := repositories.NewCredentialRepository(db)
	broker, discovery := r.discovery(config, credentials)

	api := server.NewAPI(server.APIConfig{
		Users:       repositories.NewUserRepository(db),
		Credentials: credentials,
		Emotions:    repositories.NewEmotionLogRepository(db),
		Likes:       repositories.NewLikedSongRepository(db),
		Playlists:   repositories.NewPlaylistRepository(db),
		History:     repositories.NewSongHistoryRepository(db),
		Controls:    repositories.NewControlRepository(db),
		Broker:      broker,
		Discovery:   discovery,
		Auth:        auth,
		FrontendURL: config.Server.FrontendURL,
		Logger:      r.logger,
	})

	limiter := server.NewRateLimiter(config.Server.RequestsPerSecond, config.Server.Burst)
	router := server.NewRouter(api, config.Server.AllowedOrigins, limiter)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, config.Server.Addr(), router, r.logger)
}
