package main

import (
	"context"
	"net/http"
	"os"

	"github.com/justmusik/jmk/internal/player"
	"github.com/justmusik/jmk/internal/repositories"
	"github.com/justmusik/jmk/internal/services"
	"github.com/justmusik/jmk/internal/session"
	"github.com/justmusik/jmk/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	db, err := repositories.Open(config.Database.Path, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	if err != nil {
		// Sessions and the song cache won't survive the process, but every
		// command still works.
		logger.Warn("failed to open local database, using in-memory store", "path", config.Database.Path, "err", err)
		db, err = repositories.Open(":memory:", 1, 1)
		if err != nil {
			logger.Fatalf("failed to open fallback database: %v", err)
		}
	}
	defer db.Close()

	client := services.NewClient(config.API.BaseURL, &http.Client{Timeout: config.API.Timeout()}, logger)
	client.SetRateLimit(config.API.RatePerSecond, config.API.RateBurst)

	store := session.NewStore(repositories.NewSessionRepository(db), services.NewAuthService(client), logger)
	client.SetTokenSource(store)
	client.OnUnauthorized(store.HandleUnauthorized)

	if err := store.Restore(); err != nil {
		logger.Warn("failed to restore session", "err", err)
	}

	songs := services.NewSongService(client)
	if config.Player.Backend != "" && config.Player.Backend != "null" {
		logger.Warn("unknown player backend, using null", "backend", config.Player.Backend)
	}
	ctrl := player.NewController(player.NewNullBackend(logger), songs, logger)
	defer ctrl.Close()

	runner := NewRunner(RunnerOpts{
		Config:    config,
		Client:    client,
		Session:   store,
		Songs:     songs,
		Favorites: services.NewFavoritesService(client),
		Cache:     repositories.NewSongCacheRepository(db),
		Player:    ctrl,
		Logger:    logger,
	})

	app := &cli.Command{
		Name:     "jmk",
		Usage:    "Browse, play, and manage the JustMusik catalog from the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
