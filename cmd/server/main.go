// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jason-s-yu/kutschfahrt/internal/auth"
	"github.com/jason-s-yu/kutschfahrt/internal/cache"
	"github.com/jason-s-yu/kutschfahrt/internal/database"
	"github.com/jason-s-yu/kutschfahrt/internal/game"
	"github.com/jason-s-yu/kutschfahrt/internal/handlers"
	"github.com/jason-s-yu/kutschfahrt/internal/middleware"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}

	if err := auth.Init(); err != nil {
		logger.Fatalf("auth init: %v", err)
	}

	// Persistence is optional; tables keep working in memory without it.
	if err := database.ConnectDB(context.Background()); err != nil {
		logger.Warnf("database disabled: %v", err)
	}
	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("redis disabled: %v", err)
		cache.Rdb = nil
	}

	srv := handlers.NewGameServer(logger)

	if path := os.Getenv("SEED_FILE"); path != "" {
		seed, err := game.LoadSeedFile(path)
		if err != nil {
			logger.Fatalf("load seed %s: %v", path, err)
		}
		_, created, err := srv.CreateGame(seed)
		if err != nil {
			logger.Fatalf("seed %s: %v", path, err)
		}
		for player, token := range created.Tokens {
			logger.WithFields(logrus.Fields{"game_id": created.GameID, "player": player}).Infof("seat token: %s", token)
		}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: func() []string {
			// allow only origins specified in dotenv file if we are in production mode
			if os.Getenv("KUTSCHFAHRT_ENV") == "production" {
				return strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",")
			}
			return []string{"https://*", "http://*"}
		}(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(middleware.LogMiddleware(logger))

	r.Post("/game/create", handlers.CreateGameHandler(srv))
	r.Get("/game/list", handlers.ListGamesHandler(srv))
	r.Get("/game/perspective/{game_id}", handlers.PerspectiveHandler(srv))
	r.Post("/game/action/{game_id}", handlers.ActionHandler(srv))
	r.Get("/game/ws/{game_id}", handlers.GameWSHandler(logger, srv))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}
