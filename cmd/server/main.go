package main

import (
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/hemanthk92/regdesk/internal/auth"
	"github.com/hemanthk92/regdesk/internal/config"
	"github.com/hemanthk92/regdesk/internal/draft"
	"github.com/hemanthk92/regdesk/internal/httpapi"
	"github.com/hemanthk92/regdesk/internal/storage/sqlite"
	"github.com/hemanthk92/regdesk/internal/upstream"
	"github.com/hemanthk92/regdesk/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	api := upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)
	sessions := draft.NewManager(store)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	admin := auth.NewAdminAuthenticator(cfg.AdminEmail, cfg.AdminPasswordHash)

	handler := httpapi.NewHandler(sessions, api, jwtManager, admin)
	router := httpapi.SetupRoutes(handler, jwtManager)

	// h2c allows HTTP/2 clients without TLS termination in front.
	h2cHandler := h2c.NewHandler(router, &http2.Server{})

	slog.Info("regdesk server starting", "address", cfg.Addr, "upstream", cfg.UpstreamBaseURL)
	if err := http.ListenAndServe(cfg.Addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
