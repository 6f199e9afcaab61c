// Command notekeepd runs the NoteKeep auth server with in-memory storage.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	auth "github.com/notekeep/auth"
	oauthweb "github.com/notekeep/auth/oauth2"
	"github.com/notekeep/auth/stores/memory"
	"github.com/notekeep/auth/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := auth.LoadConfig()
	if err != nil {
		return err
	}

	var sender auth.EmailSender = &auth.ConsoleEmailSender{Logger: logger}
	if cfg.ResendAPIKey != "" {
		sender = &auth.ResendSender{APIKey: cfg.ResendAPIKey, From: cfg.SupportEmail}
	}

	sessions := auth.NewCookieSessionStore([]byte(cfg.SessionSecret), cfg.Production())
	authenticator := auth.NewAuthenticator(memory.NewUserStore(), sessions, sender, cfg.HostURL)
	authenticator.Logger = logger

	server := &web.Server{Auth: authenticator, Logger: logger}
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		server.Google = oauthweb.NewGoogleOAuth(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.HostURL+"/auth/google/callback",
			nil, // wired by Routes
		)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("listening", "addr", addr, "env", cfg.Environment)
	return http.ListenAndServe(addr, server.Routes())
}
