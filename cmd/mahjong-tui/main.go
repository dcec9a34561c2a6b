package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/kaze-games/mahjong-tui/internal/api"
	"github.com/kaze-games/mahjong-tui/internal/config"
	"github.com/kaze-games/mahjong-tui/internal/session"
	"github.com/kaze-games/mahjong-tui/internal/store"
	"github.com/kaze-games/mahjong-tui/internal/ui"
	"github.com/kaze-games/mahjong-tui/internal/ws"
)

func setupLogging(dir string) (*os.File, zerolog.Logger, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, zerolog.Nop(), err
	}
	// The terminal belongs to the TUI, so diagnostics go to a file.
	logFile, err := os.OpenFile(filepath.Join(dir, "client.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := zerolog.New(logFile).With().Timestamp().Logger()
	return logFile, logger, nil
}

func main() {
	cfg := config.Load()

	logFile, logger, err := setupLogging(cfg.ConfigDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	sess := session.NewStore(cfg.ConfigDir)
	if sess.TokenExpired(time.Now()) {
		_ = sess.ClearToken()
		logger.Info().Msg("stored token expired, cleared")
	}

	publisher := &ui.Publisher{}

	client := api.NewClient(api.Options{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  cfg.RequestTimeout,
		Tokens:   sess,
		Notifier: publisher,
		Logger:   logger,
		Retry: api.RetryConfig{
			MaxAttempts:  cfg.RetryAttempts,
			InitialDelay: cfg.RetryDelay,
			MaxDelay:     cfg.RetryMaxDelay,
			MaxElapsed:   cfg.RetryMaxElapsed,
		},
	})

	registry := ws.NewRegistry(cfg.WSBaseURL, logger)
	defer registry.DisconnectAll()

	roomStore := store.NewRoomStore(client, sess)
	chatStore := store.NewChatStore(client, registry, sess)
	gameStore := store.NewGameStore(client)

	app := ui.New(ui.Deps{
		Rooms:     roomStore,
		Chat:      chatStore,
		Game:      gameStore,
		Session:   sess,
		Registry:  registry,
		Publisher: publisher,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	publisher.Attach(p)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
