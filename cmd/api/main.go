package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr/internal"
	"github.com/scythe504/skribblr/internal/config"
	"github.com/scythe504/skribblr/internal/database"
	"github.com/scythe504/skribblr/internal/game"
	"github.com/scythe504/skribblr/internal/logger"
	"github.com/scythe504/skribblr/internal/server"
	"github.com/scythe504/skribblr/internal/utils"
	"github.com/scythe504/skribblr/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *database.Service
	if cfg.DatabaseURL != "" {
		db, err = database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
	}

	words, err := loadWords(ctx, cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load words")
	}
	bank, err := utils.NewWordBank(words)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build word bank")
	}
	log.Info().Int("words", bank.Len()).Msg("word bank ready")

	hub := websocket.NewHub(websocket.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		MessageRate:    cfg.MessageRate,
		MessageBurst:   cfg.MessageBurst,
	})

	opts := game.Options{
		Defaults: internal.Settings{
			Rounds:        cfg.DefaultRounds,
			RoundDuration: cfg.DefaultRoundTime,
		},
		WordChoiceTimeout: cfg.WordChoiceTimeout,
	}
	var results server.ResultStore
	if db != nil {
		opts.Results = db
		results = db
	}
	engine := game.NewEngine(game.NewRegistry(), hub, bank, opts)
	hub.SetHandler(engine)

	srv := server.New(engine, hub, results, cfg.AllowedOrigins).HTTPServer(cfg.Addr())

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	hub.Close()
	engine.Wait()
	log.Info().Msg("server stopped")
}

// loadWords prefers the database list, seeding it from the words file the
// first time.
func loadWords(ctx context.Context, cfg config.Config, db *database.Service) ([]string, error) {
	if db == nil {
		return utils.LoadWordsFile(cfg.WordsFile)
	}

	words, err := db.Words(ctx)
	if err != nil {
		return nil, err
	}
	if len(words) > 0 {
		return words, nil
	}

	fromFile, err := utils.LoadWordsFile(cfg.WordsFile)
	if err != nil {
		return nil, err
	}
	if _, err := db.SeedWords(ctx, fromFile); err != nil {
		return nil, err
	}
	return db.Words(ctx)
}
