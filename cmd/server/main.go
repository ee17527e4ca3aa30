package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/maxhemmerich/dominion/internal/ai"
	"github.com/maxhemmerich/dominion/internal/config"
	"github.com/maxhemmerich/dominion/internal/game"
	"github.com/maxhemmerich/dominion/internal/game/mapgen"
	"github.com/maxhemmerich/dominion/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", -1, "The server port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}

	cfg := config.Get()
	if *port == -1 {
		*port = cfg.Server.Port
	}
	if *host == "" {
		*host = cfg.Server.Host
	}
	if *logLevel == "" {
		*logLevel = cfg.Server.LogLevel
	}

	setupLogging(*logLevel, cfg.Server.LogFormat)

	config.WatchConfig(func() {
		log.Info().Msg("Configuration reloaded")
	})

	settings := matchSettings(cfg)
	registry := server.NewRegistry(
		cfg.Server.MaxMatches,
		time.Duration(cfg.Server.IdleTimeoutMinutes)*time.Minute,
		log.Logger,
	)
	srv := server.New(registry, settings, log.Logger)

	addr := fmt.Sprintf("%s:%d", *host, *port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	go func() {
		log.Info().
			Str("addr", addr).
			Int("max_matches", cfg.Server.MaxMatches).
			Msg("Starting game server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func matchSettings(cfg *config.Config) server.MatchSettings {
	mapCfg := mapgen.Config{
		TerritoryCount:    cfg.Game.Map.TerritoryCount,
		Width:             cfg.Game.Map.Width,
		Height:            cfg.Game.Map.Height,
		CellSize:          cfg.Game.Map.CellSize,
		MinDistanceFactor: cfg.Game.Map.MinDistanceFactor,
		AdjacencyFactor:   cfg.Game.Map.AdjacencyFactor,
		MaxSeedAttempts:   cfg.Game.Map.MaxSeedAttempts,
		HullThreshold:     cfg.Game.Map.HullThreshold,
	}
	return server.MatchSettings{
		Engine: game.Options{
			TurnTimeLimit:       cfg.Game.Rules.TurnTimeLimit(),
			MapWidth:            cfg.Game.Map.Width,
			MapHeight:           cfg.Game.Map.Height,
			TerritoryCount:      cfg.Game.Map.TerritoryCount,
			TroopGenerationRate: cfg.Game.Rules.TroopGenerationRate,
			Map:                 &mapCfg,
		},
		DefaultDifficulty: ai.ParseDifficulty(cfg.Game.AI.DefaultDifficulty),
		AITurnDelay:       time.Duration(cfg.Game.AI.TurnDelayMs) * time.Millisecond,
		MaxAIAttacks:      cfg.Game.AI.MaxAttacksPerTurn,
	}
}

func setupLogging(level, format string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
