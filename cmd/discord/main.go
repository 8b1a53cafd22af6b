package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"tunekeeper/internal/config"
	"tunekeeper/internal/discord"
	"tunekeeper/internal/storage"
	"tunekeeper/internal/version"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg)
	logger.Info().Str("version", version.AppVersion).Msgf("starting %s", version.AppName)

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("failed to open storage")
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- discord.StartBot(ctx, cfg, store, logger)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("bot exited with error")
		}
		cancel()
	}

	logger.Info().Msg("bot exited cleanly")
}

// newLogger builds the process logger: human-readable console output, plus
// a rotated file when LOG_FILE is configured.
func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	writers := []io.Writer{console}
	if cfg.LogFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	log.Logger = logger
	return logger
}
