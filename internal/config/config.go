package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all runtime settings, populated from the environment.
type Config struct {
	DiscordToken          string   `env:"DISCORD_TOKEN,required"`
	OwnerID               string   `env:"OWNER_ID"`
	StoragePath           string   `env:"STORAGE_PATH" envDefault:"data/tunekeeper.json"`
	LogLevel              string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFile               string   `env:"LOG_FILE"`
	InitSlashCommands     bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	DiscordGuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
}

// New loads .env (if present) and parses the environment into a Config.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, falling back to system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
