package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the bot reads from the environment.
type Config struct {
	// Bot access token.
	Token string `envconfig:"BOT_TOKEN" required:"true"`
	// Test guild ID. If empty, slash commands are registered globally.
	GuildID string `envconfig:"GUILD_ID"`
	// SQLite database file path.
	DBPath string `envconfig:"DB_PATH" default:"marzipan.db"`
	// How often the announcement sweep runs. The due window is half this
	// on either side of the tick, so no birthday slips between ticks.
	CheckInterval time.Duration `envconfig:"CHECK_INTERVAL" default:"1h"`
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
