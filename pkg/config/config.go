package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the whole process configuration, loaded from the environment
// with an optional .env file for local development.
type Config struct {
	Port          string        `envconfig:"PORT" default:"3006"`
	DatabaseURL   string        `envconfig:"DATABASE_URL"`
	RedisURL      string        `envconfig:"REDIS_URL" default:"redis://localhost:6379"`
	YouTubeAPIKey string        `envconfig:"YOUTUBE_API_KEY"`
	HistorySize   int           `envconfig:"HISTORY_SIZE" default:"100"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	AllowOrigins  string        `envconfig:"ALLOW_ORIGINS" default:"*"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
