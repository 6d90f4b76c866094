package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	DatabaseURL string // empty disables the gallery archive
	Dev         bool
}

// Load reads .env if present, then the environment. Missing values fall
// back to defaults; only the archive needs explicit opt-in.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr: ":8080",
	}
	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.Dev = os.Getenv("LOG_DEV") == "true"
	return cfg
}
