package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Load pulls a .env file into the environment if one exists. Missing files
// are fine; deployments set real env vars.
func Load() {
	_ = godotenv.Load()
}

func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvList splits a comma-separated env var, trimming blanks.
func EnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
