// Package config loads the process-wide configuration from environment
// variables once at startup. The resulting Config is read-only after Load.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the server needs to run.
type Config struct {
	// Server
	Port int

	// Database
	DBPath string

	// Audio storage
	AudioDir string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Yandex OAuth
	YandexClientID     string
	YandexClientSecret string
	YandexRedirectURL  string

	// GrantSuperuserOnSignup makes every newly created account a
	// superuser, like the system this one replaced did unconditionally.
	// Off by default.
	GrantSuperuserOnSignup bool
}

// Load reads the configuration from environment variables.
// Missing required variables are reported together in one error.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     8080,
		DBPath:   "data/audio-repo.db",
		AudioDir: "data/audio",
		TokenTTL: 15 * time.Minute,
	}

	var missing []string

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	cfg.YandexClientID = os.Getenv("YANDEX_CLIENT_ID")
	if cfg.YandexClientID == "" {
		missing = append(missing, "YANDEX_CLIENT_ID")
	}

	cfg.YandexClientSecret = os.Getenv("YANDEX_CLIENT_SECRET")
	if cfg.YandexClientSecret == "" {
		missing = append(missing, "YANDEX_CLIENT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("config: missing required environment variables: %s",
			strings.Join(missing, ", "))
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	if v := os.Getenv("AUDIO_DIR"); v != "" {
		cfg.AudioDir = v
	}

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid TOKEN_TTL %q: %w", v, err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("config: TOKEN_TTL must be positive, got %q", v)
		}
		cfg.TokenTTL = ttl
	}

	cfg.YandexRedirectURL = os.Getenv("YANDEX_REDIRECT_URL")
	if cfg.YandexRedirectURL == "" {
		cfg.YandexRedirectURL = fmt.Sprintf("http://localhost:%d/auth/yandex/callback", cfg.Port)
	}

	if v := os.Getenv("GRANT_SUPERUSER_ON_SIGNUP"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid GRANT_SUPERUSER_ON_SIGNUP %q: %w", v, err)
		}
		cfg.GrantSuperuserOnSignup = b
	}

	return cfg, nil
}
