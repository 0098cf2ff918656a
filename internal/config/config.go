package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/lojasmm/shopchat/internal/styling"
)

type Config struct {
	Port     string
	DataDir  string
	LogLevel logrus.Level

	RedisURL           string
	RedisChannelPrefix string

	MessagingURL   string
	MessagingToken string

	AllowedOrigins []string

	Button styling.ButtonProps
}

func Load() (*Config, error) {
	// .env is optional — env vars may already be set (e.g. in production)
	_ = godotenv.Load()

	cfg := &Config{
		Port:               os.Getenv("PORT"),
		DataDir:            os.Getenv("DATA_DIR"),
		RedisURL:           os.Getenv("REDIS_URL"),
		RedisChannelPrefix: os.Getenv("REDIS_CHANNEL_PREFIX"),
		MessagingURL:       os.Getenv("MESSAGING_URL"),
		MessagingToken:     os.Getenv("MESSAGING_TOKEN"),
		AllowedOrigins:     splitList(os.Getenv("ALLOWED_ORIGINS")),
		Button: styling.ButtonProps{
			Variant:   os.Getenv("BUTTON_VARIANT"),
			Size:      os.Getenv("BUTTON_SIZE"),
			Width:     os.Getenv("BUTTON_WIDTH"),
			Alignment: os.Getenv("BUTTON_ALIGNMENT"),
		},
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}

	if cfg.RedisChannelPrefix == "" {
		cfg.RedisChannelPrefix = "outbound:"
	}

	if cfg.Button.Variant == "" {
		cfg.Button.Variant = "primary"
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = lvl

	if cfg.RedisURL != "" && cfg.MessagingURL != "" {
		return nil, fmt.Errorf("REDIS_URL and MESSAGING_URL are mutually exclusive")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
