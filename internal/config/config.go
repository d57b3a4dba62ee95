package config

import (
	"errors"
	"os"
	"time"
)

type Config struct {
	Port   string
	DBPath string

	JWTSecret string
	TokenTTL  time.Duration

	// UseStubAI selects the canned responder instead of the live model.
	UseStubAI bool
	AIBaseURL string
	AIModel   string
	AIAPIKey  string
	AITimeout time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load reads all env vars and builds the config.
func Load() (*Config, error) {
	cfg := &Config{
		Port:   getEnv("CHATBOT_PORT", "8100"),
		DBPath: getEnv("CHATBOT_DB_PATH", "chatbot.db"),

		JWTSecret: os.Getenv("CHATBOT_JWT_SECRET"),
		TokenTTL:  getDurationEnv("CHATBOT_TOKEN_TTL", 24*time.Hour),

		UseStubAI: getBoolEnv("CHATBOT_AI_STUB", false),
		AIBaseURL: getEnv("CHATBOT_AI_BASE_URL", "https://api.openai.com/v1"),
		AIModel:   getEnv("CHATBOT_AI_MODEL", "gpt-4o-mini"),
		AIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		AITimeout: getDurationEnv("CHATBOT_AI_TIMEOUT", 30*time.Second),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("CHATBOT_JWT_SECRET must be set")
	}
	if !cfg.UseStubAI && cfg.AIAPIKey == "" {
		return nil, errors.New("OPENAI_API_KEY must be set unless CHATBOT_AI_STUB is enabled")
	}

	return cfg, nil
}
