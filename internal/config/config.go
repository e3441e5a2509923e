package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Upstream LLM service
	LLMBaseURL        string
	ServiceToken      string
	ServiceTokenParam string

	// Redis (optional, shared rate-limit counters)
	RedisURL string

	// Chat rate limit
	ChatRateLimit  int
	ChatRateWindow time.Duration

	// Frontend
	FrontendURL string
}

// ParamGetter resolves a named secret, e.g. from SSM Parameter Store.
type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Load reads the process environment once. Call Validate before serving.
func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		Env:               getEnvOrDefault("ENV", "development"),
		LLMBaseURL:        strings.TrimSpace(os.Getenv("LLM_API_BASE_URL")),
		ServiceToken:      strings.TrimSpace(os.Getenv("LLM_SERVICE_TOKEN")),
		ServiceTokenParam: strings.TrimSpace(os.Getenv("LLM_SERVICE_TOKEN_PARAM")),
		RedisURL:          getEnvOrDefault("REDIS_URL", ""),
		ChatRateLimit:     getEnvAsIntOrDefault("CHAT_RATE_LIMIT", 30),
		ChatRateWindow:    getEnvAsDurationOrDefault("CHAT_RATE_WINDOW", time.Minute),
		FrontendURL:       getEnvOrDefault("FRONTEND_URL", "*"),
	}
}

// Validate reports the first missing upstream setting. A token parameter name
// counts as configured because the token is resolved at startup.
func (c *Config) Validate() error {
	if c.LLMBaseURL == "" {
		return errors.New("LLM_API_BASE_URL missing")
	}
	if c.ServiceToken == "" && c.ServiceTokenParam == "" {
		return errors.New("LLM_SERVICE_TOKEN missing")
	}
	if c.ChatRateLimit < 0 {
		return fmt.Errorf("CHAT_RATE_LIMIT must not be negative, got %d", c.ChatRateLimit)
	}
	return nil
}

// ResolveServiceToken fills ServiceToken from the parameter store when only
// LLM_SERVICE_TOKEN_PARAM is set. An explicit token always wins.
func (c *Config) ResolveServiceToken(ctx context.Context, getter ParamGetter) error {
	if c.ServiceToken != "" || c.ServiceTokenParam == "" {
		return nil
	}
	if getter == nil {
		return errors.New("config: parameter getter is required to resolve LLM_SERVICE_TOKEN_PARAM")
	}

	token, err := getter.GetParameter(ctx, c.ServiceTokenParam)
	if err != nil {
		return fmt.Errorf("config: resolve service token: %w", err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("config: parameter %q holds an empty token", c.ServiceTokenParam)
	}
	c.ServiceToken = token
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
