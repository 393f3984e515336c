// Package config loads application configuration from environment variables.
package config

import (
	"os"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr          string
	DBPath              string
	TwitterClientID     string
	TwitterClientSecret string
	AnthropicAPIKey     string
	OpenAIAPIKey        string
}

// HasTwitterCredentials returns true when the OAuth client pair needed for
// token refresh is configured. Without it publishing still works until the
// user's access token expires.
func (c *Config) HasTwitterCredentials() bool {
	return c.TwitterClientID != "" && c.TwitterClientSecret != ""
}

// HasTextModelKey returns true when at least one text model API key is
// configured. Without one the pipeline runs entirely on fallback drafts.
func (c *Config) HasTextModelKey() bool {
	return c.AnthropicAPIKey != "" || c.OpenAIAPIKey != ""
}

// Load reads configuration from environment variables and returns a Config.
// Twitter credentials (COMMITCAST_TWITTER_CLIENT_ID, COMMITCAST_TWITTER_CLIENT_SECRET)
// and model keys (ANTHROPIC_API_KEY, OPENAI_API_KEY) are optional; the app
// starts without them and degrades the affected features.
// Optional variables with defaults: COMMITCAST_LISTEN_ADDR (127.0.0.1:8080),
// COMMITCAST_DB_PATH (commitcast.db).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("COMMITCAST_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "commitcast.db"
	if v, ok := os.LookupEnv("COMMITCAST_DB_PATH"); ok {
		dbPath = v
	}

	return &Config{
		ListenAddr:          listenAddr,
		DBPath:              dbPath,
		TwitterClientID:     os.Getenv("COMMITCAST_TWITTER_CLIENT_ID"),
		TwitterClientSecret: os.Getenv("COMMITCAST_TWITTER_CLIENT_SECRET"),
		AnthropicAPIKey:     os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
	}, nil
}
