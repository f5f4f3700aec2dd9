package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	GitHubToken string
	// APIToken is the bearer token clients must present to the HTTP API.
	APIToken  string
	SlackMode bool
	DebugMode bool
	LogFormat string
	CacheFile string
	CacheTTL  time.Duration
	NoCache   bool
	RedisURL  string

	ListenAddr     string
	PerPage        int
	MaxPages       int
	MaxConcurrency int
}

// FromEnvironment creates a Config from environment variables, reading a
// .env file in the working directory first if there is one. Variables
// already set in the environment win over the file.
func FromEnvironment() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("CACHE_FILE", "/tmp/starneighbours-cache.gob")
	v.SetDefault("CACHE_TTL", time.Minute)
	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("PER_PAGE", 100)
	v.SetDefault("MAX_PAGES", 5)
	v.SetDefault("MAX_CONCURRENCY", 0)

	apiToken := v.GetString("API_TOKEN")
	if apiToken == "" {
		apiToken = v.GetString("TOKEN")
	}

	return Config{
		GitHubToken:    v.GetString("GITHUB_TOKEN"),
		APIToken:       apiToken,
		SlackMode:      truthy(v.GetString("SLACK_MODE")),
		DebugMode:      truthy(v.GetString("DEBUG")),
		LogFormat:      v.GetString("LOG_FORMAT"),
		CacheFile:      v.GetString("CACHE_FILE"),
		CacheTTL:       v.GetDuration("CACHE_TTL"),
		RedisURL:       v.GetString("REDIS_URL"),
		ListenAddr:     v.GetString("LISTEN_ADDR"),
		PerPage:        v.GetInt("PER_PAGE"),
		MaxPages:       v.GetInt("MAX_PAGES"),
		MaxConcurrency: v.GetInt("MAX_CONCURRENCY"),
	}
}

func truthy(s string) bool {
	return s != "" && s != "0" && strings.ToLower(s) != "false"
}
