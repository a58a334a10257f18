package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults used when neither config.yaml nor the environment set a value.
const (
	DefaultPort              = 3001
	DefaultAllowedOrigin     = "http://localhost:3000"
	DefaultSteamAPIURL       = "https://api.steampowered.com"
	DefaultSteamStoreURL     = "https://store.steampowered.com"
	DefaultServerPageSize    = 20
	DefaultEnrichConcurrency = 4
	DefaultProxyURL          = "http://localhost:3001"
	DefaultBrowsePageSize    = 10
	DefaultAutoDelay         = 2 * time.Second
)

// Global configuration variables
var (
	// Port is the port the proxy listens on
	Port int
	// AllowedOrigins lists browser origins allowed to call the proxy
	AllowedOrigins []string
	// SteamAPIURL is the base URL of the Steam Web API
	SteamAPIURL string
	// SteamStoreURL is the base URL of the Steam store API
	SteamStoreURL string
	// ServerPageSize is the number of games per page in paged proxy responses
	ServerPageSize int
	// EnrichScores enables metacritic lookups for paged responses
	EnrichScores bool
	// EnrichConcurrency bounds parallel store lookups per request
	EnrichConcurrency int

	// ProxyURL is where the browser finds the proxy
	ProxyURL string
	// BrowsePageSize is the initial display window size
	BrowsePageSize int
	// AutoDelay is the pause between automatic page loads
	AutoDelay time.Duration
	// SteamID and APIKey pre-fill the browser
	SteamID string
	APIKey  string
)

// SetDefaults registers default values on viper.
func SetDefaults() {
	viper.SetDefault("server.port", DefaultPort)
	viper.SetDefault("server.allowed_origins", []string{DefaultAllowedOrigin})

	viper.SetDefault("steam.api_url", DefaultSteamAPIURL)
	viper.SetDefault("steam.store_url", DefaultSteamStoreURL)
	viper.SetDefault("steam.page_size", DefaultServerPageSize)
	viper.SetDefault("steam.enrich_scores", true)
	viper.SetDefault("steam.enrich_concurrency", DefaultEnrichConcurrency)

	viper.SetDefault("browse.proxy_url", DefaultProxyURL)
	viper.SetDefault("browse.page_size", DefaultBrowsePageSize)
	viper.SetDefault("browse.auto_delay", DefaultAutoDelay)
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()

	Port = viper.GetInt("server.port")
	AllowedOrigins = parseOrigins(viper.Get("server.allowed_origins"))

	SteamAPIURL = viper.GetString("steam.api_url")
	SteamStoreURL = viper.GetString("steam.store_url")
	ServerPageSize = positiveOr(viper.GetInt("steam.page_size"), DefaultServerPageSize)
	EnrichScores = viper.GetBool("steam.enrich_scores")
	EnrichConcurrency = positiveOr(viper.GetInt("steam.enrich_concurrency"), DefaultEnrichConcurrency)

	ProxyURL = viper.GetString("browse.proxy_url")
	BrowsePageSize = positiveOr(viper.GetInt("browse.page_size"), DefaultBrowsePageSize)
	AutoDelay = viper.GetDuration("browse.auto_delay")
	SteamID = viper.GetString("steam.steamid")
	APIKey = viper.GetString("steam.apikey")
}

// SetPort overrides the listening port
func SetPort(port int) {
	if port > 0 {
		Port = port
	}
}

// SetAllowedOrigins overrides the CORS allow-list
func SetAllowedOrigins(origins []string) {
	if cleaned := parseOrigins(origins); len(cleaned) > 0 {
		AllowedOrigins = cleaned
	}
}

// parseOrigins accepts the forms viper may hand back: a slice from
// config.yaml or a comma-separated string from ALLOWED_ORIGINS.
func parseOrigins(raw any) []string {
	var parts []string
	switch v := raw.(type) {
	case string:
		parts = strings.Split(v, ",")
	case []string:
		parts = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	}

	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSuffix(strings.TrimSpace(p), "/")
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
