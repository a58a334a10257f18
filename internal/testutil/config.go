package testutil

import (
	"slices"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/lepinkainen/steamshelf/internal/config"
)

// ConfigState holds the values of the config package variables.
type ConfigState struct {
	Port              int
	AllowedOrigins    []string
	SteamAPIURL       string
	SteamStoreURL     string
	ServerPageSize    int
	EnrichScores      bool
	EnrichConcurrency int
	ProxyURL          string
	BrowsePageSize    int
	AutoDelay         time.Duration
	SteamID           string
	APIKey            string
}

// SaveConfigState captures the current config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		Port:              config.Port,
		AllowedOrigins:    slices.Clone(config.AllowedOrigins),
		SteamAPIURL:       config.SteamAPIURL,
		SteamStoreURL:     config.SteamStoreURL,
		ServerPageSize:    config.ServerPageSize,
		EnrichScores:      config.EnrichScores,
		EnrichConcurrency: config.EnrichConcurrency,
		ProxyURL:          config.ProxyURL,
		BrowsePageSize:    config.BrowsePageSize,
		AutoDelay:         config.AutoDelay,
		SteamID:           config.SteamID,
		APIKey:            config.APIKey,
	}
}

// RestoreConfigState puts saved values back into the config package.
func RestoreConfigState(state ConfigState) {
	config.Port = state.Port
	config.AllowedOrigins = state.AllowedOrigins
	config.SteamAPIURL = state.SteamAPIURL
	config.SteamStoreURL = state.SteamStoreURL
	config.ServerPageSize = state.ServerPageSize
	config.EnrichScores = state.EnrichScores
	config.EnrichConcurrency = state.EnrichConcurrency
	config.ProxyURL = state.ProxyURL
	config.BrowsePageSize = state.BrowsePageSize
	config.AutoDelay = state.AutoDelay
	config.SteamID = state.SteamID
	config.APIKey = state.APIKey
}

// ResetConfig resets viper and restores the config package variables when
// the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetViperValue sets a viper value for the duration of the test.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)
	viper.Set(key, value)

	t.Cleanup(func() {
		// viper cannot unset a key, so only previous values are restored
		if hadValue {
			viper.Set(key, oldValue)
		}
	})
}
