// Package steam provides a client for the Steam Web API and the Steam store API.
package steam

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	shelferrors "github.com/lepinkainen/steamshelf/internal/errors"
)

const (
	defaultAPIURL   = "https://api.steampowered.com"
	defaultStoreURL = "https://store.steampowered.com"
	defaultTimeout  = 15 * time.Second

	ownedGamesPath = "/IPlayerService/GetOwnedGames/v0001/"
	appDetailsPath = "/api/appdetails"

	// DetailsFilters is the store filter set forwarded by /api/gameDetails.
	DetailsFilters = "basic,metacritic,price_overview"

	apiService   = "steam api"
	storeService = "steam store"

	maxErrorBody = 512
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the Steam Web API and the store API. It holds no state
// between calls.
type Client struct {
	apiURL     string
	storeURL   string
	httpClient HTTPDoer
}

// NewClient creates a new Steam client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		apiURL:     defaultAPIURL,
		storeURL:   defaultStoreURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithAPIURL sets a custom base URL for the Steam Web API.
func WithAPIURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.apiURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithStoreURL sets a custom base URL for the Steam store API.
func WithStoreURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.storeURL = strings.TrimSuffix(base, "/")
		}
	}
}

func (c *Client) ownedGamesURL(steamID, apiKey string) string {
	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("steamid", steamID)
	params.Set("format", "json")
	params.Set("include_appinfo", "true")
	params.Set("include_played_free_games", "true")
	return c.apiURL + ownedGamesPath + "?" + params.Encode()
}

func (c *Client) appDetailsURL(appIDs, filters string) string {
	params := url.Values{}
	params.Set("appids", appIDs)
	if filters != "" {
		params.Set("filters", filters)
	}
	return c.storeURL + appDetailsPath + "?" + params.Encode()
}

// get performs a GET request and returns the body of a 2xx response.
// Non-2xx answers become UpstreamErrors carrying a trimmed body.
func (c *Client) get(ctx context.Context, service, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, shelferrors.NewUnexpectedError(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, shelferrors.NewUpstreamTransportError(service, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, shelferrors.NewUpstreamStatusError(service, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, shelferrors.NewUpstreamTransportError(service, err)
	}
	return body, nil
}
