package library

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	shelferrors "github.com/lepinkainen/steamshelf/internal/errors"
	"github.com/lepinkainen/steamshelf/internal/steam"
)

const (
	proxyService   = "steamshelf proxy"
	defaultTimeout = 60 * time.Second
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// DetailsFetcher looks up store details for a single app.
type DetailsFetcher interface {
	GameDetails(ctx context.Context, appID int) (*steam.AppDetails, error)
}

var (
	_ PageFetcher    = (*ProxyClient)(nil)
	_ DetailsFetcher = (*ProxyClient)(nil)
)

// ProxyClient calls the steamshelf proxy.
type ProxyClient struct {
	baseURL    string
	httpClient HTTPDoer
}

// ProxyOption is a functional option for configuring the ProxyClient.
type ProxyOption func(*ProxyClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) ProxyOption {
	return func(client *ProxyClient) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// NewProxyClient creates a client for the proxy at baseURL. A trailing
// "/api" or slash is tolerated.
func NewProxyClient(baseURL string, opts ...ProxyOption) *ProxyClient {
	base := strings.TrimSuffix(baseURL, "/")
	base = strings.TrimSuffix(base, "/api")

	client := &ProxyClient{
		baseURL:    base,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FetchPage requests one page of q's library from /api/steam.
func (c *ProxyClient) FetchPage(ctx context.Context, q Query, page int) ([]GameRecord, error) {
	params := url.Values{}
	params.Set("steamid", q.SteamID)
	params.Set("key", q.APIKey)
	params.Set("page", strconv.Itoa(page))
	if q.MaxPlaytime > 0 {
		params.Set("maxTime", strconv.Itoa(q.MaxPlaytime))
	}
	if q.MostPlayed {
		params.Set("mostPlayed", "true")
	}

	body, err := c.get(ctx, "/api/steam?"+params.Encode(), q.SteamID)
	if err != nil {
		return nil, err
	}

	var resp steam.OwnedGamesPage
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shelferrors.NewUnexpectedError(fmt.Errorf("failed to parse games page: %w", err))
	}

	records := make([]GameRecord, len(resp.Games))
	for i, g := range resp.Games {
		records[i] = FromOwnedGame(g)
	}
	return records, nil
}

// GameDetails requests store details for a single app from /api/gameDetails.
// It returns nil without error when the store has nothing for the app.
func (c *ProxyClient) GameDetails(ctx context.Context, appID int) (*steam.AppDetails, error) {
	body, err := c.get(ctx, "/api/gameDetails?appids="+strconv.Itoa(appID), "")
	if err != nil {
		return nil, err
	}

	details, err := steam.ParseAppDetails(body)
	if err != nil {
		return nil, err
	}
	app, ok := details[appID]
	if !ok {
		return nil, nil
	}
	return &app, nil
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *ProxyClient) get(ctx context.Context, path, steamID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, shelferrors.NewUnexpectedError(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, shelferrors.NewUpstreamTransportError(proxyService, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, shelferrors.NewUpstreamTransportError(proxyService, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	message := strings.TrimSpace(string(body))
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
		message = eb.Error
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return nil, shelferrors.NewValidationError("", message)
	case http.StatusNotFound:
		return nil, shelferrors.NewNotFoundError(steamID, message)
	default:
		return nil, shelferrors.NewUpstreamStatusError(proxyService, resp.StatusCode, message)
	}
}
