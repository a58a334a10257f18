package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/steamshelf/internal/config"
	"github.com/lepinkainen/steamshelf/internal/proxy"
	"github.com/lepinkainen/steamshelf/internal/steam"
	"github.com/lepinkainen/steamshelf/internal/testutil"
	"github.com/lepinkainen/steamshelf/internal/tui"
)

const testSteamID = "76561197960287930"

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	var cli CLI
	parser, err := newParser(&cli,
		kong.Exit(func(code int) { t.Fatalf("unexpected exit with code %d", code) }),
		kong.Writers(&bytes.Buffer{}, &bytes.Buffer{}),
	)
	require.NoError(t, err)

	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestCLIParsing(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		command string
		check   func(t *testing.T, cli *CLI)
	}{
		{
			name:    "serve with overrides",
			args:    []string{"serve", "--port", "8080", "--allowed-origin", "https://a.example", "--allowed-origin", "https://b.example"},
			command: "serve",
			check: func(t *testing.T, cli *CLI) {
				assert.Equal(t, 8080, cli.Serve.Port)
				assert.Equal(t, []string{"https://a.example", "https://b.example"}, cli.Serve.AllowedOrigins)
			},
		},
		{
			name:    "browse flags",
			args:    []string{"--debug", "browse", "--steam-id", testSteamID, "--api-key", "k", "--page-size", "25", "--max-time", "120", "--most-played", "--auto"},
			command: "browse",
			check: func(t *testing.T, cli *CLI) {
				assert.True(t, cli.Debug)
				assert.Equal(t, testSteamID, cli.Browse.SteamID)
				assert.Equal(t, "k", cli.Browse.APIKey)
				assert.Equal(t, 25, cli.Browse.PageSize)
				assert.Equal(t, 120, cli.Browse.MaxTime)
				assert.True(t, cli.Browse.MostPlayed)
				assert.True(t, cli.Browse.Auto)
				assert.False(t, cli.Browse.All)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, ctx := parseCLI(t, tt.args...)
			assert.Equal(t, tt.command, ctx.Command())
			tt.check(t, cli)
		})
	}
}

func TestServeRunAppliesOverrides(t *testing.T) {
	testutil.ResetConfig(t)
	config.InitConfig()

	var captured *proxy.Server
	orig := serveProxy
	serveProxy = func(_ context.Context, s *proxy.Server) error {
		captured = s
		return nil
	}
	t.Cleanup(func() { serveProxy = orig })

	_, ctx := parseCLI(t, "serve", "--port", "8080", "--allowed-origin", "https://b.example/")
	require.NoError(t, ctx.Run())
	require.NotNil(t, captured)

	assert.Equal(t, 8080, config.Port)
	assert.Equal(t, []string{"https://b.example"}, config.AllowedOrigins)

	allowed := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	allowed.Header.Set("Origin", "https://b.example")
	rec := httptest.NewRecorder()
	captured.ServeHTTP(rec, allowed)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://b.example", rec.Header().Get("Access-Control-Allow-Origin"))

	// the default origin was replaced by the flag
	foreign := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	foreign.Header.Set("Origin", config.DefaultAllowedOrigin)
	rec = httptest.NewRecorder()
	captured.ServeHTTP(rec, foreign)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBrowseRequiresAPIKey(t *testing.T) {
	testutil.ResetConfig(t)
	config.InitConfig()

	_, ctx := parseCLI(t, "browse", "--steam-id", testSteamID)
	err := ctx.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestBrowseAllRequiresSteamID(t *testing.T) {
	testutil.ResetConfig(t)
	config.InitConfig()

	_, ctx := parseCLI(t, "browse", "--all", "--api-key", "k")
	err := ctx.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steam ID is required")
}

func TestBrowseStartsBrowserWithConfig(t *testing.T) {
	testutil.ResetConfig(t)
	testutil.SetViperValue(t, "steam.apikey", "from-config")
	testutil.SetViperValue(t, "steam.steamid", testSteamID)
	testutil.SetViperValue(t, "browse.page_size", 25)
	config.InitConfig()

	var got tui.Options
	orig := runBrowser
	runBrowser = func(opts tui.Options) error {
		got = opts
		return nil
	}
	t.Cleanup(func() { runBrowser = orig })

	_, ctx := parseCLI(t, "browse", "--max-time", "60", "--auto")
	require.NoError(t, ctx.Run())

	assert.Equal(t, testSteamID, got.SteamID)
	assert.Equal(t, "from-config", got.APIKey)
	assert.Equal(t, 25, got.PageSize)
	assert.Equal(t, 60, got.MaxPlaytime)
	assert.True(t, got.Auto)
	assert.NotNil(t, got.Fetcher)
	assert.NotNil(t, got.Details)
	assert.NotNil(t, got.Pacer)
}

func TestBrowseFlagsOverrideConfig(t *testing.T) {
	testutil.ResetConfig(t)
	testutil.SetViperValue(t, "steam.apikey", "from-config")
	config.InitConfig()

	var got tui.Options
	orig := runBrowser
	runBrowser = func(opts tui.Options) error {
		got = opts
		return nil
	}
	t.Cleanup(func() { runBrowser = orig })

	_, ctx := parseCLI(t, "browse", "--api-key", "from-flag", "--page-size", "5")
	require.NoError(t, ctx.Run())

	assert.Equal(t, "from-flag", got.APIKey)
	assert.Equal(t, 5, got.PageSize)
	assert.Empty(t, got.SteamID)
}

func TestBrowseAllPrintsLibraryByScore(t *testing.T) {
	testutil.ResetConfig(t)
	config.InitConfig()
	config.AutoDelay = 0

	fake := testutil.NewFakeSteam(t)
	fake.SetOwnedGames(http.StatusOK, testutil.OwnedGamesJSON(t, testutil.Games(1, 3)...))
	fake.SetAppDetails(2, `{"success":true,"data":{"metacritic":{"score":90}}}`)

	client := steam.NewClient(steam.WithAPIURL(fake.URL), steam.WithStoreURL(fake.URL))
	server := httptest.NewServer(proxy.NewServer(client, proxy.Config{
		AllowedOrigins:    []string{config.DefaultAllowedOrigin},
		PageSize:          2,
		EnrichScores:      true,
		EnrichConcurrency: 2,
	}))
	t.Cleanup(server.Close)

	var out bytes.Buffer
	orig := stdout
	stdout = &out
	t.Cleanup(func() { stdout = orig })

	_, ctx := parseCLI(t, "browse", "--all", "--steam-id", testSteamID, "--api-key", "k", "--proxy-url", server.URL)
	require.NoError(t, ctx.Run())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Game 2")
	assert.Contains(t, lines[0], "90")
	assert.Equal(t, "3 games", lines[3])
}

func TestBrowseAllReportsNotFound(t *testing.T) {
	testutil.ResetConfig(t)
	config.InitConfig()
	config.AutoDelay = 0

	fake := testutil.NewFakeSteam(t)
	fake.SetOwnedGames(http.StatusOK, []byte(`{"response":{}}`))

	client := steam.NewClient(steam.WithAPIURL(fake.URL), steam.WithStoreURL(fake.URL))
	server := httptest.NewServer(proxy.NewServer(client, proxy.Config{PageSize: 20}))
	t.Cleanup(server.Close)

	_, ctx := parseCLI(t, "browse", "--all", "--steam-id", testSteamID, "--api-key", "k", "--proxy-url", server.URL+"/api")
	err := ctx.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Steam ID not found")
}
