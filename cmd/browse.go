package cmd

import (
	"fmt"
	"log/slog"

	"github.com/lepinkainen/steamshelf/internal/config"
	shelferrors "github.com/lepinkainen/steamshelf/internal/errors"
	"github.com/lepinkainen/steamshelf/internal/library"
	"github.com/lepinkainen/steamshelf/internal/ratelimit"
	"github.com/lepinkainen/steamshelf/internal/tui"
)

var runBrowser = tui.Run

// BrowseCmd opens the library browser, or prints the whole library with --all
type BrowseCmd struct {
	SteamID    string `name:"steam-id" help:"64-bit Steam ID to load (defaults to steam.steamid)"`
	APIKey     string `name:"api-key" help:"Steam Web API key (defaults to steam.apikey)"`
	ProxyURL   string `name:"proxy-url" help:"Base URL of the steamshelf proxy (defaults to browse.proxy_url)"`
	PageSize   int    `help:"Games per display page"`
	MaxTime    int    `help:"Only include games played less than this many minutes"`
	MostPlayed bool   `help:"Include games regardless of playtime"`
	Auto       bool   `help:"Start with automatic page loading on"`
	All        bool   `help:"Load the whole library and print it instead of opening the browser"`
}

func (b *BrowseCmd) Run() error {
	steamID := firstNonEmpty(b.SteamID, config.SteamID)
	apiKey := firstNonEmpty(b.APIKey, config.APIKey)
	proxyURL := firstNonEmpty(b.ProxyURL, config.ProxyURL, config.DefaultProxyURL)

	if apiKey == "" {
		return fmt.Errorf("steam API key is required (provide via --api-key flag or steam.apikey in config)")
	}

	client := library.NewProxyClient(proxyURL)
	pacer := ratelimit.Every("auto-load", config.AutoDelay)
	query := library.Query{
		SteamID:     steamID,
		APIKey:      apiKey,
		MaxPlaytime: b.MaxTime,
		MostPlayed:  b.MostPlayed,
	}

	if b.All {
		if steamID == "" {
			return fmt.Errorf("steam ID is required with --all (provide via --steam-id flag or steam.steamid in config)")
		}
		return printLibrary(client, pacer, query)
	}

	pageSize := b.PageSize
	if pageSize <= 0 {
		pageSize = config.BrowsePageSize
	}

	restore, err := redirectLogging()
	if err != nil {
		return err
	}
	defer restore()

	return runBrowser(tui.Options{
		Fetcher:     client,
		Details:     client,
		Pacer:       pacer,
		SteamID:     steamID,
		APIKey:      apiKey,
		MaxPlaytime: b.MaxTime,
		MostPlayed:  b.MostPlayed,
		PageSize:    pageSize,
		Auto:        b.Auto,
	})
}

// printLibrary accumulates every page for q and prints the games best
// score first.
func printLibrary(fetcher library.PageFetcher, pacer library.Pacer, q library.Query) error {
	ctx, stop := signalContext()
	defer stop()

	session := library.NewSession(fetcher)
	session.Submit(q)

	pages, err := library.LoadAll(ctx, session, pacer)
	if err != nil {
		return fmt.Errorf("%s: %w", shelferrors.UserMessage(err), err)
	}

	records := session.Snapshot().Records
	slog.Info("Library loaded", "steamid", q.SteamID, "pages", pages, "games", len(records))

	return tui.WriteLibrary(stdout, library.SortRecords(records, library.SortScore, true))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
