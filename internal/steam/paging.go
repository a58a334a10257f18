package steam

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DefaultPageSize is the number of games in a paged response.
const DefaultPageSize = 20

// PageOptions controls server-side paging of an owned-games list.
type PageOptions struct {
	Page     int // 1-based
	PageSize int
	// MaxPlaytime drops games played this many minutes or more.
	// Ignored when zero or negative, or when MostPlayed is set.
	MaxPlaytime int
	MostPlayed  bool
}

// Paginate filters games and returns the requested page. A page past the
// end yields an empty Games slice rather than an error.
func Paginate(games []OwnedGame, opts PageOptions) OwnedGamesPage {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Page < 1 {
		opts.Page = 1
	}

	filtered := games
	if !opts.MostPlayed && opts.MaxPlaytime > 0 {
		filtered = make([]OwnedGame, 0, len(games))
		for _, g := range games {
			if g.PlaytimeForever < opts.MaxPlaytime {
				filtered = append(filtered, g)
			}
		}
	}

	total := len(filtered)
	page := OwnedGamesPage{
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalGames: total,
		TotalPages: (total + opts.PageSize - 1) / opts.PageSize,
		Games:      []OwnedGame{},
	}

	start := (opts.Page - 1) * opts.PageSize
	if start >= total {
		return page
	}
	end := min(start+opts.PageSize, total)

	page.Games = make([]OwnedGame, end-start)
	copy(page.Games, filtered[start:end])
	return page
}

// ScoreFetcher looks up the metacritic score of a single app.
type ScoreFetcher interface {
	MetacriticScore(ctx context.Context, appID int) (*int, error)
}

// EnrichScores fills in the metacritic score of each game in place, running
// at most concurrency lookups at a time. Lookup failures are logged and leave
// the score empty; only context cancellation is returned.
func EnrichScores(ctx context.Context, fetcher ScoreFetcher, games []OwnedGame, concurrency int) error {
	if concurrency <= 0 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range games {
		game := &games[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			score, err := fetcher.MetacriticScore(gctx, game.AppID)
			if err != nil {
				slog.Warn("Error fetching app details", "appid", game.AppID, "error", err)
				return nil
			}
			game.Metacritic = score
			return nil
		})
	}

	return g.Wait()
}
