package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/steamshelf/internal/library"
)

const (
	loadTimeout    = 60 * time.Second
	detailsTimeout = 30 * time.Second
)

// loadMoreCmd waits on pacer, when set, before requesting the next page.
func loadMoreCmd(session *library.Session, pacer library.Pacer, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		if pacer != nil {
			if err := pacer.Wait(context.Background()); err != nil {
				return pageLoadedMsg{Epoch: epoch, Err: err}
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		outcome, err := session.LoadMore(ctx)
		return pageLoadedMsg{Epoch: epoch, Outcome: outcome, Err: err}
	}
}

func waitCmd(pacer library.Pacer, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		if pacer == nil {
			return autoTickMsg{Epoch: epoch}
		}
		// no deadline: the pacer interval may be longer than any fixed timeout
		return autoTickMsg{Epoch: epoch, Err: pacer.Wait(context.Background())}
	}
}

func detailsCmd(fetcher library.DetailsFetcher, appID int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), detailsTimeout)
		defer cancel()

		details, err := fetcher.GameDetails(ctx, appID)
		return detailsLoadedMsg{AppID: appID, Details: details, Err: err}
	}
}
