package tui

import (
	"github.com/lepinkainen/steamshelf/internal/library"
	"github.com/lepinkainen/steamshelf/internal/steam"
)

// pageLoadedMsg carries the result of one LoadMore call, tagged with the
// epoch it was issued under.
type pageLoadedMsg struct {
	Epoch   uint64
	Outcome library.Outcome
	Err     error
}

// autoTickMsg fires when the pacer allows the next automatic load.
type autoTickMsg struct {
	Epoch uint64
	Err   error
}

type detailsLoadedMsg struct {
	AppID   int
	Details *steam.AppDetails
	Err     error
}
