// Package library accumulates a Steam user's owned games across paged
// proxy responses and derives the views the browser displays.
package library

import (
	"fmt"

	"github.com/lepinkainen/steamshelf/internal/steam"
)

const iconBaseURL = "https://media.steampowered.com/steamcommunity/public/images/apps"

// GameRecord is one owned game as received from the proxy. Records are never
// modified after they arrive.
type GameRecord struct {
	AppID           int      `json:"appid"`
	Name            string   `json:"name"`
	IconHash        string   `json:"img_icon_url"`
	PlaytimeForever int      `json:"playtime_forever"` // minutes
	Metacritic      *int     `json:"metacritic,omitempty"`
	MainStory       *float64 `json:"main_story,omitempty"`
}

// IconURL returns the community CDN URL of the game's icon, or "" when the
// game has no icon.
func (g GameRecord) IconURL() string {
	if g.IconHash == "" {
		return ""
	}
	return fmt.Sprintf("%s/%d/%s.jpg", iconBaseURL, g.AppID, g.IconHash)
}

// FromOwnedGame converts the wire type into a GameRecord.
func FromOwnedGame(g steam.OwnedGame) GameRecord {
	return GameRecord{
		AppID:           g.AppID,
		Name:            g.Name,
		IconHash:        g.IconHash,
		PlaytimeForever: g.PlaytimeForever,
		Metacritic:      g.Metacritic,
		MainStory:       g.MainStory,
	}
}

// Query identifies whose library is being accumulated and how the proxy
// should filter it.
type Query struct {
	SteamID string
	APIKey  string
	// MaxPlaytime asks the proxy to drop games played this many minutes or more.
	MaxPlaytime int
	MostPlayed  bool
}
