package steam

import "encoding/json"

// OwnedGame is one entry of the GetOwnedGames response with app info enabled.
// MainStory is the "main story length" annotation in hours; Steam never
// sends it, but it survives pass-through when an upstream adds it.
type OwnedGame struct {
	AppID           int      `json:"appid"`
	Name            string   `json:"name"`
	IconHash        string   `json:"img_icon_url"`
	PlaytimeForever int      `json:"playtime_forever"` // Total playtime in minutes
	PlaytimeRecent  int      `json:"playtime_2weeks,omitempty"`
	LastPlayed      int64    `json:"rtime_last_played,omitempty"`
	Metacritic      *int     `json:"metacritic,omitempty"`
	MainStory       *float64 `json:"main_story,omitempty"`
}

// OwnedGamesResponse represents the response structure from Steam API.
// Games is nil when the profile is private or the ID is unknown.
type OwnedGamesResponse struct {
	Response struct {
		GameCount int         `json:"game_count"`
		Games     []OwnedGame `json:"games"`
	} `json:"response"`
}

// OwnedGamesPage is the paged envelope returned by /api/steam?page=N.
type OwnedGamesPage struct {
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalGames int         `json:"total_games"`
	TotalPages int         `json:"total_pages"`
	Games      []OwnedGame `json:"games"`
}

type Genre struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type MetacriticData struct {
	Score int    `json:"score"`
	URL   string `json:"url"`
}

type PriceOverview struct {
	Currency        string `json:"currency"`
	Initial         int    `json:"initial"`
	Final           int    `json:"final"`
	DiscountPercent int    `json:"discount_percent"`
	FinalFormatted  string `json:"final_formatted"`
}

// AppDetails is the subset of store data requested with
// filters=basic,metacritic,price_overview.
type AppDetails struct {
	AppID       int      `json:"steam_appid"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	ShortDesc   string   `json:"short_description"`
	HeaderImage string   `json:"header_image"`
	IsFree      bool     `json:"is_free"`
	Developers  []string `json:"developers"`
	Publishers  []string `json:"publishers"`
	ReleaseDate struct {
		ComingSoon bool   `json:"coming_soon"`
		Date       string `json:"date"`
	} `json:"release_date"`
	Genres        []Genre         `json:"genres"`
	Metacritic    *MetacriticData `json:"metacritic,omitempty"`
	PriceOverview *PriceOverview  `json:"price_overview,omitempty"`
}

// appDetailsEnvelope is the per-app wrapper; the store keys the response by app ID.
// Data is an empty JSON array instead of an object when a filter matches nothing.
type appDetailsEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}
