package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/lepinkainen/steamshelf/internal/steam"
)

// FakeSteam answers the owned-games and appdetails endpoints on one
// httptest server. Point both the API and the store URL of a steam.Client
// at URL.
type FakeSteam struct {
	*httptest.Server

	mu               sync.Mutex
	ownedGames       []byte
	ownedGamesStatus int
	appDetails       map[int]string
	requests         []url.URL
}

// NewFakeSteam starts a fake that reports an empty library until told
// otherwise. It is closed when the test completes.
func NewFakeSteam(t *testing.T) *FakeSteam {
	t.Helper()

	f := &FakeSteam{
		ownedGames:       []byte(`{"response":{"game_count":0,"games":[]}}`),
		ownedGamesStatus: http.StatusOK,
		appDetails:       map[int]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/IPlayerService/GetOwnedGames/v0001/", f.handleOwnedGames)
	mux.HandleFunc("/api/appdetails", f.handleAppDetails)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// SetOwnedGames sets the status and body returned for GetOwnedGames.
func (f *FakeSteam) SetOwnedGames(status int, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ownedGamesStatus = status
	f.ownedGames = body
}

// SetAppDetails sets the raw appdetails entry for appID, for example
// `{"success":true,"data":{"metacritic":{"score":90}}}`.
func (f *FakeSteam) SetAppDetails(appID int, entry string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appDetails[appID] = entry
}

// Requests returns the URLs the fake has served so far.
func (f *FakeSteam) Requests() []url.URL {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]url.URL, len(f.requests))
	copy(out, f.requests)
	return out
}

// RequestCount returns how many requests hit path.
func (f *FakeSteam) RequestCount(path string) int {
	n := 0
	for _, u := range f.Requests() {
		if u.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeSteam) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, *r.URL)
}

func (f *FakeSteam) handleOwnedGames(w http.ResponseWriter, r *http.Request) {
	f.record(r)

	f.mu.Lock()
	status, body := f.ownedGamesStatus, f.ownedGames
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (f *FakeSteam) handleAppDetails(w http.ResponseWriter, r *http.Request) {
	f.record(r)

	f.mu.Lock()
	defer f.mu.Unlock()

	entries := map[string]json.RawMessage{}
	for _, id := range strings.Split(r.URL.Query().Get("appids"), ",") {
		appID, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil {
			continue
		}
		entry, ok := f.appDetails[appID]
		if !ok {
			entry = `{"success":false}`
		}
		entries[strconv.Itoa(appID)] = json.RawMessage(entry)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

// OwnedGamesJSON renders games as a GetOwnedGames response body.
func OwnedGamesJSON(t *testing.T, games ...steam.OwnedGame) []byte {
	t.Helper()

	var resp steam.OwnedGamesResponse
	resp.Response.GameCount = len(games)
	resp.Response.Games = games
	if resp.Response.Games == nil {
		resp.Response.Games = []steam.OwnedGame{}
	}

	body, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("failed to marshal owned games: %v", err)
	}
	return body
}

// Games builds n owned games with consecutive app IDs starting at from.
// Playtime grows by ten minutes per game.
func Games(from, n int) []steam.OwnedGame {
	games := make([]steam.OwnedGame, n)
	for i := range games {
		games[i] = steam.OwnedGame{
			AppID:           from + i,
			Name:            "Game " + strconv.Itoa(from+i),
			PlaytimeForever: i * 10,
		}
	}
	return games
}
