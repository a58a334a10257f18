package proxy

import (
	"encoding/json"
	stdErrors "errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	shelferrors "github.com/lepinkainen/steamshelf/internal/errors"
	"github.com/lepinkainen/steamshelf/internal/steam"
)

const (
	messageMissingOwnedGames = "Missing required query parameters: steamid and key"
	messageMissingAppIDs     = "Missing required query parameter: appids"
	messageInternal          = "Internal Server Error"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// writeError answers with the status of err's class. Upstream and
// unexpected failures never leak details to the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := shelferrors.HTTPStatus(err)
	message := messageInternal

	switch status {
	case http.StatusBadRequest:
		var validationErr *shelferrors.ValidationError
		if stdErrors.As(err, &validationErr) {
			message = validationErr.Error()
		}
		slog.Warn("Rejected request", "path", r.URL.Path, "error", err)
	case http.StatusNotFound:
		message = shelferrors.NewNotFoundError("", "").Message
		var notFoundErr *shelferrors.NotFoundError
		if stdErrors.As(err, &notFoundErr) {
			message = notFoundErr.Message
		}
		slog.Warn("No games for Steam ID", "path", r.URL.Path, "error", err)
	default:
		slog.Error("Upstream request failed", "path", r.URL.Path, "class", shelferrors.ClassOf(err).String(), "error", err)
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleOwnedGames passes the owned-games document through unchanged, or
// serves one filtered page of it when a page number is given.
func (s *Server) handleOwnedGames(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	steamID := strings.TrimSpace(query.Get("steamid"))
	apiKey := strings.TrimSpace(query.Get("key"))

	if steamID == "" || apiKey == "" {
		writeError(w, r, shelferrors.NewValidationError("", messageMissingOwnedGames))
		return
	}
	if err := steam.ValidateSteamID(steamID); err != nil {
		writeError(w, r, err)
		return
	}

	if !query.Has("page") {
		start := time.Now()
		body, err := s.upstream.OwnedGamesRaw(r.Context(), steamID, apiKey)
		recordUpstream(upstreamOwnedGames, start, err)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeRaw(w, body)
		return
	}

	opts, err := s.pageOptions(query)
	if err != nil {
		writeError(w, r, err)
		return
	}

	start := time.Now()
	games, err := s.upstream.OwnedGames(r.Context(), steamID, apiKey)
	recordUpstream(upstreamOwnedGames, start, err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page := steam.Paginate(games, opts)
	if s.cfg.EnrichScores && len(page.Games) > 0 {
		start = time.Now()
		err = steam.EnrichScores(r.Context(), s.upstream, page.Games, s.cfg.EnrichConcurrency)
		recordUpstream(upstreamScores, start, err)
		if err != nil {
			writeError(w, r, shelferrors.NewUnexpectedError(err))
			return
		}
	}

	slog.Debug("Serving page", "page", page.Page, "games", len(page.Games), "total", page.TotalGames)
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) pageOptions(query url.Values) (steam.PageOptions, error) {
	get := func(key string) string {
		return strings.TrimSpace(query.Get(key))
	}

	opts := steam.PageOptions{PageSize: s.cfg.PageSize}

	page, err := strconv.Atoi(get("page"))
	if err != nil || page < 1 {
		return opts, shelferrors.NewValidationError("page", "must be a positive integer")
	}
	opts.Page = page

	if raw := get("maxTime"); raw != "" {
		maxTime, err := strconv.Atoi(raw)
		if err != nil || maxTime < 0 {
			return opts, shelferrors.NewValidationError("maxTime", "must be a non-negative number of minutes")
		}
		opts.MaxPlaytime = maxTime
	}

	if raw := get("mostPlayed"); raw != "" {
		mostPlayed, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, shelferrors.NewValidationError("mostPlayed", "must be true or false")
		}
		opts.MostPlayed = mostPlayed
	}

	return opts, nil
}

func (s *Server) handleGameDetails(w http.ResponseWriter, r *http.Request) {
	appIDs := strings.TrimSpace(r.URL.Query().Get("appids"))
	if appIDs == "" {
		writeError(w, r, shelferrors.NewValidationError("", messageMissingAppIDs))
		return
	}
	for _, id := range strings.Split(appIDs, ",") {
		if _, err := strconv.Atoi(strings.TrimSpace(id)); err != nil {
			writeError(w, r, shelferrors.NewValidationError("appids", "must be a comma-separated list of app IDs"))
			return
		}
	}

	start := time.Now()
	body, err := s.upstream.AppDetailsRaw(r.Context(), appIDs, steam.DetailsFilters)
	recordUpstream(upstreamAppDetails, start, err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRaw(w, body)
}
