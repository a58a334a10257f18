package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/leighmacdonald/steamid/v4/steamid"

	shelferrors "github.com/lepinkainen/steamshelf/internal/errors"
)

// ValidateSteamID checks that id is present and is a valid 64-bit Steam ID.
func ValidateSteamID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return shelferrors.NewValidationError("steamid", "is required")
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return shelferrors.NewValidationError("steamid", "must be a 64-bit Steam ID")
	}
	if sid := steamid.New(id); !sid.Valid() {
		return shelferrors.NewValidationError("steamid", "is not a valid Steam ID")
	}
	return nil
}

// OwnedGamesRaw fetches the owned-games document for steamID and returns the
// upstream body unchanged.
func (c *Client) OwnedGamesRaw(ctx context.Context, steamID, apiKey string) ([]byte, error) {
	if steamID == "" || apiKey == "" {
		return nil, shelferrors.NewValidationError("", "Missing required query parameters: steamid and key")
	}

	body, err := c.get(ctx, apiService, c.ownedGamesURL(steamID, apiKey))
	if err != nil {
		return nil, classifyOwnedGamesError(steamID, err)
	}
	return body, nil
}

// OwnedGames fetches and decodes the games owned by steamID. A response
// without a games list means the profile is private or the ID is unknown.
func (c *Client) OwnedGames(ctx context.Context, steamID, apiKey string) ([]OwnedGame, error) {
	body, err := c.OwnedGamesRaw(ctx, steamID, apiKey)
	if err != nil {
		return nil, err
	}

	var resp OwnedGamesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shelferrors.NewUnexpectedError(fmt.Errorf("failed to parse owned games response: %w", err))
	}

	if resp.Response.Games == nil {
		return nil, shelferrors.NewNotFoundError(steamID, "")
	}

	return resp.Response.Games, nil
}

// classifyOwnedGamesError turns profile-related status codes into their
// dedicated error types and leaves everything else as an UpstreamError.
func classifyOwnedGamesError(steamID string, err error) error {
	upstreamErr, ok := err.(*shelferrors.UpstreamError)
	if !ok {
		return err
	}

	switch upstreamErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return shelferrors.NewSteamProfileError(upstreamErr.StatusCode, upstreamErr.Body)
	case http.StatusNotFound:
		return shelferrors.NewNotFoundError(steamID, "")
	default:
		return err
	}
}
