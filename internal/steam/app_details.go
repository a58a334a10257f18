package steam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	shelferrors "github.com/lepinkainen/steamshelf/internal/errors"
)

// AppDetailsRaw fetches store details for a comma-separated list of app IDs
// and returns the upstream body unchanged.
func (c *Client) AppDetailsRaw(ctx context.Context, appIDs, filters string) ([]byte, error) {
	appIDs = strings.TrimSpace(appIDs)
	if appIDs == "" {
		return nil, shelferrors.NewValidationError("", "Missing required query parameter: appids")
	}
	return c.get(ctx, storeService, c.appDetailsURL(appIDs, filters))
}

// AppDetails fetches and decodes store details. Apps the store reports as
// unsuccessful, or for which the filters matched nothing, are left out.
func (c *Client) AppDetails(ctx context.Context, appIDs []int, filters string) (map[int]AppDetails, error) {
	ids := make([]string, len(appIDs))
	for i, id := range appIDs {
		ids[i] = strconv.Itoa(id)
	}

	body, err := c.AppDetailsRaw(ctx, strings.Join(ids, ","), filters)
	if err != nil {
		return nil, err
	}

	return ParseAppDetails(body)
}

// MetacriticScore returns the metacritic score for appID, or nil when the
// store has none.
func (c *Client) MetacriticScore(ctx context.Context, appID int) (*int, error) {
	details, err := c.AppDetails(ctx, []int{appID}, "metacritic")
	if err != nil {
		return nil, err
	}

	app, ok := details[appID]
	if !ok || app.Metacritic == nil {
		return nil, nil
	}
	score := app.Metacritic.Score
	return &score, nil
}

// ParseAppDetails decodes an appdetails document keyed by app ID.
func ParseAppDetails(body []byte) (map[int]AppDetails, error) {
	var envelopes map[string]appDetailsEnvelope
	if err := json.Unmarshal(body, &envelopes); err != nil {
		return nil, shelferrors.NewUnexpectedError(fmt.Errorf("failed to parse app details response: %w", err))
	}

	result := make(map[int]AppDetails, len(envelopes))
	for key, env := range envelopes {
		appID, err := strconv.Atoi(key)
		if err != nil || !env.Success {
			continue
		}

		data := bytes.TrimSpace(env.Data)
		if len(data) == 0 || data[0] != '{' {
			continue
		}

		var details AppDetails
		if err := json.Unmarshal(data, &details); err != nil {
			return nil, shelferrors.NewUnexpectedError(fmt.Errorf("failed to parse details for app %d: %w", appID, err))
		}
		details.AppID = appID
		result[appID] = details
	}

	return result, nil
}
