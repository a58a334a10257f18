package library

import (
	"context"
	"maps"

	shelferrors "github.com/lepinkainen/steamshelf/internal/errors"
)

// PageFetcher retrieves one page of a user's owned games. Page numbers are
// 1-based; an empty result marks the end of the library.
type PageFetcher interface {
	FetchPage(ctx context.Context, q Query, page int) ([]GameRecord, error)
}

// State is the accumulated library of one browsing session. It is a value:
// Reset and Apply return a new State and leave the receiver untouched.
type State struct {
	// Epoch identifies the submission this state belongs to.
	Epoch uint64
	Query Query
	// Records is in arrival order with unique app IDs.
	Records []GameRecord
	// Cursor is the 1-based number of the next page to fetch.
	Cursor  int
	HasMore bool

	seen map[int]struct{}
}

// NewState starts an empty session for q.
func NewState(q Query) State {
	return State{}.Reset(q)
}

// Reset discards all accumulated records and starts a new epoch for q.
func (s State) Reset(q Query) State {
	return State{
		Epoch:   s.Epoch + 1,
		Query:   q,
		Records: []GameRecord{},
		Cursor:  1,
		HasMore: true,
		seen:    map[int]struct{}{},
	}
}

// Len returns the number of accumulated records.
func (s State) Len() int {
	return len(s.Records)
}

// PageResult is the outcome of fetching one page, tagged with the epoch and
// page number it was requested under.
type PageResult struct {
	Epoch      uint64
	Page       int
	Records    []GameRecord
	IsLastPage bool
}

// LoadPage fetches the page at the state's cursor. On failure nothing about
// the state changes; the caller keeps its current state.
func LoadPage(ctx context.Context, fetcher PageFetcher, state State) (PageResult, error) {
	if state.Query.SteamID == "" {
		return PageResult{}, shelferrors.NewValidationError("steamid", "is required")
	}

	records, err := fetcher.FetchPage(ctx, state.Query, state.Cursor)
	if err != nil {
		return PageResult{}, err
	}

	return PageResult{
		Epoch:      state.Epoch,
		Page:       state.Cursor,
		Records:    records,
		IsLastPage: len(records) == 0,
	}, nil
}

// Apply merges result into state. Results from another epoch or for a page
// other than the cursor are discarded and reported with false.
func Apply(state State, result PageResult) (State, bool) {
	if result.Epoch != state.Epoch || result.Page != state.Cursor || !state.HasMore {
		return state, false
	}

	next := state
	if result.IsLastPage {
		next.HasMore = false
		return next, true
	}

	next.Records, next.seen = Merge(state.Records, state.seen, result.Records)
	next.Cursor = state.Cursor + 1
	return next, true
}

// Merge appends the incoming records whose app ID is not in seen, keeping
// arrival order. Duplicates within incoming are dropped as well. The inputs
// are not modified; fresh slice and set are returned.
func Merge(records []GameRecord, seen map[int]struct{}, incoming []GameRecord) ([]GameRecord, map[int]struct{}) {
	nextSeen := maps.Clone(seen)
	if nextSeen == nil {
		nextSeen = make(map[int]struct{}, len(incoming))
		for _, r := range records {
			nextSeen[r.AppID] = struct{}{}
		}
	}

	merged := make([]GameRecord, len(records), len(records)+len(incoming))
	copy(merged, records)

	for _, r := range incoming {
		if _, ok := nextSeen[r.AppID]; ok {
			continue
		}
		nextSeen[r.AppID] = struct{}{}
		merged = append(merged, r)
	}

	return merged, nextSeen
}
