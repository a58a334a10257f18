package library

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrBusy is returned when a page load is already in flight.
	ErrBusy = errors.New("a page load is already in progress")
	// ErrNoMore is returned once the last page has been seen.
	ErrNoMore = errors.New("library fully loaded")
	// ErrNoQuery is returned when no Steam ID has been submitted yet.
	ErrNoQuery = errors.New("no steam id submitted")
)

// Outcome describes what a LoadMore call did to the session.
type Outcome struct {
	Epoch      uint64
	Page       int
	Received   int // records in the fetched page
	Added      int // records that were new to the library
	Total      int
	IsLastPage bool
	HasMore    bool
	// Stale is set when the response belonged to an earlier submission and
	// was discarded.
	Stale bool
}

// Session owns the state of one browsing session and allows one
// outstanding page load at a time.
type Session struct {
	fetcher PageFetcher

	mu      sync.Mutex
	state   State
	loading bool
}

// NewSession creates a session that fetches pages through fetcher.
func NewSession(fetcher PageFetcher) *Session {
	return &Session{fetcher: fetcher}
}

// Submit starts a new epoch for q, discarding everything accumulated so far.
// A load still in flight for the previous epoch is left to finish; its
// response will be dropped.
func (s *Session) Submit(q Query) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.state.Reset(q)
	s.loading = false
	slog.Debug("Library reset", "epoch", s.state.Epoch)
	return s.state.Epoch
}

// Snapshot returns the current state. The returned value shares no mutable
// data with the session: later merges build new slices.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Loading reports whether a load for the current epoch is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LoadMore fetches the page at the cursor and merges it. On error the state
// is left as it was and the cursor does not move.
func (s *Session) LoadMore(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	switch {
	case s.state.Epoch == 0:
		s.mu.Unlock()
		return Outcome{}, ErrNoQuery
	case s.loading:
		s.mu.Unlock()
		return Outcome{}, ErrBusy
	case !s.state.HasMore:
		s.mu.Unlock()
		return Outcome{}, ErrNoMore
	}
	snapshot := s.state
	s.loading = true
	s.mu.Unlock()

	result, err := LoadPage(ctx, s.fetcher, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.Epoch != s.state.Epoch {
		slog.Debug("Discarding stale page", "epoch", snapshot.Epoch, "current", s.state.Epoch, "page", snapshot.Cursor)
		return Outcome{Epoch: snapshot.Epoch, Page: snapshot.Cursor, Stale: true}, nil
	}
	s.loading = false

	if err != nil {
		return Outcome{Epoch: snapshot.Epoch, Page: snapshot.Cursor}, err
	}

	next, applied := Apply(s.state, result)
	if !applied {
		return Outcome{Epoch: result.Epoch, Page: result.Page, Stale: true}, nil
	}

	outcome := Outcome{
		Epoch:      result.Epoch,
		Page:       result.Page,
		Received:   len(result.Records),
		Added:      next.Len() - s.state.Len(),
		Total:      next.Len(),
		IsLastPage: result.IsLastPage,
		HasMore:    next.HasMore,
	}
	s.state = next

	slog.Debug("Page merged", "page", outcome.Page, "received", outcome.Received, "added", outcome.Added, "total", outcome.Total)
	return outcome, nil
}

// Pacer spaces out successive automatic loads.
type Pacer interface {
	Wait(ctx context.Context) error
}

// LoadAll keeps loading pages until the library is complete, waiting on
// pacer before every request. It stops at the first error or when the
// session moves to a newer epoch.
func LoadAll(ctx context.Context, s *Session, pacer Pacer) (int, error) {
	pages := 0
	for {
		if pacer != nil {
			if err := pacer.Wait(ctx); err != nil {
				return pages, err
			}
		}

		outcome, err := s.LoadMore(ctx)
		switch {
		case errors.Is(err, ErrNoMore):
			return pages, nil
		case err != nil:
			return pages, err
		case outcome.Stale:
			return pages, nil
		}

		pages++
		if outcome.IsLastPage {
			return pages, nil
		}
	}
}
