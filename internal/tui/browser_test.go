package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shelferrors "github.com/lepinkainen/steamshelf/internal/errors"
	"github.com/lepinkainen/steamshelf/internal/library"
	"github.com/lepinkainen/steamshelf/internal/ratelimit"
	"github.com/lepinkainen/steamshelf/internal/steam"
)

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[int][]library.GameRecord
	err   error
	calls []int
	ids   []string
	times []time.Time
}

func (f *fakeFetcher) FetchPage(_ context.Context, q library.Query, page int) ([]library.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, page)
	f.ids = append(f.ids, q.SteamID)
	f.times = append(f.times, time.Now())
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[page], nil
}

type fakeDetails struct {
	details map[int]*steam.AppDetails
	err     error
}

func (f *fakeDetails) GameDetails(_ context.Context, appID int) (*steam.AppDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.details[appID], nil
}

type countingPacer struct{ waits int }

func (p *countingPacer) Wait(context.Context) error {
	p.waits++
	return nil
}

func intPtr(v int) *int { return &v }

func games(from, n int) []library.GameRecord {
	out := make([]library.GameRecord, n)
	for i := range out {
		out[i] = library.GameRecord{AppID: from + i, Name: "Game", PlaytimeForever: i * 10}
	}
	return out
}

func key(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// drain runs cmd and feeds every resulting message back into m until no
// command is left.
func drain(t *testing.T, m *browser, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		require.Less(t, i, 100, "command loop did not settle")
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func press(t *testing.T, m *browser, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := m.Update(key(k))
		drain(t, m, cmd)
	}
}

func newTestBrowser(f library.PageFetcher, opts Options) *browser {
	opts.Fetcher = f
	if opts.APIKey == "" {
		opts.APIKey = "key"
	}
	return newBrowser(opts)
}

func TestBrowser_SubmitRequiresSteamID(t *testing.T) {
	f := &fakeFetcher{}
	m := newTestBrowser(f, Options{})

	press(t, m, "enter")

	assert.Equal(t, shelferrors.MessageValidation, m.notice.text)
	assert.True(t, m.notice.isErr)
	assert.Empty(t, f.calls)
	assert.Equal(t, modeInput, m.mode)
}

func TestBrowser_InitialSteamIDLoadsFirstPage(t *testing.T) {
	f := &fakeFetcher{pages: map[int][]library.GameRecord{1: games(1, 20)}}
	m := newTestBrowser(f, Options{SteamID: "A", PageSize: 5})

	drain(t, m, m.Init())

	assert.Equal(t, []int{1}, f.calls)
	assert.Equal(t, modeBrowse, m.mode)
	assert.Len(t, m.window, 5)
	assert.Equal(t, 20, m.session.Snapshot().Len())
	assert.Contains(t, m.View(), "A: 20 games")
	assert.Contains(t, m.View(), "m more")
}

func TestBrowser_LoadMoreUntilLastPage(t *testing.T) {
	f := &fakeFetcher{pages: map[int][]library.GameRecord{1: games(1, 20), 2: games(15, 10)}}
	m := newTestBrowser(f, Options{SteamID: "A"})
	drain(t, m, m.Init())

	press(t, m, "m")
	assert.Equal(t, 24, m.session.Snapshot().Len())
	assert.Contains(t, m.notice.text, "4 new games")

	press(t, m, "m")
	assert.Equal(t, "All 24 games loaded", m.notice.text)
	assert.NotContains(t, m.help(), "m more")

	press(t, m, "m")
	assert.Equal(t, []int{1, 2, 3}, f.calls, "no request after the last page")
}

func TestBrowser_ErrorNotifications(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "not found", err: shelferrors.NewNotFoundError("A", ""), want: shelferrors.MessageNotFound},
		{name: "upstream", err: shelferrors.NewUpstreamStatusError("proxy", 500, ""), want: shelferrors.MessageGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{err: tt.err}
			m := newTestBrowser(f, Options{SteamID: "A"})
			drain(t, m, m.Init())

			assert.Equal(t, tt.want, m.notice.text)
			assert.True(t, m.notice.isErr)
			assert.Equal(t, 0, m.session.Snapshot().Len())
			assert.False(t, m.pending)
		})
	}
}

func TestBrowser_SubmitRefusedWhilePending(t *testing.T) {
	f := &fakeFetcher{pages: map[int][]library.GameRecord{1: games(1, 3)}}
	m := newTestBrowser(f, Options{SteamID: "A"})
	cmd := m.Init()
	require.NotNil(t, cmd)

	m.mode = modeInput
	m.input.SetValue("B")
	_, second := m.Update(key("enter"))
	assert.Nil(t, second)
	assert.Equal(t, "A", m.session.Snapshot().Query.SteamID)

	drain(t, m, cmd)
	assert.Equal(t, 3, m.session.Snapshot().Len())
}

func TestBrowser_NewSteamIDResetsLibrary(t *testing.T) {
	f := &fakeFetcher{pages: map[int][]library.GameRecord{1: games(1, 3)}}
	m := newTestBrowser(f, Options{SteamID: "A"})
	drain(t, m, m.Init())

	press(t, m, "i")
	require.Equal(t, modeInput, m.mode)
	m.input.SetValue("B")
	press(t, m, "enter")

	assert.Equal(t, []string{"A", "B"}, f.ids)
	assert.Equal(t, "B", m.session.Snapshot().Query.SteamID)
	assert.Equal(t, 3, m.session.Snapshot().Len())
}

func TestBrowser_IgnoresStaleMessages(t *testing.T) {
	f := &fakeFetcher{pages: map[int][]library.GameRecord{1: games(1, 3)}}
	m := newTestBrowser(f, Options{SteamID: "A"})
	drain(t, m, m.Init())

	_, cmd := m.Update(pageLoadedMsg{Epoch: m.epoch + 1, Err: errors.New("boom")})
	assert.Nil(t, cmd)
	assert.False(t, m.notice.isErr)

	_, cmd = m.Update(autoTickMsg{Epoch: m.epoch - 1})
	assert.Nil(t, cmd)
}

func TestBrowser_AutoLoadsWholeLibrary(t *testing.T) {
	f := &fakeFetcher{pages: map[int][]library.GameRecord{1: games(1, 20), 2: games(21, 20), 3: games(41, 5)}}
	pacer := &countingPacer{}
	m := newTestBrowser(f, Options{SteamID: "A", Auto: true, Pacer: pacer})

	drain(t, m, m.Init())

	assert.Equal(t, []int{1, 2, 3, 4}, f.calls)
	assert.Equal(t, 45, m.session.Snapshot().Len())
	assert.Equal(t, 4, pacer.waits, "one wait before every request but the terminating one")
	assert.False(t, m.auto, "auto switches off once complete")
}

func TestBrowser_AutoLoadsAreSpacedFromTheFirstPage(t *testing.T) {
	const interval = 100 * time.Millisecond
	f := &fakeFetcher{pages: map[int][]library.GameRecord{1: games(1, 3), 2: games(4, 3)}}
	m := newTestBrowser(f, Options{SteamID: "A", Auto: true, Pacer: ratelimit.Every("auto-load", interval)})

	drain(t, m, m.Init())

	require.Equal(t, []int{1, 2, 3}, f.calls)
	for i := 1; i < len(f.times); i++ {
		gap := f.times[i].Sub(f.times[i-1])
		assert.GreaterOrEqual(t, gap, interval*8/10, "gap before page %d", f.calls[i])
	}
}

type deadlinePacer struct{ hadDeadline []bool }

func (p *deadlinePacer) Wait(ctx context.Context) error {
	_, ok := ctx.Deadline()
	p.hadDeadline = append(p.hadDeadline, ok)
	return nil
}

func TestPacedCommands_WaitWithoutDeadline(t *testing.T) {
	pacer := &deadlinePacer{}

	msg := waitCmd(pacer, 7)()
	assert.Equal(t, autoTickMsg{Epoch: 7}, msg)

	session := library.NewSession(&fakeFetcher{pages: map[int][]library.GameRecord{}})
	session.Submit(library.Query{SteamID: "A", APIKey: "key"})
	loaded, ok := loadMoreCmd(session, pacer, 7)().(pageLoadedMsg)
	require.True(t, ok)
	assert.NoError(t, loaded.Err)

	assert.Equal(t, []bool{false, false}, pacer.hadDeadline, "a long pacer interval must not time out the wait")
}

func TestBrowser_ToggleAuto(t *testing.T) {
	f := &fakeFetcher{pages: map[int][]library.GameRecord{1: games(1, 20), 2: games(21, 2)}}
	m := newTestBrowser(f, Options{SteamID: "A"})
	drain(t, m, m.Init())

	press(t, m, "a")
	assert.Equal(t, 22, m.session.Snapshot().Len())
	assert.Equal(t, []int{1, 2, 3}, f.calls)
}

func TestBrowser_SortAndPaging(t *testing.T) {
	page := []library.GameRecord{
		{AppID: 1, Name: "B", Metacritic: intPtr(70)},
		{AppID: 2, Name: "A"},
		{AppID: 3, Name: "C", Metacritic: intPtr(90)},
	}
	f := &fakeFetcher{pages: map[int][]library.GameRecord{1: page}}
	m := newTestBrowser(f, Options{SteamID: "A", PageSize: 5})
	drain(t, m, m.Init())

	press(t, m, "s", "s")
	require.Equal(t, library.SortScore, m.sortKey)
	assert.Equal(t, 2, m.window[0].AppID, "missing score first ascending")

	press(t, m, "r")
	assert.Equal(t, []int{3, 1, 2}, windowIDs(m))

	press(t, m, "-")
	assert.Equal(t, 25, m.pageSize, "wraps around")
	press(t, m, "+")
	assert.Equal(t, 5, m.pageSize)
}

func TestBrowser_WindowPages(t *testing.T) {
	f := &fakeFetcher{pages: map[int][]library.GameRecord{1: games(1, 12)}}
	m := newTestBrowser(f, Options{SteamID: "A", PageSize: 5})
	drain(t, m, m.Init())

	press(t, m, "]", "]", "]")
	assert.Equal(t, 2, m.page)
	assert.Equal(t, []int{11, 12}, windowIDs(m))

	press(t, m, "[")
	assert.Equal(t, 1, m.page)
	assert.Contains(t, m.status(), "page 2/3")
}

func TestBrowser_Filter(t *testing.T) {
	page := []library.GameRecord{
		{AppID: 1, Name: "Portal 2", PlaytimeForever: 100},
		{AppID: 2, Name: "Half-Life", PlaytimeForever: 0},
		{AppID: 3, Name: "Portal", PlaytimeForever: 0},
	}
	f := &fakeFetcher{pages: map[int][]library.GameRecord{1: page}}
	m := newTestBrowser(f, Options{SteamID: "A"})
	drain(t, m, m.Init())

	press(t, m, "/")
	require.Equal(t, modeFilter, m.mode)
	press(t, m, "portal", "enter")
	assert.Equal(t, []int{1, 3}, windowIDs(m))

	press(t, m, "u")
	assert.Equal(t, []int{3}, windowIDs(m))
	assert.Contains(t, m.status(), "1 shown")
}

func TestBrowser_FirstRowSelectedAfterSubmit(t *testing.T) {
	f := &fakeFetcher{pages: map[int][]library.GameRecord{1: games(1, 3)}}
	m := newTestBrowser(f, Options{SteamID: "A"})

	drain(t, m, m.Init())

	assert.Equal(t, 0, m.table.Cursor())
	record, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, 1, record.AppID)
}

func TestBrowser_CursorClampedWhenWindowShrinks(t *testing.T) {
	f := &fakeFetcher{pages: map[int][]library.GameRecord{1: games(1, 12)}}
	m := newTestBrowser(f, Options{SteamID: "A", PageSize: 5})
	drain(t, m, m.Init())

	m.table.SetCursor(4)
	press(t, m, "]", "]")
	require.Equal(t, []int{11, 12}, windowIDs(m))
	assert.Equal(t, 1, m.table.Cursor())

	press(t, m, "/", "nomatch", "enter")
	assert.Empty(t, m.window)
	_, ok := m.selected()
	assert.False(t, ok)

	press(t, m, "/")
	m.filterInput.SetValue("")
	press(t, m, "enter")
	assert.GreaterOrEqual(t, m.table.Cursor(), 0)
	_, ok = m.selected()
	assert.True(t, ok)
}

func TestBrowser_Details(t *testing.T) {
	f := &fakeFetcher{pages: map[int][]library.GameRecord{1: {{AppID: 7, Name: "Seven", IconHash: "abc"}}}}
	details := &fakeDetails{details: map[int]*steam.AppDetails{7: {
		Name:          "Seven",
		Developers:    []string{"Dev"},
		Metacritic:    &steam.MetacriticData{Score: 88},
		PriceOverview: &steam.PriceOverview{FinalFormatted: "9,99€", DiscountPercent: 50},
	}}}
	m := newTestBrowser(f, Options{SteamID: "A", Details: details})
	drain(t, m, m.Init())

	press(t, m, "d")
	require.Equal(t, modeDetails, m.mode)
	view := m.View()
	assert.Contains(t, view, "Dev")
	assert.Contains(t, view, "9,99€ (-50%)")
	assert.Contains(t, view, "/apps/7/abc.jpg")

	press(t, m, "esc")
	assert.Equal(t, modeBrowse, m.mode)

	details.err = errors.New("down")
	press(t, m, "d")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, "Could not load game details", m.notice.text)
}

func TestRun_UsesProgramRunner(t *testing.T) {
	original := runProgram
	defer func() { runProgram = original }()

	var started *browser
	runProgram = func(m tea.Model) (tea.Model, error) {
		started = m.(*browser)
		return m, nil
	}
	require.NoError(t, Run(Options{Fetcher: &fakeFetcher{}, PageSize: 25}))
	require.NotNil(t, started)
	assert.Equal(t, 25, started.pageSize)

	runProgram = func(m tea.Model) (tea.Model, error) { return nil, errors.New("no tty") }
	assert.ErrorContains(t, Run(Options{Fetcher: &fakeFetcher{}}), "no tty")
}

func TestWriteLibrary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLibrary(&buf, []library.GameRecord{
		{AppID: 10, Name: "Ten", Metacritic: intPtr(80), PlaytimeForever: 125},
		{AppID: 11, Name: "Eleven"},
	}))

	out := buf.String()
	assert.Contains(t, out, "Ten")
	assert.Contains(t, out, "2h 05m")
	assert.Contains(t, out, "--")
	assert.True(t, strings.HasSuffix(out, "2 games\n"))
}

func TestNextPageSize(t *testing.T) {
	assert.Equal(t, 10, nextPageSize(5, 1))
	assert.Equal(t, 5, nextPageSize(25, 1))
	assert.Equal(t, 25, nextPageSize(5, -1))
	assert.Equal(t, 25, nextPageSize(20, 1))
	assert.Equal(t, 10, nextPageSize(20, -1))
}

func TestFormatPlaytime(t *testing.T) {
	assert.Equal(t, "0m", formatPlaytime(0))
	assert.Equal(t, "59m", formatPlaytime(59))
	assert.Equal(t, "1h 00m", formatPlaytime(60))
}

func windowIDs(m *browser) []int {
	ids := make([]int, len(m.window))
	for i, r := range m.window {
		ids[i] = r.AppID
	}
	return ids
}
