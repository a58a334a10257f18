// Package tui provides the interactive terminal library browser.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	shelferrors "github.com/lepinkainen/steamshelf/internal/errors"
	"github.com/lepinkainen/steamshelf/internal/library"
	"github.com/lepinkainen/steamshelf/internal/steam"
)

const (
	defaultPageSize  = 10
	defaultNameWidth = 40
	minNameWidth     = 16
	detailsWidth     = 72
)

var pageSizes = []int{5, 10, 25}

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithAltScreen()).Run()
}

type mode int

const (
	modeInput mode = iota
	modeBrowse
	modeFilter
	modeDetails
)

// Options configures the browser.
type Options struct {
	Fetcher library.PageFetcher
	Details library.DetailsFetcher
	// Pacer spaces out automatic loads. Nil loads back to back.
	Pacer library.Pacer

	SteamID     string
	APIKey      string
	MaxPlaytime int
	MostPlayed  bool
	PageSize    int
	Auto        bool
}

type notice struct {
	text  string
	isErr bool
}

type browser struct {
	session *library.Session
	details library.DetailsFetcher
	pacer   library.Pacer
	query   library.Query
	epoch   uint64
	pending bool

	mode        mode
	input       textinput.Model
	filterInput textinput.Model
	table       table.Model
	nameWidth   int

	page       int
	pageSize   int
	sortKey    library.SortKey
	descending bool
	criteria   library.Criteria
	auto       bool
	window     []library.GameRecord
	visible    int

	notice        notice
	detailFor     library.GameRecord
	detail        *steam.AppDetails
	detailLoading bool
}

func newBrowser(opts Options) *browser {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	input := textinput.New()
	input.Prompt = "Steam ID: "
	input.Placeholder = "76561197960287930"
	input.CharLimit = 20
	input.SetValue(opts.SteamID)
	input.Focus()

	filterInput := textinput.New()
	filterInput.Prompt = "Filter: "
	filterInput.Placeholder = "game name"

	m := &browser{
		session: library.NewSession(opts.Fetcher),
		details: opts.Details,
		pacer:   opts.Pacer,
		query: library.Query{
			APIKey:      opts.APIKey,
			MaxPlaytime: opts.MaxPlaytime,
			MostPlayed:  opts.MostPlayed,
		},
		mode:        modeInput,
		input:       input,
		filterInput: filterInput,
		nameWidth:   defaultNameWidth,
		pageSize:    pageSize,
		auto:        opts.Auto,
	}
	m.table = newTable(m.columns(), pageSize)
	return m
}

func newTable(columns []table.Column, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(height),
		table.WithFocused(true),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("62")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m *browser) columns() []table.Column {
	return []table.Column{
		{Title: "App ID", Width: 8},
		{Title: "Name", Width: m.nameWidth},
		{Title: "Score", Width: 5},
		{Title: "Band", Width: 6},
		{Title: "Playtime", Width: 9},
	}
}

func (m *browser) Init() tea.Cmd {
	if strings.TrimSpace(m.input.Value()) != "" {
		return m.submit()
	}
	return textinput.Blink
}

func (m *browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.nameWidth = clamp(defaultNameWidth, msg.Width-44, minNameWidth)
		m.table.SetColumns(m.columns())
		m.refresh()
		return m, nil
	case pageLoadedMsg:
		return m, m.handlePage(msg)
	case autoTickMsg:
		return m, m.handleTick(msg)
	case detailsLoadedMsg:
		m.handleDetails(msg)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modeFilter:
			return m.updateFilter(msg)
		case modeDetails:
			return m.updateDetails(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m *browser) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m, m.submit()
	case "esc":
		if m.epoch != 0 {
			m.mode = modeBrowse
			m.input.Blur()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *browser) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.criteria.Name = strings.TrimSpace(m.filterInput.Value())
		m.page = 0
		m.mode = modeBrowse
		m.filterInput.Blur()
		m.refresh()
		return m, nil
	case "esc":
		m.filterInput.SetValue(m.criteria.Name)
		m.mode = modeBrowse
		m.filterInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *browser) updateDetails(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "d", "q":
		m.mode = modeBrowse
		m.detail = nil
		m.detailLoading = false
	}
	return m, nil
}

func (m *browser) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "i":
		m.mode = modeInput
		m.input.SetValue("")
		return m, m.input.Focus()
	case "m":
		return m, m.loadMore()
	case "a":
		return m, m.toggleAuto()
	case "]":
		if m.page+1 < library.PageCount(m.visible, m.pageSize) {
			m.page++
			m.refresh()
		}
	case "[":
		if m.page > 0 {
			m.page--
			m.refresh()
		}
	case "+":
		m.setPageSize(nextPageSize(m.pageSize, 1))
	case "-":
		m.setPageSize(nextPageSize(m.pageSize, -1))
	case "s":
		m.sortKey = m.sortKey.Next()
		m.refresh()
	case "r":
		m.descending = !m.descending
		m.refresh()
	case "u":
		m.criteria.Unplayed = !m.criteria.Unplayed
		m.page = 0
		m.refresh()
	case "/":
		m.mode = modeFilter
		m.filterInput.SetValue(m.criteria.Name)
		return m, m.filterInput.Focus()
	case "d":
		return m, m.showDetails()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// submit starts a new accumulation for the entered Steam ID. It is refused
// while a page request is pending.
func (m *browser) submit() tea.Cmd {
	if m.pending {
		m.setInfo("A request is already pending")
		return nil
	}

	steamID := strings.TrimSpace(m.input.Value())
	if steamID == "" || m.query.APIKey == "" {
		m.setError(shelferrors.MessageValidation)
		return nil
	}

	q := m.query
	q.SteamID = steamID
	m.epoch = m.session.Submit(q)
	m.page = 0
	m.mode = modeBrowse
	m.input.Blur()
	m.notice = notice{}
	m.refresh()

	slog.Debug("Submitted Steam ID", "steamid", steamID, "epoch", m.epoch)
	m.pending = true
	return loadMoreCmd(m.session, m.pacer, m.epoch)
}

func (m *browser) loadMore() tea.Cmd {
	return m.startLoad(m.pacer)
}

// startLoad requests the next page. pacer is nil when the caller has already
// waited on it.
func (m *browser) startLoad(pacer library.Pacer) tea.Cmd {
	if m.epoch == 0 || m.pending {
		return nil
	}
	if !m.session.Snapshot().HasMore {
		m.setInfo(fmt.Sprintf("All %d games loaded", m.session.Snapshot().Len()))
		return nil
	}
	m.pending = true
	return loadMoreCmd(m.session, pacer, m.epoch)
}

func (m *browser) toggleAuto() tea.Cmd {
	m.auto = !m.auto
	if !m.auto {
		m.setInfo("Automatic loading off")
		return nil
	}

	m.setInfo("Automatic loading on")
	if m.epoch == 0 || m.pending || !m.session.Snapshot().HasMore {
		return nil
	}
	return waitCmd(m.pacer, m.epoch)
}

func (m *browser) handlePage(msg pageLoadedMsg) tea.Cmd {
	if msg.Epoch != m.epoch || msg.Outcome.Stale {
		return nil
	}
	m.pending = false

	switch {
	case errors.Is(msg.Err, library.ErrBusy):
		m.pending = true
		return nil
	case errors.Is(msg.Err, library.ErrNoMore):
		m.auto = false
		m.setInfo(fmt.Sprintf("All %d games loaded", m.session.Snapshot().Len()))
		return nil
	case msg.Err != nil:
		m.auto = false
		slog.Warn("Failed to load games", "page", msg.Outcome.Page, "class", shelferrors.ClassOf(msg.Err).String(), "error", msg.Err)
		m.setError(shelferrors.UserMessage(msg.Err))
		return nil
	}

	m.refresh()
	outcome := msg.Outcome
	if outcome.IsLastPage {
		m.auto = false
		m.setInfo(fmt.Sprintf("All %d games loaded", outcome.Total))
		return nil
	}

	m.setInfo(fmt.Sprintf("Loaded page %d: %d new games (%d total)", outcome.Page, outcome.Added, outcome.Total))
	if m.auto {
		return waitCmd(m.pacer, m.epoch)
	}
	return nil
}

func (m *browser) handleTick(msg autoTickMsg) tea.Cmd {
	if msg.Epoch != m.epoch || !m.auto {
		return nil
	}
	if msg.Err != nil {
		m.auto = false
		slog.Warn("Automatic loading stopped", "error", msg.Err)
		m.setError("Automatic loading stopped")
		return nil
	}
	return m.startLoad(nil)
}

func (m *browser) showDetails() tea.Cmd {
	record, ok := m.selected()
	if !ok || m.details == nil {
		return nil
	}

	m.mode = modeDetails
	m.detailFor = record
	m.detail = nil
	m.detailLoading = true
	return detailsCmd(m.details, record.AppID)
}

func (m *browser) handleDetails(msg detailsLoadedMsg) {
	if m.mode != modeDetails || msg.AppID != m.detailFor.AppID {
		return
	}
	m.detailLoading = false

	if msg.Err != nil {
		slog.Warn("Failed to load game details", "appid", msg.AppID, "error", msg.Err)
		m.mode = modeBrowse
		m.setError("Could not load game details")
		return
	}
	m.detail = msg.Details
}

func (m *browser) setPageSize(size int) {
	m.pageSize = size
	m.page = 0
	m.table.SetHeight(size)
	m.refresh()
}

// nextPageSize steps through pageSizes in direction dir, wrapping around.
func nextPageSize(current, dir int) int {
	for i, size := range pageSizes {
		if size == current {
			return pageSizes[(i+dir+len(pageSizes))%len(pageSizes)]
		}
	}
	if dir > 0 {
		for _, size := range pageSizes {
			if size > current {
				return size
			}
		}
		return pageSizes[0]
	}
	for i := len(pageSizes) - 1; i >= 0; i-- {
		if pageSizes[i] < current {
			return pageSizes[i]
		}
	}
	return pageSizes[len(pageSizes)-1]
}

// refresh rebuilds the visible window from the session snapshot.
func (m *browser) refresh() {
	snapshot := m.session.Snapshot()
	view := library.SortRecords(library.Filter(snapshot.Records, m.criteria), m.sortKey, m.descending)

	m.visible = len(view)
	m.page = library.ClampPage(m.page, len(view), m.pageSize)
	m.window = library.WindowSlice(view, m.page, m.pageSize)

	rows := make([]table.Row, len(m.window))
	for i, r := range m.window {
		rows[i] = table.Row{
			strconv.Itoa(r.AppID),
			truncate(r.Name, m.nameWidth),
			library.FormatScore(r.Metacritic),
			bandNames[library.BandOf(r.Metacritic)],
			formatPlaytime(r.PlaytimeForever),
		}
	}
	m.table.SetRows(rows)
	switch cursor := m.table.Cursor(); {
	case len(rows) == 0:
		// SetCursor would clamp to -1 on an empty table
	case cursor < 0:
		m.table.SetCursor(0)
	case cursor >= len(rows):
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m *browser) selected() (library.GameRecord, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.window) {
		return library.GameRecord{}, false
	}
	return m.window[idx], true
}

func (m *browser) setInfo(text string) { m.notice = notice{text: text} }

func (m *browser) setError(text string) { m.notice = notice{text: text, isErr: true} }

func (m *browser) View() string {
	elements := []string{headerStyle.Render("steamshelf")}

	switch m.mode {
	case modeInput:
		elements = append(elements, m.input.View())
	case modeDetails:
		elements = append(elements, m.detailsView())
	default:
		elements = append(elements, statusStyle.Render(m.status()), m.table.View())
		if m.mode == modeFilter {
			elements = append(elements, m.filterInput.View())
		}
	}

	if m.notice.text != "" {
		style := infoStyle
		if m.notice.isErr {
			style = errorStyle
		}
		elements = append(elements, "", style.Render(m.notice.text))
	}

	elements = append(elements, helpStyle.Render(m.help()))
	return lipgloss.JoinVertical(lipgloss.Left, elements...)
}

func (m *browser) status() string {
	snapshot := m.session.Snapshot()
	pages := max(library.PageCount(m.visible, m.pageSize), 1)

	direction := "asc"
	if m.descending {
		direction = "desc"
	}

	parts := []string{
		fmt.Sprintf("%s: %d games", snapshot.Query.SteamID, snapshot.Len()),
		fmt.Sprintf("page %d/%d", m.page+1, pages),
		fmt.Sprintf("sort %s %s", m.sortKey, direction),
	}
	if !m.criteria.Empty() {
		parts = append(parts, fmt.Sprintf("%d shown", m.visible))
	}
	if m.criteria.Name != "" {
		parts = append(parts, fmt.Sprintf("filter %q", m.criteria.Name))
	}
	if m.criteria.Unplayed {
		parts = append(parts, "unplayed")
	}
	if m.pending {
		parts = append(parts, "loading...")
	}
	if m.auto {
		parts = append(parts, "auto")
	}
	return strings.Join(parts, " | ")
}

func (m *browser) help() string {
	switch m.mode {
	case modeInput:
		return "Enter load | Esc back | Ctrl+C quit"
	case modeFilter:
		return "Enter apply | Esc cancel"
	case modeDetails:
		return "Esc back"
	}

	var keys []string
	if m.epoch != 0 && m.session.Snapshot().HasMore {
		keys = append(keys, "m more", "a auto")
	}
	keys = append(keys, "[ ] page", "+/- size", "s sort", "r reverse", "/ filter", "u unplayed", "d details", "i new id", "q quit")
	return strings.Join(keys, " | ")
}

func (m *browser) detailsView() string {
	record := m.detailFor
	if m.detailLoading {
		return fmt.Sprintf("Loading details for %s...", record.Name)
	}
	if m.detail == nil {
		return fmt.Sprintf("No store details for %s", record.Name)
	}

	d := m.detail
	line := func(label, value string) string {
		return labelStyle.Render(label+": ") + value
	}

	lines := []string{labelStyle.Render(d.Name)}
	if d.ShortDesc != "" {
		lines = append(lines, truncate(d.ShortDesc, detailsWidth))
	}
	lines = append(lines, "")
	if len(d.Developers) > 0 {
		lines = append(lines, line("Developers", strings.Join(d.Developers, ", ")))
	}
	if len(d.Publishers) > 0 {
		lines = append(lines, line("Publishers", strings.Join(d.Publishers, ", ")))
	}
	if d.ReleaseDate.Date != "" {
		released := d.ReleaseDate.Date
		if d.ReleaseDate.ComingSoon {
			released += " (coming soon)"
		}
		lines = append(lines, line("Released", released))
	}
	if len(d.Genres) > 0 {
		genres := make([]string, len(d.Genres))
		for i, g := range d.Genres {
			genres[i] = g.Description
		}
		lines = append(lines, line("Genres", strings.Join(genres, ", ")))
	}

	var score *int
	if d.Metacritic != nil {
		score = &d.Metacritic.Score
	}
	lines = append(lines, line("Metacritic", renderScore(score)))
	lines = append(lines, line("Price", formatPrice(d)))
	lines = append(lines, line("Playtime", formatPlaytime(record.PlaytimeForever)))
	if icon := record.IconURL(); icon != "" {
		lines = append(lines, line("Icon", icon))
	}
	if d.HeaderImage != "" {
		lines = append(lines, line("Header", d.HeaderImage))
	}

	return detailStyle.Render(strings.Join(lines, "\n"))
}

func formatPrice(d *steam.AppDetails) string {
	switch {
	case d.IsFree:
		return "Free"
	case d.PriceOverview == nil:
		return "--"
	case d.PriceOverview.DiscountPercent > 0:
		return fmt.Sprintf("%s (-%d%%)", d.PriceOverview.FinalFormatted, d.PriceOverview.DiscountPercent)
	default:
		return d.PriceOverview.FinalFormatted
	}
}

func formatPlaytime(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// Run starts the browser and blocks until the user quits.
func Run(opts Options) error {
	m := newBrowser(opts)
	finalModel, err := runProgram(m)
	if err != nil {
		return fmt.Errorf("run library browser: %w", err)
	}
	if _, ok := finalModel.(*browser); !ok {
		return fmt.Errorf("unexpected program result")
	}
	return nil
}
