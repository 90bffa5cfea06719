package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/billmal071/trackermeta/internal/db"
)

var errNoHistory = errors.New("no search history")

// pastSearch is one row of the history picker
type pastSearch struct {
	search *db.SearchHistory
	now    time.Time
}

func (p pastSearch) Title() string       { return p.search.Query }
func (p pastSearch) FilterValue() string { return p.search.Query }

// Description reads like "3 results · 2 days ago"
func (p pastSearch) Description() string {
	return historyLine(p.search, p.now)
}

func historyLine(h *db.SearchHistory, now time.Time) string {
	results := "results"
	if h.ResultCount == 1 {
		results = "result"
	}
	return fmt.Sprintf("%s %s · %s", humanize.Comma(int64(h.ResultCount)), results, humanize.RelTime(h.CreatedAt, now, "ago", "from now"))
}

// historyDelegate is the stock two-line delegate in the app's colours
func historyDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.NormalTitle = d.Styles.NormalTitle.Foreground(NormalStyle.GetForeground())
	d.Styles.NormalDesc = d.Styles.NormalDesc.Foreground(dimColor)
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(primaryColor).BorderForeground(primaryColor).Bold(true)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Foreground(accentColor).BorderForeground(primaryColor)
	d.Styles.FilterMatch = d.Styles.FilterMatch.Foreground(accentColor)
	return d
}

// HistorySelectorModel lets the user filter past searches and pick one to
// run again
type HistorySelectorModel struct {
	list     list.Model
	selected *db.SearchHistory
	done     bool
}

// NewHistorySelector creates a selector over past searches, newest first
func NewHistorySelector(history []*db.SearchHistory) HistorySelectorModel {
	now := time.Now()
	items := make([]list.Item, 0, len(history))
	for _, h := range history {
		items = append(items, pastSearch{search: h, now: now})
	}

	l := list.New(items, historyDelegate(), 80, 20)
	l.Title = "Search History"
	l.Styles.Title = TitleStyle
	l.SetStatusBarItemName("search", "searches")

	return HistorySelectorModel{list: l}
}

func (m HistorySelectorModel) Init() tea.Cmd { return nil }

func (m HistorySelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.list.SetSize(size.Width, size.Height-2)
		return m, nil
	}

	// while typing a filter every key belongs to the list
	if key, ok := msg.(tea.KeyMsg); ok && !m.list.SettingFilter() {
		switch key.String() {
		case "enter":
			if row, ok := m.list.SelectedItem().(pastSearch); ok {
				m.selected = row.search
			}
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "q":
			m.done = true
			return m, tea.Quit
		case "esc":
			if m.list.FilterState() == list.Unfiltered {
				m.done = true
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m HistorySelectorModel) View() string {
	switch {
	case m.selected != nil:
		return SuccessStyle.Render("\n  ✓ Searching again: "+m.selected.Query) + "\n"
	case m.done:
		return DimStyle.Render("\n  Cancelled.") + "\n"
	}
	return "\n" + m.list.View()
}

// Selected returns the picked search, nil when cancelled
func (m HistorySelectorModel) Selected() *db.SearchHistory {
	return m.selected
}

// RunHistorySelector displays past searches and returns the picked one
func RunHistorySelector(history []*db.SearchHistory) (*db.SearchHistory, error) {
	if len(history) == 0 {
		return nil, errNoHistory
	}

	final, err := tea.NewProgram(NewHistorySelector(history)).Run()
	if err != nil {
		return nil, err
	}
	return final.(HistorySelectorModel).Selected(), nil
}
