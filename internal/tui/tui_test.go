package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmal071/trackermeta/internal/db"
	"github.com/billmal071/trackermeta/internal/modarchive"
)

func TestSelector_EnterSelectsCurrent(t *testing.T) {
	candidates := []modarchive.Candidate{
		{ID: 1, Filename: "a.mod", Format: "MOD"},
		{ID: 2, Filename: "b.xm", Format: "XM"},
	}
	m := NewSelector(candidates, "pick")

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	sel := model.(SelectorModel).Selected()
	require.NotNil(t, sel)
	assert.Equal(t, 2, sel.ID)
	assert.Contains(t, model.View(), "b.xm")
}

func TestSelector_Cancel(t *testing.T) {
	m := NewSelector([]modarchive.Candidate{{ID: 1, Filename: "a.mod"}}, "pick")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Nil(t, model.(SelectorModel).Selected())
	assert.Contains(t, model.View(), "Cancelled")
}

func TestRunSelector_Empty(t *testing.T) {
	_, err := RunSelector(nil)
	assert.Error(t, err)
}

func TestHistorySelector(t *testing.T) {
	history := []*db.SearchHistory{
		{ID: 2, Query: "axelf", ResultCount: 1, CreatedAt: time.Now()},
		{ID: 1, Query: "noway", ResultCount: 3, CreatedAt: time.Now()},
	}
	m := NewHistorySelector(history)

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	sel := model.(HistorySelectorModel).Selected()
	require.NotNil(t, sel)
	assert.Equal(t, "noway", sel.Query)
	assert.Contains(t, model.View(), "Searching again: noway")
}

func TestHistorySelector_EnterWhileFilteringKeepsPicker(t *testing.T) {
	m := NewHistorySelector([]*db.SearchHistory{{ID: 1, Query: "axelf", CreatedAt: time.Now()}})

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	require.True(t, model.(HistorySelectorModel).list.SettingFilter())

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	hs := model.(HistorySelectorModel)
	assert.False(t, hs.done)
	assert.Nil(t, hs.Selected())
}

func TestHistorySelector_Cancel(t *testing.T) {
	m := NewHistorySelector([]*db.SearchHistory{{ID: 1, Query: "axelf", CreatedAt: time.Now()}})

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Nil(t, model.(HistorySelectorModel).Selected())
	assert.Contains(t, model.View(), "Cancelled")
}

func TestHistoryLine(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	one := &db.SearchHistory{Query: "axelf", ResultCount: 1, CreatedAt: now.Add(-2 * time.Hour)}
	assert.Equal(t, "1 result · 2 hours ago", historyLine(one, now))

	many := &db.SearchHistory{Query: "mod", ResultCount: 1200, CreatedAt: now.Add(-72 * time.Hour)}
	assert.Equal(t, "1,200 results · 3 days ago", historyLine(many, now))
}

func TestRunHistorySelector_Empty(t *testing.T) {
	_, err := RunHistorySelector(nil)
	assert.ErrorIs(t, err, errNoHistory)
}

func TestRenderModInfo(t *testing.T) {
	info := &modarchive.ModInfo{
		ID:             51772,
		Filename:       "axelf.xm",
		Title:          "Axel F",
		Format:         "XM",
		SizeBytes:      1234567,
		DownloadCount:  4321,
		Spotlit:        true,
		InstrumentText: "01 kick",
		Extra:          map[string]string{"Hits": "99"},
	}

	out := RenderModInfo(info, true)
	assert.Contains(t, out, "Axel F")
	assert.Contains(t, out, "1,234,567")
	assert.Contains(t, out, "4,321")
	assert.Contains(t, out, "spotlit")
	assert.Contains(t, out, "Hits")
	assert.Contains(t, out, "01 kick")

	assert.NotContains(t, RenderModInfo(info, false), "01 kick")
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.2 MiB", FormatSize(1234567))
	assert.Equal(t, "unknown", FormatSize(-1))
}
