package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/billmal071/trackermeta/internal/modarchive"
)

// CandidateItem wraps a search candidate for the list component
type CandidateItem struct {
	Candidate modarchive.Candidate
}

func (c CandidateItem) Title() string { return c.Candidate.Filename }

func (c CandidateItem) Description() string {
	parts := []string{fmt.Sprintf("#%d", c.Candidate.ID)}
	if c.Candidate.Format != "" {
		parts = append(parts, c.Candidate.Format)
	}
	return DimStyle.Render(strings.Join(parts, " | "))
}

func (c CandidateItem) FilterValue() string { return c.Candidate.Filename }

// CandidateDelegate handles rendering of candidate items
type CandidateDelegate struct{}

func (d CandidateDelegate) Height() int                             { return 2 }
func (d CandidateDelegate) Spacing() int                            { return 0 }
func (d CandidateDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d CandidateDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	c, ok := item.(CandidateItem)
	if !ok {
		return
	}

	// Truncate filename if too long
	name := c.Candidate.Filename
	if len(name) > 60 {
		name = name[:57] + "..."
	}

	var str string
	if index == m.Index() {
		str = SelectedStyle.Render(fmt.Sprintf("  ➤ %d. %s", index+1, name))
	} else {
		str = NormalStyle.Render(fmt.Sprintf("    %d. %s", index+1, name))
	}
	str += "\n" + DimStyle.Render(fmt.Sprintf("      %s", c.Description()))

	fmt.Fprint(w, str)
}

// SelectorModel is the Bubble Tea model for candidate selection
type SelectorModel struct {
	list     list.Model
	selected *modarchive.Candidate
	quitting bool
}

// NewSelector creates a new candidate selector TUI
func NewSelector(candidates []modarchive.Candidate, title string) SelectorModel {
	items := make([]list.Item, len(candidates))
	for i, c := range candidates {
		items[i] = CandidateItem{Candidate: c}
	}

	height := 4 + len(candidates)*2
	if height > 24 {
		height = 24
	}

	l := list.New(items, CandidateDelegate{}, 70, height)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)
	l.Styles.Title = TitleStyle

	return SelectorModel{list: l}
}

func (m SelectorModel) Init() tea.Cmd {
	return nil
}

func (m SelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(CandidateItem); ok {
				c := item.Candidate
				m.selected = &c
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m SelectorModel) View() string {
	if m.selected != nil {
		return SuccessStyle.Render(fmt.Sprintf("\n  ✓ Selected: %s\n", m.selected.Filename))
	}

	if m.quitting {
		return DimStyle.Render("\n  Cancelled.\n")
	}

	help := HelpStyle.Render("  " + strings.Join([]string{"↑/↓: navigate", "enter: select", "q/esc: cancel"}, " • "))
	return "\n" + m.list.View() + "\n" + help
}

// Selected returns the selected candidate, nil when cancelled
func (m SelectorModel) Selected() *modarchive.Candidate {
	return m.selected
}

// RunSelector displays the TUI and returns the selected candidate
func RunSelector(candidates []modarchive.Candidate) (*modarchive.Candidate, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no modules to select from")
	}

	p := tea.NewProgram(NewSelector(candidates, "Select a module"))
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	return finalModel.(SelectorModel).Selected(), nil
}
