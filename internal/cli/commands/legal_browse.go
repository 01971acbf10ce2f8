package commands

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/new-arrivals-chi/arrivals/internal/legal"
	"github.com/new-arrivals-chi/arrivals/internal/locale"
)

type browseKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Toggle key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp implements help.KeyMap.
func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Toggle, k.Back, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var browseKeys = browseKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
	Toggle: key.NewBinding(key.WithKeys(" ", "d"), key.WithHelp("space", "options")),
	Back:   key.NewBinding(key.WithKeys("backspace", "left", "h"), key.WithHelp("←", "back")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// browseModel is the terminal version of the web navigator.
type browseModel struct {
	nav    *legal.Navigator
	table  *locale.Table
	lip    *lipgloss.Renderer
	help   help.Model
	state  legal.State
	level  legal.Level
	cursor int
	err    error

	chosen      string
	chosenLabel string
}

func newBrowseModel(nav *legal.Navigator, t *locale.Table, lip *lipgloss.Renderer) (*browseModel, error) {
	m := &browseModel{
		nav:   nav,
		table: t,
		lip:   lip,
		help:  help.New(),
		state: nav.Start(locale.Code(t)),
	}
	if err := m.render(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *browseModel) render() error {
	lvl, err := m.nav.Render(m.state, m.table)
	if err != nil {
		return err
	}
	m.level = lvl
	if m.cursor >= len(lvl.Buttons) {
		m.cursor = max(len(lvl.Buttons)-1, 0)
	}
	return nil
}

// Init implements tea.Model.
func (m *browseModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, browseKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, browseKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, browseKeys.Down):
			if m.cursor < len(m.level.Buttons)-1 {
				m.cursor++
			}
		case key.Matches(msg, browseKeys.Back):
			if m.nav.Back(&m.state) {
				m.cursor = 0
			}
			m.err = m.render()
		case key.Matches(msg, browseKeys.Toggle):
			if b, ok := m.current(); ok && b.HasDescription() {
				if _, err := m.nav.Toggle(&m.state, b.Name); err != nil {
					m.err = err
					return m, nil
				}
				m.err = m.render()
			}
		case key.Matches(msg, browseKeys.Select):
			b, ok := m.current()
			if !ok {
				return m, nil
			}
			out, err := m.nav.Activate(&m.state, b.Name)
			if err != nil {
				m.err = err
				return m, nil
			}
			if out.Kind == legal.OutcomeNavigate {
				m.chosen = out.URL
				m.chosenLabel = b.Label
				return m, tea.Quit
			}
			m.cursor = 0
			m.err = m.render()
		}
	}
	return m, nil
}

func (m *browseModel) current() (legal.Button, bool) {
	if m.cursor < 0 || m.cursor >= len(m.level.Buttons) {
		return legal.Button{}, false
	}
	return m.level.Buttons[m.cursor], true
}

// View implements tea.Model.
func (m *browseModel) View() string {
	var b strings.Builder

	header := m.lip.NewStyle().Bold(true)
	muted := m.lip.NewStyle().Foreground(lipgloss.Color("243"))

	b.WriteString(header.Render(m.level.Header))
	b.WriteString("\n\n")

	for i, btn := range m.level.Buttons {
		cursor := "  "
		style := themeStyle(m.lip, btn.Theme)
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true)
		}
		label := btn.Label
		if !btn.IsLeaf {
			label += " ›"
		}
		b.WriteString(cursor + style.Render(label))
		if btn.HasDescription() {
			b.WriteString("  " + muted.Render("["+btn.ToggleLabel+"]"))
		}
		b.WriteString("\n")
		if btn.Expanded {
			for _, line := range btn.Description {
				b.WriteString("      • " + line + "\n")
			}
		}
	}

	if m.level.ShowBack {
		b.WriteString("\n" + muted.Render("← "+m.level.BackLabel) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + m.lip.NewStyle().Foreground(lipgloss.Color("196")).Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + m.help.View(browseKeys) + "\n")
	return b.String()
}

// runBrowseProgram runs m full screen on cmd's streams and returns the final
// model.
func runBrowseProgram(cmd *cobra.Command, m *browseModel) (*browseModel, error) {
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithContext(cmd.Context()),
	)
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(*browseModel), nil
}
