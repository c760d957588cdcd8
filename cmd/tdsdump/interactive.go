package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/soni5424/tedious/tds"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	indexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browseModel struct {
	decodeErr error
	filename  string
	tokens    []tds.Token
	view      viewport.Model
	ready     bool
}

func newBrowseModel(filename string, tokens []tds.Token, decodeErr error) *browseModel {
	return &browseModel{
		filename:  filename,
		tokens:    tokens,
		decodeErr: decodeErr,
	}
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 2
		if !m.ready {
			m.view = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.view.SetContent(m.content())
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = msg.Height - headerHeight - footerHeight
		}
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m *browseModel) View() string {
	if !m.ready {
		return "loading..."
	}

	header := titleStyle.Render(fmt.Sprintf("tdsdump — %s (%d tokens)", m.filename, len(m.tokens)))
	footer := helpStyle.Render("↑/↓ scroll · q quit")
	return header + "\n\n" + m.view.View() + "\n" + footer
}

func (m *browseModel) content() string {
	var b strings.Builder
	for i, t := range m.tokens {
		b.WriteString(indexStyle.Render(fmt.Sprintf("%4d  ", i)))
		b.WriteString(formatToken(t, true))
		b.WriteByte('\n')
	}
	if m.decodeErr != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("\ndecode stopped: %v", m.decodeErr)))
		b.WriteByte('\n')
	}
	return b.String()
}

func runInteractive(filename string, tokens []tds.Token, decodeErr error) error {
	prog := tea.NewProgram(newBrowseModel(filename, tokens, decodeErr), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
