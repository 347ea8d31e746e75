package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WizardResult holds answers collected by the setup wizard.
type WizardResult struct {
	Network   string
	WalletURL string // empty keeps the built-in candidates
	Cancelled bool
}

type wizardStep int

const (
	stepNetwork wizardStep = iota
	stepEndpoint
	stepDone
)

type wizardModel struct {
	step     wizardStep
	result   WizardResult
	networks []string
	cursor   int
	input    string
}

func newWizard(networks []string) wizardModel {
	return wizardModel{networks: networks}
}

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.result.Cancelled = true
		return m, tea.Quit
	case tea.KeyEnter:
		m.submit()
	case tea.KeyUp:
		if m.step == stepNetwork && m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.step == stepNetwork && m.cursor < len(m.networks)-1 {
			m.cursor++
		}
	case tea.KeyBackspace:
		if m.step == stepEndpoint && len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyRunes:
		switch {
		case m.step == stepEndpoint:
			m.input += string(key.Runes)
		case key.String() == "k" && m.cursor > 0:
			m.cursor--
		case key.String() == "j" && m.cursor < len(m.networks)-1:
			m.cursor++
		case key.String() == "q":
			m.result.Cancelled = true
			return m, tea.Quit
		}
	}

	if m.step == stepDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m *wizardModel) submit() {
	switch m.step {
	case stepNetwork:
		if m.cursor < len(m.networks) {
			m.result.Network = m.networks[m.cursor]
		}
	case stepEndpoint:
		// strip whitespace and brackets picked up from a paste
		m.result.WalletURL = strings.Trim(strings.TrimSpace(m.input), "[]<>")
	}
	m.step++
}

func (m wizardModel) View() string {
	var s string

	switch m.step {
	case stepNetwork:
		s = renderMenu("Select the network your contracts live on:", m.networks, m.cursor)
	case stepEndpoint:
		s = StyleTitle.Render("Wallet endpoint (optional)") + "\n\n"
		s += StyleMeta.Render("JSON-RPC URL of your wallet, or Enter to probe Frame and the network's node:") + "\n"
		s += "> " + StyleAddress.Render(m.input) + "█\n"
	case stepDone:
		s = Success("Setup complete!") + "\n"
	}

	return StyleBorder.Render(s) + "\n"
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		s += icon + style.Render(item) + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · q quit")
	return s
}

// RunWizard launches the interactive setup wizard over networks and returns
// the answers.
func RunWizard(networks []string) (*WizardResult, error) {
	if len(networks) == 0 {
		return nil, fmt.Errorf("no networks to choose from")
	}
	final, err := tea.NewProgram(newWizard(networks)).Run()
	if err != nil {
		return nil, fmt.Errorf("wizard error: %w", err)
	}
	result := final.(wizardModel).result
	return &result, nil
}
