package nxssetup

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/julas23/nixos/pkg/system"
	"github.com/julas23/nixos/pkg/wizard"
)

// Header is the static system information drawn above the tabs.
type Header struct {
	Facts   system.Facts
	Version string
}

// Model is the bubbletea model for the multi-phase setup.
type Model struct {
	session *wizard.Session
	state   wizard.State
	header  Header
	finish  FinishFunc

	body          viewport.Model
	width, height int

	// Set once the finish callback has run.
	done bool
	err  error
}

// Message types
type finishedMsg struct {
	err error
}

// errorModel is shown when a session could not be set up at all.
type errorModel struct {
	err error
}

func (m errorModel) Init() tea.Cmd { return nil }

func (m errorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		return m, tea.Quit
	}
	return m, nil
}

func (m errorModel) View() string {
	return errorStyle.Render("Setup unavailable: "+m.err.Error()) + "\n\n" + helpStyle.Render("Press any key to disconnect")
}
