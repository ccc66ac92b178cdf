package nxssetup

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	nixos "github.com/julas23/nixos/pkg"
	"github.com/julas23/nixos/pkg/wizard"
)

// ProgramOptions returns default program options.
func ProgramOptions() []tea.ProgramOption {
	return []tea.ProgramOption{tea.WithAltScreen()}
}

// FinishFunc persists a completed configuration and the secrets collected
// alongside it.
type FinishFunc func(cfg *nixos.InstallConfig, secrets wizard.Secrets) error

// NewModel creates a setup model driving session.
func NewModel(session *wizard.Session, header Header, finish FinishFunc) Model {
	return Model{
		session: session,
		state:   session.State(),
		header:  header,
		finish:  finish,
		body:    viewport.New(0, 0),
	}
}

// SessionFactory builds a fresh session for each SSH connection.
type SessionFactory func(s ssh.Session) (*wizard.Session, Header, FinishFunc, error)

// WishHandler exposes the setup TUI over SSH. Every connection edits its own
// configuration.
func WishHandler(factory SessionFactory) func(ssh.Session) (tea.Model, []tea.ProgramOption) {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		session, header, finish, err := factory(s)
		if err != nil {
			return errorModel{err: err}, ProgramOptions()
		}
		return NewModel(session, header, finish), ProgramOptions()
	}
}
