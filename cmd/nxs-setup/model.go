package nxssetup

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	nixos "github.com/julas23/nixos/pkg"
	"github.com/julas23/nixos/pkg/wizard"
)

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Header, tabs, message, buttons and help take the rest
		bodyHeight := msg.Height - 12
		if bodyHeight < 3 {
			bodyHeight = 3
		}
		bodyWidth := msg.Width - 4
		if bodyWidth < 20 {
			bodyWidth = 20
		}
		m.body.Width = bodyWidth
		m.body.Height = bodyHeight
		m.refreshBody()
		return m, nil

	case finishedMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.state.Editing {
				m.session.HandleEvent(wizard.Key(wizard.EventCancel))
			}
			m.state = m.session.HandleEvent(wizard.Key(wizard.EventCancel))
			return m, tea.Quit
		}
		if m.done {
			return m, nil
		}
		ev, ok := m.translate(msg)
		if !ok {
			return m, nil
		}
		m.state = m.session.HandleEvent(ev)
		m.refreshBody()

		switch m.state.Status {
		case wizard.StatusCancelled:
			return m, tea.Quit
		case wizard.StatusCompleted:
			return m, m.finishCmd()
		}
	}
	return m, nil
}

// translate maps a key press to a session event.
func (m Model) translate(msg tea.KeyMsg) (wizard.Event, bool) {
	switch msg.String() {
	case "up":
		return wizard.Key(wizard.EventUp), true
	case "down", "tab":
		return wizard.Key(wizard.EventDown), true
	case "enter":
		return wizard.Key(wizard.EventSelect), true
	case "esc", "f10":
		return wizard.Key(wizard.EventCancel), true
	case "f2", "ctrl+left":
		return wizard.Key(wizard.EventBack), true
	case "f3", "ctrl+right":
		return wizard.Key(wizard.EventNext), true
	case "f4":
		return wizard.Key(wizard.EventFinish), true
	case "f5":
		return wizard.Key(wizard.EventRefresh), true
	case "backspace":
		return wizard.Key(wizard.EventBackspace), true
	case " ":
		if m.state.Editing {
			return wizard.Rune(' '), true
		}
		return wizard.Key(wizard.EventSelect), true
	}
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		return wizard.Rune(msg.Runes[0]), true
	}
	return wizard.Event{}, false
}

func (m Model) finishCmd() tea.Cmd {
	cfg := m.session.Config()
	secrets := m.session.Secrets()
	finish := m.finish
	return func() tea.Msg {
		if finish == nil {
			return finishedMsg{}
		}
		return finishedMsg{err: finish(cfg, secrets)}
	}
}

// Outcome reports how the session ended. A failed finish callback wins over
// a completed session.
func (m Model) Outcome() nixos.Outcome {
	if m.err != nil {
		return nixos.OutcomeFailed
	}
	if m.session.Status() == wizard.StatusRunning {
		return nixos.OutcomeCancelled
	}
	return m.session.Status().Outcome()
}

// Err is the error returned by the finish callback, if any.
func (m Model) Err() error {
	return m.err
}

// Config is the configuration edited by the session.
func (m Model) Config() *nixos.InstallConfig {
	return m.session.Config()
}

// refreshBody rebuilds the field list and keeps the cursor in view.
func (m *Model) refreshBody() {
	m.body.SetContent(m.fieldsContent())
	m.adjustViewportOffset(&m.body, m.state.Cursor, len(m.state.Fields))
}

// adjustViewportOffset updates the viewport's YOffset so that the selected
// line stays within the visible window.
func (m *Model) adjustViewportOffset(vp *viewport.Model, selected, total int) {
	if vp.Height <= 0 || total == 0 {
		vp.SetYOffset(0)
		return
	}

	if selected < 0 {
		selected = 0
	}
	if selected >= total {
		selected = total - 1
	}

	maxYOffset := total - vp.Height
	if maxYOffset < 0 {
		maxYOffset = 0
	}

	if selected < vp.YOffset {
		vp.SetYOffset(selected)
		return
	}

	if selected >= vp.YOffset+vp.Height {
		vp.SetYOffset(min(selected-vp.Height+1, maxYOffset))
		return
	}

	// Clamp if window shrunk
	if vp.YOffset > maxYOffset {
		vp.SetYOffset(maxYOffset)
	}
}
