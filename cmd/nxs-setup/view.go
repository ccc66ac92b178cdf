package nxssetup

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	nixos "github.com/julas23/nixos/pkg"
	"github.com/julas23/nixos/pkg/wizard"
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("86")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	disabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	if m.done {
		if m.err != nil {
			return errorStyle.Render("Failed to write configuration: "+m.err.Error()) + "\n"
		}
		return successStyle.Render("Configuration saved.") + "\n"
	}

	message := ""
	if m.state.Message != "" {
		message = errorStyle.Render(m.state.Message)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTabs(),
		"",
		m.body.View(),
		message,
		m.renderButtons(),
		helpStyle.Render("Ctrl+←/→: Switch tabs | ↑↓: Navigate | Enter: Edit | Esc: Abort"),
	)

	return " " + strings.ReplaceAll(content, "\n", "\n ")
}

func (m Model) renderHeader() string {
	f := m.header.Facts
	cpu := "Unknown"
	if c, ok := f.CPU.Get(); ok {
		cpu = fmt.Sprintf("%s (%d cores)", c.Model, c.Cores)
	}
	title := titleStyle.Render("NixOS Installer " + m.header.Version)
	facts := subtitleStyle.Render(fmt.Sprintf("CPU: %s | Memory: %s | GPU: %s",
		cpu, f.MemoryString(), f.GPU.OrElse("Not detected")))
	return lipgloss.JoinVertical(lipgloss.Left, title, facts)
}

func (m Model) renderTabs() string {
	cfg := m.session.Config()
	var tabs []string
	for _, p := range nixos.Phases() {
		label := fmt.Sprintf("%s %s", mark(cfg.PhaseValidated(p)), p.Short())
		if p == m.state.Phase {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "○"
}

func (m Model) renderButtons() string {
	button := func(label string, enabled bool) string {
		if enabled {
			return normalStyle.Render(label)
		}
		return disabledStyle.Render(label)
	}
	return strings.Join([]string{
		button("[F10] Abort", true),
		button("[F2] Back", m.state.CanBack),
		button("[F3] Next", m.state.CanNext),
		button("[F4] Finish", m.state.CanFinish),
	}, "  ")
}

// fieldsContent renders one line per field so the cursor maps onto viewport
// lines.
func (m Model) fieldsContent() string {
	if len(m.state.Fields) == 0 {
		return normalStyle.Render("  Nothing to configure")
	}
	lines := make([]string, 0, len(m.state.Fields))
	for i, f := range m.state.Fields {
		line := "  " + m.fieldLine(i, f)
		switch {
		case i == m.state.Cursor:
			lines = append(lines, selectedStyle.Render("▸ "+line[2:]))
		case f.Heading:
			lines = append(lines, headingStyle.Render(line))
		default:
			lines = append(lines, normalStyle.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) fieldLine(i int, f wizard.Field) string {
	if f.Heading {
		return f.Label
	}
	value := f.Value
	if m.state.Editing && i == m.state.Cursor {
		value = m.state.Buffer
		if f.Masked {
			value = strings.Repeat("*", len([]rune(value)))
		}
		return fmt.Sprintf("%s: [%s_]", f.Label, value)
	}
	switch f.Kind {
	case wizard.FieldChoice:
		if f.Selected {
			return "(•) " + f.Label
		}
		return "( ) " + f.Label
	case wizard.FieldAction:
		return "[ " + f.Label + " ]"
	case wizard.FieldToggle:
		return fmt.Sprintf("%s: [%s]", f.Label, value)
	}
	if value == "" {
		return f.Label
	}
	return fmt.Sprintf("%s: %s", f.Label, value)
}
