package nixos

// Phase is one configuration section, in wizard order.
type Phase int

const (
	PhaseNetwork Phase = iota
	PhaseUser
	PhaseStorage
	PhaseEnvironment
	PhaseDesktop
	PhaseReview
)

var phaseNames = [...]string{"Network", "User", "Disk", "Environment", "Desktop", "Review"}
var phaseShortNames = [...]string{"Net", "User", "Disk", "Env", "Desk", "Rev"}

// Phases returns every phase in order.
func Phases() []Phase {
	return []Phase{PhaseNetwork, PhaseUser, PhaseStorage, PhaseEnvironment, PhaseDesktop, PhaseReview}
}

func (p Phase) Valid() bool {
	return p >= PhaseNetwork && p <= PhaseReview
}

func (p Phase) String() string {
	if !p.Valid() {
		return "Unknown"
	}
	return phaseNames[p]
}

// Short is the abbreviated tab label.
func (p Phase) Short() string {
	if !p.Valid() {
		return "?"
	}
	return phaseShortNames[p]
}

// PhaseMachine sequences the sections of an InstallConfig. It owns no state
// of its own: the cursor lives in InstallConfig.CurrentPhase.
type PhaseMachine struct {
	cfg *InstallConfig
}

func NewPhaseMachine(cfg *InstallConfig) *PhaseMachine {
	return &PhaseMachine{cfg: cfg}
}

func (m *PhaseMachine) Current() Phase {
	return m.cfg.CurrentPhase
}

// ValidatePhase runs the phase predicate and, on success, marks the section
// validated. A failing predicate never clears a flag set earlier.
func (m *PhaseMachine) ValidatePhase(p Phase) error {
	c := m.cfg
	switch p {
	case PhaseNetwork:
		if c.Network.Status != NetworkOnline {
			return &ValidationError{Field: "network", Reason: "Network must be online to continue"}
		}
		c.Network.Validated = true
	case PhaseUser:
		if len(c.User.Username) < 3 {
			return &ValidationError{Field: "username", Reason: "Username must be at least 3 characters"}
		}
		if c.User.FullName == "" {
			return &ValidationError{Field: "fullname", Reason: "Full name is required"}
		}
		c.User.Validated = true
	case PhaseStorage:
		if len(c.Storage.Disks) == 0 {
			return &ValidationError{Field: "storage", Reason: "At least one disk must be configured"}
		}
		if _, ok := c.Storage.Root(); !ok {
			return &ValidationError{Field: "storage", Reason: "Root (/) mountpoint is required"}
		}
		c.Storage.Validated = true
	case PhaseEnvironment:
		if c.Environment.Desktop == "" {
			return &ValidationError{Field: "desktop", Reason: "Desktop environment is required"}
		}
		if c.Environment.Server == DisplayText && c.Environment.Desktop != DesktopNone {
			return &ValidationError{Field: "desktop", Reason: "Text mode does not install a desktop"}
		}
		c.Environment.Validated = true
	case PhaseDesktop:
		c.Desktop.Validated = true
	case PhaseReview:
		if !c.IsComplete() {
			return &ValidationError{Field: "review", Reason: "Complete all phases to continue"}
		}
	default:
		return &ValidationError{Field: "phase", Reason: "unknown phase"}
	}
	return nil
}

// NetworkChecked re-evaluates the Network phase after a connectivity check.
// Going offline withdraws its validation; this is the one predicate that
// clears a flag.
func (m *PhaseMachine) NetworkChecked() error {
	if m.cfg.Network.Status != NetworkOnline {
		m.cfg.Network.Validated = false
	}
	return m.ValidatePhase(PhaseNetwork)
}

// Advance moves to the next phase when the current one validates. Phases
// from Desktop onwards advance even when their predicate fails.
func (m *PhaseMachine) Advance() error {
	cur := m.cfg.CurrentPhase
	if cur >= PhaseReview {
		return ErrLastPhase
	}
	if err := m.ValidatePhase(cur); err != nil && cur < PhaseDesktop {
		return err
	}
	m.cfg.CurrentPhase = cur + 1
	return nil
}

// Retreat moves back one phase. Validation flags are left alone.
func (m *PhaseMachine) Retreat() error {
	if m.cfg.CurrentPhase <= PhaseNetwork {
		return ErrFirstPhase
	}
	m.cfg.CurrentPhase--
	return nil
}

func (m *PhaseMachine) IsComplete() bool {
	return m.cfg.IsComplete()
}

// IsComplete reports whether every gated section is validated and storage
// holds at least one disk.
func (c *InstallConfig) IsComplete() bool {
	return c.Network.Validated &&
		c.User.Validated &&
		c.Storage.Validated && len(c.Storage.Disks) > 0 &&
		c.Environment.Validated &&
		c.Desktop.Validated
}

// PhaseValidated reports the tab marker for a phase. Review shows overall
// completeness.
func (c *InstallConfig) PhaseValidated(p Phase) bool {
	switch p {
	case PhaseNetwork:
		return c.Network.Validated
	case PhaseUser:
		return c.User.Validated
	case PhaseStorage:
		return c.Storage.Validated && len(c.Storage.Disks) > 0
	case PhaseEnvironment:
		return c.Environment.Validated
	case PhaseDesktop:
		return c.Desktop.Validated
	case PhaseReview:
		return c.IsComplete()
	}
	return false
}
