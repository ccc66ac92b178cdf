package wizard

import (
	"fmt"
	"strconv"
	"strings"

	nixos "github.com/julas23/nixos/pkg"
	"github.com/julas23/nixos/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

type FieldKind int

const (
	// FieldInfo is read only.
	FieldInfo FieldKind = iota
	// FieldText is edited through the line buffer.
	FieldText
	// FieldToggle flips a boolean on select.
	FieldToggle
	// FieldChoice is one entry of a list; Selected marks the current value.
	FieldChoice
	// FieldAction runs a command on select.
	FieldAction
)

type Field struct {
	Label    string
	Value    string
	Kind     FieldKind
	Selected bool
	Masked   bool
	Heading  bool
}

type field struct {
	Field
	commit   func(string) error
	activate func() error
}

// Shells offered for the login shell, in cycle order.
var Shells = []string{"bash", "zsh", "fish"}

func info(label, value string) field {
	return field{Field: Field{Label: label, Value: value, Kind: FieldInfo}}
}

func heading(label string) field {
	return field{Field: Field{Label: label, Kind: FieldInfo, Heading: true}}
}

func text(label, value string, commit func(string) error) field {
	return field{Field: Field{Label: label, Value: value, Kind: FieldText}, commit: commit}
}

func toggle(label string, on bool, flip func() error) field {
	return field{Field: Field{Label: label, Value: yesNo(on), Kind: FieldToggle}, activate: flip}
}

func choice(label string, selected bool, pick func() error) field {
	return field{Field: Field{Label: label, Kind: FieldChoice, Selected: selected}, activate: pick}
}

func action(label string, run func() error) field {
	return field{Field: Field{Label: label, Kind: FieldAction}, activate: run}
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func orNA(o nixos.Optional[string], def string) string {
	return o.OrElse(def)
}

// next returns the entry after cur, wrapping around.
func next(values []string, cur string) string {
	for i, v := range values {
		if v == cur {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

func (s *Session) fields() []field {
	switch s.cfg.CurrentPhase {
	case nixos.PhaseNetwork:
		return s.networkFields()
	case nixos.PhaseUser:
		return s.userFields()
	case nixos.PhaseStorage:
		return s.storageFields()
	case nixos.PhaseEnvironment:
		return s.environmentFields()
	case nixos.PhaseDesktop:
		return s.desktopFields()
	case nixos.PhaseReview:
		return s.reviewFields()
	}
	return nil
}

func (s *Session) networkFields() []field {
	n := s.cfg.Network
	dns := "N/A"
	if len(n.DNS) > 0 {
		dns = strings.Join(n.DNS, ", ")
	}
	return []field{
		info("Status", strings.ToUpper(string(n.Status))),
		info("Interface", orNA(n.Interface, "Not detected")),
		info("IP Address", orNA(n.Address, "N/A")),
		info("Gateway", orNA(n.Gateway, "N/A")),
		info("DNS", dns),
		info("Wireless", orNA(n.SSID, "N/A")),
		action("Check network status", func() error {
			s.refreshNetwork()
			return nil
		}),
	}
}

func (s *Session) userFields() []field {
	u := &s.cfg.User
	rootPw := "NOT SET"
	if u.RootPasswordSet {
		rootPw = "SET"
	}
	fields := []field{
		text("Username", u.Username, func(v string) error {
			if err := validate.Username(v); err != nil {
				return err
			}
			u.Username = v
			return nil
		}),
		text("Full Name", u.FullName, func(v string) error {
			if err := validate.FullName(v); err != nil {
				return err
			}
			u.FullName = v
			return nil
		}),
		text("UID", strconv.Itoa(u.UID), func(v string) error {
			if err := validate.NumericID("UID")(v); err != nil {
				return err
			}
			u.UID, _ = strconv.Atoi(strings.TrimSpace(v))
			return nil
		}),
		text("GID", strconv.Itoa(u.GID), func(v string) error {
			if err := validate.NumericID("GID")(v); err != nil {
				return err
			}
			u.GID, _ = strconv.Atoi(strings.TrimSpace(v))
			return nil
		}),
		text("Primary Group", u.Group, func(v string) error {
			if err := validate.GroupName(v); err != nil {
				return err
			}
			u.Group = v
			return nil
		}),
		text("Groups", strings.Join(u.Groups, ", "), func(v string) error {
			if err := validate.GroupList(v); err != nil {
				return err
			}
			u.Groups = validate.SplitList(v)
			return nil
		}),
		toggle("Sudoer", u.Sudoer, func() error {
			u.Sudoer = !u.Sudoer
			if !u.Sudoer {
				u.NoPasswd = false
			}
			return nil
		}),
	}
	if u.Sudoer {
		fields = append(fields, toggle("No Password", u.NoPasswd, func() error {
			u.NoPasswd = !u.NoPasswd
			return nil
		}))
	}
	fields = append(fields,
		field{
			Field: Field{Label: "Shell", Value: u.Shell, Kind: FieldToggle},
			activate: func() error {
				u.Shell = next(Shells, u.Shell)
				return nil
			},
		},
		s.rootPasswordField(rootPw),
	)
	return fields
}

// rootPasswordField takes the password twice. Only a bcrypt hash is kept.
func (s *Session) rootPasswordField(value string) field {
	if s.pendingPassword == "" {
		return field{
			Field: Field{Label: "Root Password", Value: value, Kind: FieldText, Masked: true},
			commit: func(v string) error {
				if err := validate.Password(v); err != nil {
					return err
				}
				s.pendingPassword = v
				return nil
			},
		}
	}
	return field{
		Field: Field{Label: "Confirm Root Password", Value: value, Kind: FieldText, Masked: true},
		commit: func(v string) error {
			if err := validate.PasswordConfirm(s.pendingPassword, v); err != nil {
				return err
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(v), s.cost)
			if err != nil {
				return fmt.Errorf("failed to hash root password: %w", err)
			}
			s.pendingPassword = ""
			s.secrets.RootPasswordHash = string(hash)
			s.cfg.User.RootPasswordSet = true
			return nil
		},
	}
}

func (s *Session) storageFields() []field {
	st := &s.cfg.Storage
	if len(st.Disks) == 0 {
		fields := []field{heading("Available Disks")}
		if len(s.disks) == 0 {
			return append(fields, info("No disks detected", ""))
		}
		for _, d := range s.disks {
			d := d
			label := fmt.Sprintf("%s - %s - %s", d.Device, d.Size, d.Model)
			if d.Removable {
				label += " (removable)"
			}
			fields = append(fields, choice(label, false, func() error {
				if err := validate.DiskPath(d.Device); err != nil {
					return err
				}
				st.Disks = append(st.Disks, nixos.NewDiskConfig(d.Device, d.Size, d.Model))
				s.cursor = 0
				return nil
			}))
		}
		return fields
	}

	d := &st.Disks[0]
	fields := []field{
		info("Device", d.Device),
		info("Size", d.Size),
		info("Model", d.Model),
		toggle("LVM", d.LVM, func() error {
			d.SetLVM(!d.LVM)
			return nil
		}),
	}
	if d.LVM {
		fields = append(fields,
			toggle("ZFS", d.ZFS, func() error { return d.SetZFS(!d.ZFS) }),
			text("VG Name", d.VGName, func(v string) error {
				if err := validate.VGName(v); err != nil {
					return err
				}
				d.VGName = v
				return nil
			}),
			text("LV Name", d.LVName, func(v string) error {
				if err := validate.LVName(v); err != nil {
					return err
				}
				d.LVName = v
				return nil
			}),
		)
		if d.ZFS {
			fields = append(fields, text("Pool Name", d.PoolName, func(v string) error {
				if err := validate.PoolName(v); err != nil {
					return err
				}
				d.PoolName = v
				return nil
			}))
		}
	}
	fields = append(fields,
		field{
			Field: Field{Label: "Filesystem", Value: d.Filesystem, Kind: FieldToggle},
			activate: func() error {
				d.Filesystem = next(nixos.Filesystems, d.Filesystem)
				return nil
			},
		},
		text("Mountpoint", d.Mountpoint, func(v string) error {
			if err := validate.Mountpoint(v); err != nil {
				return err
			}
			d.Mountpoint = v
			return nil
		}),
		action("Change disk", func() error {
			s.clearDisks()
			return nil
		}),
	)
	return fields
}

func (s *Session) environmentFields() []field {
	env := &s.cfg.Environment
	fields := []field{heading("Graphics")}
	for _, srv := range nixos.DisplayServers {
		srv := srv
		fields = append(fields, choice(string(srv), env.Server == srv, func() error {
			if env.Server != srv {
				s.cfg.SetDisplayServer(srv)
			}
			return nil
		}))
	}
	fields = append(fields, heading("Desktop"))
	for _, d := range nixos.DesktopChoices(env.Server) {
		d := d
		fields = append(fields, choice(d, env.Desktop == d, func() error {
			s.cfg.SetDesktop(d)
			return nil
		}))
	}
	return append(fields, text("Description", env.Description, func(v string) error {
		env.Description = v
		return nil
	}))
}

func (s *Session) desktopFields() []field {
	dc := &s.cfg.Desktop
	fields := []field{heading("Default Stack")}
	if len(dc.Stack) == 0 {
		fields = append(fields, info("(none)", ""))
	}
	for _, p := range dc.Stack {
		fields = append(fields, info("• "+p, ""))
	}
	custom := "None"
	if len(dc.CustomPackages) > 0 {
		custom = strings.Join(dc.CustomPackages, ", ")
	}
	return append(fields,
		info("Custom Packages", custom),
		text("Add package", "", func(v string) error {
			if err := validate.PackageName(v); err != nil {
				return err
			}
			s.cfg.AddCustomPackage(v)
			return nil
		}),
	)
}

func (s *Session) reviewFields() []field {
	c := s.cfg
	fields := []field{
		heading("NETWORK"),
		info("Status", string(c.Network.Status)),
		info("IP", orNA(c.Network.Address, "N/A")),
		heading("USER"),
		info("Username", c.User.Username),
		info("Full Name", c.User.FullName),
		info("Sudoer", yesNo(c.User.Sudoer)),
		heading("DISK"),
	}
	for _, d := range c.Storage.Disks {
		fields = append(fields,
			info("Device", fmt.Sprintf("%s (%s)", d.Device, d.Size)),
			info("Filesystem", d.Filesystem),
			info("Mountpoint", d.Mountpoint),
			info("LVM", yesNo(d.LVM)),
		)
	}
	fields = append(fields,
		heading("ENVIRONMENT"),
		info("Graphics", string(c.Environment.Server)),
		info("Desktop", c.Environment.Desktop),
		heading("PHASES"),
	)
	for _, p := range nixos.Phases()[:nixos.PhaseReview] {
		fields = append(fields, info(p.String(), Mark(c, p)))
	}
	return fields
}

// Mark is the tab marker for a phase.
func Mark(c *nixos.InstallConfig, p nixos.Phase) string {
	if c.PhaseValidated(p) {
		return "✓"
	}
	return "○"
}
