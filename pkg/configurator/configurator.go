// Package configurator is the line-prompt front-end. It walks every section
// in a fixed order instead of using phases, and is what `nxs configure` runs
// on consoles where the full-screen session is not wanted.
package configurator

import (
	"fmt"
	"io"
	"strconv"

	nixos "github.com/julas23/nixos/pkg"
	"github.com/julas23/nixos/pkg/selection"
	"github.com/julas23/nixos/pkg/system"
	"github.com/julas23/nixos/pkg/validate"
	"github.com/sirupsen/logrus"
)

type Configurator struct {
	ui       *selection.Engine
	catalogs *system.Catalogs
	facts    system.Facts
	log      logrus.FieldLogger
}

func New(ui *selection.Engine, catalogs *system.Catalogs, facts system.Facts, log logrus.FieldLogger) *Configurator {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Configurator{ui: ui, catalogs: catalogs, facts: facts, log: log}
}

// Run fills cfg from the prompts. It returns nixos.ErrCancelled when the
// input is aborted or the final confirmation is declined; cfg must then be
// discarded.
func (c *Configurator) Run(cfg *nixos.InstallConfig) error {
	c.ui.Header("NixOS Interactive Configuration Wizard")
	c.printSystemInfo()
	if err := c.ui.Pause("\nPress Enter to continue..."); err != nil {
		return err
	}

	steps := []struct {
		name string
		run  func(*nixos.InstallConfig) error
	}{
		{"system", c.configureSystem},
		{"locale", c.configureLocale},
		{"hardware", c.configureHardware},
		{"desktop", c.configureDesktop},
		{"services", c.configureServices},
		{"user", c.configureUser},
		{"storage", c.configureStorage},
	}
	for _, step := range steps {
		if err := step.run(cfg); err != nil {
			return err
		}
		c.log.WithField("step", step.name).Debug("step configured")
	}

	c.showSummary(cfg)
	ok, err := c.ui.Confirm("\nGenerate configuration?", true)
	if err != nil {
		return err
	}
	if !ok {
		return nixos.ErrCancelled
	}
	c.markValidated(cfg)
	return nil
}

func (c *Configurator) printSystemInfo() {
	f := c.facts
	cpu, hasCPU := f.CPU.Get()
	model, cores := "Unknown", "Unknown"
	if hasCPU {
		model, cores = cpu.Model, strconv.Itoa(cpu.Cores)
	}
	network := "Disconnected"
	if f.Network.Online {
		network = "Connected"
		if ip, ok := f.Network.Address.Get(); ok {
			network += " (" + ip + ")"
		}
	}
	c.ui.Printf("CPU:     %s\n", model)
	c.ui.Printf("Cores:   %s\n", cores)
	c.ui.Printf("Memory:  %s\n", f.MemoryString())
	c.ui.Printf("GPU:     %s\n", f.GPU.OrElse("Not detected"))
	c.ui.Printf("Network: %s\n", network)
}

func (c *Configurator) configureSystem(cfg *nixos.InstallConfig) error {
	c.ui.Header("SYSTEM CONFIGURATION")
	hostname, err := c.ui.Input("Enter hostname", cfg.System.Hostname, validate.Hostname)
	if err != nil {
		return err
	}
	cfg.System.Hostname = hostname
	return nil
}

func (c *Configurator) configureLocale(cfg *nixos.InstallConfig) error {
	c.ui.Header("REGIONAL SETTINGS")

	tz, err := c.ui.SelectGrouped("Select timezone", c.catalogs.Timezones, "")
	if err != nil {
		return err
	}
	locale, err := c.ui.Select("Select language/locale", c.catalogs.Locales, "")
	if err != nil {
		return err
	}
	keymap, err := c.ui.Select("Select console keyboard layout", c.catalogs.Keymaps, "")
	if err != nil {
		return err
	}
	layout, err := c.ui.Select("Select X11 keyboard layout", c.catalogs.LayoutCatalog(), "")
	if err != nil {
		return err
	}

	variant := ""
	if l, ok := c.catalogs.Layout(layout); ok && l.HasVariantChoice() {
		variant, err = c.ui.Choose("Select X11 keyboard variant", l.Variants)
		if err != nil {
			return err
		}
	}

	cfg.System.Timezone = tz
	cfg.System.Locale = locale
	cfg.System.ConsoleKeymap = keymap
	cfg.System.XkbLayout = layout
	cfg.System.XkbVariant = variant
	return nil
}

func (c *Configurator) configureHardware(cfg *nixos.InstallConfig) error {
	c.ui.Header("HARDWARE CONFIGURATION")

	gpu, err := c.ui.Select("Select GPU driver", c.catalogs.GPUs, c.facts.GPU.OrElse(""))
	if err != nil {
		return err
	}
	cfg.Hardware.GPU = gpu

	for _, q := range []struct {
		prompt string
		def    bool
		dst    *bool
	}{
		{"Enable audio support?", true, &cfg.Hardware.Audio},
		{"Enable Bluetooth?", false, &cfg.Hardware.Bluetooth},
		{"Enable printing (CUPS)?", false, &cfg.Hardware.Printing},
	} {
		if *q.dst, err = c.ui.Confirm(q.prompt, q.def); err != nil {
			return err
		}
	}
	if cfg.Hardware.Audio {
		cfg.Hardware.AudioBackend = "pipewire"
	}
	return nil
}

func (c *Configurator) configureDesktop(cfg *nixos.InstallConfig) error {
	c.ui.Header("DESKTOP ENVIRONMENT")

	desktop, err := c.ui.Select("Select desktop environment or window manager", c.catalogs.DesktopCatalog(), "")
	if err != nil {
		return err
	}

	server := cfg.Environment.Server
	if d, ok := c.catalogs.Desktop(desktop); ok {
		switch d.DisplayServer {
		case "both":
			wayland, err := c.ui.Confirm("Use Wayland?", true)
			if err != nil {
				return err
			}
			server = nixos.DisplayXorg
			if wayland {
				server = nixos.DisplayWayland
			}
		case "none":
			server = nixos.DisplayText
		default:
			server = nixos.DisplayServer(d.DisplayServer)
		}
	}
	cfg.SetDisplayServer(server)
	if server != nixos.DisplayText {
		cfg.SetDesktop(desktop)
	}
	return nil
}

func (c *Configurator) configureServices(cfg *nixos.InstallConfig) error {
	c.ui.Header("SERVICES")
	var err error
	for _, q := range []struct {
		prompt string
		def    bool
		dst    *bool
	}{
		{"Enable Docker?", false, &cfg.Services.Docker},
		{"Enable Ollama (AI)?", false, &cfg.Services.Ollama},
		{"Enable SSH server?", true, &cfg.Services.SSH},
	} {
		if *q.dst, err = c.ui.Confirm(q.prompt, q.def); err != nil {
			return err
		}
	}
	return nil
}

func (c *Configurator) configureUser(cfg *nixos.InstallConfig) error {
	c.ui.Header("USER CONFIGURATION")
	u := &cfg.User

	var err error
	if u.Username, err = c.ui.Input("Enter username", u.Username, validate.Username); err != nil {
		return err
	}
	fullname := u.FullName
	if fullname == "" {
		fullname = "User"
	}
	if u.FullName, err = c.ui.Input("Enter full name", fullname, validate.FullName); err != nil {
		return err
	}
	if u.Sudoer, err = c.ui.Confirm("Add user to sudoers?", true); err != nil {
		return err
	}
	u.NoPasswd = false
	if u.Sudoer {
		if u.NoPasswd, err = c.ui.Confirm("Allow sudo without password?", false); err != nil {
			return err
		}
	}
	return nil
}

func (c *Configurator) configureStorage(cfg *nixos.InstallConfig) error {
	c.ui.Header("DISK CONFIGURATION")

	var disk nixos.DiskConfig
	if len(c.facts.Disks) == 0 {
		c.ui.Printf("No disks detected.\n")
		device, err := c.ui.Input("Enter target disk", "", validate.DiskPath)
		if err != nil {
			return err
		}
		disk = nixos.NewDiskConfig(device, "", "Unknown")
	} else {
		catalog := make(selection.Catalog, len(c.facts.Disks))
		for i, d := range c.facts.Disks {
			catalog[i] = selection.Option{Value: d.Device, Label: d.Device, Description: d.Size + " " + d.Model}
		}
		device, err := c.ui.SelectMenu(selection.NewMenu("Select installation disk", catalog, selection.MenuOptions{NoCustom: true}))
		if err != nil {
			return err
		}
		for _, d := range c.facts.Disks {
			if d.Device == device {
				disk = nixos.NewDiskConfig(d.Device, d.Size, d.Model)
			}
		}
	}

	lvm, err := c.ui.Confirm("Use LVM?", false)
	if err != nil {
		return err
	}
	disk.SetLVM(lvm)
	if lvm {
		if disk.VGName, err = c.ui.Input("Volume group name", disk.VGName, validate.VGName); err != nil {
			return err
		}
		if disk.LVName, err = c.ui.Input("Logical volume name", disk.LVName, validate.LVName); err != nil {
			return err
		}
		zfs, err := c.ui.Confirm("Use a ZFS pool?", false)
		if err != nil {
			return err
		}
		if err := disk.SetZFS(zfs); err != nil {
			return err
		}
		if zfs {
			if disk.PoolName, err = c.ui.Input("Pool name", disk.PoolName, validate.PoolName); err != nil {
				return err
			}
		}
	}
	if !disk.ZFS {
		if disk.Filesystem, err = c.ui.Choose("Select root filesystem", nixos.Filesystems); err != nil {
			return err
		}
	}

	cfg.Storage.Disks = []nixos.DiskConfig{disk}
	return nil
}

func (c *Configurator) showSummary(cfg *nixos.InstallConfig) {
	c.ui.Header("CONFIGURATION SUMMARY")
	for _, line := range Summary(cfg) {
		c.ui.Printf("%-17s%s\n", line[0]+":", line[1])
	}
}

// Summary returns the label/value pairs shown before confirmation.
func Summary(cfg *nixos.InstallConfig) [][2]string {
	disk := "None"
	if root, ok := cfg.Storage.Root(); ok {
		disk = fmt.Sprintf("%s (%s)", root.Device, root.Filesystem)
		if root.LVM {
			disk += " on LVM"
		}
	}
	yes := func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	}
	return [][2]string{
		{"Hostname", cfg.System.Hostname},
		{"Timezone", cfg.System.Timezone},
		{"Locale", cfg.System.Locale},
		{"Console Keymap", cfg.System.ConsoleKeymap},
		{"X11 Layout", cfg.System.XkbLayout + " " + cfg.System.XkbVariant},
		{"GPU", cfg.Hardware.GPU},
		{"Desktop", cfg.Environment.Desktop},
		{"Display Server", string(cfg.Environment.Server)},
		{"Username", cfg.User.Username},
		{"Disk", disk},
		{"Docker", yes(cfg.Services.Docker)},
		{"Ollama", yes(cfg.Services.Ollama)},
		{"SSH", yes(cfg.Services.SSH)},
	}
}

// markValidated records which phases the answers satisfy so a snapshot of
// this run resumes on the review phase.
func (c *Configurator) markValidated(cfg *nixos.InstallConfig) {
	m := nixos.NewPhaseMachine(cfg)
	for _, p := range nixos.Phases()[:nixos.PhaseReview] {
		if err := m.ValidatePhase(p); err != nil {
			c.log.WithError(err).WithField("phase", p).Debug("phase left unvalidated")
		}
	}
	cfg.CurrentPhase = nixos.PhaseReview
}
