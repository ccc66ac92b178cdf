/*
NixOS installer configuration architecture:

 Probes (gopsutil, lsblk, lspci, wifi, HTTP reachability) produce best-effort
 Facts. Facts seed an InstallConfig, which is then edited by one of two
 front-ends: the multi-phase Session (TUI / SSH) or the linear Configurator
 (line prompts). Both resolve choices through the selection engine and the
 validators before writing them into the record.

 The PhaseMachine gates forward movement through the sections and reports
 completeness. Once complete, the record is rendered to a Nix module and a
 YAML snapshot is saved next to it.

          ┌──────────┐     ┌────────────────────────────┐
 Probes ─►│  Facts   │────►│       InstallConfig        │
          └──────────┘     │  Network User Storage ...  │
                           │  ▲                         │
 Session ──── events ──────┼──┤  PhaseMachine gates     │
 Configurator ─ prompts ───┼──┘  Advance / Retreat      │
                           └──────────────┬─────────────┘
                                          │ complete
                              ┌───────────┴───────────┐
                              ▼                       ▼
                        config.nix (nixexpr)   snapshot (yaml)
*/

package nixos

// Sentinel desktop value used when no graphical environment is installed.
const DesktopNone = "none"

type NetworkStatus string

const (
	NetworkChecking NetworkStatus = "checking"
	NetworkOnline   NetworkStatus = "online"
	NetworkOffline  NetworkStatus = "offline"
)

type DisplayServer string

const (
	DisplayWayland DisplayServer = "wayland"
	DisplayXorg    DisplayServer = "xorg"
	DisplayText    DisplayServer = "text"
)

// DisplayServers lists the display servers in menu order.
var DisplayServers = []DisplayServer{DisplayWayland, DisplayXorg, DisplayText}

var desktopsByServer = map[DisplayServer][]string{
	DisplayWayland: {"cosmic", "hyprland", "gnome", "plasma", "sway"},
	DisplayXorg:    {"xfce", "mate", "i3", "awesome", "gnome"},
	DisplayText:    {DesktopNone},
}

var defaultStacks = map[string][]string{
	"cosmic":   {"firefox", "kitty", "nautilus"},
	"gnome":    {"firefox", "gnome-terminal", "nautilus"},
	"xfce":     {"firefox", "xfce4-terminal", "thunar"},
	"hyprland": {"firefox", "kitty", "dolphin"},
}

// Filesystems offered for a root disk, in cycle order.
var Filesystems = []string{"ext4", "btrfs", "xfs", "f2fs"}

// DesktopChoices returns the desktops available for a display server.
func DesktopChoices(server DisplayServer) []string {
	return append([]string(nil), desktopsByServer[server]...)
}

// DefaultStack returns the package stack installed with a desktop.
func DefaultStack(desktop string) []string {
	if desktop == DesktopNone || desktop == "" {
		return []string{}
	}
	if stack, ok := defaultStacks[desktop]; ok {
		return append([]string{}, stack...)
	}
	return []string{"firefox", "terminal"}
}

type NetworkConfig struct {
	Status    NetworkStatus
	Interface Optional[string]
	Address   Optional[string]
	Gateway   Optional[string]
	DNS       []string
	SSID      Optional[string]
	Validated bool
}

type UserConfig struct {
	Username        string
	FullName        string
	UID             int
	GID             int
	Group           string
	Groups          []string
	Sudoer          bool
	NoPasswd        bool
	RootPasswordSet bool
	Shell           string
	Validated       bool
}

// DiskConfig describes one target disk. VGName and LVName only apply when
// LVM is set, PoolName only when ZFS is set.
type DiskConfig struct {
	Device     string
	Size       string
	Model      string
	LVM        bool
	VGName     string
	LVName     string
	ZFS        bool
	PoolName   string
	Filesystem string
	Mountpoint string
}

// NewDiskConfig returns a disk entry with the installer defaults.
func NewDiskConfig(device, size, model string) DiskConfig {
	return DiskConfig{
		Device:     device,
		Size:       size,
		Model:      model,
		VGName:     "vg_root",
		LVName:     "lv_root",
		PoolName:   "rpool",
		Filesystem: "ext4",
		Mountpoint: "/",
	}
}

// SetLVM toggles LVM. Turning it off also turns ZFS off.
func (d *DiskConfig) SetLVM(enabled bool) {
	d.LVM = enabled
	if !enabled {
		d.ZFS = false
	}
}

// SetZFS toggles the ZFS pool flag, which is only reachable with LVM on.
func (d *DiskConfig) SetZFS(enabled bool) error {
	if enabled && !d.LVM {
		return &ValidationError{Field: "zfs", Reason: "ZFS can only be enabled together with LVM"}
	}
	d.ZFS = enabled
	return nil
}

type StorageConfig struct {
	Disks     []DiskConfig
	Validated bool
}

// Root returns the first disk mounted at "/".
func (s StorageConfig) Root() (DiskConfig, bool) {
	for _, d := range s.Disks {
		if d.Mountpoint == "/" {
			return d, true
		}
	}
	return DiskConfig{}, false
}

type EnvironmentConfig struct {
	Server      DisplayServer
	Desktop     string
	Description string
	Validated   bool
}

type DesktopConfig struct {
	Stack          []string
	CustomPackages []string
	Validated      bool
}

// Packages returns the stack followed by the custom packages.
func (d DesktopConfig) Packages() []string {
	out := make([]string, 0, len(d.Stack)+len(d.CustomPackages))
	out = append(out, d.Stack...)
	return append(out, d.CustomPackages...)
}

type SystemConfig struct {
	Hostname      string
	Timezone      string
	Locale        string
	ConsoleKeymap string
	XkbLayout     string
	XkbVariant    string
	BootLoader    string
	StateVersion  string
}

type HardwareConfig struct {
	GPU          string
	Audio        bool
	AudioBackend string
	Bluetooth    bool
	Printing     bool
}

type ServicesConfig struct {
	Docker        bool
	Ollama        bool
	SSH           bool
	SSHPermitRoot bool
}

// InstallConfig is the full set of installation decisions.
type InstallConfig struct {
	Network      NetworkConfig
	User         UserConfig
	Storage      StorageConfig
	Environment  EnvironmentConfig
	Desktop      DesktopConfig
	System       SystemConfig
	Hardware     HardwareConfig
	Services     ServicesConfig
	CurrentPhase Phase
}

// NewInstallConfig returns a record with every default filled in.
func NewInstallConfig() *InstallConfig {
	return &InstallConfig{
		Network: NetworkConfig{
			Status: NetworkChecking,
			DNS:    []string{},
		},
		User: UserConfig{
			Username: "user",
			UID:      1000,
			GID:      1000,
			Group:    "users",
			Groups:   []string{"wheel", "networkmanager"},
			Sudoer:   true,
			Shell:    "bash",
		},
		Storage: StorageConfig{Disks: []DiskConfig{}},
		Environment: EnvironmentConfig{
			Server:  DisplayWayland,
			Desktop: "cosmic",
		},
		Desktop: DesktopConfig{
			Stack:          DefaultStack("cosmic"),
			CustomPackages: []string{},
		},
		System: SystemConfig{
			Hostname:      "nixos",
			Timezone:      "UTC",
			Locale:        "en_US.UTF-8",
			ConsoleKeymap: "us",
			XkbLayout:     "us",
			BootLoader:    "systemd-boot",
			StateVersion:  "24.11",
		},
		Hardware: HardwareConfig{
			GPU:          "none",
			Audio:        true,
			AudioBackend: "pipewire",
		},
		Services: ServicesConfig{SSH: true},
	}
}

// SetDisplayServer switches the display server and clears the desktop, since
// desktops are keyed by server. Text mode only allows the "none" desktop.
func (c *InstallConfig) SetDisplayServer(server DisplayServer) {
	c.Environment.Server = server
	if server == DisplayText {
		c.SetDesktop(DesktopNone)
		return
	}
	c.SetDesktop("")
}

// SetDesktop records the desktop choice and derives its package stack.
func (c *InstallConfig) SetDesktop(desktop string) {
	c.Environment.Desktop = desktop
	c.Desktop.Stack = DefaultStack(desktop)
}

// AddCustomPackage appends a user package. Duplicates are kept.
func (c *InstallConfig) AddCustomPackage(name string) {
	c.Desktop.CustomPackages = append(c.Desktop.CustomPackages, name)
}
