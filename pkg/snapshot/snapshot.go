// Package snapshot persists a complete InstallConfig as YAML so an install
// can be resumed or audited.
//
// Decode(Encode(c)) reproduces c field for field for any record built through
// NewInstallConfig and its setters, which never leave a list nil. A nil list
// assigned directly decodes as an empty one, so such a record round-trips
// only up to nil versus empty.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	nixos "github.com/julas23/nixos/pkg"
	"github.com/julas23/nixos/pkg/utils"
	"gopkg.in/yaml.v3"
)

// Version is the document format written by Encode.
const Version = 1

type document struct {
	Version      int            `yaml:"version"`
	CurrentPhase int            `yaml:"current_phase"`
	Network      networkDoc     `yaml:"network"`
	User         userDoc        `yaml:"user"`
	Storage      storageDoc     `yaml:"storage"`
	Environment  environmentDoc `yaml:"environment"`
	Desktop      desktopDoc     `yaml:"desktop"`
	System       systemDoc      `yaml:"system"`
	Hardware     hardwareDoc    `yaml:"hardware"`
	Services     servicesDoc    `yaml:"services"`
}

type networkDoc struct {
	Status    string   `yaml:"status"`
	Interface *string  `yaml:"interface,omitempty"`
	Address   *string  `yaml:"address,omitempty"`
	Gateway   *string  `yaml:"gateway,omitempty"`
	DNS       []string `yaml:"dns"`
	SSID      *string  `yaml:"ssid,omitempty"`
	Validated bool     `yaml:"validated"`
}

type userDoc struct {
	Username        string   `yaml:"username"`
	FullName        string   `yaml:"full_name"`
	UID             int      `yaml:"uid"`
	GID             int      `yaml:"gid"`
	Group           string   `yaml:"group"`
	Groups          []string `yaml:"groups"`
	Sudoer          bool     `yaml:"sudoer"`
	NoPasswd        bool     `yaml:"nopasswd"`
	RootPasswordSet bool     `yaml:"root_password_set"`
	Shell           string   `yaml:"shell"`
	Validated       bool     `yaml:"validated"`
}

type diskDoc struct {
	Device     string `yaml:"device"`
	Size       string `yaml:"size"`
	Model      string `yaml:"model"`
	LVM        bool   `yaml:"lvm"`
	VGName     string `yaml:"vg_name"`
	LVName     string `yaml:"lv_name"`
	ZFS        bool   `yaml:"zfs"`
	PoolName   string `yaml:"pool_name"`
	Filesystem string `yaml:"filesystem"`
	Mountpoint string `yaml:"mountpoint"`
}

type storageDoc struct {
	Disks     []diskDoc `yaml:"disks"`
	Validated bool      `yaml:"validated"`
}

type environmentDoc struct {
	Server      string `yaml:"server"`
	Desktop     string `yaml:"desktop"`
	Description string `yaml:"description"`
	Validated   bool   `yaml:"validated"`
}

type desktopDoc struct {
	Stack          []string `yaml:"stack"`
	CustomPackages []string `yaml:"custom_packages"`
	Validated      bool     `yaml:"validated"`
}

type systemDoc struct {
	Hostname      string `yaml:"hostname"`
	Timezone      string `yaml:"timezone"`
	Locale        string `yaml:"locale"`
	ConsoleKeymap string `yaml:"console_keymap"`
	XkbLayout     string `yaml:"xkb_layout"`
	XkbVariant    string `yaml:"xkb_variant"`
	BootLoader    string `yaml:"boot_loader"`
	StateVersion  string `yaml:"state_version"`
}

type hardwareDoc struct {
	GPU          string `yaml:"gpu"`
	Audio        bool   `yaml:"audio"`
	AudioBackend string `yaml:"audio_backend"`
	Bluetooth    bool   `yaml:"bluetooth"`
	Printing     bool   `yaml:"printing"`
}

type servicesDoc struct {
	Docker        bool `yaml:"docker"`
	Ollama        bool `yaml:"ollama"`
	SSH           bool `yaml:"ssh"`
	SSHPermitRoot bool `yaml:"ssh_permit_root"`
}

func Encode(cfg *nixos.InstallConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toDoc(cfg)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Decode(data []byte) (*nixos.InstallConfig, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("unsupported snapshot version %d", doc.Version)
	}
	return fromDoc(doc)
}

// Save writes the snapshot atomically. Failures are SerializationErrors.
func Save(path string, cfg *nixos.InstallConfig) error {
	data, err := Encode(cfg)
	if err != nil {
		return &nixos.SerializationError{Op: "encode snapshot", Path: path, Err: err}
	}
	if err := utils.WriteFileAtomic(path, data, 0o600); err != nil {
		return &nixos.SerializationError{Op: "write snapshot", Path: path, Err: err}
	}
	return nil
}

func Load(path string) (*nixos.InstallConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("no snapshot at %s: %w", path, err)
	}
	if err != nil {
		return nil, err
	}
	cfg, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func toDoc(c *nixos.InstallConfig) document {
	disks := make([]diskDoc, 0, len(c.Storage.Disks))
	for _, d := range c.Storage.Disks {
		disks = append(disks, diskDoc(d))
	}
	return document{
		Version:      Version,
		CurrentPhase: int(c.CurrentPhase),
		Network: networkDoc{
			Status:    string(c.Network.Status),
			Interface: c.Network.Interface.Ptr(),
			Address:   c.Network.Address.Ptr(),
			Gateway:   c.Network.Gateway.Ptr(),
			DNS:       nonNil(c.Network.DNS),
			SSID:      c.Network.SSID.Ptr(),
			Validated: c.Network.Validated,
		},
		User: userDoc{
			Username:        c.User.Username,
			FullName:        c.User.FullName,
			UID:             c.User.UID,
			GID:             c.User.GID,
			Group:           c.User.Group,
			Groups:          nonNil(c.User.Groups),
			Sudoer:          c.User.Sudoer,
			NoPasswd:        c.User.NoPasswd,
			RootPasswordSet: c.User.RootPasswordSet,
			Shell:           c.User.Shell,
			Validated:       c.User.Validated,
		},
		Storage: storageDoc{Disks: disks, Validated: c.Storage.Validated},
		Environment: environmentDoc{
			Server:      string(c.Environment.Server),
			Desktop:     c.Environment.Desktop,
			Description: c.Environment.Description,
			Validated:   c.Environment.Validated,
		},
		Desktop: desktopDoc{
			Stack:          nonNil(c.Desktop.Stack),
			CustomPackages: nonNil(c.Desktop.CustomPackages),
			Validated:      c.Desktop.Validated,
		},
		System:   systemDoc(c.System),
		Hardware: hardwareDoc(c.Hardware),
		Services: servicesDoc(c.Services),
	}
}

func fromDoc(doc document) (*nixos.InstallConfig, error) {
	phase := nixos.Phase(doc.CurrentPhase)
	if !phase.Valid() {
		return nil, fmt.Errorf("invalid current_phase %d", doc.CurrentPhase)
	}

	status := nixos.NetworkStatus(doc.Network.Status)
	switch status {
	case nixos.NetworkChecking, nixos.NetworkOnline, nixos.NetworkOffline:
	default:
		return nil, fmt.Errorf("invalid network status %q", doc.Network.Status)
	}

	server := nixos.DisplayServer(doc.Environment.Server)
	switch server {
	case nixos.DisplayWayland, nixos.DisplayXorg, nixos.DisplayText:
	default:
		return nil, fmt.Errorf("invalid display server %q", doc.Environment.Server)
	}

	disks := make([]nixos.DiskConfig, 0, len(doc.Storage.Disks))
	for _, d := range doc.Storage.Disks {
		disks = append(disks, nixos.DiskConfig(d))
	}

	return &nixos.InstallConfig{
		Network: nixos.NetworkConfig{
			Status:    status,
			Interface: nixos.OptionalFromPtr(doc.Network.Interface),
			Address:   nixos.OptionalFromPtr(doc.Network.Address),
			Gateway:   nixos.OptionalFromPtr(doc.Network.Gateway),
			DNS:       nonNil(doc.Network.DNS),
			SSID:      nixos.OptionalFromPtr(doc.Network.SSID),
			Validated: doc.Network.Validated,
		},
		User: nixos.UserConfig{
			Username:        doc.User.Username,
			FullName:        doc.User.FullName,
			UID:             doc.User.UID,
			GID:             doc.User.GID,
			Group:           doc.User.Group,
			Groups:          nonNil(doc.User.Groups),
			Sudoer:          doc.User.Sudoer,
			NoPasswd:        doc.User.NoPasswd,
			RootPasswordSet: doc.User.RootPasswordSet,
			Shell:           doc.User.Shell,
			Validated:       doc.User.Validated,
		},
		Storage: nixos.StorageConfig{Disks: disks, Validated: doc.Storage.Validated},
		Environment: nixos.EnvironmentConfig{
			Server:      server,
			Desktop:     doc.Environment.Desktop,
			Description: doc.Environment.Description,
			Validated:   doc.Environment.Validated,
		},
		Desktop: nixos.DesktopConfig{
			Stack:          nonNil(doc.Desktop.Stack),
			CustomPackages: nonNil(doc.Desktop.CustomPackages),
			Validated:      doc.Desktop.Validated,
		},
		System:       nixos.SystemConfig(doc.System),
		Hardware:     nixos.HardwareConfig(doc.Hardware),
		Services:     nixos.ServicesConfig(doc.Services),
		CurrentPhase: phase,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
