// Package settings resolves the installer's runtime configuration from
// flags, NXS_* environment variables and an optional YAML file.
package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"

	nixos "github.com/julas23/nixos/pkg"
	"github.com/julas23/nixos/pkg/validate"
	"github.com/spf13/viper"
)

// DefaultFile is read when present and no --config flag is given.
const DefaultFile = "/etc/nxs/config.yaml"

const EnvPrefix = "NXS"

// Keys
const (
	KeyOutputConfig   = "output.config"
	KeyOutputSnapshot = "output.snapshot"
	KeyOutputRootPass = "output.root_password"
	KeyCatalogDir     = "catalog.dir"
	KeyProbeTimeout   = "probe.timeout"
	KeyProbeURL       = "probe.url"
	KeyStateVersion   = "system.state_version"
	KeyHostname       = "system.hostname"
	KeyTimezone       = "system.timezone"
	KeyLocale         = "system.locale"
	KeyKeymap         = "system.keymap"
	KeyXkbLayout      = "system.xkb_layout"
	KeyXkbVariant     = "system.xkb_variant"
	KeyLogFile        = "log.file"
	KeyLogVerbose     = "log.verbose"
	KeySSHListen      = "ssh.listen"
	KeySSHHostKey     = "ssh.host_key"
	// KeySSHAuthorizedKeys names an authorized_keys file. nxs-ssh refuses to
	// start without one.
	KeySSHAuthorizedKeys = "ssh.authorized_keys"
)

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	d := nixos.DefaultServerConfig()
	v.SetDefault(KeyOutputConfig, d.ConfigPath)
	v.SetDefault(KeyOutputSnapshot, d.SnapshotPath)
	v.SetDefault(KeyOutputRootPass, d.RootPasswordPath)
	v.SetDefault(KeyCatalogDir, "")
	v.SetDefault(KeyProbeTimeout, d.ProbeTimeout)
	v.SetDefault(KeyProbeURL, d.ProbeURL)
	v.SetDefault(KeyStateVersion, nixos.NewInstallConfig().System.StateVersion)
	v.SetDefault(KeyLogFile, d.LogFile)
	v.SetDefault(KeyLogVerbose, false)
	v.SetDefault(KeySSHListen, d.SSHListen)
	v.SetDefault(KeySSHHostKey, ".ssh/nxs_ed25519")
	v.SetDefault(KeySSHAuthorizedKeys, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile loads file into v. An empty file falls back to DefaultFile, which
// may be missing; an explicitly named file must exist.
func ReadFile(v *viper.Viper, file string) error {
	explicit := file != ""
	if !explicit {
		file = DefaultFile
	}
	if _, err := os.Stat(file); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config file: %w", err)
	}
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", file, err)
	}
	return nil
}

// Resolve builds the typed configuration from v.
func Resolve(v *viper.Viper) (nixos.ServerConfig, error) {
	c := nixos.ServerConfig{
		ConfigPath:   v.GetString(KeyOutputConfig),
		SnapshotPath: v.GetString(KeyOutputSnapshot),
		RootPasswordPath: v.GetString(KeyOutputRootPass),
		CatalogDir:   v.GetString(KeyCatalogDir),
		ProbeTimeout: v.GetDuration(KeyProbeTimeout),
		ProbeURL:     v.GetString(KeyProbeURL),
		LogFile:      v.GetString(KeyLogFile),
		Verbose:      v.GetBool(KeyLogVerbose),
		SSHListen:    v.GetString(KeySSHListen),
		SSHHostKey:   v.GetString(KeySSHHostKey),
		SSHAuthorizedKeys: v.GetString(KeySSHAuthorizedKeys),
		System: nixos.SystemConfig{
			Hostname:      v.GetString(KeyHostname),
			Timezone:      v.GetString(KeyTimezone),
			Locale:        v.GetString(KeyLocale),
			ConsoleKeymap: v.GetString(KeyKeymap),
			XkbLayout:     v.GetString(KeyXkbLayout),
			XkbVariant:    v.GetString(KeyXkbVariant),
			StateVersion:  v.GetString(KeyStateVersion),
		},
	}

	if c.ConfigPath == "" {
		return c, errors.New("output.config must not be empty")
	}
	if c.ProbeTimeout <= 0 {
		return c, fmt.Errorf("probe.timeout must be positive, got %s", c.ProbeTimeout)
	}
	if err := validate.StateVersion(c.System.StateVersion); err != nil {
		return c, fmt.Errorf("system.state_version: %w", err)
	}
	if h := c.System.Hostname; h != "" {
		if err := validate.Hostname(h); err != nil {
			return c, fmt.Errorf("system.hostname: %w", err)
		}
	}
	return c, nil
}

// Load is ReadFile followed by Resolve on a fresh instance.
func Load(file string) (nixos.ServerConfig, error) {
	v := New()
	if err := ReadFile(v, file); err != nil {
		return nixos.ServerConfig{}, err
	}
	return Resolve(v)
}
