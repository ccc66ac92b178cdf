package nixos

import "time"

const (
	DefaultConfigPath   = "/mnt/etc/nixos/modules/config.nix"
	DefaultSnapshotPath = "/mnt/etc/nixos/install-choices.yaml"
	DefaultProbeURL     = "https://cache.nixos.org/nix-cache-info"
	DefaultProbeTimeout = 5 * time.Second
	DefaultLogFile      = "/tmp/nxs/nxs.log"
	DefaultSSHListen    = "0.0.0.0:2222"
	// Consumed as users.users.root.hashedPasswordFile.
	DefaultRootPasswordPath = "/mnt/etc/nixos/secrets/root-password.hash"
)

// ServerConfig is the resolved runtime configuration of the installer.
type ServerConfig struct {
	ConfigPath   string
	SnapshotPath string
	RootPasswordPath string
	CatalogDir   string
	ProbeTimeout time.Duration
	ProbeURL     string
	LogFile      string
	Verbose      bool
	SSHListen    string
	SSHHostKey   string
	// SSHAuthorizedKeys is the authorized_keys file for nxs-ssh clients.
	SSHAuthorizedKeys string

	// Seed values for the System section. Empty fields keep the built in
	// defaults.
	System SystemConfig
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ConfigPath:   DefaultConfigPath,
		SnapshotPath: DefaultSnapshotPath,
		RootPasswordPath: DefaultRootPasswordPath,
		ProbeTimeout: DefaultProbeTimeout,
		ProbeURL:     DefaultProbeURL,
		LogFile:      DefaultLogFile,
		SSHListen:    DefaultSSHListen,
	}
}

// NewInstallConfig returns a default record with the configured System seed
// values applied.
func (c ServerConfig) NewInstallConfig() *InstallConfig {
	cfg := NewInstallConfig()
	seed := c.System
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&cfg.System.Hostname, seed.Hostname},
		{&cfg.System.Timezone, seed.Timezone},
		{&cfg.System.Locale, seed.Locale},
		{&cfg.System.ConsoleKeymap, seed.ConsoleKeymap},
		{&cfg.System.XkbLayout, seed.XkbLayout},
		{&cfg.System.XkbVariant, seed.XkbVariant},
		{&cfg.System.BootLoader, seed.BootLoader},
		{&cfg.System.StateVersion, seed.StateVersion},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
	return cfg
}
