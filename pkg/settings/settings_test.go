package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	nixos "github.com/julas23/nixos/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c, err := Resolve(New())
	require.NoError(t, err)
	assert.Equal(t, nixos.DefaultConfigPath, c.ConfigPath)
	assert.Equal(t, nixos.DefaultSnapshotPath, c.SnapshotPath)
	assert.Equal(t, nixos.DefaultProbeTimeout, c.ProbeTimeout)
	assert.Equal(t, "24.11", c.System.StateVersion)
	assert.Equal(t, nixos.DefaultSSHListen, c.SSHListen)
	assert.Equal(t, nixos.DefaultRootPasswordPath, c.RootPasswordPath)
	assert.Empty(t, c.SSHAuthorizedKeys)
}

func TestFileAndEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
output:
  config: /tmp/out/config.nix
probe:
  timeout: 2s
system:
  hostname: lab
  state_version: "25.05"
`), 0o644))
	t.Setenv("NXS_LOG_FILE", "-")
	t.Setenv("NXS_SSH_AUTHORIZED_KEYS", "/etc/nxs/authorized_keys")

	c, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out/config.nix", c.ConfigPath)
	assert.Equal(t, 2*time.Second, c.ProbeTimeout)
	assert.Equal(t, "lab", c.System.Hostname)
	assert.Equal(t, "25.05", c.System.StateVersion)
	assert.Equal(t, "-", c.LogFile)
	assert.Equal(t, "/etc/nxs/authorized_keys", c.SSHAuthorizedKeys)

	cfg := c.NewInstallConfig()
	assert.Equal(t, "lab", cfg.System.Hostname)
	assert.Equal(t, "25.05", cfg.System.StateVersion)
}

func TestMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestRejectsBadValues(t *testing.T) {
	for name, env := range map[string][2]string{
		"old state version": {"NXS_SYSTEM_STATE_VERSION", "22.11"},
		"bad hostname":      {"NXS_SYSTEM_HOSTNAME", "-bad"},
		"zero timeout":      {"NXS_PROBE_TIMEOUT", "0s"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(env[0], env[1])
			_, err := Resolve(New())
			assert.Error(t, err)
		})
	}
}
