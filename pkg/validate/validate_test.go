package validate

import (
	"strings"
	"testing"

	nixos "github.com/julas23/nixos/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostname(t *testing.T) {
	valid := []string{"nixos", "a", "my-host", "Host01", "a" + strings.Repeat("b", 61) + "c"}
	for _, h := range valid {
		assert.NoError(t, Hostname(h), h)
	}

	invalid := []string{"", "-nixos", "nixos-", "my_host", "host.local", strings.Repeat("a", 64)}
	for _, h := range invalid {
		err := Hostname(h)
		require.Error(t, err, h)
		assert.NotEmpty(t, nixos.Reason(err))
	}
}

func TestUsername(t *testing.T) {
	assert.NoError(t, Username("julas"))
	assert.NoError(t, Username("_svc"))
	assert.NoError(t, Username("dev-01"))

	err := Username("root")
	require.Error(t, err)
	assert.Equal(t, "Username 'root' is reserved by the system", nixos.Reason(err))

	for _, u := range []string{"", "Julas", "1user", "a b", strings.Repeat("u", 33), "sshd", "nobody"} {
		assert.Error(t, Username(u), u)
	}
}

func TestFullName(t *testing.T) {
	assert.NoError(t, FullName("Julio A. Silva"))
	assert.Error(t, FullName(""))
	assert.Error(t, FullName(strings.Repeat("x", 129)))
}

func TestID(t *testing.T) {
	assert.NoError(t, ID(1000, "UID"))
	assert.NoError(t, ID(65535, "GID"))
	assert.Error(t, ID(999, "UID"))
	assert.Error(t, ID(65536, "UID"))

	parse := NumericID("UID")
	assert.NoError(t, parse(" 1001 "))
	err := parse("abc")
	require.Error(t, err)
	assert.Equal(t, "UID must be a number", nixos.Reason(err))
}

func TestDiskPath(t *testing.T) {
	for _, p := range []string{"/dev/sda", "/dev/nvme0n1", "/dev/mmcblk0", "/dev/vdb", "/dev/hda"} {
		assert.NoError(t, DiskPath(p), p)
	}
	for _, p := range []string{"/dev/xyz", "sda", "", "/dev/sda1", "/dev/nvme0", "/dev/nvme0n1p1"} {
		assert.Error(t, DiskPath(p), p)
	}
}

func TestVolumeNames(t *testing.T) {
	assert.NoError(t, VGName("vg_root"))
	assert.NoError(t, LVName("lv.root+1"))
	assert.Error(t, VGName(""))
	assert.Error(t, VGName("-vg"))
	assert.Error(t, LVName("lv root"))
	assert.Error(t, LVName(strings.Repeat("l", 129)))
}

func TestPoolName(t *testing.T) {
	assert.NoError(t, PoolName("rpool"))
	assert.NoError(t, PoolName("tank.data-1"))
	for _, p := range []string{"", "1pool", "_pool", "mirror", "raidz2", "log", strings.Repeat("p", 257)} {
		assert.Error(t, PoolName(p), p)
	}
}

func TestPassword(t *testing.T) {
	assert.Error(t, Password(""))
	assert.Error(t, Password("short"))
	assert.NoError(t, Password("longenough"))

	assert.NoError(t, PasswordConfirm("longenough", "longenough"))
	err := PasswordConfirm("longenough", "longEnough")
	require.Error(t, err)
	assert.Equal(t, "Passwords do not match", nixos.Reason(err))
}

func TestStateVersion(t *testing.T) {
	assert.NoError(t, StateVersion("24.11"))
	assert.NoError(t, StateVersion("23.05"))
	assert.Error(t, StateVersion("22.11"))
	assert.Error(t, StateVersion("unstable"))
}

func TestGroupsAndPackages(t *testing.T) {
	assert.NoError(t, GroupList("wheel, networkmanager video"))
	assert.Error(t, GroupList("wheel,Audio"))
	assert.Equal(t, []string{"wheel", "docker"}, SplitList(" wheel,,docker "))
	assert.Empty(t, SplitList("  "))

	assert.NoError(t, PackageName("python3Packages.requests"))
	assert.Error(t, PackageName("bad pkg"))
	assert.Error(t, NotEmpty("Hostname")("   "))
	assert.NoError(t, Mountpoint("/home"))
	assert.Error(t, Mountpoint("home"))
}
