package version

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nxs-release")
	require.NoError(t, os.WriteFile(path, []byte("24.11-3\n"), 0o644))

	v := readRelease(path)
	assert.Equal(t, "24.11-3", v.Release)

	missing := readRelease(filepath.Join(t.TempDir(), "absent"))
	assert.NotEmpty(t, missing.Release)
}

func TestShort(t *testing.T) {
	v := &NXSVersionInfo{Release: "24.11-3", Git: NXSVersionInfoGit{Commit: "a1b2c3d4e5f6", Dirty: true}}
	assert.Equal(t, "24.11-3 (a1b2c3d-dirty)", v.Short())

	v.Git = NXSVersionInfoGit{Commit: "unknown"}
	assert.Equal(t, "24.11-3", v.Short())
}
