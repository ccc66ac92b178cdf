package version

import (
	"os"
	"strings"
	"time"

	"github.com/carlmjohnson/versioninfo"
)

// ReleaseFile is written into the installer image by the ISO build.
const ReleaseFile = "/etc/nxs-release"

type NXSVersionInfoGit struct {
	Commit     string    `json:"commit"`
	Dirty      bool      `json:"dirty"`
	LastCommit time.Time `json:"lastCommit"`
}

type NXSVersionInfo struct {
	Release string            `json:"release"`
	Module  string            `json:"module"`
	Git     NXSVersionInfoGit `json:"git"`
}

func GetNXSRelease() *NXSVersionInfo {
	return readRelease(ReleaseFile)
}

func readRelease(path string) *NXSVersionInfo {
	release := "unknown"
	if data, err := os.ReadFile(path); err == nil && strings.TrimSpace(string(data)) != "" {
		release = strings.TrimSpace(string(data))
	} else if versioninfo.Version != "" && versioninfo.Version != "unknown" && versioninfo.Version != "(devel)" {
		release = versioninfo.Version
	}

	return &NXSVersionInfo{
		Release: release,
		Module:  versioninfo.Version,
		Git: NXSVersionInfoGit{
			Commit:     versioninfo.Revision,
			Dirty:      versioninfo.DirtyBuild,
			LastCommit: versioninfo.LastCommit,
		},
	}
}

// Short is the one line form used in headers, e.g. "24.11-1 (a1b2c3d)".
func (v *NXSVersionInfo) Short() string {
	commit := v.Git.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if commit == "" || commit == "unknown" {
		return v.Release
	}
	if v.Git.Dirty {
		commit += "-dirty"
	}
	return v.Release + " (" + commit + ")"
}
