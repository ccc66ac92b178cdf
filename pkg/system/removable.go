package system

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// minInstallSize is the smallest disk offered as an install target.
const minInstallSize = 10 << 30

// liveMediaMountpoints are where the running installer image is mounted.
var liveMediaMountpoints = []string{"/", "/iso", "/nix/store", "/nix/.ro-store"}

type lsblkDevice struct {
	Name        string          `json:"name"`
	Path        string          `json:"path"`
	Mountpoints []string        `json:"mountpoints"`
	RM          json.RawMessage `json:"rm"`
	Type        string          `json:"type"`
	Children    []lsblkDevice   `json:"children,omitempty"`
}

type lsblkOutput struct {
	Blockdevices []lsblkDevice `json:"blockdevices"`
}

// blockMedia records, per top-level device path, whether it is removable and
// whether it carries the live installer.
type blockMedia struct {
	removable map[string]bool
	live      map[string]bool
}

func (h *HostProber) blockMedia(ctx context.Context) (blockMedia, error) {
	out, err := h.run(ctx, "lsblk", "-J", "-o", "NAME,PATH,MOUNTPOINTS,RM,TYPE")
	if err != nil {
		return blockMedia{}, fmt.Errorf("failed to run lsblk: %w", err)
	}
	return parseBlockMedia(out)
}

func parseBlockMedia(data []byte) (blockMedia, error) {
	var result lsblkOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return blockMedia{}, fmt.Errorf("failed to parse lsblk output: %w", err)
	}

	m := blockMedia{removable: map[string]bool{}, live: map[string]bool{}}
	for _, device := range result.Blockdevices {
		path := device.Path
		if path == "" {
			path = "/dev/" + device.Name
		}
		m.removable[path] = isRemovable(device.RM)
		m.live[path] = carriesLiveMedia(device)
	}
	return m, nil
}

func carriesLiveMedia(device lsblkDevice) bool {
	for _, mount := range device.Mountpoints {
		if slices.Contains(liveMediaMountpoints, mount) {
			return true
		}
	}
	for _, child := range device.Children {
		if carriesLiveMedia(child) {
			return true
		}
	}
	return false
}

func isRemovable(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	text := strings.Trim(string(raw), `"`)
	return text == "1" || text == "true"
}

// installTargets drops the live medium and disks too small to install on,
// and marks removable ones.
func installTargets(disks []Disk, media blockMedia) []Disk {
	out := []Disk{}
	for _, d := range disks {
		if media.live[d.Device] || d.SizeBytes < minInstallSize {
			continue
		}
		d.Removable = media.removable[d.Device]
		out = append(out, d)
	}
	return out
}
