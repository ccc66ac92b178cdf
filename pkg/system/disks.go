package system

import (
	"context"
	"strings"

	"github.com/dell/csi-baremetal/pkg/base/linuxutils/lsblk"
	"github.com/julas23/nixos/pkg/utils"
)

func (h *HostProber) Disks(ctx context.Context) ([]Disk, error) {
	if err := ctx.Err(); err != nil {
		return nil, probeErr("disks", err)
	}
	lsb := lsblk.NewLSBLK(h.log)
	devices, err := lsb.GetBlockDevices("")
	if err != nil {
		return nil, probeErr("disks", err)
	}
	disks := disksFromBlockDevices(devices)

	media, err := h.blockMedia(ctx)
	if err != nil {
		h.log.WithError(err).Debug("removable media unknown, offering every disk")
		return disks, nil
	}
	return installTargets(disks, media), nil
}

// disksFromBlockDevices keeps whole disks and drops loop, rom and partition
// entries.
func disksFromBlockDevices(devices []lsblk.BlockDevice) []Disk {
	disks := []Disk{}
	for _, d := range devices {
		if d.Type != "disk" || d.Size.Int64 <= 0 {
			continue
		}
		name := d.Name
		if !strings.HasPrefix(name, "/dev/") {
			name = "/dev/" + name
		}
		model := strings.TrimSpace(d.Model)
		if model == "" {
			model = "Unknown"
		}
		disks = append(disks, Disk{
			Device:    name,
			Size:      utils.PrettyPrintDiskSize(d.Size.Int64),
			SizeBytes: d.Size.Int64,
			Model:     model,
		})
	}
	return disks
}
