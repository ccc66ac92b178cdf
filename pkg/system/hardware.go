package system

import (
	"bufio"
	"context"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

func (h *HostProber) CPU(ctx context.Context) (CPUInfo, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return CPUInfo{}, probeErr("cpu", err)
	}
	if len(infos) == 0 {
		return CPUInfo{}, probeErr("cpu", ErrNotDetected)
	}
	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		cores = len(infos)
	}
	return CPUInfo{Model: strings.TrimSpace(infos[0].ModelName), Cores: cores}, nil
}

func (h *HostProber) Memory(ctx context.Context) (uint64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, probeErr("memory", err)
	}
	return vm.Total, nil
}

func (h *HostProber) GPU(ctx context.Context) (string, error) {
	out, err := h.run(ctx, "lspci")
	if err != nil {
		return "", probeErr("gpu", err)
	}
	vendor := ParseGPU(string(out))
	if vendor == "" {
		return "", probeErr("gpu", ErrNotDetected)
	}
	return vendor, nil
}

// ParseGPU maps lspci output to a GPU driver token from the gpu catalog. Only
// display controller lines are considered. Returns "" when nothing matches.
func ParseGPU(lspci string) string {
	var found []string
	sc := bufio.NewScanner(strings.NewReader(lspci))
	for sc.Scan() {
		line := strings.ToLower(sc.Text())
		if !strings.Contains(line, "vga compatible controller") &&
			!strings.Contains(line, "3d controller") &&
			!strings.Contains(line, "display controller") {
			continue
		}
		switch {
		case strings.Contains(line, "nvidia") || strings.Contains(line, "geforce"):
			found = append(found, "nvidia")
		case strings.Contains(line, "advanced micro devices") || strings.Contains(line, "amd") || strings.Contains(line, "radeon"):
			found = append(found, "amd")
		case strings.Contains(line, "intel"):
			found = append(found, "intel")
		case strings.Contains(line, "virtio") || strings.Contains(line, "qxl") ||
			strings.Contains(line, "vmware") || strings.Contains(line, "virtualbox") ||
			strings.Contains(line, "bochs") || strings.Contains(line, "cirrus"):
			found = append(found, "vm")
		}
	}
	// A discrete card wins over the integrated one.
	for _, want := range []string{"nvidia", "amd", "intel", "vm"} {
		for _, f := range found {
			if f == want {
				return f
			}
		}
	}
	return ""
}
