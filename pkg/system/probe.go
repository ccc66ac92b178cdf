package system

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"time"

	nixos "github.com/julas23/nixos/pkg"
	"github.com/sirupsen/logrus"
)

// ErrNotDetected is returned by a probe that ran but found nothing.
var ErrNotDetected = errors.New("not detected")

type CPUInfo struct {
	Model string
	Cores int
}

// Disk is a candidate install target.
type Disk struct {
	Device    string
	Size      string
	SizeBytes int64
	Model     string
	Removable bool
}

// Route is the kernel's answer for the default outbound route.
type Route struct {
	Interface string
	Gateway   string
	Source    string
}

type NetworkFacts struct {
	Online    bool
	Interface nixos.Optional[string]
	Address   nixos.Optional[string]
	Gateway   nixos.Optional[string]
	DNS       []string
	SSID      nixos.Optional[string]
}

// Facts is everything the probes could find out. Every field may be absent.
type Facts struct {
	CPU     nixos.Optional[CPUInfo]
	Memory  nixos.Optional[uint64]
	GPU     nixos.Optional[string]
	Disks   []Disk
	Network NetworkFacts
}

// Prober runs the individual hardware and network probes. Every method
// returns a *nixos.ProbeError on failure.
type Prober interface {
	CPU(ctx context.Context) (CPUInfo, error)
	Memory(ctx context.Context) (uint64, error)
	GPU(ctx context.Context) (string, error)
	Disks(ctx context.Context) ([]Disk, error)
	Reachable(ctx context.Context) (bool, error)
	Route(ctx context.Context) (Route, error)
	Nameservers(ctx context.Context) ([]string, error)
	SSID(ctx context.Context, iface string) (string, error)
}

// Fallback maps a failed probe to def, logging the failure at debug level.
func Fallback[T any](log logrus.FieldLogger, v T, err error, def T) T {
	if err == nil {
		return v
	}
	log.WithError(err).Debug("probe unavailable, using default")
	return def
}

func optional[T any](log logrus.FieldLogger, v T, err error) nixos.Optional[T] {
	if err != nil {
		log.WithError(err).Debug("probe unavailable")
		return nixos.None[T]()
	}
	return nixos.Some(v)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = nixos.DefaultProbeTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// Detect runs every probe, each bounded by timeout, and never fails.
func Detect(ctx context.Context, p Prober, timeout time.Duration, log logrus.FieldLogger) Facts {
	var f Facts

	run := func(fn func(ctx context.Context)) {
		c, cancel := withTimeout(ctx, timeout)
		defer cancel()
		fn(c)
	}

	run(func(c context.Context) {
		cpu, err := p.CPU(c)
		f.CPU = optional(log, cpu, err)
	})
	run(func(c context.Context) {
		m, err := p.Memory(c)
		f.Memory = optional(log, m, err)
	})
	run(func(c context.Context) {
		gpu, err := p.GPU(c)
		f.GPU = optional(log, gpu, err)
	})
	run(func(c context.Context) {
		disks, err := p.Disks(c)
		f.Disks = Fallback(log, disks, err, []Disk{})
	})
	f.Network = CheckNetwork(ctx, p, timeout, log)

	log.WithFields(logrus.Fields{
		"gpu":    f.GPU.OrElse("none"),
		"disks":  len(f.Disks),
		"online": f.Network.Online,
	}).Info("hardware detection finished")
	return f
}

// CheckNetwork runs the reachability and addressing probes.
func CheckNetwork(ctx context.Context, p Prober, timeout time.Duration, log logrus.FieldLogger) NetworkFacts {
	var n NetworkFacts

	c, cancel := withTimeout(ctx, timeout)
	online, err := p.Reachable(c)
	cancel()
	n.Online = Fallback(log, online, err, false)

	c, cancel = withTimeout(ctx, timeout)
	route, err := p.Route(c)
	cancel()
	if err == nil {
		if route.Interface != "" {
			n.Interface = nixos.Some(route.Interface)
		}
		if route.Source != "" {
			n.Address = nixos.Some(route.Source)
		}
		if route.Gateway != "" {
			n.Gateway = nixos.Some(route.Gateway)
		}
	} else {
		log.WithError(err).Debug("route probe unavailable")
	}

	c, cancel = withTimeout(ctx, timeout)
	dns, err := p.Nameservers(c)
	cancel()
	n.DNS = Fallback(log, dns, err, []string{})

	if iface, ok := n.Interface.Get(); ok {
		c, cancel = withTimeout(ctx, timeout)
		ssid, err := p.SSID(c, iface)
		cancel()
		n.SSID = optional(log, ssid, err)
	}
	return n
}

// ApplyNetwork copies network facts into the record. Validation is left to
// PhaseMachine.NetworkChecked.
func ApplyNetwork(cfg *nixos.InstallConfig, n NetworkFacts) {
	cfg.Network.Status = nixos.NetworkOffline
	if n.Online {
		cfg.Network.Status = nixos.NetworkOnline
	}
	cfg.Network.Interface = n.Interface
	cfg.Network.Address = n.Address
	cfg.Network.Gateway = n.Gateway
	cfg.Network.DNS = append([]string{}, n.DNS...)
	cfg.Network.SSID = n.SSID
}

// MemoryString renders total memory the way the header shows it.
func (f Facts) MemoryString() string {
	total, ok := f.Memory.Get()
	if !ok {
		return "Unknown"
	}
	return fmt.Sprintf("%d GB", int(math.Round(float64(total)/(1<<30))))
}

// runCommand runs a system utility bounded by ctx.
func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func probeErr(probe string, err error) error {
	return &nixos.ProbeError{Probe: probe, Err: err}
}
