package system

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
	nixos "github.com/julas23/nixos/pkg"
	"github.com/mdlayher/wifi"
	"github.com/sirupsen/logrus"
)

// HostProber probes the machine it runs on.
type HostProber struct {
	probeURL   string
	resolvConf string
	log        *logrus.Logger
	run        func(ctx context.Context, name string, args ...string) ([]byte, error)
	client     *resty.Client
}

func NewHostProber(config nixos.ServerConfig, log *logrus.Logger) *HostProber {
	url := config.ProbeURL
	if url == "" {
		url = nixos.DefaultProbeURL
	}
	timeout := config.ProbeTimeout
	if timeout <= 0 {
		timeout = nixos.DefaultProbeTimeout
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", "nxs-installer")

	return &HostProber{
		probeURL:   url,
		resolvConf: "/etc/resolv.conf",
		log:        log,
		run:        runCommand,
		client:     client,
	}
}

// Reachable reports whether the binary cache answers. Any HTTP response
// counts as online.
func (h *HostProber) Reachable(ctx context.Context) (bool, error) {
	resp, err := h.client.R().SetContext(ctx).Head(h.probeURL)
	if err != nil {
		return false, probeErr("reachability", err)
	}
	h.log.WithField("status", resp.StatusCode()).Debugf("probe %s answered", h.probeURL)
	return true, nil
}

func (h *HostProber) Route(ctx context.Context) (Route, error) {
	out, err := h.run(ctx, "ip", "route", "get", "1.1.1.1")
	if err != nil {
		return Route{}, probeErr("route", err)
	}
	r := ParseRoute(string(out))
	if r.Interface == "" && r.Source == "" {
		return Route{}, probeErr("route", ErrNotDetected)
	}
	return r, nil
}

// ParseRoute reads the output of `ip route get`, e.g.
// "1.1.1.1 via 10.0.0.1 dev enp3s0 src 10.0.0.5 uid 0".
func ParseRoute(out string) Route {
	var r Route
	fields := strings.Fields(out)
	for i := 0; i+1 < len(fields); i++ {
		switch fields[i] {
		case "dev":
			r.Interface = fields[i+1]
		case "via":
			r.Gateway = fields[i+1]
		case "src":
			r.Source = fields[i+1]
		}
	}
	return r
}

func (h *HostProber) Nameservers(ctx context.Context) ([]string, error) {
	f, err := os.Open(h.resolvConf)
	if err != nil {
		return nil, probeErr("dns", err)
	}
	defer f.Close()
	return ParseResolvConf(f), nil
}

// ParseResolvConf returns the nameserver entries in file order.
func ParseResolvConf(r io.Reader) []string {
	servers := []string{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "nameserver" {
			servers = append(servers, fields[1])
		}
	}
	return servers
}

// SSID returns the wireless network iface is associated with.
func (h *HostProber) SSID(ctx context.Context, iface string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", probeErr("wifi", err)
	}
	c, err := wifi.New()
	if err != nil {
		return "", probeErr("wifi", err)
	}
	defer c.Close()

	ifis, err := c.Interfaces()
	if err != nil {
		return "", probeErr("wifi", err)
	}
	for _, ifi := range ifis {
		if ifi.Name != iface {
			continue
		}
		bss, err := c.BSS(ifi)
		if err != nil {
			return "", probeErr("wifi", err)
		}
		return bss.SSID, nil
	}
	return "", probeErr("wifi", fmt.Errorf("%s is not a wireless interface: %w", iface, ErrNotDetected))
}
