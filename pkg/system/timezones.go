package system

import (
	"strings"

	"github.com/julas23/nixos/pkg/selection"
)

type timezoneRegion struct {
	Region string            `json:"region"`
	Zones  selection.Catalog `json:"zones"`
}

func groupTimezones(regions []timezoneRegion) []selection.Group {
	out := make([]selection.Group, 0, len(regions))
	for _, r := range regions {
		out = append(out, selection.Group{Name: r.Region, Options: r.Zones})
	}
	return out
}

// TimezoneRegion returns the region a zone belongs to, e.g. "America" for
// "America/Sao_Paulo".
func TimezoneRegion(zone string) string {
	region, _, _ := strings.Cut(zone, "/")
	return region
}

// HasTimezone reports whether zone appears in any region.
func (c *Catalogs) HasTimezone(zone string) bool {
	for _, g := range c.Timezones {
		if g.Options.Index(zone) >= 0 {
			return true
		}
	}
	return false
}
