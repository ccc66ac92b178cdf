package system

import "github.com/julas23/nixos/pkg/selection"

// Layout is an X11 keyboard layout. The empty variant is the layout default.
type Layout struct {
	selection.Option
	Variants []string `json:"variants"`
}

func (c *Catalogs) LayoutCatalog() selection.Catalog {
	out := make(selection.Catalog, len(c.Layouts))
	for i, l := range c.Layouts {
		out[i] = l.Option
	}
	return out
}

func (c *Catalogs) Layout(value string) (Layout, bool) {
	for _, l := range c.Layouts {
		if l.Value == value {
			return l, true
		}
	}
	return Layout{}, false
}

// HasVariantChoice reports whether picking a variant is meaningful for the
// layout.
func (l Layout) HasVariantChoice() bool {
	return len(l.Variants) > 1
}
