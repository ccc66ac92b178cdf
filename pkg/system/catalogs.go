package system

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/julas23/nixos/pkg/selection"
)

// Files under data/ are hand maintained. A catalog directory given at
// runtime overrides them file by file.
//
//go:embed data/*.json
var embedded embed.FS

// Desktop is a desktop catalog entry. DisplayServer is "wayland", "xorg",
// "both" or "none".
type Desktop struct {
	selection.Option
	DisplayServer string `json:"display_server"`
}

// Catalogs are the static option lists offered by the configurators.
type Catalogs struct {
	Timezones []selection.Group
	Locales   selection.Catalog
	Keymaps   selection.Catalog
	Layouts   []Layout
	Desktops  []Desktop
	GPUs      selection.Catalog
}

// LoadCatalogs reads the catalogs from dir, falling back to the embedded
// copy for any file dir does not have. An empty dir uses the embedded
// catalogs only.
func LoadCatalogs(dir string) (*Catalogs, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	var override fs.FS
	if dir != "" {
		override = os.DirFS(dir)
	}

	read := func(name string, v any) error {
		var data []byte
		var err error
		if override != nil {
			data, err = fs.ReadFile(override, name)
		}
		if override == nil || errors.Is(err, fs.ErrNotExist) {
			data, err = fs.ReadFile(sub, name)
		}
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("catalog %s: %w", name, err)
		}
		return nil
	}

	c := &Catalogs{}
	var regions []timezoneRegion
	for _, f := range []struct {
		name string
		dst  any
	}{
		{"timezones.json", &regions},
		{"locales.json", &c.Locales},
		{"keymaps.json", &c.Keymaps},
		{"xkb-layouts.json", &c.Layouts},
		{"desktops.json", &c.Desktops},
		{"gpus.json", &c.GPUs},
	} {
		if err := read(f.name, f.dst); err != nil {
			return nil, err
		}
	}
	c.Timezones = groupTimezones(regions)
	return c, nil
}

// DefaultCatalogs returns the embedded catalogs. They are compiled in, so
// failing to parse them is a build defect.
func DefaultCatalogs() *Catalogs {
	c, err := LoadCatalogs("")
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalogs) DesktopCatalog() selection.Catalog {
	out := make(selection.Catalog, len(c.Desktops))
	for i, d := range c.Desktops {
		out[i] = d.Option
	}
	return out
}

func (c *Catalogs) Desktop(value string) (Desktop, bool) {
	for _, d := range c.Desktops {
		if d.Value == value {
			return d, true
		}
	}
	return Desktop{}, false
}
