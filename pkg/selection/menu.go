package selection

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	nixos "github.com/julas23/nixos/pkg"
)

type ItemKind int

const (
	ItemOption ItemKind = iota
	ItemShowAll
	ItemCustom
)

// Item is one numbered line of a menu.
type Item struct {
	Kind      ItemKind
	Option    Option
	Suggested bool
}

func (i Item) Label() string {
	switch i.Kind {
	case ItemShowAll:
		return "Show all options"
	case ItemCustom:
		return "Custom value"
	}
	label := i.Option.Label
	if label == "" {
		label = i.Option.Value
	}
	if i.Suggested {
		label += " (suggested)"
	}
	if i.Option.Description != "" {
		label += " - " + i.Option.Description
	}
	return label
}

// MenuOptions controls how a catalog is presented.
type MenuOptions struct {
	// Condensed shows only popular entries plus "show all" when the catalog
	// has any.
	Condensed bool
	// Suggested marks the entry with this value. It is never preselected.
	Suggested string
	// NoCustom removes the trailing "custom value" item.
	NoCustom bool
}

// Menu is the pure part of the selection algorithm: a numbered list of items
// and the resolution of a raw answer against it.
type Menu struct {
	Title     string
	Items     []Item
	Condensed bool

	catalog Catalog
	opts    MenuOptions
}

func NewMenu(title string, catalog Catalog, opts MenuOptions) Menu {
	m := Menu{Title: title, catalog: catalog, opts: opts}
	entries := catalog
	if opts.Condensed {
		if popular := catalog.Popular(); len(popular) > 0 {
			entries = popular
			m.Condensed = true
		}
	}
	for _, o := range entries {
		m.Items = append(m.Items, Item{
			Kind:      ItemOption,
			Option:    o,
			Suggested: opts.Suggested != "" && o.Value == opts.Suggested,
		})
	}
	if m.Condensed {
		m.Items = append(m.Items, Item{Kind: ItemShowAll})
	}
	if !opts.NoCustom {
		m.Items = append(m.Items, Item{Kind: ItemCustom})
	}
	return m
}

// Expand returns the full-catalog menu that "show all" leads to.
func (m Menu) Expand() Menu {
	opts := m.opts
	opts.Condensed = false
	return NewMenu(m.Title, m.catalog, opts)
}

func (m Menu) Len() int { return len(m.Items) }

// Pick returns the item at a zero based index.
func (m Menu) Pick(index int) (Item, error) {
	if index < 0 || index >= len(m.Items) {
		return Item{}, &nixos.ValidationError{Field: "choice", Reason: "Invalid choice, try again."}
	}
	return m.Items[index], nil
}

// Resolve maps a typed one based answer to an item.
func (m Menu) Resolve(input string) (Item, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return Item{}, &nixos.ValidationError{Field: "choice", Reason: "Invalid choice, try again."}
	}
	return m.Pick(n - 1)
}

func (m Menu) Prompt() string {
	return fmt.Sprintf("Select (1-%d): ", len(m.Items))
}

// Render writes the numbered list.
func (m Menu) Render(w io.Writer) {
	fmt.Fprintf(w, "\n%s:\n\n", m.Title)
	if m.Condensed {
		fmt.Fprintln(w, "Popular choices:")
	}
	for i, it := range m.Items {
		if it.Kind != ItemOption && (i == 0 || m.Items[i-1].Kind == ItemOption) {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "  %d. %s\n", i+1, it.Label())
	}
	fmt.Fprintln(w)
}
