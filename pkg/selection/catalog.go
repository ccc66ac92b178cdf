package selection

// Option is one selectable catalog entry.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Popular     bool   `json:"popular,omitempty"`
}

type Catalog []Option

// Group is one branch of a two-level catalog, e.g. a timezone region.
type Group struct {
	Name    string
	Options Catalog
}

// FromValues builds a catalog whose labels are the values themselves.
func FromValues(values ...string) Catalog {
	c := make(Catalog, 0, len(values))
	for _, v := range values {
		c = append(c, Option{Value: v, Label: v})
	}
	return c
}

// Popular returns the entries flagged popular, in catalog order.
func (c Catalog) Popular() Catalog {
	var out Catalog
	for _, o := range c {
		if o.Popular {
			out = append(out, o)
		}
	}
	return out
}

func (c Catalog) Find(value string) (Option, bool) {
	for _, o := range c {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// Index returns the position of value in the catalog, or -1.
func (c Catalog) Index(value string) int {
	for i, o := range c {
		if o.Value == value {
			return i
		}
	}
	return -1
}

func (c Catalog) Values() []string {
	out := make([]string, len(c))
	for i, o := range c {
		out[i] = o.Value
	}
	return out
}
