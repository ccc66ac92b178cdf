// Package nixexpr renders typed values as Nix expression literals.
//
// Value is a closed sum: Bool, Str, Int, List and Record are the only
// implementations. Rendering is total over them and always produces balanced
// braces and brackets. Records keep declaration order.
package nixexpr

import (
	"regexp"
	"strconv"
	"strings"
)

type Value interface {
	isValue()
}

type (
	Bool   bool
	Str    string
	Int    int64
	List   []Value
	Record []Attr
)

// Attr is one `key = value;` binding of a Record.
type Attr struct {
	Key   string
	Value Value
}

func (Bool) isValue()   {}
func (Str) isValue()    {}
func (Int) isValue()    {}
func (List) isValue()   {}
func (Record) isValue() {}

// A builds an Attr.
func A(key string, v Value) Attr {
	return Attr{Key: key, Value: v}
}

// Strings wraps a string slice as a List of Str.
func Strings(ss []string) List {
	l := make(List, 0, len(ss))
	for _, s := range ss {
		l = append(l, Str(s))
	}
	return l
}

// Get returns the value bound to key.
func (r Record) Get(key string) (Value, bool) {
	for _, a := range r {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

// Path follows dotted keys through nested records.
func (r Record) Path(path string) (Value, bool) {
	var cur Value = r
	for _, k := range strings.Split(path, ".") {
		rec, ok := cur.(Record)
		if !ok {
			return nil, false
		}
		if cur, ok = rec.Get(k); !ok {
			return nil, false
		}
	}
	return cur, true
}

const indentUnit = "  "

// Render returns v as a Nix literal at nesting depth zero.
func Render(v Value) string {
	return render(v, 0)
}

// RenderAttrs returns the body of a record, one binding per line, indented
// to depth.
func RenderAttrs(r Record, depth int) string {
	var b strings.Builder
	writeAttrs(&b, r, depth)
	return strings.TrimSuffix(b.String(), "\n")
}

func render(v Value, depth int) string {
	switch v := v.(type) {
	case Bool:
		if v {
			return "true"
		}
		return "false"
	case Str:
		return `"` + Escape(string(v)) + `"`
	case Int:
		return strconv.FormatInt(int64(v), 10)
	case List:
		if len(v) == 0 {
			return "[ ]"
		}
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = render(e, depth)
		}
		return "[ " + strings.Join(parts, " ") + " ]"
	case Record:
		if len(v) == 0 {
			return "{ }"
		}
		var b strings.Builder
		b.WriteString("{\n")
		writeAttrs(&b, v, depth+1)
		b.WriteString(strings.Repeat(indentUnit, depth))
		b.WriteString("}")
		return b.String()
	}
	return "null"
}

func writeAttrs(b *strings.Builder, r Record, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	for _, a := range r {
		b.WriteString(indent)
		b.WriteString(Key(a.Key))
		b.WriteString(" = ")
		b.WriteString(render(a.Value, depth))
		b.WriteString(";\n")
	}
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_'-]*$`)

// keywords cannot appear as bare attribute names.
var keywords = map[string]bool{
	"if": true, "then": true, "else": true, "assert": true, "with": true,
	"let": true, "in": true, "rec": true, "inherit": true, "or": true,
}

// Key returns an attribute name, quoted when it is not a bare identifier or
// is a keyword.
func Key(k string) string {
	if identRe.MatchString(k) && !keywords[k] {
		return k
	}
	return `"` + Escape(k) + `"`
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"${", `\${`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// Escape makes s safe inside a double quoted Nix string.
func Escape(s string) string {
	return escaper.Replace(s)
}
