package nixexpr

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// balanced reports whether braces and brackets outside string literals pair
// up, and that every string literal is closed.
func balanced(s string) bool {
	var stack []rune
	inStr := false
	for i := 0; i < len(s); i++ {
		c := rune(s[i])
		if inStr {
			switch c {
			case '\\':
				i++
			case '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) == 0 {
				return false
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if (c == '}' && open != '{') || (c == ']' && open != '[') {
				return false
			}
		}
	}
	return !inStr && len(stack) == 0
}

func TestRenderScalars(t *testing.T) {
	assert.Equal(t, "true", Render(Bool(true)))
	assert.Equal(t, "false", Render(Bool(false)))
	assert.Equal(t, "42", Render(Int(42)))
	assert.Equal(t, "-7", Render(Int(-7)))
	assert.Equal(t, `"nixos"`, Render(Str("nixos")))
	assert.Equal(t, "null", Render(nil))
}

func TestRenderLists(t *testing.T) {
	assert.Equal(t, "[ ]", Render(List{}))
	assert.Equal(t, `[ "wheel" "networkmanager" ]`, Render(Strings([]string{"wheel", "networkmanager"})))
	assert.Equal(t, "[ 22 80 ]", Render(List{Int(22), Int(80)}))
}

func TestRenderNestedRecord(t *testing.T) {
	r := Record{
		A("hostname", Str("nixos")),
		A("audio", Record{
			A("enable", Bool(true)),
			A("backend", Str("pipewire")),
		}),
		A("ports", List{}),
		A("empty", Record{}),
	}
	want := "{\n" +
		"  hostname = \"nixos\";\n" +
		"  audio = {\n" +
		"    enable = true;\n" +
		"    backend = \"pipewire\";\n" +
		"  };\n" +
		"  ports = [ ];\n" +
		"  empty = { };\n" +
		"}"
	assert.Equal(t, want, Render(r))
}

func TestRenderAttrsIndentsBody(t *testing.T) {
	r := Record{A("a", Int(1)), A("b", Record{A("c", Bool(false))})}
	want := "    a = 1;\n" +
		"    b = {\n" +
		"      c = false;\n" +
		"    };"
	assert.Equal(t, want, RenderAttrs(r, 2))
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `"Jo\"hn \\ Doe"`, Render(Str(`Jo"hn \ Doe`)))
	assert.Equal(t, `"\${pkgs.evil}"`, Render(Str("${pkgs.evil}")))
	assert.Equal(t, `"a\nb\tc\r"`, Render(Str("a\nb\tc\r")))
	assert.Equal(t, `"$HOME"`, Render(Str("$HOME")))
}

func TestKeyQuoting(t *testing.T) {
	assert.Equal(t, "allowedTCPPorts", Key("allowedTCPPorts"))
	assert.Equal(t, "x-y'z", Key("x-y'z"))
	assert.Equal(t, `"foo.bar"`, Key("foo.bar"))
	assert.Equal(t, `"1st"`, Key("1st"))
	assert.True(t, balanced(Render(Record{A(`we"ird`, Int(1))})))

	for _, kw := range []string{"if", "then", "else", "assert", "with", "let", "in", "rec", "inherit", "or"} {
		assert.Equal(t, `"`+kw+`"`, Key(kw))
	}
	assert.Equal(t, "input", Key("input"))
	assert.Equal(t, "{\n  \"in\" = 1;\n  \"let\" = true;\n  \"or\" = \"x\";\n}",
		Render(Record{A("in", Int(1)), A("let", Bool(true)), A("or", Str("x"))}))
}

func TestRecordPath(t *testing.T) {
	r := Record{A("user", Record{A("name", Str("julas"))})}
	v, ok := r.Path("user.name")
	require.True(t, ok)
	assert.Equal(t, Str("julas"), v)

	_, ok = r.Path("user.name.first")
	assert.False(t, ok)
	_, ok = r.Path("nope")
	assert.False(t, ok)
}

var randomKeys = []string{"a}{", "b", "in", "let", "inherit", "or", "x.y"}

func randomValue(r *rand.Rand, depth int) Value {
	kinds := 5
	if depth > 3 {
		kinds = 3
	}
	switch r.Intn(kinds) {
	case 0:
		return Bool(r.Intn(2) == 0)
	case 1:
		return Int(r.Int63n(1<<20) - 1<<19)
	case 2:
		alphabet := []rune(`ab"\${}[];= ` + "\n\t")
		n := r.Intn(8)
		s := make([]rune, n)
		for i := range s {
			s[i] = alphabet[r.Intn(len(alphabet))]
		}
		return Str(string(s))
	case 3:
		l := make(List, r.Intn(4))
		for i := range l {
			l[i] = randomValue(r, depth+1)
		}
		return l
	default:
		rec := make(Record, r.Intn(4))
		for i := range rec {
			rec[i] = A(randomKeys[r.Intn(len(randomKeys))], randomValue(r, depth+1))
		}
		return rec
	}
}

func TestRenderAlwaysBalanced(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		v := randomValue(r, 0)
		out := Render(v)
		assert.True(t, balanced(out), "unbalanced output:\n%s", out)
		assert.NotRegexp(t, `(?m)^\s*(in|let|inherit|or) =`, out)
	}
}
