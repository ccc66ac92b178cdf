package selection

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	nixos "github.com/julas23/nixos/pkg"
	"github.com/julas23/nixos/pkg/validate"
	"github.com/sirupsen/logrus"
)

// ErrEmptyMenu is returned for a menu with nothing to pick.
var ErrEmptyMenu = errors.New("no options available")

// InputSource yields one line of user input per call. Implementations
// return nixos.ErrCancelled when the user aborts.
type InputSource interface {
	ReadLine(prompt string) (string, error)
}

type readlineSource struct {
	rl *readline.Instance
}

// NewReadlineSource returns an interactive line editor on the terminal.
func NewReadlineSource() (InputSource, io.Closer, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, nil, err
	}
	return &readlineSource{rl: rl}, rl, nil
}

func (s *readlineSource) ReadLine(prompt string) (string, error) {
	s.rl.SetPrompt(prompt)
	line, err := s.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", nixos.ErrCancelled
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

type readerSource struct {
	r   *bufio.Reader
	out io.Writer
}

// NewReaderSource reads lines from r, echoing prompts to out. It is used for
// piped input and in tests.
func NewReaderSource(r io.Reader, out io.Writer) InputSource {
	return &readerSource{r: bufio.NewReader(r), out: out}
}

func (s *readerSource) ReadLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, err := s.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", nixos.ErrCancelled
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Engine runs the selection algorithm against an InputSource, re-prompting
// until a valid answer is given.
type Engine struct {
	in  InputSource
	out io.Writer
	log *logrus.Logger
}

func NewEngine(in InputSource, out io.Writer, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Engine{in: in, out: out, log: log}
}

func (e *Engine) Header(title string) {
	bar := strings.Repeat("=", 60)
	fmt.Fprintf(e.out, "\n%s\n  %s\n%s\n\n", bar, title, bar)
}

func (e *Engine) Printf(format string, a ...any) {
	fmt.Fprintf(e.out, format, a...)
}

// Select resolves one value from the catalog, starting with the popular
// subset when the catalog has one. suggested is marked, not preselected.
func (e *Engine) Select(title string, catalog Catalog, suggested string) (string, error) {
	return e.SelectMenu(NewMenu(title, catalog, MenuOptions{Condensed: true, Suggested: suggested}))
}

// Choose picks one of a fixed list of values with no custom escape.
func (e *Engine) Choose(title string, values []string) (string, error) {
	c := make(Catalog, 0, len(values))
	for _, v := range values {
		label := v
		if label == "" {
			label = "(default)"
		}
		c = append(c, Option{Value: v, Label: label})
	}
	return e.SelectMenu(NewMenu(title, c, MenuOptions{NoCustom: true}))
}

func (e *Engine) SelectMenu(m Menu) (string, error) {
	for {
		m.Render(e.out)
		item, err := e.pick(m)
		if err != nil {
			return "", err
		}
		switch item.Kind {
		case ItemOption:
			e.log.WithField("menu", m.Title).Debugf("selected %q", item.Option.Value)
			return item.Option.Value, nil
		case ItemShowAll:
			m = m.Expand()
		case ItemCustom:
			v, err := e.in.ReadLine("Enter custom value: ")
			if err != nil {
				return "", err
			}
			e.log.WithField("menu", m.Title).Debugf("custom value %q", v)
			return v, nil
		}
	}
}

func (e *Engine) pick(m Menu) (Item, error) {
	if m.Len() == 0 {
		return Item{}, fmt.Errorf("%s: %w", m.Title, ErrEmptyMenu)
	}
	for {
		line, err := e.in.ReadLine(m.Prompt())
		if err != nil {
			return Item{}, err
		}
		item, err := m.Resolve(line)
		if err == nil {
			return item, nil
		}
		fmt.Fprintln(e.out, nixos.Reason(err))
	}
}

// SelectGrouped narrows to one group first, then selects within it.
func (e *Engine) SelectGrouped(title string, groups []Group, suggested string) (string, error) {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	region, err := e.Choose("Select your region", names)
	if err != nil {
		return "", err
	}
	for _, g := range groups {
		if g.Name == region {
			return e.Select(fmt.Sprintf("%s in %s", title, g.Name), g.Options, suggested)
		}
	}
	return "", fmt.Errorf("unknown group %q", region)
}

// Input reads a value until check accepts it. An empty answer takes def when
// one is given.
func (e *Engine) Input(prompt, def string, check validate.Func) (string, error) {
	for {
		p := prompt + ": "
		if def != "" {
			p = fmt.Sprintf("%s [%s]: ", prompt, def)
		}
		v, err := e.in.ReadLine(p)
		if err != nil {
			return "", err
		}
		if v == "" {
			v = def
		}
		if check == nil {
			return v, nil
		}
		if err := check(v); err != nil {
			fmt.Fprintf(e.out, "  Error: %s\n", nixos.Reason(err))
			continue
		}
		return v, nil
	}
}

// Pause waits for Enter. Anything typed is ignored.
func (e *Engine) Pause(prompt string) error {
	_, err := e.in.ReadLine(prompt)
	return err
}

// Confirm asks a yes/no question. An empty answer takes def.
func (e *Engine) Confirm(prompt string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		v, err := e.in.ReadLine(fmt.Sprintf("%s (%s): ", prompt, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(v) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(e.out, "Please answer 'y' or 'n'")
	}
}
