package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// Prompter reads answers from the user. Secrets are read without echo when
// input is a terminal and as plain lines otherwise.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	isTerm bool
	colour bool
}

// NewPrompter creates a Prompter on in and out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.isTerm = true
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.colour = true
	}
	return p
}

// Line asks for one line of text. def is shown and returned for an empty
// answer. io.EOF is returned once input is exhausted.
func (p *Prompter) Line(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	s, err := p.readLine()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return s, nil
}

// Secret asks for a value that must not be echoed.
func (p *Prompter) Secret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if !p.isTerm {
		return p.readLine()
	}
	raw, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", errors.Wrap(err, "[Prompter.Secret] read")
	}
	return string(raw), nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.out, "%s [%s]: ", label, hint)
	s, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Choose lists options and returns the index picked. It asks again until a
// listed number is entered.
func (p *Prompter) Choose(label string, options []string) (int, error) {
	for {
		fmt.Fprintln(p.out, label)
		for i, o := range options {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
		}
		fmt.Fprint(p.out, "> ")
		s, err := p.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		p.Warn("Please pick one of the listed numbers.")
	}
}

func (p *Prompter) Title(text string) {
	fmt.Fprintf(p.out, "\n%s\n", paint(p.colour, Cyan, "== "+text+" =="))
}

func (p *Prompter) Info(text string) {
	fmt.Fprintln(p.out, text)
}

func (p *Prompter) Muted(text string) {
	fmt.Fprintln(p.out, paint(p.colour, Gray, text))
}

func (p *Prompter) Success(text string) {
	fmt.Fprintln(p.out, paint(p.colour, Green, text))
}

func (p *Prompter) Warn(text string) {
	fmt.Fprintln(p.out, paint(p.colour, Yellow, text))
}

func (p *Prompter) Failure(text string) {
	fmt.Fprintln(p.out, paint(p.colour, Red, text))
}

func (p *Prompter) readLine() (string, error) {
	s, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || s == "") {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", errors.Wrap(err, "[Prompter.readLine]")
	}
	return strings.TrimRight(s, "\r\n"), nil
}
