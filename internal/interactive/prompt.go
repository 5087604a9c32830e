// Package interactive provides interactive prompts for user confirmation.
package interactive

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/term"
)

// ErrInputClosed is returned when the input stream ends before an answer.
var ErrInputClosed = errors.New("input closed before an answer was given")

// Text holds the prompt decorations shown to the user.
type Text struct {
	// YesDefault and NoDefault are appended to confirmation questions.
	YesDefault string
	NoDefault  string
	// Invalid is printed when an answer cannot be understood.
	Invalid string
	// Choose is printed after the numbered list in Select.
	Choose string
}

// DefaultText is the English prompt decoration.
var DefaultText = Text{
	YesDefault: "[Y/n]",
	NoDefault:  "[y/N]",
	Invalid:    "Invalid response, please try again.",
	Choose:     "Enter a number or name:",
}

var (
	yesWords = map[string]bool{"y": true, "yes": true, "s": true, "si": true, "sí": true}
	noWords  = map[string]bool{"n": true, "no": true}
)

// Prompter asks questions on an input/output pair. Reads honour context
// cancellation so an interrupt is not blocked on a pending line.
type Prompter struct {
	in        io.Reader
	out       io.Writer
	text      Text
	assumeYes bool

	once    sync.Once
	lines   chan string
	readErr error
}

// NewPrompterWithIO creates a prompter reading answers from in and writing questions to out.
func NewPrompterWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:   in,
		out:  out,
		text: DefaultText,
	}
}

// WithText replaces the prompt decoration. Empty fields keep their defaults.
func (p *Prompter) WithText(t Text) *Prompter {
	if t.YesDefault != "" {
		p.text.YesDefault = t.YesDefault
	}
	if t.NoDefault != "" {
		p.text.NoDefault = t.NoDefault
	}
	if t.Invalid != "" {
		p.text.Invalid = t.Invalid
	}
	if t.Choose != "" {
		p.text.Choose = t.Choose
	}
	return p
}

// WithAssumeYes makes every confirmation succeed without reading input.
func (p *Prompter) WithAssumeYes(v bool) *Prompter {
	p.assumeYes = v
	return p
}

// IsTerminal checks if stdin is a terminal (TTY).
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Confirm asks a yes/no question. An empty answer selects def.
func (p *Prompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	if p.assumeYes {
		return true, nil
	}

	hint := p.text.NoDefault
	if def {
		hint = p.text.YesDefault
	}

	for {
		_, _ = fmt.Fprintf(p.out, "%s %s ", question, hint)

		input, err := p.readLine(ctx)
		if err != nil {
			return false, err
		}

		answer := strings.ToLower(strings.TrimSpace(input))
		switch {
		case answer == "":
			return def, nil
		case yesWords[answer]:
			return true, nil
		case noWords[answer]:
			return false, nil
		default:
			_, _ = fmt.Fprintln(p.out, p.text.Invalid)
		}
	}
}

// Select asks the user to pick one of choices, by 1-based number or by name.
func (p *Prompter) Select(ctx context.Context, question string, choices []string) (string, error) {
	if len(choices) == 0 {
		return "", errors.New("no choices to select from")
	}

	for {
		_, _ = fmt.Fprintln(p.out, question)
		for i, c := range choices {
			_, _ = fmt.Fprintf(p.out, "  %d) %s\n", i+1, c)
		}
		_, _ = fmt.Fprintf(p.out, "%s ", p.text.Choose)

		input, err := p.readLine(ctx)
		if err != nil {
			return "", err
		}

		answer := strings.TrimSpace(input)
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(choices) {
			return choices[n-1], nil
		}
		for _, c := range choices {
			if strings.EqualFold(c, answer) {
				return c, nil
			}
		}
		_, _ = fmt.Fprintln(p.out, p.text.Invalid)
	}
}

// readLine waits for the next input line or for ctx to end. The reader
// goroutine is started on first use and exits when the input ends; readErr
// is set before lines is closed.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	p.once.Do(func() {
		p.lines = make(chan string)
		go func() {
			scanner := bufio.NewScanner(p.in)
			for scanner.Scan() {
				p.lines <- scanner.Text()
			}
			p.readErr = scanner.Err()
			if p.readErr == nil {
				p.readErr = ErrInputClosed
			}
			close(p.lines)
		}()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case text, ok := <-p.lines:
		if !ok {
			return "", p.readErr
		}
		return text, nil
	}
}
