package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Console prints localized, user-facing messages. Informational lines go to
// out and are dropped in quiet mode; errors always go to errOut.
type Console struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool

	success lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	detail  lipgloss.Style
}

// NewConsole creates a console. Colors are enabled only when the target
// writer is a color-capable terminal.
func NewConsole(out, errOut io.Writer, quiet bool) *Console {
	outR := lipgloss.NewRenderer(out)
	errR := lipgloss.NewRenderer(errOut)
	return &Console{
		out:     out,
		errOut:  errOut,
		quiet:   quiet,
		success: outR.NewStyle().Foreground(lipgloss.Color("42")),
		warn:    outR.NewStyle().Foreground(lipgloss.Color("214")),
		fail:    errR.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		detail:  errR.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Out returns the writer used for informational output.
func (c *Console) Out() io.Writer {
	return c.out
}

// Info prints a plain progress line.
func (c *Console) Info(msg string) {
	if c.quiet {
		return
	}
	_, _ = fmt.Fprintln(c.out, msg)
}

// Success prints a completion line.
func (c *Console) Success(msg string) {
	if c.quiet {
		return
	}
	_, _ = fmt.Fprintln(c.out, c.success.Render(msg))
}

// Warn prints a notice such as a cancelled prompt.
func (c *Console) Warn(msg string) {
	if c.quiet {
		return
	}
	_, _ = fmt.Fprintln(c.out, c.warn.Render(msg))
}

// Error prints a failure with its cause on a second, dimmed line.
func (c *Console) Error(msg string, cause error) {
	_, _ = fmt.Fprintln(c.errOut, c.fail.Render(msg))
	if cause != nil {
		_, _ = fmt.Fprintln(c.errOut, c.detail.Render("  "+cause.Error()))
	}
}
