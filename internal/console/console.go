// Package console prints operator messages and progress with pterm.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// BoldRed highlights fatal errors
var BoldRed = color.New(color.FgRed, color.Bold).SprintFunc()

// Console writes user facing messages. Report text and error messages
// share out; the spinner draws on status so it never mixes with the report.
type Console struct {
	out    io.Writer
	status io.Writer

	errorP pterm.PrefixPrinter

	interactive bool
}

// New creates a Console. The spinner is enabled only when status is a terminal.
func New(out, status io.Writer) *Console {
	return &Console{
		out:         out,
		status:      status,
		errorP:      *pterm.Error.WithWriter(out),
		interactive: IsTerminal(status),
	}
}

// Plain disables colors and prefix styling globally; used for non-terminal output.
func Plain() {
	pterm.DisableStyling()
	color.NoColor = true
}

// IsTerminal reports whether w is a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printf writes formatted text to the report writer
func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

// Error prints an error message
func (c *Console) Error(format string, a ...any) {
	c.errorP.Printfln(format, a...)
}

// Status is a running activity indicator
type Status interface {
	Stop()
}

type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

func (h *statusHandle) Stop() {
	if h.spinner != nil {
		_ = h.spinner.Stop()
	}
}

// Status starts a spinner with message. Without a terminal it returns a no-op handle.
func (c *Console) Status(message string) Status {
	if !c.interactive {
		return &statusHandle{}
	}
	spinner, err := pterm.DefaultSpinner.
		WithWriter(c.status).
		WithRemoveWhenDone(true).
		Start(message)
	if err != nil {
		return &statusHandle{}
	}
	return &statusHandle{spinner: spinner}
}
