package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/custodia-labs/solrsync/internal/core/ports/driven"
)

// Ensure TerminalConfirmer implements the interface.
var _ driven.Confirmer = (*TerminalConfirmer)(nil)

// ErrNotInteractive is returned when no terminal is available to ask.
var ErrNotInteractive = errors.New("not an interactive terminal, use --yes")

// TerminalConfirmer asks yes/no questions on the terminal.
type TerminalConfirmer struct {
	in          io.Reader
	out         io.Writer
	interactive func() bool
}

// NewTerminalConfirmer creates a confirmer on stdin and stderr.
func NewTerminalConfirmer() *TerminalConfirmer {
	return &TerminalConfirmer{
		in:  os.Stdin,
		out: os.Stderr,
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// NewConfirmer creates a confirmer on the given streams. It is always
// considered interactive.
func NewConfirmer(in io.Reader, out io.Writer) *TerminalConfirmer {
	return &TerminalConfirmer{in: in, out: out, interactive: func() bool { return true }}
}

// Confirm prints prompt and reads an answer. Only "y" and "yes" confirm.
func (c *TerminalConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if !c.interactive() {
		return false, ErrNotInteractive
	}

	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)

	answer := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(c.in).ReadString('\n')
		answer <- line
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return false, ctx.Err()
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
