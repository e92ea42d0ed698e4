package tui

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/npratt/dstview/internal/report"
)

// isTerminal returns true if both stdout and stdin are TTYs.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

// runSimple prints the text report for non-interactive environments. With
// live updates it reprints on every reload until the channel closes or an
// interrupt arrives.
func (t *TUI) runSimple() error {
	if err := t.printReport(); err != nil {
		return err
	}
	if t.updates == nil {
		return nil
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			return nil
		case u, ok := <-t.updates:
			if !ok {
				return nil
			}
			timestamp := time.Now().Format("15:04:05")
			if u.Err != nil {
				if _, err := fmt.Fprintf(t.out, "%s reload failed: %v\n", timestamp, u.Err); err != nil {
					return err
				}
				continue
			}
			t.pattern = u.Pattern
			if _, err := fmt.Fprintf(t.out, "%s reloaded\n", timestamp); err != nil {
				return err
			}
			if err := t.printReport(); err != nil {
				return err
			}
		}
	}
}

func (t *TUI) printReport() error {
	if t.pattern == nil {
		return nil
	}
	return report.Write(t.out, report.FormatText, t.name, t.pattern, report.Options{})
}
