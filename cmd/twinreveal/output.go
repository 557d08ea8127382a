package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"

	"github.com/mattn/go-isatty"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/leaderboard"
)

const clearScreen = "\033[H\033[2J"

// console serializes writes from the countdown goroutine and the command.
type console struct {
	mu  sync.Mutex
	out io.Writer
}

func newConsole(out io.Writer) *console {
	return &console{out: out}
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}

func renderSummary(w io.Writer, s leaderboard.Summary) {
	_, _ = fmt.Fprintf(w, "Twins: %s\n", s.Target.Label())
	_, _ = fmt.Fprintf(w, "%d of %d guessed correctly (%s%%)\n\n", s.CorrectCount, s.Total, s.PercentageLabel)

	if len(s.Correct) > 0 {
		_, _ = fmt.Fprintln(w, "Correct guesses")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, g := range s.Correct {
			_, _ = fmt.Fprintf(tw, "  %s\t%s\n", g.Name, pairLabel(g))
		}
		_ = tw.Flush()
		_, _ = fmt.Fprintln(w)
	}

	if len(s.Guesses) == 0 {
		_, _ = fmt.Fprintln(w, "No guesses yet.")
		return
	}
	_, _ = fmt.Fprintln(w, "All guesses")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, g := range s.Guesses {
		_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\n", g.Name, pairLabel(g), mark(s.Target.Matches(g)))
	}
	_ = tw.Flush()
}

func pairLabel(g guesses.Guess) string {
	return guesses.TargetPair{Twin1: g.Twin1, Twin2: g.Twin2}.Label()
}
