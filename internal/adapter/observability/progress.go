package observability

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Progress reports scan progress on the terminal. It stays silent when
// the output is not a TTY so piped and CI runs keep clean logs.
type Progress struct {
	out   io.Writer
	isTTY bool
	dirty bool
}

// NewProgress constructs a progress reporter writing to stderr.
func NewProgress() *Progress {
	return &Progress{
		out:   os.Stderr,
		isTTY: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// NewProgressWriter constructs a progress reporter for an arbitrary
// writer, forcing TTY behaviour.
func NewProgressWriter(out io.Writer) *Progress {
	return &Progress{out: out, isTTY: true}
}

// Step rewrites the current line with the project and its scanned count.
func (p *Progress) Step(project string, scanned int) {
	if !p.isTTY {
		return
	}
	fmt.Fprintf(p.out, "\r%s: %d commits", project, scanned)
	p.dirty = true
}

// Done terminates the progress line.
func (p *Progress) Done() {
	if !p.isTTY || !p.dirty {
		return
	}
	fmt.Fprintln(p.out)
	p.dirty = false
}
