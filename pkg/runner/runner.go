// Package runner executes build-tool commands in the background and
// streams their output to the UI as Bubble Tea messages. The caller never
// blocks: all communication happens over a buffered channel with lossy
// sends, so an abandoned run drains itself to completion harmlessly.
package runner

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// Kind selects the build-tool subcommand.
type Kind int

const (
	KindRun Kind = iota
	KindTest
)

func (k Kind) Subcommand() string {
	if k == KindTest {
		return "test"
	}
	return "run"
}

// Scope selects how much of the graph around the target is included.
type Scope int

const (
	ScopeOnly Scope = iota
	ScopeWithAncestors
	ScopeWithDescendants
	ScopeWithBoth
)

// Request describes one external invocation. It is immutable and consumed
// exactly once by Spawn.
type Request struct {
	Kind       Kind
	Scope      Scope
	Label      string // target node's human label
	WorkDir    string
	UseWrapper bool

	Program string   // build tool, e.g. "dbt"
	Wrapper []string // wrapper prefix, e.g. {"poetry", "run"}
}

// SelectExpr formats the scope expression: x, +x, x+ or +x+.
func (r Request) SelectExpr() string {
	switch r.Scope {
	case ScopeWithAncestors:
		return "+" + r.Label
	case ScopeWithDescendants:
		return r.Label + "+"
	case ScopeWithBoth:
		return "+" + r.Label + "+"
	default:
		return r.Label
	}
}

// Argv returns the full argument vector, wrapper included. Arguments are
// passed as a literal list; nothing is shell-interpreted.
func (r Request) Argv() []string {
	argv := []string{r.Program, r.Kind.Subcommand(), "--select", r.SelectExpr(), "--project-dir", r.WorkDir}
	if r.UseWrapper && len(r.Wrapper) > 0 {
		argv = append(append([]string{}, r.Wrapper...), argv...)
	}
	return argv
}

// String renders the command the way it would be typed, for display.
func (r Request) String() string {
	out := ""
	for i, a := range r.Argv() {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}

// OutputMsg is one line from the child's stdout or stderr. The two
// streams interleave in arrival order; no ordering between them is
// guaranteed.
type OutputMsg struct {
	Line string
}

// SpawnErrorMsg reports that the process could not be started at all.
// It is terminal: no DoneMsg follows.
type SpawnErrorMsg struct {
	Err string
}

// DoneMsg reports process exit. Sent exactly once per successful spawn.
type DoneMsg struct {
	Success bool
}

const messageBuffer = 256

// Spawn starts the requested command and returns its message stream.
// It never blocks the caller. The channel is closed after the terminal
// message so a consumer can also detect abnormal teardown as a closed
// channel (treated like a failed completion).
func Spawn(req Request) <-chan tea.Msg {
	ch := make(chan tea.Msg, messageBuffer)

	go func() {
		defer close(ch)

		argv := req.Argv()
		cmd := exec.Command(argv[0], argv[1:]...)
		cmd.Dir = req.WorkDir

		stdout, err := cmd.StdoutPipe()
		if err != nil {
			send(ch, SpawnErrorMsg{Err: fmt.Sprintf("cannot open stdout: %v", err)})
			return
		}
		stderr, err := cmd.StderrPipe()
		if err != nil {
			send(ch, SpawnErrorMsg{Err: fmt.Sprintf("cannot open stderr: %v", err)})
			return
		}

		if err := cmd.Start(); err != nil {
			send(ch, SpawnErrorMsg{Err: fmt.Sprintf("cannot start %s: %v", argv[0], err)})
			return
		}

		// One reader per stream; both must finish before Wait.
		readLines := func(src io.Reader) func() error {
			return func() error {
				scanner := bufio.NewScanner(src)
				scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
				for scanner.Scan() {
					send(ch, OutputMsg{Line: scanner.Text()})
				}
				return scanner.Err()
			}
		}
		var readers errgroup.Group
		readers.Go(readLines(stdout))
		readers.Go(readLines(stderr))
		if err := readers.Wait(); err != nil {
			send(ch, OutputMsg{Line: fmt.Sprintf("(output truncated: %v)", err)})
		}

		err = cmd.Wait()
		send(ch, DoneMsg{Success: err == nil})
	}()

	return ch
}

// send delivers msg without ever blocking. When the buffer fills because
// the consumer stopped draining, the oldest message is dropped so the
// newest wins — the same lossy policy either side survives.
func send(ch chan tea.Msg, msg tea.Msg) {
	for {
		select {
		case ch <- msg:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
