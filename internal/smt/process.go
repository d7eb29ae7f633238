package smt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

type solverResult string

const (
	resultSat     solverResult = "sat"
	resultUnsat   solverResult = "unsat"
	resultUnknown solverResult = "unknown"
)

// process owns one running solver subprocess spoken to in SMT-LIB over
// stdin/stdout. Callers serialize access; a failed process is discarded and
// replaced by the backend.
type process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	out    *bufio.Reader
	logger *slog.Logger
}

func startProcess(path string, args []string, logger *slog.Logger) (*process, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverUnavailable, err)
	}

	cmd := exec.Command(resolved, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start: %v", ErrSolverUnavailable, err)
	}

	logger.Info("solver subprocess started",
		slog.String("path", resolved),
		slog.Int("pid", cmd.Process.Pid),
	)
	return &process{cmd: cmd, stdin: stdin, out: bufio.NewReader(stdout), logger: logger}, nil
}

// check writes a script ending in (check-sat) and reads the verdict line.
// On context expiry the caller must discard the process: the pending read is
// only released by killing the subprocess.
func (p *process) check(ctx context.Context, script string) (solverResult, error) {
	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		if _, err := io.WriteString(p.stdin, script); err != nil {
			ch <- answer{err: fmt.Errorf("solver write: %w", err)}
			return
		}
		line, err := p.out.ReadString('\n')
		if err != nil {
			ch <- answer{err: fmt.Errorf("solver read: %w", err)}
			return
		}
		ch <- answer{line: strings.TrimSpace(line)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a := <-ch:
		if a.err != nil {
			return "", a.err
		}
		switch a.line {
		case "sat":
			return resultSat, nil
		case "unsat":
			return resultUnsat, nil
		case "unknown":
			return resultUnknown, nil
		default:
			return "", fmt.Errorf("unexpected solver reply: %q", a.line)
		}
	}
}

// close attempts a graceful exit, then kills the subprocess.
func (p *process) close() {
	_, _ = io.WriteString(p.stdin, "(exit)\n")
	_ = p.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		if p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
		<-done
	}
}

// kill terminates the subprocess without ceremony.
func (p *process) kill() {
	_ = p.stdin.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	_ = p.cmd.Wait()
}
