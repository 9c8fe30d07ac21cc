package cgi

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lunarcoffee/lucent/internal/httperr"
)

// DefaultTimeout is the CGI child's wall-clock budget.
const DefaultTimeout = 30 * time.Second

// killGrace is how long a terminated child is given to exit before
// SIGKILL.
const killGrace = 3 * time.Second

// process wraps a running CGI child: its stdin, a buffered view of its
// stdout, and the plumbing to terminate and reap it on any exit path.
type process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	done   chan error
}

// start spawns interpreter on script with env and cwd set to the
// script's directory.
func start(interpreter, script string, env []string) (*process, error) {
	cmd := exec.Command(interpreter, script)
	cmd.Env = env
	cmd.Dir = filepath.Dir(script)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, httperr.Wrap(502, "Bad Gateway", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, httperr.Wrap(502, "Bad Gateway", err)
	}
	cmd.Stderr = nil // discarded; a future revision could route this to the server log

	if err := cmd.Start(); err != nil {
		return nil, httperr.Wrap(502, "Bad Gateway", err)
	}

	p := &process{cmd: cmd, stdin: stdin, stdout: bufio.NewReader(stdout), done: make(chan error, 1)}
	go func() { p.done <- cmd.Wait() }()
	return p, nil
}

// writeBody streams body to the child's stdin and closes it, so a script
// blocked reading stdin sees EOF once the request body is exhausted.
func (p *process) writeBody(body io.Reader) error {
	_, err := io.Copy(p.stdin, body)
	closeErr := p.stdin.Close()
	if err != nil {
		return err
	}
	return closeErr
}

// wait blocks for the child to exit or ctx to expire, terminating it with
// SIGTERM then SIGKILL (after killGrace) on timeout or cancellation.
func (p *process) wait(ctx context.Context) error {
	select {
	case err := <-p.done:
		return err
	case <-ctx.Done():
	}

	_ = p.cmd.Process.Signal(syscall.SIGTERM)
	select {
	case err := <-p.done:
		return err
	case <-time.After(killGrace):
		_ = p.cmd.Process.Kill()
		return <-p.done
	}
}
