package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Invocation describes a single child process run.
type Invocation struct {
	Name string
	Args []string

	// Env is the full child environment. nil inherits the parent's.
	Env []string

	// CaptureStdout keeps stdout in Outcome.Stdout. When false stdout is
	// still drained for the whole process lifetime, just into io.Discard.
	CaptureStdout bool
}

// Outcome is the result of a finished process.
type Outcome struct {
	ExitStatus int
	Stdout     []byte
	Stderr     []byte
}

// Runner starts a process and waits for it to exit.
//
// Implementations must return *SpawnError when the process cannot be started
// and *ExternalToolError when it exits non-zero.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (*Outcome, error)
}

// ExecRunner runs processes with os/exec. Arguments are passed as a literal
// vector; no shell is involved.
type ExecRunner struct {
	// LogCallback is called for each non-empty line of stdout/stderr output.
	LogCallback func(stream string, line string)

	// DrainDeadline bounds how long output is still read after ctx is done.
	// Defaults to DefaultDrainDeadline.
	DrainDeadline time.Duration
}

// DefaultDrainDeadline is how long a cancelled run may keep reading output
// before its pipes are closed.
const DefaultDrainDeadline = 2 * time.Second

func (r *ExecRunner) drainDeadline() time.Duration {
	if r.DrainDeadline <= 0 {
		return DefaultDrainDeadline
	}
	return r.DrainDeadline
}

func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (*Outcome, error) {
	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	cmd.Env = inv.Env
	killTree(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Cmd: inv.Name, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Cmd: inv.Name, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Cmd: inv.Name, Err: err}
	}

	var outBuf, errBuf bytes.Buffer
	var outSink io.Writer = io.Discard
	if inv.CaptureStdout {
		outSink = &outBuf
	}
	var errSink io.Writer = &errBuf
	if r.LogCallback != nil {
		outSink = &lineLogger{stream: "stdout", onLine: r.LogCallback, sink: outSink}
		errSink = &lineLogger{stream: "stderr", onLine: r.LogCallback, sink: errSink}
	}

	// Both pipes must be read until EOF before Wait, otherwise a chatty child
	// blocks on a full pipe buffer and never exits.
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(outSink, stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(errSink, stderr)
		return err
	})

	// A grandchild outside the killed group can hold the pipes open
	// indefinitely; after cancellation the read ends are closed to unblock
	// the copies.
	drained := make(chan struct{})
	go func() {
		select {
		case <-drained:
			return
		case <-ctx.Done():
		}
		t := time.NewTimer(r.drainDeadline())
		defer t.Stop()
		select {
		case <-drained:
		case <-t.C:
			_ = stdout.Close()
			_ = stderr.Close()
		}
	}()

	drainErr := g.Wait()
	close(drained)
	waitErr := cmd.Wait()

	outcome := &Outcome{
		Stdout: outBuf.Bytes(),
		Stderr: errBuf.Bytes(),
	}
	if cmd.ProcessState != nil {
		outcome.ExitStatus = cmd.ProcessState.ExitCode()
	}

	if waitErr == nil && drainErr != nil {
		waitErr = drainErr
	}
	if waitErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			waitErr = errors.Join(ctxErr, waitErr)
		}
		exitCode := outcome.ExitStatus
		var ee *exec.ExitError
		if errors.As(waitErr, &ee) {
			exitCode = ee.ExitCode()
		}
		return outcome, &ExternalToolError{
			Cmd:      inv.Name,
			Args:     inv.Args,
			ExitCode: exitCode,
			Stdout:   strings.TrimSpace(string(outcome.Stdout)),
			Stderr:   strings.TrimSpace(string(outcome.Stderr)),
			Cause:    waitErr,
		}
	}

	return outcome, nil
}

// lineLogger copies output to sink and hands every finished line to onLine.
// yt-dlp redraws progress with a bare '\r', so '\r' ends a line just like
// '\n'; the empty line between "\r\n" is dropped with the other blanks.
type lineLogger struct {
	stream string
	onLine func(stream string, line string)
	sink   io.Writer
	buf    []byte
}

func (l *lineLogger) Write(p []byte) (int, error) {
	if l.sink != nil {
		if _, err := l.sink.Write(p); err != nil {
			return 0, err
		}
	}

	l.buf = append(l.buf, p...)
	start := 0
	for i, c := range l.buf {
		if c != '\n' && c != '\r' {
			continue
		}
		if line := strings.TrimSpace(string(l.buf[start:i])); line != "" && l.onLine != nil {
			l.onLine(l.stream, line)
		}
		start = i + 1
	}
	l.buf = append(l.buf[:0], l.buf[start:]...)

	return len(p), nil
}
