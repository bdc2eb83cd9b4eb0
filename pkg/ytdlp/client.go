package ytdlp

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

type Client struct {
	// Path to yt-dlp executable. Defaults to "yt-dlp" (PATH lookup).
	Path string

	// SearchPaths are extra directories used to locate the executable and
	// appended to the child's PATH, for installs outside the service PATH
	// (e.g. /opt/homebrew/bin).
	SearchPaths []string

	// ExtraArgs are always prepended before per-call args.
	ExtraArgs []string

	// Timeout bounds a single invocation. Zero means no watchdog.
	Timeout time.Duration

	// Runner starts the process. Defaults to an ExecRunner.
	Runner Runner
}

func New() *Client {
	return &Client{Path: "yt-dlp"}
}

// PathOrDefault returns the configured path or "yt-dlp" if unset.
func (c *Client) PathOrDefault() string {
	if strings.TrimSpace(c.Path) == "" {
		return "yt-dlp"
	}
	return c.Path
}

func (c *Client) runner() Runner {
	if c.Runner == nil {
		return &ExecRunner{}
	}
	return c.Runner
}

func (c *Client) exec(ctx context.Context, captureStdout bool, args ...string) (*Outcome, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	fullArgs := make([]string, 0, len(c.ExtraArgs)+len(args))
	fullArgs = append(fullArgs, c.ExtraArgs...)
	fullArgs = append(fullArgs, args...)

	inv := Invocation{
		Name:          c.binary(),
		Args:          fullArgs,
		Env:           c.environ(),
		CaptureStdout: captureStdout,
	}

	slog.Debug("ytdlp: executing command", "cmd", inv.Name, "args", fullArgs)
	return c.runner().Run(ctx, inv)
}

// binary resolves the executable. exec.Command looks names up in the
// parent's PATH only, so the extra search paths are checked here.
func (c *Client) binary() string {
	name := c.PathOrDefault()
	if strings.ContainsRune(name, filepath.Separator) || len(c.SearchPaths) == 0 {
		return name
	}
	if p, err := exec.LookPath(name); err == nil {
		return p
	}
	for _, dir := range c.SearchPaths {
		candidate := filepath.Join(dir, name)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() && st.Mode()&0o111 != 0 {
			return candidate
		}
	}
	return name
}

// environ returns the child environment with SearchPaths appended to PATH,
// or nil to inherit the parent's environment unchanged.
func (c *Client) environ() []string {
	if len(c.SearchPaths) == 0 {
		return nil
	}

	parts := []string{}
	if p := os.Getenv("PATH"); p != "" {
		parts = append(parts, p)
	}
	for _, dir := range c.SearchPaths {
		if d := strings.TrimSpace(dir); d != "" {
			parts = append(parts, d)
		}
	}

	// os/exec keeps the last value of duplicated keys.
	return append(os.Environ(), "PATH="+strings.Join(parts, string(os.PathListSeparator)))
}

// Version returns `yt-dlp --version`.
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.exec(ctx, true, "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out.Stdout)), nil
}
