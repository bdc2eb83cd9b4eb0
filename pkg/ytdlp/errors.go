package ytdlp

import (
	"fmt"
	"strings"
)

// SpawnError means the process could not be started at all (missing binary,
// permission denied). It points at the environment, not at the URL.
type SpawnError struct {
	Cmd string
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("ytdlp: failed to start %s: %v", e.Cmd, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExternalToolError means the process ran and exited unsuccessfully.
// Stderr holds the tool's diagnostic output.
type ExternalToolError struct {
	Cmd      string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Cause    error
}

// Error surfaces the tail of the captured stderr, which is where yt-dlp
// reports why an extraction failed.
func (e *ExternalToolError) Error() string {
	if tail := lastLines(e.Stderr, 3); tail != "" {
		return tail
	}
	if e.ExitCode > 0 {
		return fmt.Sprintf("ytdlp: command failed (exit %d)", e.ExitCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("ytdlp: command failed: %v", e.Cause)
	}
	return "ytdlp: command failed"
}

func (e *ExternalToolError) Unwrap() error { return e.Cause }

// Command returns the command line that was executed.
func (e *ExternalToolError) Command() string {
	return strings.TrimSpace(e.Cmd + " " + strings.Join(e.Args, " "))
}

// MetadataParseError means yt-dlp exited successfully but its JSON output
// could not be decoded.
type MetadataParseError struct {
	Err error
}

func (e *MetadataParseError) Error() string {
	return "ytdlp: failed to parse video info: " + e.Err.Error()
}

func (e *MetadataParseError) Unwrap() error { return e.Err }

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
