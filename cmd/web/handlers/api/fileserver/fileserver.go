// Package fileserver streams produced artifacts to HTTP clients.
package fileserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/labstack/echo/v4"
)

// DefaultChunkSize bounds each read from the artifact.
const DefaultChunkSize = 32 * 1024

// State is the lifecycle of a single transfer.
type State int32

const (
	StateIdle State = iota
	StateStreaming
	StateCompleted
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (s State) terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// StreamError is a failure while the body was being transferred. Headers
// have already been sent, so the response is aborted rather than replaced.
type StreamError struct {
	Op  string
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("fileserver: %s: %v", e.Op, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// Attachment is a file on disk to be sent as a download. Release is called
// exactly once when the transfer ends, however it ends.
type Attachment struct {
	Path        string
	Filename    string
	ContentType string
	Release     func() error
}

// FileServer streams attachments in bounded chunks.
type FileServer struct {
	ChunkSize int

	// Open opens the attachment for reading. Defaults to os.Open.
	Open func(name string) (io.ReadCloser, error)

	// OnFinish, when set, observes every transfer's terminal state.
	OnFinish func(path string, state State)
}

// NewFileServer creates a file server with the given chunk size
// (DefaultChunkSize when <= 0).
func NewFileServer(chunkSize int) *FileServer {
	return &FileServer{ChunkSize: chunkSize}
}

func (fs *FileServer) chunkSize() int {
	if fs.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return fs.ChunkSize
}

func (fs *FileServer) open(name string) (io.ReadCloser, error) {
	if fs.Open != nil {
		return fs.Open(name)
	}
	return os.Open(name)
}

// transfer owns the file handle and the release func for one response.
type transfer struct {
	state   atomic.Int32
	path    string
	file    io.ReadCloser
	release func() error
	notify  func(path string, state State)
}

// finish moves the transfer into a terminal state. Only the first caller
// closes the file and releases the attachment; every later call is a no-op.
func (t *transfer) finish(to State, cause error) bool {
	for {
		cur := State(t.state.Load())
		if cur.terminal() {
			return false
		}
		if t.state.CompareAndSwap(int32(cur), int32(to)) {
			break
		}
	}

	if t.file != nil {
		if err := t.file.Close(); err != nil {
			slog.Warn("failed to close attachment", "path", t.path, "error", err)
		}
	}
	if t.release != nil {
		if err := t.release(); err != nil {
			slog.Warn("failed to release attachment", "path", t.path, "error", err)
		}
	}

	switch to {
	case StateCompleted:
		slog.Debug("transfer completed", "path", t.path)
	case StateCancelled:
		slog.Info("transfer cancelled by client", "path", t.path)
	default:
		slog.Warn("transfer failed", "path", t.path, "error", cause)
	}
	if t.notify != nil {
		t.notify(t.path, to)
	}
	return true
}

// ServeAttachment sends a as the response body and takes ownership of it:
// a.Release runs exactly once on completion, failure or client cancellation,
// including when the file cannot be opened in the first place.
//
// Headers (Content-Type, Content-Disposition, Content-Length) are written
// before the first byte. Errors before that point are returned as
// *echo.HTTPError; errors after it as *StreamError.
func (fs *FileServer) ServeAttachment(c echo.Context, a Attachment) error {
	t := &transfer{path: a.Path, release: a.Release, notify: fs.OnFinish}
	defer t.finish(StateFailed, errors.New("transfer abandoned"))

	info, err := os.Stat(a.Path)
	if err != nil {
		t.finish(StateFailed, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read output file")
	}

	f, err := fs.open(a.Path)
	if err != nil {
		t.finish(StateFailed, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read output file")
	}
	t.file = f

	if !t.state.CompareAndSwap(int32(StateIdle), int32(StateStreaming)) {
		return nil
	}

	h := c.Response().Header()
	h.Set(echo.HeaderContentType, a.ContentType)
	h.Set(echo.HeaderContentDisposition, ContentDisposition(a.Filename))
	h.Set(echo.HeaderContentLength, strconv.FormatInt(info.Size(), 10))
	h.Set(echo.HeaderCacheControl, "no-store")
	c.Response().WriteHeader(http.StatusOK)

	// Flush through the underlying writer: echo's Response.Flush panics when
	// flushing is unsupported, the controller reports it instead.
	rc := http.NewResponseController(c.Response().Writer)
	return t.stream(c.Request().Context(), c.Response(), rc, fs.chunkSize())
}

// stream copies the file to w one bounded chunk at a time. Each Write blocks
// until the connection accepts the chunk, so a slow client slows the reads.
func (t *transfer) stream(ctx context.Context, w io.Writer, rc *http.ResponseController, chunkSize int) error {
	buf := make([]byte, chunkSize)

	for {
		if err := ctx.Err(); err != nil {
			t.finish(StateCancelled, err)
			return nil
		}

		n, readErr := t.file.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				if ctx.Err() != nil {
					t.finish(StateCancelled, err)
					return nil
				}
				t.finish(StateFailed, err)
				return &StreamError{Op: "write", Err: err}
			}
			if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
				if ctx.Err() != nil {
					t.finish(StateCancelled, err)
					return nil
				}
				t.finish(StateFailed, err)
				return &StreamError{Op: "flush", Err: err}
			}
		}

		if errors.Is(readErr, io.EOF) {
			t.finish(StateCompleted, nil)
			return nil
		}
		if readErr != nil {
			t.finish(StateFailed, readErr)
			return &StreamError{Op: "read", Err: readErr}
		}
	}
}

// ContentDisposition builds an attachment header with the filename
// percent-encoded in both the legacy and RFC 5987 parameters.
func ContentDisposition(name string) string {
	escaped := escapeFilename(name)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, escaped, escaped)
}

// escapeFilename percent-encodes every byte of name except ALPHA, DIGIT and
// "-._~", which are valid both inside a quoted string and as RFC 5987
// attr-chars.
func escapeFilename(name string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(name) * 3)
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}
