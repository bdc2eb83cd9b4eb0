// Package artifact manages the per-request temporary files produced by the
// extraction process.
//
// Every request gets its own uniquely named directory under a shared root.
// Uniqueness comes from the id generator, so no locking is needed and the
// store never lists or reuses another request's directory.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// outputBase is the file stem inside each request directory.
const outputBase = "media"

// MissingOutputError means the producing process reported success but the
// expected file is not there.
type MissingOutputError struct {
	Path string
	Err  error
}

func (e *MissingOutputError) Error() string {
	return "output file not found after download: " + filepath.Base(e.Path)
}

func (e *MissingOutputError) Unwrap() error { return e.Err }

type Store struct {
	root   string
	prefix string
	newID  func() string

	// removeAll deletes an allocation directory. Defaults to os.RemoveAll.
	removeAll func(path string) error
}

// NewStore creates root if needed. prefix names the request directories
// (<root>/<prefix>-<id>).
func NewStore(root string, prefix string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		root = os.TempDir()
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = "artifact"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: create root: %w", err)
	}
	return &Store{root: root, prefix: prefix, newID: uuid.NewString, removeAll: os.RemoveAll}, nil
}

// Root returns the shared directory all allocations live under.
func (s *Store) Root() string { return s.root }

// Allocation is a reserved, still-empty request directory.
type Allocation struct {
	ID       string
	Dir      string
	Template string

	mu        sync.Mutex
	released  bool
	removeAll func(path string) error
}

// Allocate reserves a fresh directory. Template is a yt-dlp output template
// (e.g. <dir>/media.%(ext)s) pointing into it.
func (s *Store) Allocate() (*Allocation, error) {
	id := s.newID()
	dir := filepath.Join(s.root, s.prefix+"-"+id)

	// Mkdir rather than MkdirAll: an existing directory means a collision.
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("artifact: allocate %s: %w", id, err)
	}

	return &Allocation{
		ID:        id,
		Dir:       dir,
		Template:  filepath.Join(dir, outputBase+".%(ext)s"),
		removeAll: s.removeAll,
	}, nil
}

// Release deletes the allocation directory and everything in it. Once a
// removal succeeds later calls return nil; a failed removal leaves the
// allocation unreleased so the next call tries again.
func (a *Allocation) Release() error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return nil
	}

	remove := a.removeAll
	if remove == nil {
		remove = os.RemoveAll
	}
	if err := remove(a.Dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("artifact: release %s (%s): %w", a.ID, a.Dir, err)
	}
	a.released = true
	return nil
}

// Released reports whether the directory has been removed.
func (a *Allocation) Released() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.released
}

// Artifact is a produced file. It shares its release guard with the
// allocation it came from, so releasing either releases both.
type Artifact struct {
	ID     string
	Path   string
	Format string
	Size   int64

	alloc *Allocation
}

// Resolve looks up the file the process should have written for ext
// (e.g. "mp3"). It must only be called after the process exited successfully.
func (s *Store) Resolve(a *Allocation, ext string) (*Artifact, error) {
	path := filepath.Join(a.Dir, outputBase+"."+ext)

	info, err := os.Stat(path)
	if err != nil {
		return nil, &MissingOutputError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &MissingOutputError{Path: path, Err: fmt.Errorf("not a regular file")}
	}

	return &Artifact{
		ID:     a.ID,
		Path:   path,
		Format: ext,
		Size:   info.Size(),
		alloc:  a,
	}, nil
}

// Release deletes the artifact. Safe to call any number of times.
func (a *Artifact) Release() error {
	if a == nil {
		return nil
	}
	return a.alloc.Release()
}
