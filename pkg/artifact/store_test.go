package artifact

import (
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocate_CreatesNamespacedDir(t *testing.T) {
	root := t.TempDir()
	s, err := NewStore(root, "aquatube")
	require.NoError(t, err)

	a, err := s.Allocate()
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	require.Equal(t, filepath.Join(root, "aquatube-"+a.ID), a.Dir)
	require.Equal(t, filepath.Join(a.Dir, "media.%(ext)s"), a.Template)

	st, err := os.Stat(a.Dir)
	require.NoError(t, err)
	require.True(t, st.IsDir())
}

func TestAllocate_ConcurrentRequestsNeverShareAPath(t *testing.T) {
	s, err := NewStore(t.TempDir(), "aquatube")
	require.NoError(t, err)

	const n = 64
	var wg sync.WaitGroup
	paths := make(chan string, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := s.Allocate()
			if err != nil {
				errs <- err
				return
			}
			paths <- a.Template
		}()
	}
	wg.Wait()
	close(paths)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := map[string]struct{}{}
	for p := range paths {
		seen[p] = struct{}{}
	}
	require.Len(t, seen, n)
}

func TestAllocate_CollisionFails(t *testing.T) {
	s, err := NewStore(t.TempDir(), "aquatube")
	require.NoError(t, err)
	s.newID = func() string { return "fixed" }

	_, err = s.Allocate()
	require.NoError(t, err)
	_, err = s.Allocate()
	require.Error(t, err)
}

func TestResolve_MissingOutput(t *testing.T) {
	s, err := NewStore(t.TempDir(), "aquatube")
	require.NoError(t, err)
	a, err := s.Allocate()
	require.NoError(t, err)

	_, err = s.Resolve(a, "mp4")
	var me *MissingOutputError
	require.ErrorAs(t, err, &me)
	require.Equal(t, filepath.Join(a.Dir, "media.mp4"), me.Path)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolve_StatsFile(t *testing.T) {
	s, err := NewStore(t.TempDir(), "aquatube")
	require.NoError(t, err)
	a, err := s.Allocate()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(a.Dir, "media.mp3"), []byte("12345"), 0o600))

	art, err := s.Resolve(a, "mp3")
	require.NoError(t, err)
	require.Equal(t, int64(5), art.Size)
	require.Equal(t, "mp3", art.Format)
	require.Equal(t, a.ID, art.ID)
}

func TestRelease_IsIdempotentAndScoped(t *testing.T) {
	s, err := NewStore(t.TempDir(), "aquatube")
	require.NoError(t, err)

	a, err := s.Allocate()
	require.NoError(t, err)
	other, err := s.Allocate()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(a.Dir, "media.mp4"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(other.Dir, "media.mp4"), []byte("y"), 0o600))

	art, err := s.Resolve(a, "mp4")
	require.NoError(t, err)

	require.NoError(t, art.Release())
	require.NoError(t, art.Release())
	require.NoError(t, a.Release())
	require.True(t, a.Released())

	_, err = os.Stat(a.Dir)
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(other.Dir, "media.mp4"))
	require.NoError(t, err)
}

func TestRelease_ConcurrentCallsDeleteOnce(t *testing.T) {
	s, err := NewStore(t.TempDir(), "aquatube")
	require.NoError(t, err)
	a, err := s.Allocate()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, a.Release())
		}()
	}
	wg.Wait()

	_, err = os.Stat(a.Dir)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRelease_NilIsNoop(t *testing.T) {
	var a *Artifact
	require.NoError(t, a.Release())
	var al *Allocation
	require.NoError(t, al.Release())
}

func TestRelease_FailedRemovalCanBeRetried(t *testing.T) {
	s, err := NewStore(t.TempDir(), "aquatube")
	require.NoError(t, err)

	calls := 0
	s.removeAll = func(path string) error {
		calls++
		if calls == 1 {
			return &os.PathError{Op: "unlinkat", Path: path, Err: syscall.EBUSY}
		}
		return os.RemoveAll(path)
	}

	a, err := s.Allocate()
	require.NoError(t, err)

	err = a.Release()
	require.ErrorIs(t, err, syscall.EBUSY)
	require.Contains(t, err.Error(), a.Dir)
	require.False(t, a.Released())
	require.DirExists(t, a.Dir)

	require.NoError(t, a.Release())
	require.True(t, a.Released())
	require.NoDirExists(t, a.Dir)

	require.NoError(t, a.Release())
	require.Equal(t, 2, calls)
}
