package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraverse_ReportsDirectoriesAboveThreshold(t *testing.T) {
	root := makeTree(t, map[string]int64{
		"A/file1": 300 * MiB,
		"A/file2": 250 * MiB,
		"B/file3": 100 * MiB,
	})

	var got emitted
	summary := Traverse(context.Background(), root, Options{Threshold: 500 * MiB}, got.add)

	assert.Equal(t, map[string]int64{
		filepath.Join(root, "A"): 550 * MiB,
		root:                     650 * MiB,
	}, got.byPath())
	assert.Equal(t, 650*MiB, summary.TotalSize)
	assert.True(t, summary.Complete)
	assert.EqualValues(t, 3, summary.Dirs)
	assert.EqualValues(t, 3, summary.Files)
	assert.Zero(t, summary.Errors)

	// children are finalised before their parent
	require.Len(t, got.results, 2)
	assert.Equal(t, filepath.Join(root, "A"), got.results[0].Path)
	assert.Equal(t, root, got.results[1].Path)
}

func TestTraverse_ThresholdIsInclusive(t *testing.T) {
	root := makeTree(t, map[string]int64{
		"exact/f": 4 * KiB,
		"below/f": 4*KiB - 1,
	})

	var got emitted
	Traverse(context.Background(), root, Options{Threshold: 4 * KiB}, got.add)

	sizes := got.byPath()
	assert.Contains(t, sizes, filepath.Join(root, "exact"))
	assert.NotContains(t, sizes, filepath.Join(root, "below"))
	assert.Contains(t, sizes, root)
}

func TestTraverse_AggregatesIndependentOfWorkerCount(t *testing.T) {
	layout := map[string]int64{}
	for i := 0; i < 6; i++ {
		for j := 0; j < 5; j++ {
			for k := 0; k < 3; k++ {
				layout[fmt.Sprintf("d%d/e%d/f%d", i, j, k)] = int64(1 + i*100 + j*10 + k)
			}
			layout[fmt.Sprintf("d%d/e%d/deep/deeper/x", i, j)] = int64(7 * (i + 1))
		}
		layout[fmt.Sprintf("d%d/empty/", i)] = 0
	}
	root := makeTree(t, layout)
	want := expectedSizes(t, root)

	for _, workers := range []int{1, 2, 4, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			var got emitted
			summary := Traverse(context.Background(), root, Options{Threshold: 1, Workers: workers}, got.add)

			sizes := got.byPath()
			for dir, size := range want {
				if size == 0 {
					assert.NotContains(t, sizes, dir, "empty directories are never emitted")
					continue
				}
				assert.Equal(t, size, sizes[dir], dir)
			}
			assert.Len(t, got.results, len(sizes), "each directory is emitted once")
			assert.Equal(t, want[root], summary.TotalSize)
		})
	}
}

func TestTraverse_SymlinkCycleTerminates(t *testing.T) {
	root := makeTree(t, map[string]int64{
		"A/file": 10 * KiB,
		"big":    1 * MiB,
	})
	require.NoError(t, os.Symlink(root, filepath.Join(root, "A", "loop")))
	require.NoError(t, os.Symlink(filepath.Join(root, "big"), filepath.Join(root, "A", "big-link")))

	var got emitted
	summary := Traverse(context.Background(), root, Options{Threshold: 1}, got.add)

	assert.True(t, summary.Complete)
	assert.Equal(t, 10*KiB, got.byPath()[filepath.Join(root, "A")])
	assert.Equal(t, 1*MiB+10*KiB, got.byPath()[root])
}

func TestTraverse_EmptyAndFileRoots(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		root := makeTree(t, map[string]int64{"a/b/c/": 0})

		var got emitted
		summary := Traverse(context.Background(), root, Options{Threshold: 1}, got.add)

		assert.Empty(t, got.results)
		assert.Zero(t, summary.TotalSize)
		assert.True(t, summary.Complete)
	})

	t.Run("regular file", func(t *testing.T) {
		root := makeTree(t, map[string]int64{"only": 3 * KiB})

		var got emitted
		summary := Traverse(context.Background(), filepath.Join(root, "only"), Options{Threshold: 1}, got.add)

		assert.Empty(t, got.results)
		assert.Equal(t, 3*KiB, summary.TotalSize)
	})

	t.Run("missing root", func(t *testing.T) {
		var errs []error
		opts := Options{Threshold: 1, OnError: func(err error) { errs = append(errs, err) }}

		summary := Traverse(context.Background(), filepath.Join(t.TempDir(), "nope"), opts, nil)

		assert.True(t, summary.Complete)
		assert.EqualValues(t, 1, summary.Errors)
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], ErrPathVanished)
		assert.ErrorIs(t, errs[0], os.ErrNotExist)
	})
}

func TestTraverse_UnreadableDirectoryIsIsolated(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	root := makeTree(t, map[string]int64{
		"ok/f":     8 * KiB,
		"locked/f": 8 * KiB,
		"also/f":   2 * KiB,
	})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	var (
		mu   sync.Mutex
		errs []error
		got  emitted
	)
	opts := Options{Threshold: 1, OnError: func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}}
	summary := Traverse(context.Background(), root, opts, got.add)

	sizes := got.byPath()
	assert.Equal(t, 8*KiB, sizes[filepath.Join(root, "ok")])
	assert.Equal(t, 2*KiB, sizes[filepath.Join(root, "also")])
	assert.NotContains(t, sizes, locked)
	assert.Equal(t, 10*KiB, sizes[root])
	assert.True(t, summary.Complete)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrPermissionDenied)

	var entryErr *EntryError
	require.True(t, errors.As(errs[0], &entryErr))
	assert.Equal(t, locked, entryErr.Path)
	assert.Equal(t, "readdir", entryErr.Op)
}

func stubReadDir(t *testing.T, fn func(name string) ([]os.DirEntry, error)) {
	t.Helper()
	readDir = fn
	t.Cleanup(func() { readDir = os.ReadDir })
}

func TestTraverse_VanishedDirectoryIsIsolated(t *testing.T) {
	root := makeTree(t, map[string]int64{
		"ok/f":   8 * KiB,
		"gone/f": 8 * KiB,
		"also/f": 2 * KiB,
	})
	gone := filepath.Join(root, "gone")
	stubReadDir(t, func(name string) ([]os.DirEntry, error) {
		if name == gone {
			assert.NoError(t, os.RemoveAll(gone))
		}
		return os.ReadDir(name)
	})

	var (
		mu   sync.Mutex
		errs []error
		got  emitted
	)
	opts := Options{Threshold: 1, OnError: func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}}
	summary := Traverse(context.Background(), root, opts, got.add)

	sizes := got.byPath()
	assert.Equal(t, 8*KiB, sizes[filepath.Join(root, "ok")])
	assert.Equal(t, 2*KiB, sizes[filepath.Join(root, "also")])
	assert.NotContains(t, sizes, gone)
	assert.Equal(t, 10*KiB, sizes[root])
	assert.True(t, summary.Complete)
	assert.EqualValues(t, 1, summary.Errors)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrPathVanished)

	var entryErr *EntryError
	require.True(t, errors.As(errs[0], &entryErr))
	assert.Equal(t, gone, entryErr.Path)
	assert.Equal(t, "readdir", entryErr.Op)
}

func TestTraverse_PanicAfterForkJoinsChildren(t *testing.T) {
	root := makeTree(t, map[string]int64{
		"a/f": 4 * KiB,
		"z":   1 * KiB,
	})
	z := filepath.Join(root, "z")
	// z is listed but gone by the time it is stat'ed, after a/ was forked
	stubReadDir(t, func(name string) ([]os.DirEntry, error) {
		entries, err := os.ReadDir(name)
		if name == root {
			require.NoError(t, os.Remove(z))
		}
		return entries, err
	})

	var (
		panicked atomic.Bool
		got      emitted
	)
	opts := Options{Threshold: 1, Workers: 4, OnError: func(err error) {
		if panicked.CompareAndSwap(false, true) {
			panic("hook failed")
		}
	}}
	emit := func(r Result) {
		time.Sleep(50 * time.Millisecond)
		got.add(r)
	}

	summary := Traverse(context.Background(), root, opts, emit)

	assert.Equal(t, 4*KiB, got.byPath()[filepath.Join(root, "a")], "forked child finished before Traverse returned")
	assert.NotContains(t, got.byPath(), root)
	assert.Zero(t, summary.TotalSize)
}

func TestTraverse_PanicInSubtreeContributesNothing(t *testing.T) {
	root := makeTree(t, map[string]int64{
		"bad/f":  5 * KiB,
		"good/f": 3 * KiB,
	})
	bad := filepath.Join(root, "bad")

	var (
		mu   sync.Mutex
		errs []error
		got  emitted
	)
	opts := Options{Threshold: 1, Workers: 1, OnError: func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}}
	emit := func(r Result) {
		if r.Path == bad {
			panic("boom")
		}
		got.add(r)
	}

	summary := Traverse(context.Background(), root, opts, emit)

	assert.True(t, summary.Complete)
	assert.Equal(t, 3*KiB, got.byPath()[root])
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUnreadable)
	assert.Contains(t, errs[0].Error(), "boom")
}

func TestTraverse_CancelledContextEmitsNothing(t *testing.T) {
	root := makeTree(t, map[string]int64{"a/f": 1 * MiB})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got emitted
	summary := Traverse(ctx, root, Options{Threshold: 1}, got.add)

	assert.Empty(t, got.results)
	assert.False(t, summary.Complete)
	assert.Zero(t, summary.Dirs)
}
