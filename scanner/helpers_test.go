package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	KiB int64 = 1 << 10
	MiB int64 = 1 << 20
)

// makeTree creates a tree under a temp dir. Keys ending in "/" are
// directories, everything else is a sparse file of the given size.
func makeTree(t *testing.T, layout map[string]int64) string {
	t.Helper()

	root := t.TempDir()
	// TempDir may itself sit behind a symlink (macOS /var)
	root, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)

	for rel, size := range layout {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(p, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		f, err := os.Create(p)
		require.NoError(t, err)
		require.NoError(t, f.Truncate(size))
		require.NoError(t, f.Close())
	}

	return root
}

// expectedSizes sums regular file sizes per directory by walking the tree
// independently of the scanner. Symlinks are ignored.
func expectedSizes(t *testing.T, root string) map[string]int64 {
	t.Helper()

	sizes := make(map[string]int64)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		require.NoError(t, err)
		if d.IsDir() {
			if _, ok := sizes[path]; !ok {
				sizes[path] = 0
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		require.NoError(t, err)
		for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
			sizes[dir] += info.Size()
			if dir == root || dir == filepath.Dir(dir) {
				break
			}
		}
		return nil
	})
	require.NoError(t, err)
	return sizes
}

// emitted gathers results from concurrent emit calls.
type emitted struct {
	mu      sync.Mutex
	results []Result
}

func (e *emitted) add(r Result) {
	e.mu.Lock()
	e.results = append(e.results, r)
	e.mu.Unlock()
}

func (e *emitted) byPath() map[string]int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]int64, len(e.results))
	for _, r := range e.results {
		out[r.Path] = r.Size
	}
	return out
}
