package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riadafridishibly/bigdirs/scanner"
)

func finishedSession(t *testing.T, root string) *scanner.Session {
	t.Helper()

	s, err := scanner.NewSession(root, 1, scanner.SessionOptions{}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	s.Wait()
	return s
}

func TestWriteSession(t *testing.T) {
	ctx := context.Background()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "b", "f"), make([]byte, 10), 0o644))

	e, err := Open(filepath.Join(t.TempDir(), "reports", "scan.db"))
	require.NoError(t, err)
	defer e.Close()

	id, err := e.WriteSession(ctx, finishedSession(t, root))
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)

	scans, err := e.Count(ctx, "scans")
	require.NoError(t, err)
	assert.EqualValues(t, 1, scans)

	results, err := e.Count(ctx, "results")
	require.NoError(t, err)
	assert.EqualValues(t, 3, results)

	var path string
	var size int64
	require.NoError(t, e.db.QueryRowContext(ctx,
		`SELECT path, size FROM results WHERE scan_id = ? AND rank = 3`, id).Scan(&path, &size))
	assert.Equal(t, filepath.Join(root, "a", "b"), filepath.Clean(path))
	assert.EqualValues(t, 10, size)

	// a second export appends
	id2, err := e.WriteSession(ctx, finishedSession(t, root))
	require.NoError(t, err)
	assert.EqualValues(t, 2, id2)
}

func TestWriteSession_RecordsErrors(t *testing.T) {
	ctx := context.Background()

	e, err := Open(filepath.Join(t.TempDir(), "scan.db"))
	require.NoError(t, err)
	defer e.Close()

	s := finishedSession(t, filepath.Join(t.TempDir(), "gone"))
	_, err = e.WriteSession(ctx, s)
	require.NoError(t, err)

	n, err := e.Count(ctx, "scan_errors")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var class, op string
	require.NoError(t, e.db.QueryRowContext(ctx, `SELECT class, op FROM scan_errors`).Scan(&class, &op))
	assert.Equal(t, "path_vanished", class)
	assert.Equal(t, "lstat", op)
}

func TestWriteSession_RejectsRunningScan(t *testing.T) {
	e, err := Open(filepath.Join(t.TempDir(), "scan.db"))
	require.NoError(t, err)
	defer e.Close()

	s, err := scanner.NewSession(t.TempDir(), 1, scanner.SessionOptions{}, nil)
	require.NoError(t, err)

	_, err = e.WriteSession(context.Background(), s)
	assert.Error(t, err)
}

func TestOpen_Validation(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)

	e, err := Open(filepath.Join(t.TempDir(), "scan.db"))
	require.NoError(t, err)
	_, err = e.Count(context.Background(), "sqlite_master; DROP TABLE scans")
	assert.Error(t, err)
	assert.NoError(t, e.Close())
	assert.NoError(t, (*Exporter)(nil).Close())
}
