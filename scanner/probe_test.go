package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_Classifies(t *testing.T) {
	root := makeTree(t, map[string]int64{
		"dir/":  0,
		"file":  1234,
		"dir/x": 1,
	})
	require.NoError(t, os.Symlink(filepath.Join(root, "dir"), filepath.Join(root, "link")))

	tests := []struct {
		name string
		path string
		kind Kind
		size int64
	}{
		{"regular file", "file", KindFile, 1234},
		{"directory", "dir", KindDir, 0},
		{"symlink to directory is not followed", "link", KindSymlink, 0},
		{"missing", "missing", KindInaccessible, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Probe(filepath.Join(root, tt.path))
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.size, e.Size)
			if tt.kind == KindInaccessible {
				assert.ErrorIs(t, e.Err, ErrPathVanished)
			} else {
				assert.NoError(t, e.Err)
			}
		})
	}
}

func TestProbeDirEntry_MatchesProbe(t *testing.T) {
	root := makeTree(t, map[string]int64{"sub/": 0, "f": 42})
	require.NoError(t, os.Symlink("f", filepath.Join(root, "l")))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)

	for _, d := range entries {
		p := filepath.Join(root, d.Name())
		assert.Equal(t, Probe(p), probeDirEntry(p, d), d.Name())
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ErrPermissionDenied, classify(fs.ErrPermission))
	assert.Equal(t, ErrPathVanished, classify(&fs.PathError{Op: "open", Path: "/x", Err: fs.ErrNotExist}))
	assert.Equal(t, ErrUnreadable, classify(errors.New("i/o error")))

	err := newEntryError("readdir", "/x", fs.ErrPermission)
	assert.Equal(t, "permission_denied", ClassName(err))
	assert.Equal(t, "readdir /x: permission denied", err.Error())
	assert.Equal(t, "unreadable", ClassName(errors.New("other")))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "dir", KindDir.String())
	assert.Equal(t, "symlink", KindSymlink.String())
	assert.Equal(t, "inaccessible", KindInaccessible.String())
	assert.Equal(t, "other", KindOther.String())
}
