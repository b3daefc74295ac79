//go:build !linux && !windows

package scanner

import (
	"os"
	"path/filepath"
)

// volumesDir holds removable and network mounts on macOS.
const volumesDir = "/Volumes"

func listRoots() ([]string, error) {
	roots := []string{"/"}

	entries, err := os.ReadDir(volumesDir)
	if err != nil {
		// not every unix has it
		return roots, nil
	}

	for _, e := range entries {
		if e.IsDir() {
			roots = append(roots, filepath.Join(volumesDir, e.Name()))
		}
	}

	return roots, nil
}
