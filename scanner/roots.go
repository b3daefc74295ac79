package scanner

import (
	"slices"
)

// ListRoots returns the mount points or drives that can be scanned on this
// machine, sorted and without duplicates.
func ListRoots() ([]string, error) {
	roots, err := listRoots()
	if err != nil {
		return nil, err
	}
	slices.Sort(roots)
	return slices.Compact(roots), nil
}
