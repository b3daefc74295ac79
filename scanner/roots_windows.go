//go:build windows

package scanner

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func listRoots() ([]string, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, fmt.Errorf("get logical drives: %w", err)
	}
	return drivesFromMask(mask), nil
}

// drivesFromMask turns the GetLogicalDrives bitmask (bit 0 = A:) into drive
// roots.
func drivesFromMask(mask uint32) []string {
	var drives []string
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) != 0 {
			drives = append(drives, fmt.Sprintf("%c:\\", 'A'+i))
		}
	}
	return drives
}
