//go:build windows

package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrivesFromMask(t *testing.T) {
	// A:, C:, D: and Z:
	mask := uint32(1 | 1<<2 | 1<<3 | 1<<25)
	assert.Equal(t, []string{`A:\`, `C:\`, `D:\`, `Z:\`}, drivesFromMask(mask))
	assert.Empty(t, drivesFromMask(0))
}
