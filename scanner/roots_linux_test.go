//go:build linux

package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMounts = `sysfs /sys sysfs rw,nosuid,nodev,noexec,relatime 0 0
proc /proc proc rw,nosuid,nodev,noexec,relatime 0 0
/dev/nvme0n1p2 / ext4 rw,relatime 0 0
tmpfs /run tmpfs rw,nosuid,nodev,size=3259436k,mode=755 0 0
cgroup2 /sys/fs/cgroup cgroup2 rw,nosuid,nodev,noexec,relatime 0 0
/dev/nvme0n1p1 /boot/efi vfat rw,relatime,fmask=0077,dmask=0077 0 0
/dev/sdb1 /media/usb\040stick exfat rw,relatime 0 0
/dev/loop3 /snap/core/123 squashfs ro,nodev,relatime 0 0
garbage
`

func TestParseMounts(t *testing.T) {
	mounts, err := parseMounts(strings.NewReader(sampleMounts))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/",
		"/run",
		"/boot/efi",
		"/media/usb stick",
	}, mounts)
}

func TestUnescapeMountPoint(t *testing.T) {
	for in, want := range map[string]string{
		"/plain":             "/plain",
		`/a\040b`:            "/a b",
		`/tab\011here`:       "/tab\there",
		`/back\134slash`:     `/back\slash`,
		`/short\04`:          `/short\04`,
		`/not\9999octal`:     `/not\9999octal`,
		`/two\040and\040two`: "/two and two",
	} {
		assert.Equal(t, want, unescapeMountPoint(in), in)
	}
}

func TestListRoots(t *testing.T) {
	roots, err := ListRoots()
	require.NoError(t, err)
	require.NotEmpty(t, roots)
	assert.IsIncreasing(t, roots)
}
