//go:build linux

package scanner

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

const mountsFile = "/proc/self/mounts"

// pseudoFilesystems never hold user data worth measuring.
var pseudoFilesystems = map[string]struct{}{
	"autofs": {}, "binfmt_misc": {}, "bpf": {}, "cgroup": {}, "cgroup2": {},
	"configfs": {}, "debugfs": {}, "devpts": {}, "devtmpfs": {}, "fusectl": {},
	"hugetlbfs": {}, "mqueue": {}, "nsfs": {}, "proc": {}, "pstore": {},
	"securityfs": {}, "sysfs": {}, "tracefs": {}, "efivarfs": {}, "squashfs": {},
}

func listRoots() ([]string, error) {
	f, err := os.Open(mountsFile)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", mountsFile, err)
	}
	defer f.Close()

	mounts, err := parseMounts(f)
	if err != nil {
		return nil, err
	}

	roots := make([]string, 0, len(mounts))
	for _, mountPoint := range mounts {
		var st unix.Statfs_t
		if err := unix.Statfs(mountPoint, &st); err != nil {
			log.Debugf("Skipping mount %s: %v", mountPoint, err)
			continue
		}
		if st.Blocks == 0 {
			continue
		}
		roots = append(roots, mountPoint)
	}

	if len(roots) == 0 {
		roots = append(roots, "/")
	}

	return roots, nil
}

// parseMounts returns the mount points of real filesystems listed in a
// mounts(5) formatted reader.
func parseMounts(r io.Reader) ([]string, error) {
	var mounts []string

	s := bufio.NewScanner(r)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) < 3 {
			continue
		}
		if _, pseudo := pseudoFilesystems[fields[2]]; pseudo {
			continue
		}
		mounts = append(mounts, unescapeMountPoint(fields[1]))
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read mounts: %w", err)
	}

	return mounts, nil
}

// unescapeMountPoint decodes the octal escapes (\040 for space and friends)
// used in mounts(5).
func unescapeMountPoint(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) {
			if n, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
