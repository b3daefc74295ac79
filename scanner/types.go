package scanner

import (
	"time"
)

// Kind classifies a filesystem entry without following symlinks.
type Kind uint8

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
	KindOther
	KindInaccessible
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	case KindInaccessible:
		return "inaccessible"
	default:
		return "other"
	}
}

// Entry is a single probed filesystem object. Size is only set for regular
// files; Err is only set for KindInaccessible.
type Entry struct {
	Path string
	Kind Kind
	Size int64
	Err  error
}

// Result is a directory whose aggregate size met the scan threshold.
type Result struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// ResultSet is ordered by Size descending, ties broken by Path.
type ResultSet []Result

// Total returns the sum of all result sizes. Nested directories are counted
// once per appearance.
func (rs ResultSet) Total() int64 {
	var total int64
	for _, r := range rs {
		total += r.Size
	}
	return total
}

// Progress is a best-effort view of how far a scan has come.
type Progress struct {
	Fraction    float64 `json:"fraction"`
	DirsVisited int64   `json:"dirs_visited"`
	DirsKnown   int64   `json:"dirs_known"`
	Bytes       int64   `json:"bytes"`
	Results     int     `json:"results"`
}

// Summary describes a finished (or unwinding) traversal.
type Summary struct {
	Root       string    `json:"root"`
	TotalSize  int64     `json:"total_size"`
	Dirs       int64     `json:"dirs"`
	Files      int64     `json:"files"`
	Errors     int64     `json:"errors"`
	Complete   bool      `json:"complete"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Elapsed is the wall time of the traversal, or zero if it has not finished.
func (s Summary) Elapsed() time.Duration {
	if s.StartedAt.IsZero() || s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
