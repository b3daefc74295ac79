package scanner

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrPathVanished     = errors.New("path vanished")
	ErrUnreadable       = errors.New("unreadable")

	ErrInvalidThreshold = errors.New("threshold must be greater than zero")
	ErrEmptyRoot        = errors.New("root path is empty")
	ErrSessionUsed      = errors.New("scan session already started")
)

// EntryError records a failure scoped to a single entry or directory.
// It matches both its class sentinel and the underlying cause with errors.Is.
type EntryError struct {
	Path  string
	Op    string
	Class error
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *EntryError) Unwrap() []error {
	return []error{e.Class, e.Err}
}

func newEntryError(op, path string, err error) *EntryError {
	return &EntryError{Path: path, Op: op, Class: classify(err), Err: err}
}

func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	case errors.Is(err, fs.ErrNotExist):
		return ErrPathVanished
	default:
		return ErrUnreadable
	}
}

// ClassName returns a short label for the error class, used in metrics and
// reports.
func ClassName(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrPathVanished):
		return "path_vanished"
	default:
		return "unreadable"
	}
}
