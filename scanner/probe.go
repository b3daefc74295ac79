package scanner

import (
	"io/fs"
	"os"
)

// Probe stats a single path without following symlinks.
func Probe(path string) Entry {
	info, err := os.Lstat(path)
	if err != nil {
		return Entry{Path: path, Kind: KindInaccessible, Err: newEntryError("lstat", path, err)}
	}
	return entryFromMode(path, info.Mode(), info.Size())
}

// probeDirEntry classifies a child found while listing a directory. The type
// bits from the listing are enough to recognise directories and symlinks, so
// only regular files pay for an lstat.
func probeDirEntry(path string, d fs.DirEntry) Entry {
	typ := d.Type()
	switch {
	case typ&fs.ModeSymlink != 0:
		return Entry{Path: path, Kind: KindSymlink}
	case typ.IsDir():
		return Entry{Path: path, Kind: KindDir}
	case !typ.IsRegular():
		return Entry{Path: path, Kind: KindOther}
	}

	info, err := d.Info()
	if err != nil {
		return Entry{Path: path, Kind: KindInaccessible, Err: newEntryError("stat", path, err)}
	}
	return entryFromMode(path, info.Mode(), info.Size())
}

func entryFromMode(path string, mode fs.FileMode, size int64) Entry {
	switch {
	case mode&fs.ModeSymlink != 0:
		return Entry{Path: path, Kind: KindSymlink}
	case mode.IsDir():
		return Entry{Path: path, Kind: KindDir}
	case mode.IsRegular():
		return Entry{Path: path, Kind: KindFile, Size: size}
	default:
		return Entry{Path: path, Kind: KindOther}
	}
}
