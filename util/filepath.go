package util

import (
	"path/filepath"
	"strings"
)

// NormalizeEntryPath turns an archive entry name into a relative path that is safe to join with a destination.
//
// Both "/" and "\" are treated as separators. Empty and "." components are dropped, ".." removes the previous
// component if there is one and is otherwise dropped, and any leading root or volume name is discarded. The returned
// path uses the platform separator, and is empty if nothing remains.
func NormalizeEntryPath(name string) string {
	name = name[len(filepath.VolumeName(name)):]

	parts := make([]string, 0, strings.Count(name, "/")+strings.Count(name, "\\")+1)
	for _, p := range strings.FieldsFunc(name, isSeparator) {
		switch p {
		case ".":
		case "..":
			if n := len(parts); n > 0 {
				parts = parts[:n-1]
			}
		default:
			parts = append(parts, p)
		}
	}

	return filepath.Join(parts...)
}

// SafeJoin joins dest with the normalised form of the archive entry name.
//
// The boolean return value is false if the entry normalises to an empty path, in which case the entry should be
// skipped. The returned path is always dest or a descendant of dest.
func SafeJoin(dest, name string) (string, bool) {
	rel := NormalizeEntryPath(name)
	if rel == "" {
		return "", false
	}

	return filepath.Join(dest, rel), true
}

// ArchiveStem returns the base name of the archive at path without its extension.
//
// Compound extensions whose inner extension is ".tar" lose both parts so "backup.tar.gz" has stem "backup", while
// "notes.txt.gz" has stem "notes.txt". The stem may be empty, for example for ".zip".
func ArchiveStem(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}

	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if ext := filepath.Ext(stem); strings.EqualFold(ext, ".tar") {
		stem = strings.TrimSuffix(stem, ext)
	}

	return stem
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}
