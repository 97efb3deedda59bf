package fastzip

import (
	"iter"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/nguyengg/fastzip/util"
)

var sep = regexp.MustCompile(`[\\/]`)

// TopLevelEntries describes the shape of an archive.
//
// SingleFile must be checked before SingleRootDir; see ClassifyNames for how they're computed.
type TopLevelEntries struct {
	// Entries is the deduplicated and sorted set of the first path segment of every member.
	Entries []string
	// SingleRootDir is the only first path segment if there is exactly one and the archive has more than one member.
	SingleRootDir string
	// SingleFile is true if the archive has exactly one member and that member is a file at the root.
	SingleFile bool
}

// ClassifyNames computes TopLevelEntries from the raw member names of an archive.
//
// Given these names:
//
//	test/a.txt
//	test/path/b.txt
//	test/another/path/c.txt
//
// Entries is ["test"] and SingleRootDir is "test". A lone "a.txt" gives SingleFile, while a lone "test/a.txt" is
// neither SingleFile nor SingleRootDir.
//
// Member names are normalised with util.NormalizeEntryPath first so that the classification matches where
// extraction actually writes each member. Names that normalise to an empty path still count as members. The first
// error from names is returned as is.
func ClassifyNames(names iter.Seq2[string, error]) (TopLevelEntries, error) {
	var (
		count  int
		single bool
		tops   = make(map[string]struct{})
	)

	for name, err := range names {
		if err != nil {
			return TopLevelEntries{}, err
		}

		count++

		rel := util.NormalizeEntryPath(name)
		if rel == "" {
			single = false
			continue
		}

		paths := sep.Split(rel, 2)
		tops[paths[0]] = struct{}{}

		single = count == 1 && len(paths) == 1 && !strings.HasSuffix(name, "/") && !strings.HasSuffix(name, "\\")
	}

	top := TopLevelEntries{
		Entries:    slices.Sorted(maps.Keys(tops)),
		SingleFile: count == 1 && single,
	}
	if len(top.Entries) == 1 && count > 1 {
		top.SingleRootDir = top.Entries[0]
	}

	return top, nil
}

// ListTopLevel enumerates the member names of the archive at path and classifies its shape.
//
// Single-file compressed formats are not opened; they always report SingleFile with no Entries. Listing never needs a
// password except for 7z and RAR archives whose headers are encrypted, which fail with ErrPasswordRequired.
func ListTopLevel(path string, format Format) (TopLevelEntries, error) {
	return listTopLevel(path, format, "")
}

// ListArchiveTopLevel is a variant of ListTopLevel that also detects the format.
func ListArchiveTopLevel(path string) (Format, TopLevelEntries, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return format, TopLevelEntries{}, err
	}

	top, err := ListTopLevel(path, format)
	return format, top, err
}

func listTopLevel(path string, format Format, password string) (TopLevelEntries, error) {
	if format.IsSingleCompressed() {
		return TopLevelEntries{SingleFile: true}, nil
	}

	ex, err := format.Extractor()
	if err != nil {
		return TopLevelEntries{}, err
	}

	return ClassifyNames(ex.Names(path, password))
}
