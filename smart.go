package fastzip

import (
	"github.com/nguyengg/fastzip/util"
)

// DefaultStem is the name of the directory created for an archive whose stem is empty, such as ".zip".
const DefaultStem = "extracted"

// ResolveSmartDest computes where the contents of the archive at path should be extracted to.
//
// If the archive contains a single file at its root, or if all of its members share a single root directory, baseDir is
// returned as is: the lone file or the shared root directory is recreated directly inside baseDir. Otherwise, a new
// directory named after the archive's stem (see util.ArchiveStem) is created inside baseDir; if that name is taken,
// "<stem> (2)", "<stem> (3)", etc. are tried in order.
//
// Unlike the first two cases, the returned directory in the last case has already been created by this call and is
// not shared with any concurrent caller.
func ResolveSmartDest(path, baseDir string, format Format) (string, error) {
	return resolveSmartDest(path, baseDir, format, "")
}

func resolveSmartDest(path, baseDir string, format Format, password string) (string, error) {
	top, err := listTopLevel(path, format, password)
	if err != nil {
		return "", err
	}

	if top.SingleFile || top.SingleRootDir != "" {
		return baseDir, nil
	}

	return util.MkExclDir(baseDir, archiveStem(path), 0o755)
}

func archiveStem(path string) string {
	if stem := util.ArchiveStem(path); stem != "" {
		return stem
	}

	return DefaultStem
}
