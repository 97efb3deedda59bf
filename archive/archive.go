// Package archive has one adapter per supported container or compression format.
//
// Every adapter implements Extractor. The multi-entry adapters (Zip, SevenZip, Rar, Tar) also implement Archiver
// which exposes the members of the archive as an iterator of File; their Names and Extract methods are both built on
// top of Open so that listing and extraction share the same decoding and error mapping.
package archive

import (
	"context"
	"io"
	"iter"
	"os"
	"strings"
)

// Options controls how an archive is extracted.
type Options struct {
	// Password is given to the decoder of encrypted ZIP, 7z, and RAR archives.
	Password string
	// Overwrite truncates existing files. By default, existing files are left untouched and the member is skipped.
	Overwrite bool
}

// Extractor lists and extracts a single archive file.
type Extractor interface {
	// Format returns the display name of the format, e.g. "ZIP" or "TAR.GZ".
	Format() string

	// Names produces an iterator over the raw member names of the archive at the given path.
	//
	// Directory members always have a trailing "/" even if the format doesn't store one. Only the names are decoded
	// so the names of encrypted ZIP members can be read without a password.
	Names(name, password string) iter.Seq2[string, error]

	// Extract materialises the contents of the archive at the given path into the existing directory dest.
	//
	// Every member name goes through util.SafeJoin so nothing is ever written outside dest.
	Extract(ctx context.Context, name, dest string, opts Options) error
}

// Archiver can open multi-entry archives such as zip, 7z, rar, and tar files.
//
// All archiver implementations are not thread-safe by default.
type Archiver interface {
	// Open produces an iterator returning the files from the archive at the given path.
	//
	// The archive is closed once the iteration stops, whether because all files have been returned, an error was
	// returned, or the caller breaks out of the loop. For streaming formats (tar, rar), a File can only be opened
	// during its own iteration.
	Open(name, password string) (iter.Seq2[File, error], error)
}

// File represents a file in an archive.
//
// The interface intentionally matches that of zip.File for simplicity.
type File interface {
	// Name returns the full name of the file in the archive.
	Name() string
	// FileInfo returns description about the file.
	FileInfo() os.FileInfo
	// Open opens the file for reading.
	Open() (io.ReadCloser, error)
}

// Link is implemented by files that are symbolic or hard links.
type Link interface {
	// Linkname returns the target of the link, and whether the link is a hard link.
	//
	// An empty target means the file is not a link after all.
	Linkname() (target string, hard bool)
}

// names implements Extractor.Names for an Archiver.
func names(a Archiver, name, password string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		files, err := a.Open(name, password)
		if err != nil {
			yield("", err)
			return
		}

		for f, err := range files {
			if err != nil {
				yield("", err)
				return
			}

			n := f.Name()
			if f.FileInfo().IsDir() && !strings.HasSuffix(n, "/") && !strings.HasSuffix(n, "\\") {
				n += "/"
			}

			if !yield(n, nil) {
				return
			}
		}
	}
}

// decodeReader maps the read errors of a decoder to the error taxonomy.
type decodeReader struct {
	io.ReadCloser
	mapErr func(error) error
}

func (r *decodeReader) Read(p []byte) (n int, err error) {
	if n, err = r.ReadCloser.Read(p); err != nil && err != io.EOF {
		err = r.mapErr(err)
	}

	return
}

// readLinkname reads the contents of a symlink member whose target is stored as its data (zip, 7z).
func readLinkname(open func() (io.ReadCloser, error)) string {
	r, err := open()
	if err != nil {
		return ""
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}

	return string(data)
}
