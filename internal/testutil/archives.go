// Package testutil generates small archives on the fly so that most tests don't need checked-in binary fixtures.
package testutil

import (
	"archive/tar"
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nguyengg/fastzip/codec"
	"github.com/nguyengg/fastzip/util"
	"github.com/stretchr/testify/require"
	yzip "github.com/yeka/zip"
)

// Entry describes one member of a generated archive.
//
// Names ending with "/" are written as directories; their Body is ignored.
type Entry struct {
	Name string
	Body string

	// Link makes the entry a symbolic link to this target. Only WriteTar supports it.
	Link string
	// PAX makes the entry a pax global header with these records, like the one git archive writes. Only WriteTar
	// supports it.
	PAX map[string]string
}

// Files is a convenience function to create entries whose body is their own name.
func Files(names ...string) []Entry {
	entries := make([]Entry, len(names))
	for i, name := range names {
		entries[i] = Entry{Name: name, Body: name}
	}

	return entries
}

// WriteZip creates a ZIP archive at path containing the given entries.
func WriteZip(t testing.TB, path string, entries ...Entry) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: zip.Deflate, Modified: time.Now()})
		require.NoError(t, err)

		if !strings.HasSuffix(e.Name, "/") {
			_, err = io.WriteString(w, e.Body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
}

// WriteEncryptedZip creates a ZIP archive at path whose file entries are AES-256 encrypted with the given password.
func WriteEncryptedZip(t testing.TB, path, password string, entries ...Entry) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := yzip.NewWriter(f)
	for _, e := range entries {
		if strings.HasSuffix(e.Name, "/") {
			_, err = zw.Create(e.Name)
			require.NoError(t, err)
			continue
		}

		w, err := zw.Encrypt(e.Name, password, yzip.AES256Encryption)
		require.NoError(t, err)
		_, err = io.WriteString(w, e.Body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

// WriteTar creates a tar archive at path, compressed with the given codec if it is not nil.
func WriteTar(t testing.TB, path string, c codec.Codec, entries ...Entry) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	var w io.WriteCloser = &util.WriteNoopCloser{Writer: f}
	if c != nil {
		w, err = c.NewEncoder(f)
		require.NoError(t, err)
	}

	tw := tar.NewWriter(w)
	for _, e := range entries {
		var hdr *tar.Header
		switch {
		case e.PAX != nil:
			hdr = &tar.Header{Name: e.Name, Typeflag: tar.TypeXGlobalHeader, PAXRecords: e.PAX}
		case e.Link != "":
			hdr = &tar.Header{Name: e.Name, Linkname: e.Link, Mode: 0o777, ModTime: time.Now(), Typeflag: tar.TypeSymlink}
		case strings.HasSuffix(e.Name, "/"):
			hdr = &tar.Header{Name: e.Name, Mode: 0o755, ModTime: time.Now(), Typeflag: tar.TypeDir}
		default:
			hdr = &tar.Header{Name: e.Name, Mode: 0o644, Size: int64(len(e.Body)), ModTime: time.Now(), Typeflag: tar.TypeReg}
		}

		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err = io.WriteString(tw, e.Body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, w.Close())
}

// WriteSymlinkTar creates a plain tar archive at path with a regular file and a symlink named link pointing to target.
func WriteSymlinkTar(t testing.TB, path, link, target string) {
	t.Helper()

	WriteTar(t, path, nil, Entry{Name: "file.txt", Body: "hello"}, Entry{Name: link, Link: target})
}

// WriteSingle creates a single-file compressed file at path whose decompressed content is body.
func WriteSingle(t testing.TB, path string, c codec.Codec, body string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w, err := c.NewEncoder(f)
	require.NoError(t, err)
	_, err = io.WriteString(w, body)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

// Ls returns the sorted slash-separated paths of everything under dir, relative to dir.
//
// Directories have a trailing "/".
func Ls(t testing.TB, dir string) []string {
	t.Helper()

	paths := make([]string, 0)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil || rel == "." {
			return err
		}

		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			rel += "/"
		}

		paths = append(paths, rel)
		return nil
	})
	require.NoError(t, err)

	slices.Sort(paths)
	return paths
}

// ReadFile returns the contents of the file as string.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
