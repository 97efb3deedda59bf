package fastzip

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nguyengg/fastzip/codec"
	"github.com/nguyengg/fastzip/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() context.Context {
	return WithLogger(context.Background(), log.New(io.Discard, "", 0))
}

func TestExtractOne_Smart(t *testing.T) {
	src := t.TempDir()

	multi := filepath.Join(src, "multi.zip")
	testutil.WriteZip(t, multi, testutil.Files("a.txt", "b.txt")...)

	singleRoot := filepath.Join(src, "single_root.zip")
	testutil.WriteZip(t, singleRoot, testutil.Files("proj/a.txt", "proj/sub/b.txt")...)

	hello := filepath.Join(src, "hello.tar.gz")
	testutil.WriteTar(t, hello, codec.Gzip, testutil.Entry{Name: "hello.txt", Body: "hello"})

	out := filepath.Join(t.TempDir(), "out")
	opts := ExtractOptions{Dest: out, Smart: true}

	// multiple top-level entries get their own directory, with a new suffix each time.
	for _, want := range []string{"multi", "multi (2)", "multi (3)"} {
		dest, err := ExtractOne(quiet(), multi, opts)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(out, want), dest)
		assert.Equal(t, []string{"a.txt", "b.txt"}, testutil.Ls(t, dest))
	}

	// a single root directory is recreated directly in the base directory.
	dest, err := ExtractOne(quiet(), singleRoot, opts)
	require.NoError(t, err)
	assert.Equal(t, out, dest)
	assert.Equal(t, "proj/sub/b.txt", testutil.ReadFile(t, filepath.Join(out, "proj", "sub", "b.txt")))

	// a single file lands directly in the base directory.
	dest, err = ExtractOne(quiet(), hello, opts)
	require.NoError(t, err)
	assert.Equal(t, out, dest)
	assert.Equal(t, "hello", testutil.ReadFile(t, filepath.Join(out, "hello.txt")))
}

func TestExtractOne_Flat(t *testing.T) {
	src := t.TempDir()

	rooted := filepath.Join(src, "rooted.tar.xz")
	testutil.WriteTar(t, rooted, codec.Xz, testutil.Files("root/a.txt")...)

	dest, err := ExtractOne(quiet(), rooted, ExtractOptions{})
	require.NoError(t, err)

	// without smart mode, archives always go to "<parent>/<stem>" even with a single root.
	assert.Equal(t, filepath.Join(src, "rooted"), dest)
	assert.Equal(t, []string{"root/", "root/a.txt"}, testutil.Ls(t, dest))

	// extracting again without overwrite keeps the existing directory.
	dest2, err := ExtractOne(quiet(), rooted, ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, dest, dest2)
}

func TestExtractOne_NestedStructure(t *testing.T) {
	name := filepath.Join(t.TempDir(), "nested.zip")
	testutil.WriteZip(t, name, testutil.Files("root.txt", "a/b/file1.txt", "a/b/c/file2.txt")...)

	out := t.TempDir()
	dest, err := ExtractOne(quiet(), name, ExtractOptions{Dest: out, Smart: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "nested"), dest)
	assert.Equal(t, []string{
		"a/",
		"a/b/",
		"a/b/c/",
		"a/b/c/file2.txt",
		"a/b/file1.txt",
		"root.txt",
	}, testutil.Ls(t, dest))
}

func TestExtractOne_SingleCompressed(t *testing.T) {
	name := filepath.Join(t.TempDir(), "notes.txt.bz2")
	testutil.WriteSingle(t, name, codec.Bzip2, "some notes")

	out := t.TempDir()
	for _, smart := range []bool{true, false} {
		dest, err := ExtractOne(quiet(), name, ExtractOptions{Dest: out, Smart: smart})
		require.NoError(t, err)
		assert.Equal(t, out, dest)
		assert.Equal(t, []string{"notes.txt"}, testutil.Ls(t, out))
		assert.Equal(t, "some notes", testutil.ReadFile(t, filepath.Join(out, "notes.txt")))
	}
}

func TestExtractOne_DefaultsToParentDirectory(t *testing.T) {
	src := t.TempDir()
	name := filepath.Join(src, "data.gz")
	testutil.WriteSingle(t, name, codec.Gzip, "data")

	dest, err := ExtractOne(quiet(), name, ExtractOptions{Smart: true})
	require.NoError(t, err)
	assert.Equal(t, src, dest)
	assert.Equal(t, "data", testutil.ReadFile(t, filepath.Join(src, "data")))
}

func TestExtractOne_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ExtractOne(quiet(), filepath.Join(dir, "missing.zip"), ExtractOptions{})
	var fnf *FileNotFoundError
	assert.ErrorAs(t, err, &fnf)

	unknown := filepath.Join(dir, "unknown.bin")
	require.NoError(t, os.WriteFile(unknown, []byte("nothing to see here"), 0o644))
	_, err = ExtractOne(quiet(), unknown, ExtractOptions{})
	assert.ErrorIs(t, err, ErrFormatDetectionFailed)

	// the directory reserved for a failed extraction is removed so that the retry gets the same name.
	secret := filepath.Join(dir, "secret.zip")
	testutil.WriteEncryptedZip(t, secret, "pw", testutil.Files("a.txt", "b.txt")...)
	out := t.TempDir()
	_, err = ExtractOne(quiet(), secret, ExtractOptions{Dest: out, Smart: true})
	assert.ErrorIs(t, err, ErrPasswordRequired)
	assert.NoDirExists(t, filepath.Join(out, "secret"))

	_, err = ExtractOne(quiet(), secret, ExtractOptions{Dest: out, Smart: true, Password: "wrong"})
	assert.ErrorIs(t, err, ErrPasswordRequired)
	assert.Empty(t, testutil.Ls(t, out))

	dest, err := ExtractOne(quiet(), secret, ExtractOptions{Dest: out, Smart: true, Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "secret"), dest)
	assert.Equal(t, []string{"a.txt", "b.txt"}, testutil.Ls(t, dest))
}

func TestExtractOne_FailureKeepsExistingDestination(t *testing.T) {
	// single-root archives extract straight into dest which must survive a failure.
	src := filepath.Join(t.TempDir(), "proj.zip")
	testutil.WriteEncryptedZip(t, src, "pw", testutil.Files("proj/a.txt", "proj/b.txt")...)

	out := t.TempDir()
	keep := filepath.Join(out, "keep.txt")
	require.NoError(t, os.WriteFile(keep, []byte("keep"), 0o644))

	_, err := ExtractOne(quiet(), src, ExtractOptions{Dest: out, Smart: true})
	assert.ErrorIs(t, err, ErrPasswordRequired)
	assert.FileExists(t, keep)
}

func TestExtractOne_GitArchive(t *testing.T) {
	src := filepath.Join(t.TempDir(), "proj-1.0.tar.gz")
	testutil.WriteTar(t, src, codec.Gzip,
		testutil.Entry{Name: "pax_global_header", PAX: map[string]string{"comment": "0f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c"}},
		testutil.Entry{Name: "proj/"},
		testutil.Entry{Name: "proj/a.txt", Body: "a"},
		testutil.Entry{Name: "proj/b.txt", Body: "b"},
	)

	format, top, err := ListArchiveTopLevel(src)
	require.NoError(t, err)
	assert.Equal(t, TarGz, format)
	assert.Equal(t, "proj", top.SingleRootDir)
	assert.Equal(t, []string{"proj"}, top.Entries)

	out := t.TempDir()
	dest, err := ExtractOne(quiet(), src, ExtractOptions{Dest: out, Smart: true})
	require.NoError(t, err)
	assert.Equal(t, out, dest)
	assert.Equal(t, []string{"proj/", "proj/a.txt", "proj/b.txt"}, testutil.Ls(t, out))
}

func TestExtractOne_SevenZip(t *testing.T) {
	src := filepath.Join("archive", "testdata", "plain.7z")

	format, top, err := ListArchiveTopLevel(src)
	require.NoError(t, err)
	assert.Equal(t, SevenZ, format)
	assert.Equal(t, "project", top.SingleRootDir)

	out := t.TempDir()
	dest, err := ExtractOne(quiet(), src, ExtractOptions{Dest: out, Smart: true})
	require.NoError(t, err)
	assert.Equal(t, out, dest)
	assert.Equal(t, []string{
		"project/",
		"project/README",
		"project/readme.md",
		"project/src/",
		"project/src/main.go",
	}, testutil.Ls(t, out))
}

func TestExtractMany(t *testing.T) {
	src := t.TempDir()

	paths := make([]string, 0)
	for _, name := range []string{"one.zip", "two.zip", "three.zip", "four.zip"} {
		path := filepath.Join(src, name)
		testutil.WriteZip(t, path, testutil.Files("x.txt", "y.txt")...)
		paths = append(paths, path)
	}

	// a broken archive in the middle must not affect the others.
	broken := filepath.Join(src, "broken.zip")
	require.NoError(t, os.WriteFile(broken, []byte("PK\x03\x04 not really"), 0o644))
	paths = append(paths[:2], append([]string{broken, filepath.Join(src, "missing.zip")}, paths[2:]...)...)

	out := t.TempDir()
	results := ExtractMany(quiet(), paths, ExtractOptions{Dest: out, Smart: true, Concurrency: 3})
	require.Len(t, results, len(paths))

	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
	}

	for _, i := range []int{0, 1, 4, 5} {
		assert.NoError(t, results[i].Err)
		stem := filepath.Base(paths[i][:len(paths[i])-len(".zip")])
		assert.Equal(t, filepath.Join(out, stem), results[i].Dest)
	}

	var de *DecodeError
	assert.ErrorAs(t, results[2].Err, &de)
	assert.Empty(t, results[2].Dest)

	var fnf *FileNotFoundError
	assert.ErrorAs(t, results[3].Err, &fnf)
}

func TestExtractMany_Cancelled(t *testing.T) {
	name := filepath.Join(t.TempDir(), "a.zip")
	testutil.WriteZip(t, name, testutil.Files("a.txt", "b.txt")...)

	ctx, cancel := context.WithCancel(quiet())
	cancel()

	results := ExtractMany(ctx, []string{name, name}, ExtractOptions{Dest: t.TempDir()})
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestExtractMany_OnResult(t *testing.T) {
	src := t.TempDir()

	var paths []string
	for _, name := range []string{"a.tar", "b.tar", "c.tar"} {
		path := filepath.Join(src, name)
		testutil.WriteTar(t, path, nil, testutil.Files("x.txt", "y.txt")...)
		paths = append(paths, path)
	}

	var (
		mu   sync.Mutex
		seen = make(map[int]ExtractResult)
	)
	results := ExtractMany(quiet(), paths, ExtractOptions{
		Dest:        t.TempDir(),
		Concurrency: 2,
		OnResult: func(i int, r ExtractResult) {
			mu.Lock()
			defer mu.Unlock()
			seen[i] = r
		},
	})

	require.Len(t, seen, len(paths))
	for i, r := range results {
		assert.NoError(t, r.Err)
		assert.Equal(t, r, seen[i])
	}
}
