package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEntryPath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "a/b.txt", want: filepath.Join("a", "b.txt")},
		{name: "dir with trailing slash", in: "a/b/", want: filepath.Join("a", "b")},
		{name: "backslashes", in: "a\\b\\c.txt", want: filepath.Join("a", "b", "c.txt")},
		{name: "absolute", in: "/etc/passwd", want: filepath.Join("etc", "passwd")},
		{name: "dot components", in: "./a/./b", want: filepath.Join("a", "b")},
		{name: "parent escapes", in: "../../evil.txt", want: "evil.txt"},
		{name: "parent pops", in: "a/b/../c", want: filepath.Join("a", "c")},
		{name: "parent past root", in: "a/../../b", want: "b"},
		{name: "empty", in: "", want: ""},
		{name: "only dots", in: "./../.", want: ""},
		{name: "only slash", in: "/", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEntryPath(tt.in))
		})
	}
}

func TestSafeJoin(t *testing.T) {
	dest := t.TempDir()

	got, ok := SafeJoin(dest, "../../outside.txt")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dest, "outside.txt"), got)

	got, ok = SafeJoin(dest, "sub/../../../x/y")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dest, "x", "y"), got)

	_, ok = SafeJoin(dest, "./")
	assert.False(t, ok)
}

func TestArchiveStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/path/to/archive.zip", want: "archive"},
		{path: "backup.tar.gz", want: "backup"},
		{path: "backup.TAR.XZ", want: "backup"},
		{path: "my.file.zip", want: "my.file"},
		{path: "notes.txt.gz", want: "notes.txt"},
		{path: "noext", want: "noext"},
		{path: ".zip", want: ""},
		{path: "C:\\Users\\data.7z", want: "data"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if filepath.Separator == '/' && tt.path == "C:\\Users\\data.7z" {
				// backslash is not a separator on this platform so the whole string is the base name.
				assert.Equal(t, "C:\\Users\\data", ArchiveStem(tt.path))
				return
			}

			assert.Equal(t, tt.want, ArchiveStem(tt.path))
		})
	}
}
