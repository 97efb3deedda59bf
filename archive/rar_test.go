//go:build !norar

package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nguyengg/fastzip/internal/testutil"
	"github.com/nwaples/rardecode/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRar_NotARar(t *testing.T) {
	name := filepath.Join(t.TempDir(), "fake.rar")
	require.NoError(t, os.WriteFile(name, []byte("this is not a rar archive at all"), 0o644))

	err := Rar{}.Extract(context.Background(), name, t.TempDir(), Options{})
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "RAR", de.Format)

	for _, err = range (Rar{}).Names(name, "") {
		break
	}
	assert.ErrorAs(t, err, &de)
}

func TestRar_Missing(t *testing.T) {
	err := Rar{}.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.rar"), t.TempDir(), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// plain.rar stores project/readme.md and project/src/main.go, and encrypted.rar stores secret.txt encrypted with AES-256
// using password "hunter2". Every member was last modified at 2024-05-01T12:00:00Z.
const rarPassword = "hunter2"

func TestRar_Extract(t *testing.T) {
	name := filepath.Join("testdata", "plain.rar")

	var got []string
	for n, err := range (Rar{}).Names(name, "") {
		require.NoError(t, err)
		got = append(got, n)
	}
	assert.ElementsMatch(t, []string{"project/", "project/readme.md", "project/src/", "project/src/main.go"}, got)

	dest := t.TempDir()
	require.NoError(t, Rar{}.Extract(context.Background(), name, dest, Options{}))
	assert.Equal(t, []string{
		"project/",
		"project/readme.md",
		"project/src/",
		"project/src/main.go",
	}, testutil.Ls(t, dest))
	assert.Equal(t, "# project\n", testutil.ReadFile(t, filepath.Join(dest, "project", "readme.md")))
	assert.Equal(t, "package main\n", testutil.ReadFile(t, filepath.Join(dest, "project", "src", "main.go")))

	fi, err := os.Stat(filepath.Join(dest, "project", "src", "main.go"))
	require.NoError(t, err)
	assert.True(t, fi.ModTime().Equal(time.Unix(1714564800, 0)), "got %s", fi.ModTime())
}

func TestRar_Extract_Password(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "correct", password: rarPassword},
		{name: "missing", wantErr: ErrPasswordRequired},
		{name: "wrong", password: "wrong", wantErr: ErrPasswordRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := filepath.Join("testdata", "encrypted.rar")

			// only the file data is encrypted so listing never needs the password.
			var got []string
			for n, err := range (Rar{}).Names(name, tt.password) {
				require.NoError(t, err)
				got = append(got, n)
			}
			assert.Equal(t, []string{"secret.txt"}, got)

			dest := t.TempDir()
			err := Rar{}.Extract(context.Background(), name, dest, Options{Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, testutil.Ls(t, dest))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "the quick brown fox jumps over the lazy dog\n", testutil.ReadFile(t, filepath.Join(dest, "secret.txt")))
		})
	}
}

func TestRarErrorFunc(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		hasPassword bool
		want        error
	}{
		{name: "no password", err: rardecode.ErrArchivedFileEncrypted, want: ErrPasswordRequired},
		{name: "bad password", err: rardecode.ErrBadPassword, hasPassword: true, want: ErrPasswordRequired},
		{name: "checksum with password", err: rardecode.ErrBadFileChecksum, hasPassword: true, want: ErrPasswordRequired},
		{name: "checksum without password", err: rardecode.ErrBadFileChecksum},
		{name: "corrupt header", err: rardecode.ErrBadHeaderCRC},
		{name: "other", err: errors.New("unexpected")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rarErrorFunc("RAR", tt.hasPassword)(tt.err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				return
			}

			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "RAR", de.Format)
		})
	}

	assert.NoError(t, rarErrorFunc("RAR", false)(nil))
}

func TestRarFileInfo(t *testing.T) {
	mt := time.Unix(1714564800, 0)

	fi := &rarFileInfo{&rardecode.FileHeader{Name: `project\src\main.go`, UnPackedSize: 13, ModificationTime: mt}}
	assert.Equal(t, "main.go", fi.Name())
	assert.Equal(t, int64(13), fi.Size())
	assert.Equal(t, os.FileMode(0o644), fi.Mode())
	assert.False(t, fi.IsDir())
	assert.Equal(t, mt, fi.ModTime())

	fi = &rarFileInfo{&rardecode.FileHeader{Name: "project/src", IsDir: true}}
	assert.Equal(t, "src", fi.Name())
	assert.True(t, fi.IsDir())
	assert.True(t, fi.Mode().IsDir())
}
