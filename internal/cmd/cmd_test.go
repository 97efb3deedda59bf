package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/fastzip"
	"github.com/nguyengg/fastzip/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Options(t *testing.T) {
	t.Setenv(PasswordEnv, "from-env")

	tests := []struct {
		name string
		cmd  Extract
		cfg  config.ExtractConfig
		want fastzip.ExtractOptions
	}{
		{
			name: "defaults",
			cfg:  config.ExtractConfig{Smart: true},
			want: fastzip.ExtractOptions{Smart: true, Password: "from-env"},
		},
		{
			name: "config only",
			cfg:  config.ExtractConfig{Dest: "/out", Smart: true, Overwrite: true, Concurrency: 2},
			want: fastzip.ExtractOptions{Dest: "/out", Smart: true, Overwrite: true, Password: "from-env", Concurrency: 2},
		},
		{
			name: "flags win",
			cmd:  Extract{Dest: "/flag", Flat: true, Overwrite: true, Password: "pw", MaxConcurrency: 8},
			cfg:  config.ExtractConfig{Dest: "/out", Smart: true, Concurrency: 2},
			want: fastzip.ExtractOptions{Dest: "/flag", Overwrite: true, Password: "pw", Concurrency: 8},
		},
		{
			name: "smart disabled by config",
			cfg:  config.ExtractConfig{Smart: false},
			want: fastzip.ExtractOptions{Password: "from-env"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.options(tt.cfg))
		})
	}
}

func TestCompress_Options(t *testing.T) {
	assert.Equal(t, fastzip.DefaultCompressOptions(), (&Compress{}).options(config.CompressConfig{Fast: true, Recursive: true}))
	assert.Equal(t, fastzip.CompressOptions{}, (&Compress{NoFast: true, NoRecursive: true}).options(config.CompressConfig{Fast: true, Recursive: true}))
	assert.Equal(t, fastzip.CompressOptions{Recursive: true}, (&Compress{}).options(config.CompressConfig{Recursive: true}))
}

func TestExisting(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.zip")
	require.NoError(t, os.WriteFile(a, nil, 0o644))

	got := existing([]flags.Filename{flags.Filename(a), flags.Filename(filepath.Join(dir, "missing.zip"))})
	assert.Equal(t, []string{a}, got)
}

func TestTotalSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("12345"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("123"), 0o644))

	assert.Equal(t, int64(8), totalSize([]string{dir}, true))
	assert.Equal(t, int64(0), totalSize([]string{dir}, false))
	assert.Equal(t, int64(5), totalSize([]string{filepath.Join(dir, "a.txt")}, false))
}

func TestNewParser(t *testing.T) {
	p, err := NewParser()
	require.NoError(t, err)

	for _, name := range []string{"extract", "compress", "list"} {
		assert.NotNilf(t, p.Find(name), "command %s", name)
	}
}
