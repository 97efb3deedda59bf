package fastzip

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/nguyengg/fastzip/archive"
	"github.com/nguyengg/fastzip/internal"
	"github.com/nguyengg/fastzip/internal/executor"
	"github.com/nguyengg/fastzip/util"
)

// ExtractOptions customises ExtractOne and ExtractMany.
//
// ExtractOptions is passed by value and never modified.
type ExtractOptions struct {
	// Dest is the base directory to extract to. By default, the archive's parent directory is used.
	Dest string

	// Smart enables ResolveSmartDest to pick the output directory inside Dest.
	//
	// Without Smart, multi-entry archives are extracted into "Dest/<archive-stem>", and single-file compressed
	// formats are decompressed directly into Dest.
	Smart bool

	// Overwrite replaces existing files.
	//
	// By default, existing files are kept; extracting a single-file compressed format whose output already exists
	// does nothing and reports success.
	Overwrite bool

	// Password is given to the decoders of encrypted ZIP, 7z, and RAR archives.
	Password string

	// Concurrency is the number of archives ExtractMany extracts at the same time.
	//
	// Defaults to runtime.NumCPU.
	Concurrency int

	// OnResult, if given, is called by ExtractMany as soon as each archive finishes.
	//
	// It may be called from multiple goroutines at the same time.
	OnResult func(i int, r ExtractResult)
}

// ExtractResult is the outcome of extracting one archive in ExtractMany.
type ExtractResult struct {
	// Path is the archive's path as given.
	Path string
	// Dest is the directory the archive was extracted into. Empty if Err is not nil.
	Dest string
	Err  error
}

// WithLogger returns a context whose log messages from ExtractOne, ExtractMany, and the compression functions are
// written to logger instead of log.Default.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	return internal.WithLogger(ctx, logger)
}

// ExtractOne extracts a single archive and returns the directory that its contents were extracted into.
//
// The pipeline is: detect format, resolve the destination (see ExtractOptions.Smart), create the destination, then
// hand off to the format's extractor. Returns FileNotFoundError if the archive does not exist.
func ExtractOne(ctx context.Context, path string, opts ExtractOptions) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &FileNotFoundError{Path: path}
		}

		return "", fmt.Errorf("stat archive error: %w", err)
	}

	format, err := DetectFormat(path)
	if err != nil {
		return "", err
	}

	ex, err := format.Extractor()
	if err != nil {
		return "", err
	}

	baseDir := opts.Dest
	if baseDir == "" {
		baseDir = filepath.Dir(path)
	}
	if err = os.MkdirAll(baseDir, 0o755); err != nil {
		return "", fmt.Errorf("create base directory error: %w", err)
	}

	var (
		dest    string
		created bool
	)
	switch {
	case opts.Smart:
		if dest, err = resolveSmartDest(path, baseDir, format, opts.Password); err != nil {
			return "", err
		}

		// a new directory was reserved exclusively for this archive.
		created = dest != baseDir
	case format.IsArchive():
		dest = filepath.Join(baseDir, archiveStem(path))
	default:
		dest = baseDir
	}

	if err = os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("create destination directory error: %w", err)
	}

	logger := internal.LoggerFrom(ctx)
	logger.Printf(`extracting %s to "%s"`, format, util.DirBase(dest))

	if err = ex.Extract(ctx, path, dest, archive.Options{Password: opts.Password, Overwrite: opts.Overwrite}); err != nil {
		// so that a retry (with the right password, say) gets the same directory name rather than "<stem> (2)".
		if created {
			_ = os.RemoveAll(dest)
		}

		return "", err
	}

	return dest, nil
}

// ExtractMany extracts each archive with ExtractOne on a fixed pool of ExtractOptions.Concurrency goroutines.
//
// The i-th result always describes the i-th path. A failure of one archive does not stop the others; archives that
// haven't started when ctx is cancelled report ctx.Err().
func ExtractMany(ctx context.Context, paths []string, opts ExtractOptions) []ExtractResult {
	results := make([]ExtractResult, len(paths))

	n := opts.Concurrency
	if n <= 0 {
		n = runtime.NumCPU()
	}

	ex := executor.NewFixedPool(min(n, len(paths)))
	for i, path := range paths {
		ex.Execute(func() {
			results[i].Path = path
			if opts.OnResult != nil {
				defer func() { opts.OnResult(i, results[i]) }()
			}

			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}

			ctx := internal.WithPrefixLogger(ctx, internal.Prefix(i+1, len(paths), path))
			results[i].Dest, results[i].Err = ExtractOne(ctx, path, opts)
		})
	}
	_ = ex.Close()

	return results
}
