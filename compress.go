package fastzip

import (
	"archive/tar"
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/nguyengg/fastzip/codec"
	"github.com/nguyengg/fastzip/internal"
	"github.com/nguyengg/fastzip/util"
)

// CompressOptions customises CompressToZip, CompressToTar, and CompressToFile.
type CompressOptions struct {
	// Recursive descends into directory sources. Otherwise, a directory source becomes a single empty directory
	// entry.
	Recursive bool

	// Password is reserved for ZIP encryption and is currently not used when compressing.
	Password string

	// Fast stores ZIP entries without compression. Otherwise, entries are deflated.
	Fast bool

	// OnAdd, if given, is called after each file has been added to the archive with the file's size.
	OnAdd func(name string, size int64)
}

// DefaultCompressOptions returns the default CompressOptions which is recursive and fast.
func DefaultCompressOptions() CompressOptions {
	return CompressOptions{Recursive: true, Fast: true}
}

// sevenZipExecutables are the names of the 7-Zip command line tools, in order of preference.
var sevenZipExecutables = []string{"7zz", "7z", "7za"}

// CompressToZip creates a ZIP archive at dest from the given sources.
//
// A file source becomes an entry named after its base name. A directory source is walked (if CompressOptions.Recursive)
// with entry names relative to the directory itself, so "my-dir/a.txt" becomes "a.txt". The archive is written to a
// temporary file next to dest which is renamed to dest only on success.
func CompressToZip(ctx context.Context, sources []string, dest string, opts CompressOptions) error {
	if err := checkSources(sources); err != nil {
		return err
	}

	return writeAtomically(dest, func(f *os.File) error {
		zw := zip.NewWriter(f)
		method := zip.Store
		if !opts.Fast {
			method = zip.Deflate
			zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
				return flate.NewWriter(w, flate.DefaultCompression)
			})
		}

		w := &zipEntryWriter{zw: zw, method: method, buf: make([]byte, util.DefaultBufferSize)}
		if err := addSources(ctx, w, sources, opts.Recursive, opts.OnAdd, f.Name(), dest); err != nil {
			_ = zw.Close()
			return err
		}

		return zw.Close()
	})
}

// CompressToTar creates a tar archive at dest from the given sources, compressed with c if c is not nil.
//
// Sources are handled the same way as CompressToZip.
func CompressToTar(ctx context.Context, sources []string, dest string, c codec.Codec, opts CompressOptions) error {
	if err := checkSources(sources); err != nil {
		return err
	}

	return writeAtomically(dest, func(f *os.File) error {
		var (
			dst io.WriteCloser = &util.WriteNoopCloser{Writer: f}
			err error
		)
		if c != nil {
			if dst, err = c.NewEncoder(f); err != nil {
				return fmt.Errorf("create encoder error: %w", err)
			}
		}

		tw := tar.NewWriter(dst)
		w := &tarEntryWriter{tw: tw, buf: make([]byte, util.DefaultBufferSize)}
		if err = addSources(ctx, w, sources, opts.Recursive, opts.OnAdd, f.Name(), dest); err != nil {
			_ = util.ChainCloser(tw.Close, dst.Close)()
			return err
		}

		return util.ChainCloser(tw.Close, dst.Close)()
	})
}

// CompressTo7z creates a 7z archive at dest from exactly one source file or directory.
//
// There is no 7z writer in Go so the 7-Zip command line tool ("7zz", "7z", or "7za") must be in PATH; if none is,
// UnsupportedFormatError is returned.
func CompressTo7z(ctx context.Context, source, dest string) error {
	if err := checkSources([]string{source}); err != nil {
		return err
	}

	bin, err := find7z()
	if err != nil {
		return err
	}

	src, err := filepath.Abs(source)
	if err != nil {
		return fmt.Errorf("resolve source error: %w", err)
	}

	// 7z refuses to add to an existing non-archive file so only the unique name of the temp file is used.
	tmp, err := util.CreateSiblingTemp(dest)
	if err != nil {
		return err
	}
	name := tmp.Name()
	_ = tmp.Close()
	_ = os.Remove(name)

	cmd := exec.CommandContext(ctx, bin, "a", "-t7z", "-y", "-bd", name, src)
	if out, err := cmd.CombinedOutput(); err != nil {
		_ = os.Remove(name)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		return fmt.Errorf("%s error: %w: %s", filepath.Base(bin), err, strings.TrimSpace(string(out)))
	}

	if err = os.Rename(name, dest); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("rename archive error: %w", err)
	}

	internal.LoggerFrom(ctx).Printf(`compressed "%s" to "%s"`, util.DirBase(source), util.DirBase(dest))
	return nil
}

// CompressToFile picks the output format from the extension of dest.
//
// ".zip" uses CompressToZip; ".7z" uses CompressTo7z and requires exactly one source (ErrMultipleSources otherwise);
// ".tar" and ".tar.gz", ".tar.xz", ".tar.bz2", ".tar.zst" (and their short forms such as ".tgz") use CompressToTar.
// Any other extension returns ErrAmbiguousOutput.
func CompressToFile(ctx context.Context, sources []string, dest string, opts CompressOptions) error {
	if len(sources) == 0 {
		return ErrNoSources
	}

	format, ok := FormatFromExtension(dest)
	if !ok {
		return fmt.Errorf(`%w: "%s"`, ErrAmbiguousOutput, dest)
	}

	switch format {
	case Zip:
		return CompressToZip(ctx, sources, dest, opts)
	case SevenZ:
		if len(sources) != 1 {
			return fmt.Errorf("%w: got %d sources", ErrMultipleSources, len(sources))
		}

		return CompressTo7z(ctx, sources[0], dest)
	case Tar:
		return CompressToTar(ctx, sources, dest, nil, opts)
	case TarGz:
		return CompressToTar(ctx, sources, dest, codec.Gzip, opts)
	case TarXz:
		return CompressToTar(ctx, sources, dest, codec.Xz, opts)
	case TarBz2:
		return CompressToTar(ctx, sources, dest, codec.Bzip2, opts)
	case TarZst:
		return CompressToTar(ctx, sources, dest, codec.Zstd, opts)
	default:
		return fmt.Errorf(`%w: cannot create %s archive "%s"`, ErrAmbiguousOutput, format, dest)
	}
}

func checkSources(sources []string) error {
	if len(sources) == 0 {
		return ErrNoSources
	}

	for _, src := range sources {
		if _, err := os.Stat(src); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return &FileNotFoundError{Path: src}
			}

			return fmt.Errorf("stat source error: %w", err)
		}
	}

	return nil
}

func find7z() (string, error) {
	for _, name := range sevenZipExecutables {
		if bin, err := exec.LookPath(name); err == nil {
			return bin, nil
		}
	}

	return "", &UnsupportedFormatError{Format: SevenZ.String(), Reason: "no 7-Zip executable (7zz, 7z, 7za) found in PATH"}
}

// writeAtomically calls fn with a temporary file next to dest, then renames the file to dest if fn succeeds.
func writeAtomically(dest string, fn func(f *os.File) error) (err error) {
	f, err := util.CreateSiblingTemp(dest)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = fn(f); err != nil {
		return err
	}
	if err = f.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod archive error: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close archive error: %w", err)
	}
	if err = os.Rename(f.Name(), dest); err != nil {
		return fmt.Errorf("rename archive error: %w", err)
	}

	return nil
}

// entryWriter adds entries to an archive being created.
type entryWriter interface {
	// addDir adds a directory entry; name always ends with "/".
	addDir(name string, fi os.FileInfo) error
	// addFile adds a file entry whose content is read from path.
	addFile(ctx context.Context, name, path string, fi os.FileInfo) error
}

// addSources adds every source to w, skipping any of the excluded paths (the output itself) while walking.
//
// onAdd may be nil.
func addSources(ctx context.Context, w entryWriter, sources []string, recursive bool, onAdd func(string, int64), exclude ...string) error {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		if abs, err := filepath.Abs(name); err == nil {
			skip[abs] = true
		}
	}

	progress := internal.NewProgressLogger(internal.LoggerFrom(ctx), "compressed", 5*time.Second)
	defer progress.Done()

	added := func(name string, size int64) {
		progress.Add(size)
		if onAdd != nil {
			onAdd(name, size)
		}
	}

	for _, src := range sources {
		fi, err := os.Stat(src)
		if err != nil {
			return fmt.Errorf("stat source error: %w", err)
		}

		if !fi.IsDir() {
			if err = w.addFile(ctx, fi.Name(), src, fi); err != nil {
				return err
			}

			added(fi.Name(), fi.Size())
			continue
		}

		if !recursive {
			if err = w.addDir(filepath.Base(filepath.Clean(src))+"/", fi); err != nil {
				return err
			}

			continue
		}

		err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("walk dir error: %w", err)
			}
			if err = ctx.Err(); err != nil {
				return err
			}

			if abs, err := filepath.Abs(path); err == nil && skip[abs] {
				return nil
			}

			rel, err := filepath.Rel(src, path)
			if err != nil {
				return fmt.Errorf("compute name in archive (path=%s) error: %w", path, err)
			}
			if rel == "." {
				return nil
			}
			rel = filepath.ToSlash(rel)

			fi, err := d.Info()
			if err != nil {
				return fmt.Errorf("describe file (path=%s) error: %w", path, err)
			}

			switch {
			case d.IsDir():
				return w.addDir(rel+"/", fi)
			case d.Type().IsRegular():
				if err = w.addFile(ctx, rel, path, fi); err != nil {
					return err
				}

				added(rel, fi.Size())
				return nil
			default:
				return nil
			}
		})
		if err != nil {
			return err
		}
	}

	return nil
}

type zipEntryWriter struct {
	zw     *zip.Writer
	method uint16
	buf    []byte
}

func (w *zipEntryWriter) addDir(name string, fi os.FileInfo) error {
	fh, err := zip.FileInfoHeader(fi)
	if err != nil {
		return fmt.Errorf("create zip header (name=%s) error: %w", name, err)
	}

	fh.Name = name
	fh.Method = zip.Store
	if _, err = w.zw.CreateHeader(fh); err != nil {
		return fmt.Errorf("create zip record (name=%s) error: %w", name, err)
	}

	return nil
}

func (w *zipEntryWriter) addFile(ctx context.Context, name, path string, fi os.FileInfo) error {
	fh, err := zip.FileInfoHeader(fi)
	if err != nil {
		return fmt.Errorf("create zip header (name=%s) error: %w", name, err)
	}

	fh.Name = name
	fh.Method = w.method

	dst, err := w.zw.CreateHeader(fh)
	if err != nil {
		return fmt.Errorf("create zip record (name=%s) error: %w", name, err)
	}

	return copyFile(ctx, dst, path, w.buf)
}

type tarEntryWriter struct {
	tw  *tar.Writer
	buf []byte
}

func (w *tarEntryWriter) addDir(name string, fi os.FileInfo) error {
	hdr, err := tar.FileInfoHeader(fi, "")
	if err != nil {
		return fmt.Errorf("create tar header (name=%s) error: %w", name, err)
	}

	hdr.Name = name
	if err = w.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write tar header (name=%s) error: %w", name, err)
	}

	return nil
}

func (w *tarEntryWriter) addFile(ctx context.Context, name, path string, fi os.FileInfo) error {
	hdr, err := tar.FileInfoHeader(fi, "")
	if err != nil {
		return fmt.Errorf("create tar header (name=%s) error: %w", name, err)
	}

	hdr.Name = name
	if err = w.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write tar header (name=%s) error: %w", name, err)
	}

	return copyFile(ctx, w.tw, path, w.buf)
}

func copyFile(ctx context.Context, dst io.Writer, path string, buf []byte) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file (path=%s) error: %w", path, err)
	}
	defer src.Close()

	if _, err = util.CopyBufferWithContext(ctx, dst, src, buf); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("add file (path=%s) to archive error: %w", path, err)
	}

	return nil
}
