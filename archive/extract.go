package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyengg/fastzip/internal"
	"github.com/nguyengg/fastzip/util"
)

// extractArchive implements Extractor.Extract for an Archiver.
func extractArchive(ctx context.Context, a Archiver, name, dest string, opts Options) error {
	files, err := a.Open(name, opts.Password)
	if err != nil {
		return err
	}

	progress := internal.NewProgressLogger(internal.LoggerFrom(ctx), "extracted", 5*time.Second)
	buf := make([]byte, util.DefaultBufferSize)

	for f, err := range files {
		if err != nil {
			return err
		}

		if err = ctx.Err(); err != nil {
			return err
		}

		n, err := extractFile(ctx, f, dest, opts.Overwrite, buf)
		if err != nil {
			return fmt.Errorf(`extract "%s" error: %w`, f.Name(), err)
		}

		progress.Add(n)
	}

	progress.Done()
	return nil
}

// extractFile writes a single archive member to its safe location inside dest.
//
// Returns the number of bytes written. Members that normalise to an empty path and members that are neither regular
// files, directories, nor links are skipped.
func extractFile(ctx context.Context, f File, dest string, overwrite bool, buf []byte) (int64, error) {
	path, ok := util.SafeJoin(dest, f.Name())
	if !ok {
		return 0, nil
	}

	fi := f.FileInfo()
	if fi.IsDir() {
		if !resolvesInside(dest, path) {
			internal.LoggerFrom(ctx).Printf(`skipping "%s" that resolves outside destination`, f.Name())
			return 0, nil
		}

		return 0, os.MkdirAll(path, 0o755)
	}

	if l, ok := f.(Link); ok {
		if target, hard := l.Linkname(); target != "" {
			return 0, extractLink(dest, path, target, hard, overwrite)
		}
	}

	if !fi.Mode().IsRegular() {
		internal.LoggerFrom(ctx).Printf(`skipping "%s" with unsupported mode %s`, f.Name(), fi.Mode())
		return 0, nil
	}

	// an earlier link member may have turned a parent directory into a way out of dest.
	if !resolvesInside(dest, filepath.Dir(path)) {
		internal.LoggerFrom(ctx).Printf(`skipping "%s" that resolves outside destination`, f.Name())
		return 0, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}

	// O_TRUNC would follow a symlink left at path.
	if li, err := os.Lstat(path); overwrite && err == nil && li.Mode()&os.ModeSymlink != 0 {
		if err = os.Remove(path); err != nil {
			return 0, err
		}
	}

	perm := fi.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	w, err := os.OpenFile(path, flag, perm)
	if err != nil {
		if !overwrite && errors.Is(err, fs.ErrExist) {
			return 0, nil
		}

		return 0, err
	}

	r, err := f.Open()
	if err != nil {
		_ = w.Close()
		_ = os.Remove(path)
		return 0, err
	}

	n, err := util.CopyBufferWithContext(ctx, w, r, buf)
	if cerr := util.ChainCloser(w.Close, r.Close)(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return n, err
	}

	if mt := fi.ModTime(); !mt.IsZero() {
		_ = os.Chtimes(path, mt, mt)
	}

	return n, nil
}

// extractLink creates a symbolic or hard link at path.
//
// Hard link targets are member names and so are resolved against dest. Symbolic link targets must be relative and
// must stay inside dest once resolved against the link's directory, following any link that already exists along the
// way; links that don't are skipped.
func extractLink(dest, path, target string, hard, overwrite bool) error {
	dir := filepath.Dir(path)
	if !resolvesInside(dest, dir) {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if _, err := os.Lstat(path); err == nil {
		if !overwrite {
			return nil
		}

		if err = os.Remove(path); err != nil {
			return err
		}
	}

	if hard {
		oldname, ok := util.SafeJoin(dest, target)
		if !ok || !resolvesInside(dest, filepath.Dir(oldname)) {
			return nil
		}

		return os.Link(oldname, path)
	}

	target = filepath.FromSlash(strings.ReplaceAll(target, "\\", "/"))
	if filepath.IsAbs(target) || filepath.VolumeName(target) != "" {
		return nil
	}

	if !linkStaysInside(dest, dir, target) {
		return nil
	}

	return os.Symlink(target, path)
}

// resolvesInside is true if path is still inside dest after every symlink along its existing ancestors is resolved.
//
// The components of path that don't exist yet are appended to the resolved ancestor as is; path must already be clean
// (see util.SafeJoin). A symlink that cannot be resolved counts as outside.
func resolvesInside(dest, path string) bool {
	root, err := filepath.EvalSymlinks(dest)
	if err != nil {
		return false
	}

	existing, rest := path, ""
	for {
		if _, err = os.Lstat(existing); err == nil {
			break
		}

		parent := filepath.Dir(existing)
		if parent == existing {
			return false
		}

		rest = filepath.Join(filepath.Base(existing), rest)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return false
	}

	return isWithin(root, filepath.Join(resolved, rest))
}

// linkStaysInside walks the relative symlink target from dir one component at a time, following the links that
// already exist, and is true if the walk ends inside dest.
//
// filepath.Join cleans "l/../x" into "x" without looking at l, which is wrong when l is itself a link.
func linkStaysInside(dest, dir, target string) bool {
	root, err := filepath.EvalSymlinks(dest)
	if err != nil {
		return false
	}

	cur, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return false
	}

	for _, c := range strings.Split(target, string(filepath.Separator)) {
		switch c {
		case "", ".":
			continue
		case "..":
			cur = filepath.Dir(cur)
			continue
		}

		cur = filepath.Join(cur, c)
		if fi, err := os.Lstat(cur); err == nil && fi.Mode()&os.ModeSymlink != 0 {
			if cur, err = filepath.EvalSymlinks(cur); err != nil {
				return false
			}
		}
	}

	return isWithin(root, cur)
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
