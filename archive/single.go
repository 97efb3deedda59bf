package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/nguyengg/fastzip/codec"
	"github.com/nguyengg/fastzip/internal"
	"github.com/nguyengg/fastzip/util"
)

// Single implements Extractor for files that were compressed on their own, such as "notes.txt.gz".
//
// The decompressed file is named after the input with its compression extension, and a trailing ".tar" if present,
// stripped.
type Single struct {
	Codec codec.Codec
}

var _ Extractor = Single{}

func (s Single) Format() string {
	return strings.ToUpper(strings.TrimPrefix(s.Codec.Ext(), "."))
}

// OutputName returns the base name of the decompressed file.
//
// Returns ErrEmptyOutputName if the stripped name is empty.
func (s Single) OutputName(name string) (string, error) {
	if stem := util.ArchiveStem(name); stem != "" {
		return stem, nil
	}

	return "", fmt.Errorf(`%w: "%s"`, ErrEmptyOutputName, name)
}

// Names yields the name of the decompressed file without opening the input.
func (s Single) Names(name, _ string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield(s.OutputName(name))
	}
}

func (s Single) Extract(ctx context.Context, name, dest string, opts Options) error {
	_, err := s.ExtractFile(ctx, name, dest, opts.Overwrite)
	return err
}

// ExtractFile is a variant of Extract that also returns the path to the decompressed file.
//
// If overwrite is false and the decompressed file already exists, nothing is decompressed and the existing path is
// returned. Returns ErrOutputIsInput if the decompressed file would be the input itself. Otherwise the contents are
// written to a temporary file in dest which is renamed to the final name on success, so a failed decode never leaves a
// truncated file behind.
func (s Single) ExtractFile(ctx context.Context, name, dest string, overwrite bool) (string, error) {
	base, err := s.OutputName(name)
	if err != nil {
		return "", err
	}

	target := filepath.Join(dest, base)
	if tfi, err := os.Stat(target); err == nil {
		if sfi, err := os.Stat(name); err == nil && os.SameFile(tfi, sfi) {
			return "", fmt.Errorf(`%w: "%s"`, ErrOutputIsInput, name)
		}
	}

	if !overwrite {
		if _, err = os.Lstat(target); err == nil {
			internal.LoggerFrom(ctx).Printf(`"%s" already exists, skipping`, util.DirBase(target))
			return target, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}

	src, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer src.Close()

	mapErr := decodeErrorFunc(s.Format())
	dec, err := s.Codec.NewDecoder(src)
	if err != nil {
		return "", mapErr(err)
	}
	defer dec.Close()

	tmp, err := util.CreateSiblingTemp(target)
	if err != nil {
		return "", err
	}

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	n, err := util.CopyBufferWithContext(ctx, tmp, &decodeReader{ReadCloser: dec, mapErr: mapErr}, nil)
	if err != nil {
		return "", err
	}

	perm := os.FileMode(0o644)
	if fi, err := src.Stat(); err == nil && fi.Mode().Perm() != 0 {
		perm = fi.Mode().Perm()
	}
	if err = tmp.Chmod(perm); err != nil {
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", err
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return "", err
	}

	success = true
	internal.LoggerFrom(ctx).Printf(`decompressed %s to "%s"`, humanize.IBytes(uint64(n)), util.DirBase(target))
	return target, nil
}
