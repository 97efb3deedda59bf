//go:build !norar

package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path"
	"strings"
	"time"

	"github.com/nwaples/rardecode/v2"
)

// Rar implements Extractor and Archiver for RAR files.
//
// Build with tag "norar" to replace this implementation with one that always returns UnsupportedFormatError.
type Rar struct {
}

var _ Extractor = Rar{}
var _ Archiver = Rar{}

func (r Rar) Format() string {
	return "RAR"
}

func (r Rar) Names(name, password string) iter.Seq2[string, error] {
	return names(r, name, password)
}

func (r Rar) Extract(ctx context.Context, name, dest string, opts Options) error {
	return extractArchive(ctx, r, name, dest, opts)
}

func (r Rar) Open(name, password string) (iter.Seq2[File, error], error) {
	mapErr := rarErrorFunc(r.Format(), password != "")

	var opts []rardecode.Option
	if password != "" {
		opts = append(opts, rardecode.Password(password))
	}

	rr, err := rardecode.OpenReader(name, opts...)
	if err != nil {
		return nil, mapErr(err)
	}

	return func(yield func(File, error) bool) {
		defer rr.Close()

		for {
			fh, err := rr.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, mapErr(err))
				return
			}

			if !yield(&rarFile{rarFileInfo: rarFileInfo{fh}, r: rr, mapErr: mapErr}, nil) {
				return
			}
		}
	}, nil
}

type rarFile struct {
	rarFileInfo
	r      io.Reader
	mapErr func(error) error
}

var _ File = &rarFile{}

func (f *rarFile) Name() string {
	return f.FileHeader.Name
}

func (f *rarFile) FileInfo() os.FileInfo {
	return &f.rarFileInfo
}

func (f *rarFile) Open() (io.ReadCloser, error) {
	return &decodeReader{ReadCloser: io.NopCloser(f.r), mapErr: f.mapErr}, nil
}

type rarFileInfo struct {
	*rardecode.FileHeader
}

var _ os.FileInfo = &rarFileInfo{}

func (fi *rarFileInfo) Name() string {
	return path.Base(strings.ReplaceAll(fi.FileHeader.Name, "\\", "/"))
}

func (fi *rarFileInfo) Size() int64 {
	return fi.FileHeader.UnPackedSize
}

func (fi *rarFileInfo) Mode() os.FileMode {
	if fi.FileHeader.IsDir {
		return os.ModeDir | 0o755
	}

	return 0o644
}

func (fi *rarFileInfo) ModTime() time.Time {
	return fi.FileHeader.ModificationTime
}

func (fi *rarFileInfo) IsDir() bool {
	return fi.FileHeader.IsDir
}

func (fi *rarFileInfo) Sys() any {
	return nil
}

// rarErrorFunc is a variant of decodeErrorFunc that recognises rardecode's password errors.
//
// Archives without a password check value only reveal a wrong password as a checksum mismatch of the decrypted data.
func rarErrorFunc(format string, hasPassword bool) func(error) error {
	mapErr := decodeErrorFunc(format)

	return func(err error) error {
		switch {
		case err == nil:
			return nil
		case errors.Is(err, rardecode.ErrArchivedFileEncrypted), errors.Is(err, rardecode.ErrBadPassword):
			return fmt.Errorf("%w: %v", ErrPasswordRequired, err)
		case hasPassword && errors.Is(err, rardecode.ErrBadFileChecksum):
			return fmt.Errorf("%w: %v", ErrPasswordRequired, err)
		default:
			return mapErr(err)
		}
	}
}
