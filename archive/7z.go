package archive

import (
	"context"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"iter"
	"os"

	"github.com/bodgit/sevenzip"
)

// SevenZip implements Extractor and Archiver for 7z files.
type SevenZip struct {
}

var _ Extractor = SevenZip{}
var _ Archiver = SevenZip{}

func (s SevenZip) Format() string {
	return "7z"
}

func (s SevenZip) Names(name, password string) iter.Seq2[string, error] {
	return names(s, name, password)
}

func (s SevenZip) Extract(ctx context.Context, name, dest string, opts Options) error {
	return extractArchive(ctx, s, name, dest, opts)
}

func (s SevenZip) Open(name, password string) (iter.Seq2[File, error], error) {
	mapErr := sevenZipErrorFunc(s.Format(), password != "")

	var (
		zr  *sevenzip.ReadCloser
		err error
	)
	if password == "" {
		zr, err = sevenzip.OpenReader(name)
	} else {
		zr, err = sevenzip.OpenReaderWithPassword(name, password)
	}
	if err != nil {
		return nil, mapErr(err)
	}

	return func(yield func(File, error) bool) {
		defer zr.Close()

		for _, f := range zr.File {
			if !yield(&sevenZipFile{f: f, mapErr: mapErr}, nil) {
				return
			}
		}
	}, nil
}

type sevenZipFile struct {
	f      *sevenzip.File
	mapErr func(error) error
}

var _ File = &sevenZipFile{}
var _ Link = &sevenZipFile{}

func (f *sevenZipFile) Name() string {
	return f.f.Name
}

func (f *sevenZipFile) FileInfo() os.FileInfo {
	return f.f.FileInfo()
}

func (f *sevenZipFile) Open() (io.ReadCloser, error) {
	r, err := f.f.Open()
	if err != nil {
		return nil, f.mapErr(err)
	}

	// sevenzip doesn't verify the CRC of each file so decrypting with the wrong key would go unnoticed.
	if f.f.CRC32 != 0 {
		r = &crcReader{ReadCloser: r, h: crc32.NewIEEE(), want: f.f.CRC32}
	}

	return &decodeReader{ReadCloser: r, mapErr: f.mapErr}, nil
}

func (f *sevenZipFile) Linkname() (string, bool) {
	if f.f.FileInfo().Mode()&os.ModeSymlink == 0 {
		return "", false
	}

	return readLinkname(f.Open), false
}

// errChecksum is returned at the end of a 7z member whose contents don't match the recorded CRC.
var errChecksum = errors.New("checksum mismatch")

// sevenZipErrorFunc is decodeErrorFunc plus the encryption hint of sevenzip.ReadError.
//
// Data decrypted with the wrong key usually makes the decompressor fail, which sevenzip reports as a ReadError with
// Encrypted set. Stored data decrypts into garbage without any error so, if a password was given, a checksum mismatch
// also becomes ErrPasswordRequired.
func sevenZipErrorFunc(format string, hasPassword bool) func(error) error {
	decodeErr := decodeErrorFunc(format)

	return func(err error) error {
		var re *sevenzip.ReadError
		switch {
		case err == nil:
			return nil
		case errors.As(err, &re) && re.Encrypted, hasPassword && errors.Is(err, errChecksum):
			return fmt.Errorf("%w: %v", ErrPasswordRequired, err)
		default:
			return decodeErr(err)
		}
	}
}

// crcReader returns errChecksum instead of io.EOF if the CRC-32 of everything read doesn't match want.
type crcReader struct {
	io.ReadCloser
	h    hash.Hash32
	want uint32
}

func (r *crcReader) Read(p []byte) (n int, err error) {
	n, err = r.ReadCloser.Read(p)
	r.h.Write(p[:n])

	if err == io.EOF && r.h.Sum32() != r.want {
		err = fmt.Errorf("%w: want %08x, got %08x", errChecksum, r.want, r.h.Sum32())
	}

	return
}
