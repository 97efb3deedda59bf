package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	yzip "github.com/yeka/zip"
)

// Zip implements Extractor and Archiver for ZIP files.
//
// Without a password, the standard library's archive/zip is used and encrypted members fail with
// ErrPasswordRequired. With a password, github.com/yeka/zip decrypts both ZipCrypto and WinZip AES members.
type Zip struct {
}

var _ Extractor = Zip{}
var _ Archiver = Zip{}

func (z Zip) Format() string {
	return "ZIP"
}

func (z Zip) Names(name, password string) iter.Seq2[string, error] {
	// names are never encrypted so there's no need to go through the slower decrypting reader.
	return names(z, name, "")
}

func (z Zip) Extract(ctx context.Context, name, dest string, opts Options) error {
	return extractArchive(ctx, z, name, dest, opts)
}

func (z Zip) Open(name, password string) (iter.Seq2[File, error], error) {
	mapErr := decodeErrorFunc(z.Format())

	if password != "" {
		return openEncryptedZip(name, password, mapErr)
	}

	zr, err := zip.OpenReader(name)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, mapErr(err)
	}

	return func(yield func(File, error) bool) {
		defer zr.Close()

		for _, f := range zr.File {
			if !yield(&zipFile{f: f, mapErr: mapErr}, nil) {
				return
			}
		}
	}, nil
}

type zipFile struct {
	f      *zip.File
	mapErr func(error) error
}

var _ File = &zipFile{}
var _ Link = &zipFile{}

func (f *zipFile) Name() string {
	return f.f.Name
}

func (f *zipFile) FileInfo() os.FileInfo {
	return f.f.FileInfo()
}

func (f *zipFile) Open() (io.ReadCloser, error) {
	// bit 0 of the general purpose flag indicates the file is encrypted.
	if f.f.Flags&0x1 != 0 {
		return nil, fmt.Errorf(`%w: "%s" is encrypted`, ErrPasswordRequired, f.f.Name)
	}

	r, err := f.f.Open()
	if err != nil {
		return nil, f.mapErr(err)
	}

	return &decodeReader{ReadCloser: r, mapErr: f.mapErr}, nil
}

func (f *zipFile) Linkname() (string, bool) {
	if f.f.Mode()&os.ModeSymlink == 0 {
		return "", false
	}

	return readLinkname(f.Open), false
}

func openEncryptedZip(name, password string, mapErr func(error) error) (iter.Seq2[File, error], error) {
	zr, err := yzip.OpenReader(name)
	if err != nil {
		return nil, mapErr(err)
	}

	return func(yield func(File, error) bool) {
		defer zr.Close()

		for _, f := range zr.File {
			if f.IsEncrypted() {
				f.SetPassword(password)
			}

			if !yield(&encryptedZipFile{f: f, mapErr: mapErr}, nil) {
				return
			}
		}
	}, nil
}

type encryptedZipFile struct {
	f      *yzip.File
	mapErr func(error) error
}

var _ File = &encryptedZipFile{}

func (f *encryptedZipFile) Name() string {
	return f.f.Name
}

func (f *encryptedZipFile) FileInfo() os.FileInfo {
	return f.f.FileInfo()
}

func (f *encryptedZipFile) Open() (io.ReadCloser, error) {
	mapErr := f.mapErr
	if f.f.IsEncrypted() {
		// with a password given, any failure to read an encrypted member (bad password header, failed
		// authentication code, or checksum mismatch) means the password is wrong.
		mapErr = func(err error) error {
			return fmt.Errorf(`%w: "%s": %v`, ErrPasswordRequired, f.f.Name, err)
		}
	}

	r, err := f.f.Open()
	if err != nil {
		return nil, mapErr(err)
	}

	return &decodeReader{ReadCloser: r, mapErr: mapErr}, nil
}
