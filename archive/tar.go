package archive

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/nguyengg/fastzip/codec"
	"github.com/nguyengg/fastzip/util"
)

// Tar implements Extractor and Archiver for tar files, optionally wrapped in a compression codec.
//
// The zero value handles plain tar files.
type Tar struct {
	// Codec decompresses the tar stream before it is read, e.g. codec.Gzip for ".tar.gz" files.
	Codec codec.Codec
}

var _ Extractor = Tar{}
var _ Archiver = Tar{}

func (t Tar) Format() string {
	if t.Codec == nil {
		return "TAR"
	}

	return "TAR" + strings.ToUpper(t.Codec.Ext())
}

func (t Tar) Names(name, _ string) iter.Seq2[string, error] {
	return names(t, name, "")
}

func (t Tar) Extract(ctx context.Context, name, dest string, opts Options) error {
	return extractArchive(ctx, t, name, dest, opts)
}

func (t Tar) Open(name, _ string) (iter.Seq2[File, error], error) {
	mapErr := decodeErrorFunc(t.Format())

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	var (
		src    io.Reader = f
		closer           = f.Close
	)
	if t.Codec != nil {
		dec, err := t.Codec.NewDecoder(f)
		if err != nil {
			_ = f.Close()
			return nil, mapErr(err)
		}

		src = dec
		closer = util.ChainCloser(dec.Close, f.Close)
	}

	tr := tar.NewReader(&decodeReader{ReadCloser: io.NopCloser(src), mapErr: mapErr})

	return func(yield func(File, error) bool) {
		defer closer()

		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				return
			}
			if err != nil && !(errors.Is(err, tar.ErrInsecurePath) && hdr != nil) {
				yield(nil, mapErr(err))
				return
			}

			// git archive starts every tarball with a pax_global_header that carries the commit id.
			if hdr.Typeflag == tar.TypeXGlobalHeader {
				continue
			}

			if !yield(&tarFile{hdr: hdr, r: tr, mapErr: mapErr}, nil) {
				return
			}
		}
	}, nil
}

type tarFile struct {
	hdr    *tar.Header
	r      io.Reader
	mapErr func(error) error
}

var _ File = &tarFile{}
var _ Link = &tarFile{}

func (f *tarFile) Name() string {
	return f.hdr.Name
}

func (f *tarFile) FileInfo() os.FileInfo {
	return f.hdr.FileInfo()
}

func (f *tarFile) Open() (io.ReadCloser, error) {
	return &decodeReader{ReadCloser: io.NopCloser(f.r), mapErr: f.mapErr}, nil
}

func (f *tarFile) Linkname() (string, bool) {
	switch f.hdr.Typeflag {
	case tar.TypeSymlink:
		return f.hdr.Linkname, false
	case tar.TypeLink:
		return f.hdr.Linkname, true
	default:
		return "", false
	}
}
