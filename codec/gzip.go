package codec

import (
	"io"
	"runtime"

	"github.com/klauspost/pgzip"
)

// gzipCodec uses pgzip which is a drop-in replacement for compress/gzip that decompresses ahead in a separate
// goroutine and compresses blocks in parallel.
type gzipCodec struct {
}

var _ Codec = gzipCodec{}

func (c gzipCodec) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	return pgzip.NewReader(src)
}

func (c gzipCodec) NewEncoder(dst io.Writer) (io.WriteCloser, error) {
	w, err := pgzip.NewWriterLevel(dst, pgzip.DefaultCompression)
	if err != nil {
		return nil, err
	}

	if err = w.SetConcurrency(1<<20, runtime.NumCPU()); err != nil {
		return nil, err
	}

	return w, nil
}

func (c gzipCodec) Ext() string {
	return ".gz"
}
