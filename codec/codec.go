// Package codec contains the single-stream compression algorithms that fastzip understands.
//
// A Codec is used on its own to decompress a single file (e.g. "notes.txt.gz") or wrapped around a tar stream to
// handle compound archives (e.g. "backup.tar.zst").
package codec

import (
	"io"
)

// Codec has methods to create compressor/encoder and decompressor/decoder.
type Codec interface {
	// NewDecoder creates a decoder to decompress contents from the given io.Reader.
	NewDecoder(src io.Reader) (io.ReadCloser, error)
	// NewEncoder creates an encoder to compress contents to the given io.Writer.
	NewEncoder(dst io.Writer) (io.WriteCloser, error)
	// Ext returns the file extension of a single file compressed with this codec, including the leading dot.
	Ext() string
}

var (
	Gzip  Codec = gzipCodec{}
	Xz    Codec = xzCodec{}
	Bzip2 Codec = bzip2Codec{}
	Zstd  Codec = zstdCodec{}
)
