package codec

import (
	"io"

	"github.com/mholt/archives"
)

// bzip2Codec delegates to archives.Bz2 since the standard library can only decompress bzip2.
type bzip2Codec struct {
}

var _ Codec = bzip2Codec{}

func (c bzip2Codec) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	return archives.Bz2{}.OpenReader(src)
}

func (c bzip2Codec) NewEncoder(dst io.Writer) (io.WriteCloser, error) {
	return archives.Bz2{CompressionLevel: 9}.OpenWriter(dst)
}

func (c bzip2Codec) Ext() string {
	return ".bz2"
}
