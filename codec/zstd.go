package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

type zstdCodec struct{}

var _ Codec = zstdCodec{}

func (c zstdCodec) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, err
	}

	return &zstdDecoder{dec}, nil
}

// zstdDecoder adapts zstd.Decoder's Close (which returns nothing) to io.Closer.
type zstdDecoder struct {
	*zstd.Decoder
}

func (d *zstdDecoder) Close() error {
	d.Decoder.Close()
	return nil
}

func (c zstdCodec) NewEncoder(dst io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func (c zstdCodec) Ext() string {
	return ".zst"
}
