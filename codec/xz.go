package codec

import (
	"io"

	"github.com/ulikunitz/xz"
)

type xzCodec struct {
}

var _ Codec = xzCodec{}

func (c xzCodec) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	r, err := xz.NewReader(src)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(r), nil
}

func (c xzCodec) NewEncoder(dst io.Writer) (io.WriteCloser, error) {
	return xz.NewWriter(dst)
}

func (c xzCodec) Ext() string {
	return ".xz"
}
