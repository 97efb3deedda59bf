package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecs_RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog\n"), 1000)

	tests := []struct {
		name  string
		codec Codec
		magic []byte
	}{
		{name: "gzip", codec: Gzip, magic: []byte{0x1F, 0x8B}},
		{name: "xz", codec: Xz, magic: []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}},
		{name: "bzip2", codec: Bzip2, magic: []byte("BZh")},
		{name: "zstd", codec: Zstd, magic: []byte{0x28, 0xB5, 0x2F, 0xFD}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			enc, err := tt.codec.NewEncoder(&buf)
			require.NoError(t, err)
			_, err = enc.Write(data)
			require.NoError(t, err)
			require.NoError(t, enc.Close())

			assert.Truef(t, bytes.HasPrefix(buf.Bytes(), tt.magic), "compressed stream does not start with %x", tt.magic)

			dec, err := tt.codec.NewDecoder(&buf)
			require.NoError(t, err)
			got, err := io.ReadAll(dec)
			require.NoError(t, err)
			require.NoError(t, dec.Close())
			assert.Equal(t, data, got)
		})
	}
}
