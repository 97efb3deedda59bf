package fastzip

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyengg/fastzip/archive"
	"github.com/nguyengg/fastzip/codec"
)

// Format is the closed set of archive and compression formats that fastzip understands.
type Format int

const (
	// FormatUnknown is the zero value; it is never returned alongside a nil error.
	FormatUnknown Format = iota
	Zip
	SevenZ
	Rar
	Tar
	TarGz
	TarXz
	TarBz2
	TarZst
	Gz
	Xz
	Bz2
	Zst
)

var formatNames = [...]string{
	FormatUnknown: "unknown",
	Zip:           "ZIP",
	SevenZ:        "7z",
	Rar:           "RAR",
	Tar:           "TAR",
	TarGz:         "TAR.GZ",
	TarXz:         "TAR.XZ",
	TarBz2:        "TAR.BZ2",
	TarZst:        "TAR.ZST",
	Gz:            "GZ",
	Xz:            "XZ",
	Bz2:           "BZ2",
	Zst:           "ZST",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}

	return formatNames[f]
}

// IsArchive is true for multi-entry containers: ZIP, 7z, RAR, and the tar family.
func (f Format) IsArchive() bool {
	switch f {
	case Zip, SevenZ, Rar, Tar, TarGz, TarXz, TarBz2, TarZst:
		return true
	default:
		return false
	}
}

// IsSingleCompressed is true for compression wrappers around exactly one payload: gz, xz, bz2, and zst.
func (f Format) IsSingleCompressed() bool {
	switch f {
	case Gz, Xz, Bz2, Zst:
		return true
	default:
		return false
	}
}

// Extractor returns the adapter that lists and extracts archives of this format.
//
// This is the only place that maps a Format to its adapter.
func (f Format) Extractor() (archive.Extractor, error) {
	switch f {
	case Zip:
		return archive.Zip{}, nil
	case SevenZ:
		return archive.SevenZip{}, nil
	case Rar:
		return archive.Rar{}, nil
	case Tar:
		return archive.Tar{}, nil
	case TarGz:
		return archive.Tar{Codec: codec.Gzip}, nil
	case TarXz:
		return archive.Tar{Codec: codec.Xz}, nil
	case TarBz2:
		return archive.Tar{Codec: codec.Bzip2}, nil
	case TarZst:
		return archive.Tar{Codec: codec.Zstd}, nil
	case Gz:
		return archive.Single{Codec: codec.Gzip}, nil
	case Xz:
		return archive.Single{Codec: codec.Xz}, nil
	case Bz2:
		return archive.Single{Codec: codec.Bzip2}, nil
	case Zst:
		return archive.Single{Codec: codec.Zstd}, nil
	default:
		return nil, &UnsupportedFormatError{Format: f.String()}
	}
}

// DetectFormat determines the format of the file at path.
//
// The extension is tried first (see FormatFromExtension) in which case the file doesn't need to exist. Otherwise up
// to 512 leading bytes of the file are matched against known signatures (see FormatFromMagic). Returns
// ErrFormatDetectionFailed if neither identifies the file, or FileNotFoundError if the file had to be read but does
// not exist.
func DetectFormat(path string) (Format, error) {
	if f, ok := FormatFromExtension(path); ok {
		return f, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FormatUnknown, &FileNotFoundError{Path: path}
		}

		return FormatUnknown, fmt.Errorf("open file error: %w", err)
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return FormatUnknown, fmt.Errorf("read file error: %w", err)
	}

	if f, ok := FormatFromMagic(buf[:n]); ok {
		return f, nil
	}

	return FormatUnknown, fmt.Errorf(`%w: "%s"`, ErrFormatDetectionFailed, path)
}

// FormatFromExtension determines the format from the file name alone (case-insensitive).
//
// Compound extensions such as ".tar.gz" are recognised when the stem ends in ".tar".
func FormatFromExtension(path string) (Format, bool) {
	base := strings.ToLower(filepath.Base(path))
	ext := filepath.Ext(base)
	if ext == "" {
		return FormatUnknown, false
	}

	stem := strings.TrimSuffix(base, ext)
	ext = ext[1:]

	if strings.HasSuffix(stem, ".tar") {
		switch ext {
		case "gz", "tgz":
			return TarGz, true
		case "xz", "txz":
			return TarXz, true
		case "bz2", "tbz2", "tb2":
			return TarBz2, true
		case "zst", "tzst":
			return TarZst, true
		}
	}

	switch ext {
	case "zip":
		return Zip, true
	case "7z":
		return SevenZ, true
	case "rar":
		return Rar, true
	case "tar":
		return Tar, true
	case "tgz":
		return TarGz, true
	case "txz":
		return TarXz, true
	case "tbz2", "tb2":
		return TarBz2, true
	case "tzst":
		return TarZst, true
	case "gz", "gzip":
		return Gz, true
	case "xz", "lzma":
		return Xz, true
	case "bz2", "bzip2":
		return Bz2, true
	case "zst", "zstd":
		return Zst, true
	default:
		return FormatUnknown, false
	}
}

var magics = []struct {
	prefix []byte
	format Format
}{
	{[]byte("PK\x03\x04"), Zip},
	{[]byte("PK\x05\x06"), Zip},
	{[]byte("PK\x07\x08"), Zip},
	{[]byte("7z\xBC\xAF\x27\x1C"), SevenZ},
	{[]byte("Rar!\x1A\x07"), Rar},
	{[]byte{0x1F, 0x8B}, Gz},
	{[]byte("\xFD7zXZ\x00"), Xz},
	{[]byte("BZ"), Bz2},
	{[]byte{0x28, 0xB5, 0x2F, 0xFD}, Zst},
}

// FormatFromMagic determines the format from the leading bytes of a file.
//
// Plain tar is recognised by "ustar" at offset 257 which requires at least 262 bytes.
func FormatFromMagic(head []byte) (Format, bool) {
	if len(head) < 2 {
		return FormatUnknown, false
	}

	for _, m := range magics {
		if bytes.HasPrefix(head, m.prefix) {
			return m.format, true
		}
	}

	if len(head) >= 262 && bytes.Equal(head[257:262], []byte("ustar")) {
		return Tar, true
	}

	return FormatUnknown, false
}
