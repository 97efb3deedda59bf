package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

var (
	// ErrFormatDetectionFailed is returned when neither the extension nor the leading bytes of a file identify a
	// supported format.
	ErrFormatDetectionFailed = errors.New("could not determine archive format")

	// ErrPasswordRequired is returned when encrypted content is encountered without a usable password.
	ErrPasswordRequired = errors.New("password required or incorrect")

	// ErrNoSources is returned when compressing without any source.
	ErrNoSources = errors.New("no sources to compress")

	// ErrAmbiguousOutput is returned when the output's extension does not identify a supported output format.
	ErrAmbiguousOutput = errors.New("cannot determine output format from extension")

	// ErrMultipleSources is returned when a single-source output (such as 7z) is given more than one source.
	ErrMultipleSources = errors.New("output format accepts exactly one source")

	// ErrEmptyOutputName is returned when the decompressed file name derived from a single-file compressed input is
	// empty.
	ErrEmptyOutputName = errors.New("derived output file name is empty")

	// ErrOutputIsInput is returned when the decompressed file would replace the single-file compressed input, which
	// happens when the input has no compression extension to strip and is decompressed into its own directory.
	ErrOutputIsInput = errors.New("decompressed file would replace its input")
)

// DecodeError wraps a failure from the underlying codec or container library.
type DecodeError struct {
	// Format is the display name of the format being decoded, e.g. "ZIP".
	Format string
	Err    error
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s decode error: %v", e.Format, e.Err)
}

// UnsupportedFormatError is returned when a format is recognised but cannot be handled by this build.
type UnsupportedFormatError struct {
	Format string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unsupported format %s", e.Format)
	}

	return fmt.Sprintf("unsupported format %s: %s", e.Format, e.Reason)
}

// FileNotFoundError is returned when an archive or compression source does not exist at the time of use.
//
// errors.Is(err, fs.ErrNotExist) is true for any FileNotFoundError.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf(`file "%s" not found`, e.Path)
}

func (e *FileNotFoundError) Is(target error) bool {
	return target == fs.ErrNotExist
}

// decodeErrorFunc returns a function that maps library errors of the given format to the error taxonomy.
//
// nil, ErrPasswordRequired, context errors, DecodeError, and fs.PathError pass through unchanged. Errors whose text
// hints at encryption become ErrPasswordRequired; everything else is wrapped in DecodeError.
func decodeErrorFunc(format string) func(error) error {
	return func(err error) error {
		if err == nil {
			return nil
		}

		var de *DecodeError
		var pe *fs.PathError
		switch {
		case errors.Is(err, ErrPasswordRequired), errors.As(err, &de), errors.As(err, &pe):
			return err
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case looksEncrypted(err):
			return fmt.Errorf("%w: %v", ErrPasswordRequired, err)
		default:
			return &DecodeError{Format: format, Err: err}
		}
	}
}

// looksEncrypted is true if the error message of a decoding library mentions passwords or encryption.
//
// Neither the 7z nor the RAR decoder exports a stable sentinel for every encryption failure, so the message is the
// only signal available.
func looksEncrypted(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt") || strings.Contains(msg, "decrypt") ||
		strings.Contains(msg, "aes7z")
}
