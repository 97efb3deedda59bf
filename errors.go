package fastzip

import (
	"github.com/nguyengg/fastzip/archive"
)

type (
	// DecodeError wraps a failure from the underlying codec or container library.
	DecodeError = archive.DecodeError
	// UnsupportedFormatError is returned when a format is recognised but cannot be handled by this build.
	UnsupportedFormatError = archive.UnsupportedFormatError
	// FileNotFoundError is returned when an archive or compression source does not exist at the time of use.
	FileNotFoundError = archive.FileNotFoundError
)

var (
	ErrFormatDetectionFailed = archive.ErrFormatDetectionFailed
	ErrPasswordRequired      = archive.ErrPasswordRequired
	ErrNoSources             = archive.ErrNoSources
	ErrAmbiguousOutput       = archive.ErrAmbiguousOutput
	ErrMultipleSources       = archive.ErrMultipleSources
	ErrEmptyOutputName       = archive.ErrEmptyOutputName
	ErrOutputIsInput         = archive.ErrOutputIsInput
)
