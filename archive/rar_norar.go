//go:build norar

package archive

import (
	"context"
	"iter"
)

// Rar is the stand-in for the RAR adapter in builds with tag "norar"; every method fails with UnsupportedFormatError.
type Rar struct {
}

var _ Extractor = Rar{}
var _ Archiver = Rar{}

func (r Rar) Format() string {
	return "RAR"
}

func (r Rar) Names(_, _ string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield("", r.unsupported())
	}
}

func (r Rar) Extract(_ context.Context, _, _ string, _ Options) error {
	return r.unsupported()
}

func (r Rar) Open(_, _ string) (iter.Seq2[File, error], error) {
	return nil, r.unsupported()
}

func (r Rar) unsupported() error {
	return &UnsupportedFormatError{Format: r.Format(), Reason: "built without RAR support"}
}
