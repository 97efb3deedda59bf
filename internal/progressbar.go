package internal

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// DefaultBytes is equivalent to progressbar.DefaultBytes but writes to w and has higher progressbar.OptionThrottle.
func DefaultBytes(w io.Writer, maxBytes int64, description string, options ...progressbar.Option) *progressbar.ProgressBar {
	return progressbar.NewOptions64(maxBytes,
		append([]progressbar.Option{
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(w),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(1 * time.Second),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprint(w, "\n")
			}),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true)},
			options...)...)
}

// DefaultCount is the counting variant of DefaultBytes, for example to track the number of archives done.
func DefaultCount(w io.Writer, n int, description string, options ...progressbar.Option) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		append([]progressbar.Option{
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetWidth(10),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprint(w, "\n")
			}),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true)},
			options...)...)
}
