package internal

import (
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"
)

// ProgressLogger logs the number of files and bytes processed with the given interval.
//
// For example, if interval is `5*time.Second`, every 5 seconds, the given logger will print
// `extracted 12 files (5.1 MiB) so far`.
type ProgressLogger struct {
	logger *log.Logger
	verb   string
	rate   *rate.Sometimes
	files  int
	bytes  int64
}

// NewProgressLogger returns a new ProgressLogger that prints using the given verb ("extracted", "compressed").
func NewProgressLogger(logger *log.Logger, verb string, interval time.Duration) *ProgressLogger {
	return &ProgressLogger{
		logger: logger,
		verb:   verb,
		rate:   &rate.Sometimes{Interval: interval},
	}
}

// Add records one more file of the given size.
func (l *ProgressLogger) Add(size int64) {
	l.files++
	l.bytes += size

	l.rate.Do(func() {
		l.logger.Printf("%s %d files (%s) so far", l.verb, l.files, humanize.IBytes(uint64(l.bytes)))
	})
}

// Done prints the final tally.
func (l *ProgressLogger) Done() {
	l.logger.Printf("%s %d files (%s) in total", l.verb, l.files, humanize.IBytes(uint64(l.bytes)))
}
