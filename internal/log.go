package internal

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/nguyengg/fastzip/util"
)

// Prefix creates a consistent prefix for all archive-based operations to use.
//
// i and n are the one-based ordinal and expected count.
func Prefix(i, n int, name string) string {
	return fmt.Sprintf(`[%d/%d] "%s" - `, i, n, util.TruncateRightWithSuffix(filepath.Base(name), 30, "..."))
}

type loggerKey struct{}

// WithPrefixLogger creates a new logger using the given prefix, then attaches it to context.
//
// The new logger writes to the same io.Writer as the logger already attached to context, or os.Stderr if there is none.
func WithPrefixLogger(ctx context.Context, prefix string) context.Context {
	w := io.Writer(os.Stderr)
	if v, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		w = v.Writer()
	}

	return WithLogger(ctx, log.New(w, prefix, 0))
}

// WithLogger attaches the given logger to context.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFrom returns the logger attached to the given context.
//
// If there is none, log.Default is returned.
func LoggerFrom(ctx context.Context) *log.Logger {
	if v, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return v
	}

	return log.Default()
}
