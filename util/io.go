package util

import (
	"context"
	"errors"
	"io"
)

// DefaultBufferSize is the size of the buffer used by CopyBufferWithContext when none is given.
const DefaultBufferSize = 32 * 1024

// CopyBufferWithContext is a variant of io.CopyBuffer that checks ctx between each read.
//
// If buf is nil, a new buffer of DefaultBufferSize is allocated.
func CopyBufferWithContext(ctx context.Context, dst io.Writer, src io.Reader, buf []byte) (written int64, err error) {
	if buf == nil {
		buf = make([]byte, DefaultBufferSize)
	}

	for {
		if err = ctx.Err(); err != nil {
			return
		}

		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[0:nr])
			if nw < 0 || nr < nw {
				nw = 0
				if ew == nil {
					ew = errors.New("invalid write result")
				}
			}

			written += int64(nw)
			if ew != nil {
				return written, ew
			}
			if nr != nw {
				return written, io.ErrShortWrite
			}
		}

		if er != nil {
			if er != io.EOF {
				err = er
			}

			return
		}
	}
}

// WriteNoopCloser implements a no-op io.Closer for an io.Writer.
type WriteNoopCloser struct {
	io.Writer
}

func (w *WriteNoopCloser) Close() error {
	return nil
}

// ChainCloser makes sure all the close functions are called at least once and will return the first error.
//
// The order of the close functions matters: the first one is the most important.
func ChainCloser(fn1 func() error, fn2 func() error, fns ...func() error) func() error {
	return func() error {
		err, err2 := fn1(), fn2()

		if err2 != nil && err == nil {
			err = err2
		}

		for _, fn := range fns {
			if err2 = fn(); err2 != nil && err == nil {
				err = err2
			}
		}

		return err
	}
}
