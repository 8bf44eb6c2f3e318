package decompress

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// maxDecoderWindow is the largest window the zstd format allows
const maxDecoderWindow = (1 << 41) + 7*(1<<38)

// Zstd decodes zstd archives in process
type Zstd struct {
	MaxMemory uint64
}

// Open starts a single-threaded streaming decoder over path
func (z Zstd) Open(_ context.Context, path string) (Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	window := z.MaxMemory
	if window < zstd.MinWindowSize {
		window = zstd.MinWindowSize
	}
	if window > maxDecoderWindow {
		window = maxDecoderWindow
	}
	dec, err := zstd.NewReader(f,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(z.MaxMemory),
		zstd.WithDecoderMaxWindow(window),
	)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &libStream{r: dec, closeFn: func() error {
		dec.Close()
		return f.Close()
	}}, nil
}

// Gzip decodes gzip files in process, including multi-member files
type Gzip struct{}

// Open wraps path in a gzip reader
func (Gzip) Open(_ context.Context, path string) (Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &libStream{r: zr, closeFn: func() error {
		return errors.Join(zr.Close(), f.Close())
	}}, nil
}

// Plain streams a file as-is
type Plain struct{}

// Open opens path for reading
func (Plain) Open(_ context.Context, path string) (Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &libStream{r: f, closeFn: f.Close}, nil
}

// libStream reports decode errors through Read, so Wait has nothing to add
type libStream struct {
	r       io.Reader
	closeFn func() error
	closed  bool
}

func (s *libStream) Read(p []byte) (int, error) { return s.r.Read(p) }

func (s *libStream) Wait() error { return nil }

func (s *libStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.closeFn()
}
