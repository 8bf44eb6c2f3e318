// Package decompress turns archive files into byte streams, either in process
// with klauspost/compress or by spawning the system zstd/gzip binaries
package decompress

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// Stream is a decompressed byte stream. Wait reports how the producer finished
// and must only be called once the stream has been read to the end
type Stream interface {
	io.ReadCloser
	Wait() error
}

// Opener opens one file as a Stream
type Opener interface {
	Open(ctx context.Context, path string) (Stream, error)
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(ctx context.Context, path string) (Stream, error)

// Open calls f
func (f OpenerFunc) Open(ctx context.Context, path string) (Stream, error) { return f(ctx, path) }

// Codec is the compression of a file
type Codec uint8

const (
	// None is an uncompressed file
	None Codec = iota
	// ZstdCodec is a zstd frame stream
	ZstdCodec
	// GzipCodec is a gzip member stream
	GzipCodec
)

// Mode selects the decompression implementation
type Mode string

const (
	// ModeLibrary decompresses in process
	ModeLibrary Mode = "library"
	// ModeProcess spawns external binaries
	ModeProcess Mode = "process"
)

// DefaultMaxMemory is the zstd window/memory ceiling, large enough for --long=31 archives
const DefaultMaxMemory = "2GiB"

// Config selects and tunes the openers
type Config struct {
	Mode      Mode
	MaxMemory uint64 // bytes; zero means DefaultMaxMemory
	ZstdBin   string
	GzipBin   string
}

// Set holds one opener per codec
type Set struct {
	Zstd  Opener
	Gzip  Opener
	Plain Opener
}

// NewSet builds the openers for cfg
func NewSet(cfg Config) (Set, error) {
	if cfg.MaxMemory == 0 {
		n, _ := ParseMemory(DefaultMaxMemory)
		cfg.MaxMemory = n
	}
	switch cfg.Mode {
	case ModeLibrary, "":
		return Set{Zstd: Zstd{MaxMemory: cfg.MaxMemory}, Gzip: Gzip{}, Plain: Plain{}}, nil
	case ModeProcess:
		return Set{
			Zstd:  ZstdProcess(cfg.ZstdBin, cfg.MaxMemory),
			Gzip:  GzipProcess(cfg.GzipBin),
			Plain: Plain{},
		}, nil
	default:
		return Set{}, fmt.Errorf("decompress: unknown mode %q", cfg.Mode)
	}
}

// For returns the opener for c
func (s Set) For(c Codec) Opener {
	switch c {
	case ZstdCodec:
		return s.Zstd
	case GzipCodec:
		return s.Gzip
	default:
		return s.Plain
	}
}

// ParseMemory parses a human size such as "2GiB" or "2048MB"
func ParseMemory(s string) (uint64, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("decompress: invalid memory limit %q: %w", s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("decompress: memory limit must be positive")
	}
	return n, nil
}
