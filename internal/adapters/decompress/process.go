package decompress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

const stderrTailBytes = 4 << 10

// ErrNonZeroExit means the external decompressor exited with a failure status
var ErrNonZeroExit = errors.New("decompressor exited non-zero")

// ExitError carries the exit code and the tail of stderr
type ExitError struct {
	Bin    string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: exit status %d", e.Bin, e.Code)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.Bin, e.Code, e.Stderr)
}

// Is matches ErrNonZeroExit
func (e *ExitError) Is(target error) bool { return target == ErrNonZeroExit }

// Process spawns Bin with Args followed by the file path and reads its stdout
type Process struct {
	Bin  string
	Args []string
}

// ZstdProcess runs `zstd -dc --memory=<N>MB <path>`
func ZstdProcess(bin string, maxMemory uint64) Process {
	if bin == "" {
		bin = "zstd"
	}
	mib := (maxMemory + (1<<20 - 1)) >> 20
	return Process{Bin: bin, Args: []string{"-dc", fmt.Sprintf("--memory=%dMB", mib)}}
}

// GzipProcess runs `gzip -dc <path>`
func GzipProcess(bin string) Process {
	if bin == "" {
		bin = "gzip"
	}
	return Process{Bin: bin, Args: []string{"-dc"}}
}

// Open starts the process; the caller reads stdout then calls Wait
func (p Process) Open(ctx context.Context, path string) (Stream, error) {
	args := append(append([]string{}, p.Args...), path)
	cmd := exec.CommandContext(ctx, p.Bin, args...)
	tail := &tailBuffer{max: stderrTailBytes}
	cmd.Stderr = tail
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", p.Bin, err)
	}
	return &procStream{cmd: cmd, stdout: stdout, stderr: tail, bin: p.Bin}, nil
}

type procStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *tailBuffer
	bin    string

	once    sync.Once
	waitErr error
}

func (s *procStream) Read(p []byte) (int, error) { return s.stdout.Read(p) }

// Wait reaps the process. A failure exit becomes an *ExitError matching ErrNonZeroExit
func (s *procStream) Wait() error {
	s.once.Do(func() {
		err := s.cmd.Wait()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			err = &ExitError{Bin: s.bin, Code: exitErr.ExitCode(), Stderr: s.stderr.String()}
		}
		s.waitErr = err
	})
	return s.waitErr
}

// Close stops a process that is still producing and reaps it
func (s *procStream) Close() error {
	_ = s.stdout.Close()
	if s.cmd.ProcessState == nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.Wait()
	return nil
}

// tailBuffer keeps the last max bytes written
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
