package vos

import (
	"io"
)

// stdio is the shell's standard streams. Values that are already closers,
// *os.File in particular, are stored as given so child processes can inherit
// them without a copying goroutine.
type stdio struct {
	stdin  io.ReadCloser
	stdout io.WriteCloser
	stderr io.WriteCloser
}

var _ VIO = (*stdio)(nil)

// NewVIOAdapter builds a VIO from the given streams. Closing a stream that
// wasn't a closer to begin with does nothing.
func NewVIOAdapter(stdin io.Reader, stdout, stderr io.Writer) VIO {
	return &stdio{
		stdin:  asReadCloser(stdin),
		stdout: asWriteCloser(stdout),
		stderr: asWriteCloser(stderr),
	}
}

func (s *stdio) Stdin() io.ReadCloser   { return s.stdin }
func (s *stdio) Stdout() io.WriteCloser { return s.stdout }
func (s *stdio) Stderr() io.WriteCloser { return s.stderr }

func asReadCloser(r io.Reader) io.ReadCloser {
	if rc, ok := r.(io.ReadCloser); ok {
		return rc
	}
	return io.NopCloser(r)
}

func asWriteCloser(w io.Writer) io.WriteCloser {
	if wc, ok := w.(io.WriteCloser); ok {
		return wc
	}
	return unclosable{w}
}

// unclosable lets a plain writer like a bytes.Buffer stand in for stdout.
type unclosable struct {
	io.Writer
}

func (unclosable) Close() error { return nil }
