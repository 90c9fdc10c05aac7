// Package vos holds the OS facilities the shell runs against so tests can
// substitute them.
package vos

import (
	"io"
	"os"

	"github.com/spf13/afero"
)

// VIO is the standard I/O of the shell.
type VIO interface {
	Stdin() io.ReadCloser
	Stdout() io.WriteCloser
	Stderr() io.WriteCloser
}

// VFS is the filesystem redirect targets are opened in.
type VFS = afero.Fs

// OS bundles the shell's I/O and filesystem.
type OS struct {
	VIO
	Fs VFS
}

// NewHostOS gets the OS of the running process.
func NewHostOS() *OS {
	return &OS{
		VIO: NewVIOAdapter(os.Stdin, os.Stdout, os.Stderr),
		Fs:  afero.NewOsFs(),
	}
}
