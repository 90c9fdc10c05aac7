// Package session holds the mutable state a shell carries between lines.
package session

import (
	"errors"
	"os"
)

const (
	// StatusOK is the status after a successful line.
	StatusOK = "0"
	// StatusSignaled marks a process killed by a signal or a builtin failure.
	StatusSignaled = "!"
	// StatusUnknown marks a process that couldn't be started or reaped.
	StatusUnknown = "?"
)

// ErrStackEmpty is returned when popping an empty directory stack.
var ErrStackEmpty = errors.New("directory stack empty")

// State is the working directory, last exit status and directory stack of an
// interactive session. It isn't safe for concurrent use.
type State struct {
	// Cwd is the absolute current working directory.
	Cwd string
	// LastStatus is a decimal exit code, StatusSignaled or StatusUnknown.
	LastStatus string
	// DirStack holds pushd entries, the origin directory at the bottom.
	DirStack []string
}

// New creates a state from the process's working directory.
func New() (*State, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return &State{Cwd: wd, LastStatus: StatusOK}, nil
}

// Chdir changes the process directory and re-reads it from the OS.
func (s *State) Chdir(dir string) error {
	if err := os.Chdir(dir); err != nil {
		return err
	}
	return s.Sync()
}

// Sync refreshes Cwd from the OS.
func (s *State) Sync() error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	s.Cwd = wd
	return nil
}

// Pushd changes to dir and records it. The first push also records the
// directory it started from so Popd can return there.
func (s *State) Pushd(dir string) error {
	origin := s.Cwd
	if err := s.Chdir(dir); err != nil {
		return err
	}
	if len(s.DirStack) == 0 {
		s.DirStack = append(s.DirStack, origin)
	}
	s.DirStack = append(s.DirStack, s.Cwd)
	return nil
}

// Popd drops the top entry and changes to the one below it. Getting back to
// the origin directory empties the stack.
func (s *State) Popd() error {
	if len(s.DirStack) == 0 {
		return ErrStackEmpty
	}

	rest := s.DirStack[:len(s.DirStack)-1]
	if len(rest) == 0 {
		s.DirStack = nil
		return nil
	}
	if err := s.Chdir(rest[len(rest)-1]); err != nil {
		return err
	}

	s.DirStack = rest
	if len(s.DirStack) == 1 {
		s.DirStack = nil
	}
	return nil
}

// SetStatus records the status of the last line.
func (s *State) SetStatus(status string) {
	s.LastStatus = status
}

// Failed reports whether the last line didn't exit cleanly.
func (s *State) Failed() bool {
	return s.LastStatus != StatusOK
}
