package commands

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/InimaJin/MyShell/core/session"
	"github.com/InimaJin/MyShell/core/shell"
)

var (
	// ErrNoTarget is returned for a redirect without a filename.
	ErrNoTarget = errors.New("please specify target file")
	// ErrNoDirectory is returned by pushd without an argument.
	ErrNoDirectory = errors.New("please specify a directory")
	// ErrUnterminated is returned for a ${ without a matching }.
	ErrUnterminated = errors.New("missing '}' in subcommand")
	// ErrStackEmpty is returned by popd when there's nothing to pop.
	ErrStackEmpty = session.ErrStackEmpty
	// ErrSubcommandTarget is returned for a ${ in place of a redirect filename.
	ErrSubcommandTarget = shell.ErrSubcommandTarget

	errIsDir = errors.New("is a directory")
)

// ParseError is returned when a line couldn't be parsed.
type ParseError = shell.ParseError

// DispatchError is returned when a stage can't run because its preconditions
// aren't met, or a builtin or redirect failed.
type DispatchError struct {
	Program string
	Err     error
}

func (e *DispatchError) Error() string {
	return e.Err.Error()
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// SpawnError is returned when a program couldn't be started.
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	if errors.Is(e.Err, exec.ErrNotFound) {
		return fmt.Sprintf("command '%s' not found", e.Program)
	}
	return fmt.Sprintf("couldn't start '%s': %v", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// WaitError is returned when a started program couldn't be reaped.
type WaitError struct {
	Program string
	Err     error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("couldn't wait for '%s': %v", e.Program, e.Err)
}

func (e *WaitError) Unwrap() error {
	return e.Err
}

func missingTarget(program string) error {
	return &DispatchError{
		Program: program,
		Err:     fmt.Errorf("%w for output of '%s'", ErrNoTarget, program),
	}
}

func unterminated(program string) error {
	return &DispatchError{
		Program: program,
		Err:     fmt.Errorf("%w of '%s'", ErrUnterminated, program),
	}
}
