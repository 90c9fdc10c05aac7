package commands

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/pborman/getopt/v2"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]ShellBuiltin)

// ShellBuiltin is a command that runs inside the shell process. On success it
// returns the text to send to the stage's output.
type ShellBuiltin interface {
	Main(s *Shell, args []string) (string, error)
}

type ShellBuiltinFunc func(s *Shell, args []string) (string, error)

func (f ShellBuiltinFunc) Main(s *Shell, args []string) (string, error) {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// BuiltinNames lists the registered builtins in sorted order.
func BuiltinNames() []string {
	var out []string
	for name := range AllBuiltins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Cd is the cd shell builtin
func Cd(s *Shell, args []string) (string, error) {
	switch len(args) {
	case 1:
		home, err := s.HomeDir()
		if err != nil {
			return "", err
		}
		args = append(args, home)
		fallthrough
	case 2:
		if err := s.Session.Chdir(args[1]); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%s: too many arguments", args[0])
	}
	return "", nil
}

// Pwd prints the working directory.
func Pwd(s *Shell, args []string) (string, error) {
	return s.Session.Cwd + "\n", nil
}

// Pushd changes directory and remembers it on the directory stack.
func Pushd(s *Shell, args []string) (string, error) {
	if len(args) < 2 {
		return "", ErrNoDirectory
	}
	if err := s.Session.Pushd(args[1]); err != nil {
		return "", err
	}
	return "", nil
}

// Popd returns to the previous directory on the stack.
func Popd(s *Shell, args []string) (string, error) {
	return "", s.Session.Popd()
}

func History(s *Shell, args []string) (string, error) {
	opts := getopt.New()
	clear := opts.Bool('c', "clear the history by deleting all entries")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil {
		return "", fmt.Errorf("%s: %v", args[0], err)
	}

	if *helpOpt {
		w := &bytes.Buffer{}
		fmt.Fprintln(w, "usage: history [-c]")
		fmt.Fprintln(w, "Display the history list with line numbers.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		return w.String(), nil
	}

	if s.History == nil {
		return "", nil
	}

	if *clear {
		if s.Readline != nil {
			s.Readline.Operation.ResetHistory()
		}
		return "", s.History.ClearHistory()
	}

	entries, err := s.History.HistoryEntries()
	if err != nil {
		return "", fmt.Errorf("couldn't read history: %w", err)
	}

	w := &strings.Builder{}
	for i, line := range entries {
		fmt.Fprintf(w, "%d %s\n", i, line)
	}
	return w.String(), nil
}

func init() {
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["pwd"] = ShellBuiltinFunc(Pwd)
	AllBuiltins["pushd"] = ShellBuiltinFunc(Pushd)
	AllBuiltins["popd"] = ShellBuiltinFunc(Popd)
	AllBuiltins["history"] = ShellBuiltinFunc(History)
}
