package shell

import (
	"fmt"
	"strings"
)

// Route is the destination of a stage's standard output.
type Route int

const (
	// ToTerminal sends output to the shell's own stdout.
	ToTerminal Route = iota
	// ToNextStage sends output into a pipe read by the following stage.
	ToNextStage
	// ToFile writes output to Instruction.Filename.
	ToFile
)

func (r Route) String() string {
	switch r {
	case ToTerminal:
		return "terminal"
	case ToNextStage:
		return "pipe"
	case ToFile:
		return "file"
	default:
		return fmt.Sprintf("Route(%d)", int(r))
	}
}

// RedirectMode controls how a ToFile route opens its target.
type RedirectMode int

const (
	// Overwrite creates or truncates the target (>).
	Overwrite RedirectMode = iota
	// Append creates the target or appends to it (>>).
	Append
)

func (m RedirectMode) String() string {
	if m == Append {
		return ">>"
	}
	return ">"
}

// Instruction is a single pipeline stage.
type Instruction struct {
	// Argv holds the program followed by its arguments.
	Argv []string
	// Route is where standard output goes.
	Route Route
	// Mode is only meaningful when Route is ToFile.
	Mode RedirectMode
	// Filename is the redirect target, it may be empty even if Route is ToFile;
	// that is reported when the stage runs.
	Filename string
	// Subcommands holds indexes into Argv whose text is a nested command line.
	Subcommands []int
	// ReadsFromPrevious is set when the previous stage's Route was ToNextStage.
	ReadsFromPrevious bool
	// Unterminated is set if a subcommand span was still open at end of line.
	Unterminated bool
}

// Program gets the name of the program to run, or the empty string.
func (in *Instruction) Program() string {
	if len(in.Argv) == 0 {
		return ""
	}
	return in.Argv[0]
}

// InjectArgs inserts args into Argv starting at index at, shifting every
// recorded subcommand slot at or after that index so it keeps pointing at the
// same text.
func (in *Instruction) InjectArgs(at int, args ...string) {
	if len(args) == 0 {
		return
	}
	if at < 0 {
		at = 0
	}
	if at > len(in.Argv) {
		at = len(in.Argv)
	}

	argv := make([]string, 0, len(in.Argv)+len(args))
	argv = append(argv, in.Argv[:at]...)
	argv = append(argv, args...)
	argv = append(argv, in.Argv[at:]...)
	in.Argv = argv

	for i, slot := range in.Subcommands {
		if slot >= at {
			in.Subcommands[i] = slot + len(args)
		}
	}
}

func (in *Instruction) String() string {
	var sb strings.Builder
	if in.ReadsFromPrevious {
		sb.WriteString("| ")
	}
	fmt.Fprintf(&sb, "%q", in.Argv)
	switch in.Route {
	case ToNextStage:
		sb.WriteString(" |")
	case ToFile:
		fmt.Fprintf(&sb, " %s %q", in.Mode, in.Filename)
	}
	if len(in.Subcommands) > 0 {
		fmt.Fprintf(&sb, " subcommands=%v", in.Subcommands)
	}
	return sb.String()
}
