package commands

import (
	"io"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/InimaJin/MyShell/core/session"
	"github.com/InimaJin/MyShell/core/shell"
)

// Execute runs a line at the top level. Output goes to the shell's stdout
// unless the line redirects it.
func (s *Shell) Execute(line string) error {
	_, err := s.execute(line, false)
	return err
}

// Capture runs a line as a subcommand and returns its output with the
// surrounding whitespace trimmed. A line without output returns "".
func (s *Shell) Capture(line string) (string, error) {
	return s.execute(line, true)
}

func (s *Shell) execute(line string, asSubcommand bool) (string, error) {
	instructions, err := shell.Parse(line, s.HomeDir)
	if err != nil {
		s.Session.SetStatus(session.StatusSignaled)
		return "", err
	}

	p := &pipeline{shell: s, capture: asSubcommand}
	defer p.release()

	for _, inst := range instructions {
		if err := p.run(inst); err != nil {
			return "", err
		}
	}

	return p.finish()
}

// stage is how a resolved instruction gets run.
type stage interface {
	run(p *pipeline, inst *shell.Instruction) error
}

// builtinStage runs a ShellBuiltin in-process.
type builtinStage struct {
	builtin ShellBuiltin
}

// processStage starts an external program.
type processStage struct{}

func resolveStage(program string) stage {
	if builtin, ok := AllBuiltins[program]; ok {
		return builtinStage{builtin: builtin}
	}
	return processStage{}
}

// pipeline holds the state carried from one stage to the next while a single
// line runs. Nested subcommands get their own pipeline.
type pipeline struct {
	shell   *Shell
	capture bool

	// pending is the read end of the previous stage's output, ownership moves
	// to the next stage that reads it.
	pending *os.File

	// started holds processes that haven't been waited on yet.
	started []*startedProcess
	// last is the process of the most recent stage, nil if it was a builtin.
	last *startedProcess
}

type startedProcess struct {
	cmd *exec.Cmd
	// closeAfterWait holds outputs a copying goroutine inside cmd still uses.
	closeAfterWait []io.Closer
}

func (p *pipeline) run(inst *shell.Instruction) error {
	s := p.shell

	if args := s.InjectedArgs[inst.Program()]; len(args) > 0 {
		inst.InjectArgs(1, args...)
	}

	if inst.Unterminated {
		s.Session.SetStatus(session.StatusSignaled)
		return unterminated(inst.Program())
	}

	for _, slot := range inst.Subcommands {
		out, err := s.execute(inst.Argv[slot], true)
		if err != nil {
			return err
		}
		inst.Argv[slot] = out
	}

	if inst.Route == shell.ToFile && inst.Filename == "" {
		s.Session.SetStatus(session.StatusSignaled)
		return missingTarget(inst.Program())
	}

	return resolveStage(inst.Program()).run(p, inst)
}

func (b builtinStage) run(p *pipeline, inst *shell.Instruction) error {
	s := p.shell

	// Builtins never read their input.
	p.dropPending()
	p.last = nil

	payload, err := b.builtin.Main(s, inst.Argv)
	if err != nil {
		s.Session.SetStatus(session.StatusSignaled)
		return &DispatchError{Program: inst.Program(), Err: err}
	}
	s.Session.SetStatus(session.StatusOK)

	switch {
	case inst.Route == shell.ToFile:
		fd, err := p.openTarget(inst)
		if err != nil {
			return err
		}
		_, err = io.WriteString(fd, payload)
		if closeErr := fd.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			s.Session.SetStatus(session.StatusSignaled)
			return &DispatchError{Program: inst.Program(), Err: err}
		}

	case inst.Route == shell.ToNextStage || p.capture:
		r, w, err := os.Pipe()
		if err != nil {
			s.Session.SetStatus(session.StatusSignaled)
			return &DispatchError{Program: inst.Program(), Err: err}
		}
		// Written asynchronously so payloads larger than the pipe buffer don't
		// block before the next stage starts reading.
		go func() {
			io.WriteString(w, payload)
			w.Close()
		}()
		p.pending = r

	default:
		io.WriteString(s.OS.Stdout(), payload)
	}

	return nil
}

func (processStage) run(p *pipeline, inst *shell.Instruction) error {
	s := p.shell
	program := inst.Program()

	cmd := exec.Command(program, inst.Argv[1:]...)
	cmd.Dir = s.Session.Cwd
	cmd.Stdin = s.OS.Stdin()
	cmd.Stderr = s.OS.Stderr()

	var closeAfterStart []io.Closer
	proc := &startedProcess{cmd: cmd}

	if inst.ReadsFromPrevious && p.pending != nil {
		cmd.Stdin = p.pending
		closeAfterStart = append(closeAfterStart, p.pending)
		p.pending = nil
	} else {
		p.dropPending()
	}

	var captured *os.File
	switch {
	case inst.Route == shell.ToFile:
		fd, err := p.openTarget(inst)
		if err != nil {
			closeAll(closeAfterStart)
			return err
		}
		cmd.Stdout = fd
		if _, ok := fd.(*os.File); ok {
			closeAfterStart = append(closeAfterStart, fd)
		} else {
			proc.closeAfterWait = append(proc.closeAfterWait, fd)
		}

	case inst.Route == shell.ToNextStage || p.capture:
		r, w, err := os.Pipe()
		if err != nil {
			closeAll(closeAfterStart)
			s.Session.SetStatus(session.StatusUnknown)
			return &SpawnError{Program: program, Err: err}
		}
		cmd.Stdout = w
		closeAfterStart = append(closeAfterStart, w)
		captured = r

	default:
		cmd.Stdout = s.OS.Stdout()
	}

	err := cmd.Start()
	closeAll(closeAfterStart)
	if err != nil {
		closeAll(proc.closeAfterWait)
		if captured != nil {
			captured.Close()
		}
		s.Session.SetStatus(session.StatusUnknown)
		return &SpawnError{Program: program, Err: err}
	}

	p.pending = captured
	p.started = append(p.started, proc)
	p.last = proc
	return nil
}

// openTarget opens the redirect target of inst for writing.
func (p *pipeline) openTarget(inst *shell.Instruction) (io.WriteCloser, error) {
	s := p.shell

	name := inst.Filename
	if !filepath.IsAbs(name) {
		name = filepath.Join(s.Session.Cwd, name)
	}

	fail := func(err error) (io.WriteCloser, error) {
		s.Session.SetStatus(session.StatusSignaled)
		return nil, &DispatchError{Program: inst.Program(), Err: err}
	}

	if info, err := s.OS.Fs.Stat(name); err == nil && info.IsDir() {
		return fail(&os.PathError{Op: "open", Path: inst.Filename, Err: errIsDir})
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if inst.Mode == shell.Append {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	fd, err := s.OS.Fs.OpenFile(name, flags, 0644)
	if err != nil {
		return fail(err)
	}
	return fd, nil
}

// finish collects the captured output and the status of the final stage.
func (p *pipeline) finish() (string, error) {
	var out string
	if p.capture && p.pending != nil {
		data, err := ioutil.ReadAll(p.pending)
		p.dropPending()
		if err != nil {
			return "", err
		}
		out = strings.TrimSpace(string(data))
	}
	p.dropPending()

	last := p.last
	for _, proc := range p.started {
		if proc == last {
			continue
		}
		proc.wait()
	}
	p.started = nil

	if last != nil {
		err := last.wait()
		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				p.shell.Session.SetStatus(exitStatus(exitErr.ProcessState))
				return out, nil
			}
			p.shell.Session.SetStatus(session.StatusUnknown)
			return "", &WaitError{Program: last.cmd.Args[0], Err: err}
		}
		p.shell.Session.SetStatus(exitStatus(last.cmd.ProcessState))
	}

	return out, nil
}

// release frees whatever an aborted line left behind. Processes that already
// started are reaped but not killed.
func (p *pipeline) release() {
	p.dropPending()
	for _, proc := range p.started {
		proc.wait()
	}
	p.started = nil
}

func (p *pipeline) dropPending() {
	if p.pending != nil {
		p.pending.Close()
		p.pending = nil
	}
}

func (sp *startedProcess) wait() error {
	err := sp.cmd.Wait()
	closeAll(sp.closeAfterWait)
	return err
}

// exitStatus converts a finished process's state to a session status.
func exitStatus(state *os.ProcessState) string {
	if state == nil {
		return session.StatusUnknown
	}
	if !state.Exited() {
		return session.StatusSignaled
	}
	return strconv.Itoa(state.ExitCode())
}

func closeAll(cs []io.Closer) {
	for _, c := range cs {
		_ = c.Close()
	}
}
