package commands

import (
	"io"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/InimaJin/MyShell/core/config"
	"github.com/InimaJin/MyShell/core/logger"
	"github.com/InimaJin/MyShell/core/session"
	"github.com/InimaJin/MyShell/core/shell"
	"github.com/InimaJin/MyShell/core/vos"
	"github.com/abiosoft/readline"
	"golang.org/x/term"
)

const (
	DefaultPrompt = `\w>> `
)

// HistoryStore persists the lines entered into the shell.
type HistoryStore interface {
	HistoryEntries() ([]string, error)
	AppendHistory(line string) error
	ClearHistory() error
}

type Shell struct {
	OS      *vos.OS
	Session *session.State
	// History is nil when lines aren't persisted.
	History HistoryStore
	// HomeDir resolves ~ and the target of a bare cd.
	HomeDir shell.HomeDirFunc
	// InjectedArgs maps a program to arguments inserted right after its name.
	InjectedArgs map[string][]string

	Log      *logger.SessionLogger
	Color    *ColorPrinter
	Readline *readline.Instance

	PromptTemplate string
	User           string
	Hostname       string

	// Set to true to quit the shell
	Quit bool

	lines int
}

// NewShell creates a shell in the process's working directory configured by
// cfg.
func NewShell(virtualOS *vos.OS, cfg *config.Configuration, sessionLog *logger.SessionLogger) (*Shell, error) {
	state, err := session.New()
	if err != nil {
		return nil, err
	}

	injected, err := cfg.ParsedInjectedArgs()
	if err != nil {
		return nil, err
	}

	s := &Shell{
		OS:           virtualOS,
		Session:      state,
		History:      cfg,
		HomeDir:      config.HomeDir,
		InjectedArgs: injected,
		Log:          sessionLog,
		Color: &ColorPrinter{
			Mode: cfg.Color,
			IsTerminal: func() bool {
				return isTerminal(virtualOS.Stderr())
			},
		},
		PromptTemplate: cfg.Prompt,
	}

	if u, err := user.Current(); err == nil {
		s.User = u.Username
	}
	s.Hostname, _ = os.Hostname()

	return s, nil
}

func isTerminal(v interface{}) bool {
	fd, ok := v.(*os.File)
	return ok && term.IsTerminal(int(fd.Fd()))
}

func (s *Shell) newReadline() (*readline.Instance, error) {
	cfg := &readline.Config{
		Stdin:                  readline.NewCancelableStdin(s.OS.Stdin()),
		Stdout:                 s.OS.Stdout(),
		Stderr:                 s.OS.Stderr(),
		DisableAutoSaveHistory: true,
		FuncIsTerminal: func() bool {
			return isTerminal(s.OS.Stdin()) && isTerminal(s.OS.Stdout())
		},
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	// Seed arrow-key recall with what earlier sessions entered.
	if s.History != nil {
		entries, err := s.History.HistoryEntries()
		if err != nil {
			log.Printf("Error reading history: %v", err)
		}
		for _, entry := range entries {
			rl.SaveHistory(entry)
		}
	}

	return rl, nil
}

// RunInteractive reads and runs lines until exit or the end of input and
// returns the exit code of the last line.
func (s *Shell) RunInteractive() int {
	if s.Readline == nil {
		rl, err := s.newReadline()
		if err != nil {
			s.Color.PrintError(s.OS.Stderr(), err)
			return 1
		}
		s.Readline = rl
	}
	defer s.Readline.Close()

	for !s.Quit {
		s.Readline.SetPrompt(s.Prompt())
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			s.Quit = true // Input closed, quit.

		case err == readline.ErrInterrupt:
			// Interrupt clears line.
			continue

		case err != nil:
			log.Printf("Error readline: %v", err)
			continue

		default:
			s.RunCommand(line)
		}
	}

	if s.Log != nil {
		if err := s.Log.RecordSessionEnd(s.lines); err != nil {
			log.Printf("Error recording session end: %v", err)
		}
	}

	return s.ExitStatus()
}

// RunCommand runs one line entered by the user and prints any error. It
// never fails, the outcome is left in the session status.
func (s *Shell) RunCommand(line string) {
	switch strings.TrimSpace(line) {
	case "":
		s.Session.SetStatus(session.StatusOK)
		return
	case "exit":
		s.Quit = true
		return
	}

	if s.History != nil {
		if err := s.History.AppendHistory(line); err != nil {
			log.Printf("Error writing history: %v", err)
		}
	}
	if s.Readline != nil {
		s.Readline.SaveHistory(line)
	}

	start := time.Now()
	err := s.Execute(line)
	if err != nil {
		s.Color.PrintError(s.OS.Stderr(), err)
	}
	s.lines++

	s.record(line, err, time.Since(start))
}

func (s *Shell) record(line string, execErr error, duration time.Duration) {
	if s.Log == nil {
		return
	}

	rc := &logger.RunCommand{
		Line:       line,
		Status:     s.Session.LastStatus,
		Cwd:        s.Session.Cwd,
		DurationMs: float64(duration) / float64(time.Millisecond),
	}
	if fields := strings.Fields(line); len(fields) > 0 {
		rc.Program = fields[0]
	}
	if execErr != nil {
		rc.Error = execErr.Error()
	}

	if err := s.Log.RecordCommand(rc); err != nil {
		log.Printf("Error recording command: %v", err)
	}
}

// Prompt renders the prompt template. \w is the working directory with the
// home directory shortened to ~, \W its base name, \u the user and \h the
// host. A failed last line is shown before the prompt as |status|.
func (s *Shell) Prompt() string {
	prompt := s.PromptTemplate
	if prompt == "" {
		prompt = DefaultPrompt
	}

	cwd := s.Session.Cwd
	pwd := cwd
	if s.HomeDir != nil {
		if home, err := s.HomeDir(); err == nil && home != "" {
			if cwd == home || strings.HasPrefix(cwd, home+string(filepath.Separator)) {
				pwd = "~" + strings.TrimPrefix(cwd, home)
			}
		}
	}

	prompt = strings.ReplaceAll(prompt, `\w`, pwd)
	prompt = strings.ReplaceAll(prompt, `\W`, filepath.Base(cwd))
	prompt = strings.ReplaceAll(prompt, `\u`, s.User)
	prompt = strings.ReplaceAll(prompt, `\h`, s.Hostname)

	if s.Session.Failed() {
		prompt = s.Color.Sprintf(ColorBoldRed, "|%s|", s.Session.LastStatus) + " " + prompt
	}

	return prompt
}

// ExitStatus converts the last status to a process exit code.
func (s *Shell) ExitStatus() int {
	switch s.Session.LastStatus {
	case session.StatusSignaled:
		return 1
	case session.StatusUnknown:
		return 127
	}

	code, err := strconv.Atoi(s.Session.LastStatus)
	if err != nil {
		return 1
	}
	return code
}
