// Package shell turns a line of input into pipeline stages.
//
// The grammar is a small subset of
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/V3_chap02.html
//
//   - words are split on unquoted whitespace; ' and " quote until the
//     matching character and are removed,
//   - | connects stages, > and >> redirect a stage's output to a file,
//   - ~ expands to the user's home directory,
//   - ${ ... } holds a nested command line whose output replaces it; spans may
//     nest and their text is left for a later Parse.
package shell

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// HomeDirFunc resolves the user's home directory for ~ expansion.
type HomeDirFunc func() (string, error)

// ErrSubcommandTarget is returned for a ${ ... } span in place of a redirect
// filename, subcommand output can only become an argument.
var ErrSubcommandTarget = errors.New("a subcommand can't be used as a redirect target")

// ParseError is returned when a line can't be turned into instructions.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type parser struct {
	homeDir HomeDirFunc
	home    *string

	out []*Instruction
	cur *Instruction
	tok strings.Builder

	// quote is the open quote character or zero.
	quote rune
	// depth counts open ${ spans.
	depth int

	expectFilename bool
	discardNext    bool
	// afterRedirect is set directly after a > that selected a file route.
	afterRedirect bool
}

// Parse splits line into pipeline stages in execution order.
//
// homeDir is only called if the line contains an unquoted ~, failure to
// resolve it is the only error Parse returns. Problems like a missing redirect
// target are left for the executor so it can name the failing program.
func Parse(line string, homeDir HomeDirFunc) ([]*Instruction, error) {
	p := &parser{
		homeDir: homeDir,
		cur:     &Instruction{},
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		opensSpan := c == '$' && i+1 < len(runes) && runes[i+1] == '{'
		redirected := false

		switch {
		case p.depth > 0:
			switch {
			case opensSpan:
				p.depth++
				p.tok.WriteString("${")
				i++
			case c == '}':
				p.depth--
				if p.depth == 0 {
					p.pushSubcommand()
				} else {
					p.tok.WriteRune(c)
				}
			default:
				p.tok.WriteRune(c)
			}

		case p.quote != 0:
			if c == p.quote {
				p.quote = 0
			} else {
				p.tok.WriteRune(c)
			}

		case c == '"' || c == '\'':
			p.quote = c

		case unicode.IsSpace(c):
			p.pushToken()

		case c == '|':
			p.pipe()

		case c == '>':
			redirected = p.redirect()

		case c == '~':
			home, err := p.resolveHome()
			if err != nil {
				return nil, err
			}
			p.tok.WriteString(home)

		case opensSpan:
			p.pushToken()
			if p.expectFilename {
				return nil, &ParseError{Err: ErrSubcommandTarget}
			}
			p.depth = 1
			i++

		default:
			p.tok.WriteRune(c)
		}

		p.afterRedirect = redirected
	}

	if p.depth > 0 {
		p.cur.Unterminated = true
		p.pushSubcommand()
	}
	p.pushToken()
	if len(p.cur.Argv) > 0 {
		p.out = append(p.out, p.cur)
	}

	return p.out, nil
}

func (p *parser) resolveHome() (string, error) {
	if p.home != nil {
		return *p.home, nil
	}
	if p.homeDir == nil {
		return "", &ParseError{Err: errors.New("failed to retrieve home directory: no resolver")}
	}
	home, err := p.homeDir()
	if err != nil {
		return "", &ParseError{Err: fmt.Errorf("failed to retrieve home directory: %w", err)}
	}
	p.home = &home
	return home, nil
}

// pushToken moves the accumulated token into the current instruction.
func (p *parser) pushToken() {
	if p.tok.Len() == 0 {
		return
	}
	tok := p.tok.String()
	p.tok.Reset()

	switch {
	case p.expectFilename:
		p.cur.Filename = tok
		p.expectFilename = false
	case p.discardNext:
		p.discardNext = false
	default:
		p.cur.Argv = append(p.cur.Argv, tok)
	}
}

// pushSubcommand records the accumulated span text as a subcommand slot.
func (p *parser) pushSubcommand() {
	p.cur.Subcommands = append(p.cur.Subcommands, len(p.cur.Argv))
	p.cur.Argv = append(p.cur.Argv, p.tok.String())
	p.tok.Reset()
}

func (p *parser) pipe() {
	p.pushToken()
	p.expectFilename = false
	p.discardNext = false

	if len(p.cur.Argv) == 0 {
		// Nothing to run, keep the input wiring for whatever comes next.
		p.cur = &Instruction{ReadsFromPrevious: p.cur.ReadsFromPrevious}
		return
	}

	if p.cur.Route != ToFile {
		p.cur.Route = ToNextStage
	}
	p.out = append(p.out, p.cur)
	p.cur = &Instruction{ReadsFromPrevious: p.cur.Route == ToNextStage}
}

// redirect handles a single >, it reports whether the file route was just
// selected so a directly following > can turn it into an append.
func (p *parser) redirect() bool {
	p.pushToken()

	switch {
	case p.afterRedirect:
		p.cur.Mode = Append
	case p.cur.Route == ToFile:
		// First redirect wins, drop the target of this one.
		if !p.expectFilename {
			p.discardNext = true
		}
	default:
		p.cur.Route = ToFile
		p.cur.Mode = Overwrite
		p.expectFilename = true
		return true
	}
	return false
}
