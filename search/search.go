// Package search runs a compiled pattern over lines of input and prints the
// selected lines the way grep does.
package search

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mfroeh/jrep/regex"
)

const (
	defaultSize = 64 * 1024
	// StdinName is the name reported for standard input.
	StdinName = "(standard input)"
)

// Options controls which lines are selected and how they are printed.
type Options struct {
	// Invert selects the lines that do not match.
	Invert bool
	// Count prints the number of selected lines per input instead of the lines.
	Count        bool
	LineNumbers  bool
	WithFilename bool
	// OnlyMatching prints the matched part of a line instead of the whole line.
	OnlyMatching bool
	Color        bool
	Palette      Palette
}

// Stats counts the lines read and selected.
type Stats struct {
	Lines    int
	Selected int
}

func (s *Stats) Add(o Stats) {
	s.Lines += o.Lines
	s.Selected += o.Selected
}

type Searcher struct {
	re    *regex.Regex
	out   *bufio.Writer
	opts  Options
	log   *zap.Logger
	stdin io.Reader
}

func New(re *regex.Regex, out io.Writer, opts Options, log *zap.Logger) *Searcher {
	opts.Palette = opts.Palette.withDefaults()
	for _, c := range opts.Palette.colors() {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{
		re:    re,
		out:   bufio.NewWriter(out),
		opts:  opts,
		log:   log,
		stdin: os.Stdin,
	}
}

// Search reads r line by line and prints the selected lines.
// name is used as the filename prefix.
func (s *Searcher) Search(name string, r io.Reader) (Stats, error) {
	defer s.out.Flush() // nolint: errcheck

	var st Stats
	reader := bufio.NewReaderSize(r, defaultSize)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return st, errors.Wrapf(err, "reading %s", name)
		}

		if line != "" {
			st.Lines++
			if s.searchLine(name, st.Lines, strings.TrimSuffix(line, "\n")) {
				st.Selected++
			}
		}

		if err == io.EOF {
			break
		}
	}

	if s.opts.Count {
		s.printFilename(name)
		fmt.Fprintln(s.out, st.Selected)
	}

	s.log.Debug("searched input",
		zap.String("name", name),
		zap.Int("lines", st.Lines),
		zap.Int("selected", st.Selected))

	if err := s.out.Flush(); err != nil {
		return st, errors.Wrap(err, "writing output")
	}
	return st, nil
}

// searchLine prints line if it is selected and reports whether it was.
func (s *Searcher) searchLine(name string, lineNo int, line string) bool {
	var (
		sm    regex.Submatch
		found bool
	)
	if s.opts.OnlyMatching || s.opts.Color {
		sm, found = s.re.Find(line)
	} else {
		found = s.re.Match(line)
	}

	if found == s.opts.Invert {
		return false
	}
	if s.opts.Count {
		return true
	}

	s.printFilename(name)
	if s.opts.LineNumbers {
		fmt.Fprint(s.out, s.opts.Palette.LineNumber.Sprint(lineNo), s.opts.Palette.Separator.Sprint(":"))
	}

	switch {
	case s.opts.OnlyMatching && !s.opts.Invert:
		fmt.Fprintln(s.out, s.opts.Palette.Match.Sprint(sm.Str))
	case found && s.opts.Color:
		fmt.Fprintln(s.out, s.highlight(line, sm))
	default:
		fmt.Fprintln(s.out, line)
	}
	return true
}

func (s *Searcher) printFilename(name string) {
	if !s.opts.WithFilename {
		return
	}
	// Sprint, the Fprint family drops the reset when the process has no terminal
	fmt.Fprint(s.out, s.opts.Palette.Filename.Sprint(name), s.opts.Palette.Separator.Sprint(":"))
}

func (s *Searcher) highlight(line string, sm regex.Submatch) string {
	if sm.Str == "" {
		return line
	}

	out := strings.Builder{}
	out.WriteString(line[:sm.Offset])
	out.WriteString(s.opts.Palette.Match.Sprint(sm.Str))
	out.WriteString(line[sm.Offset+len(sm.Str):])
	return out.String()
}
