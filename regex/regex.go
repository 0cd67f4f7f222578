package regex

// The dialect is deliberately small:
// ^ and $ anchors, literals, \ escapes, [x-y] ranges, ., ?, *, + and top level | alternation.
// There is no grouping, no bounded repetition and no backtracking between states.

import (
	"github.com/cockroachdb/errors"
	"github.com/coregx/ahocorasick"
)

// Regex is a compiled pattern made of one or more alternatives separated by '|'.
type Regex struct {
	expr     string
	patterns []*Pattern
	// non-nil if every alternative is a plain literal
	literals *ahocorasick.Automaton
}

type Submatch struct {
	Offset int
	Str    string
}

// Compile compiles every alternative of expr. An error in any alternative fails the whole expression.
func Compile(expr string) (*Regex, error) {
	alts := splitAlternatives(expr)

	re := &Regex{
		expr:     expr,
		patterns: make([]*Pattern, 0, len(alts)),
	}
	for i, alt := range alts {
		p, err := compilePattern(alt)
		if err != nil {
			if len(alts) > 1 {
				return nil, errors.Wrapf(err, "alternative %d (%q)", i+1, alt)
			}
			return nil, err
		}
		re.patterns = append(re.patterns, p)
	}
	re.literals = buildLiteralPrefilter(re.patterns)
	return re, nil
}

func MustCompile(expr string) *Regex {
	re, err := Compile(expr)
	if err != nil {
		panic(`regex: Compile(` + expr + `): ` + err.Error())
	}
	return re
}

// splitAlternatives splits expr on every '|' that is neither escaped nor part of a range.
func splitAlternatives(expr string) []string {
	var alts []string
	start := 0
	inRange := false
	for i := 0; i < len(expr); i++ {
		switch c := expr[i]; {
		case inRange:
			if c == ']' {
				inRange = false
			}
		case c == '\\':
			i++
		case c == '[':
			inRange = true
		case c == '|':
			alts = append(alts, expr[start:i])
			start = i + 1
		}
	}
	return append(alts, expr[start:])
}

// Patterns returns the compiled alternatives in declaration order.
func (re *Regex) Patterns() []*Pattern {
	out := make([]*Pattern, len(re.patterns))
	copy(out, re.patterns)
	return out
}

func (re *Regex) String() string {
	return re.expr
}

// Match reports whether any alternative matches line.
func (re *Regex) Match(line string) bool {
	if re.literals != nil {
		return re.literals.IsMatch([]byte(line))
	}

	in := newInput(line)
	for _, p := range re.patterns {
		if _, _, ok := p.find(in); ok {
			return true
		}
	}
	return false
}

// Find returns the match of the first alternative, in declaration order, that matches line.
func (re *Regex) Find(line string) (Submatch, bool) {
	if re.literals != nil && !re.literals.IsMatch([]byte(line)) {
		return Submatch{}, false
	}

	in := newInput(line)
	for _, p := range re.patterns {
		if start, end, ok := p.find(in); ok {
			return in.submatch(start, end), true
		}
	}
	return Submatch{}, false
}
