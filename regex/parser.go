package regex

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrSyntax marks every error returned for an invalid pattern.
var ErrSyntax = errors.New("invalid pattern")

var (
	ErrLeadingAnchor         = errors.Mark(errors.New("leading characters before ^"), ErrSyntax)
	ErrTrailingAfterEOL      = errors.Mark(errors.New("trailing characters after $"), ErrSyntax)
	ErrMissingState          = errors.Mark(errors.New("missing state before quantifier"), ErrSyntax)
	ErrMalformedRange        = errors.Mark(errors.New("malformed range"), ErrSyntax)
	ErrMissingRangeSeparator = errors.Mark(errors.New("range missing separator"), ErrSyntax)
	ErrUnterminatedRange     = errors.Mark(errors.New("expected ] to close range"), ErrSyntax)
	ErrInvertedRange         = errors.Mark(errors.New("upper bound of range is less than its lower bound"), ErrSyntax)
	ErrUnmatchedBracket      = errors.Mark(errors.New("missing opening ["), ErrSyntax)
	ErrTrailingEscape        = errors.Mark(errors.New("trailing \\"), ErrSyntax)
)

// CompileError describes why a pattern failed to compile.
// Pos is the index of the offending construct, counted in characters.
type CompileError struct {
	Pattern string
	Pos     int
	Token   string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("parser error at %d: %v: %q", e.Pos, e.Err, e.Token)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

func newCompileError(re []rune, i, j int, err error) *CompileError {
	j = min(j, len(re))
	return &CompileError{Pattern: string(re), Pos: i, Token: string(re[i:j]), Err: err}
}

// compilePattern compiles a single alternative into its states.
func compilePattern(expr string) (*Pattern, error) {
	re := []rune(expr)
	p := &Pattern{}

	for i := 0; i < len(re); i++ {
		switch re[i] {
		case '^':
			if i != 0 {
				return nil, newCompileError(re, i, i+1, ErrLeadingAnchor)
			}
			p.anchored = true

		case '$':
			if i != len(re)-1 {
				return nil, newCompileError(re, i, len(re), ErrTrailingAfterEOL)
			}
			p.states = append(p.states, State{Kind: EndOfLine})

		case '?', '*', '+':
			if len(p.states) == 0 {
				return nil, newCompileError(re, i, i+1, ErrMissingState)
			}
			p.quantify(re[i])

		case '[':
			s, j, err := parseRange(re, i)
			if err != nil {
				return nil, newCompileError(re, i, j+1, err)
			}
			p.states = append(p.states, s)
			i = j

		case ']':
			return nil, newCompileError(re, i, i+1, ErrUnmatchedBracket)

		case '.':
			p.states = append(p.states, State{Kind: Any})

		case '\\':
			if i+1 >= len(re) {
				return nil, newCompileError(re, i, i+1, ErrTrailingEscape)
			}
			i++
			p.states = append(p.states, State{Kind: Literal, Value: re[i]})

		default:
			p.states = append(p.states, State{Kind: Literal, Value: re[i]})
		}
	}
	return p, nil
}

// quantify applies ?, * or + to the last state.
// + is expanded into the mandatory state followed by a repeatable copy.
func (p *Pattern) quantify(q rune) {
	last := &p.states[len(p.states)-1]
	switch q {
	case '?':
		last.Optional = true
	case '*':
		last.Optional = true
		last.Repeatable = true
	case '+':
		last.Optional = false
		last.Repeatable = false
		cp := *last
		cp.Optional = true
		cp.Repeatable = true
		p.states = append(p.states, cp)
	}
}

// [x-y]
// Bounds are taken verbatim, escapes have no meaning inside a range.
// On failure the returned index points at the offending character.
func parseRange(re []rune, i int) (State, int, error) {
	// pop off '['
	j := i + 1
	if j >= len(re) || re[j] == ']' {
		return State{}, j, ErrMalformedRange
	}
	lower := re[j]

	j++
	if j >= len(re) {
		return State{}, j, ErrUnterminatedRange
	}
	if re[j] != '-' {
		return State{}, j, ErrMissingRangeSeparator
	}

	j++
	if j >= len(re) || re[j] == ']' {
		return State{}, j, ErrMalformedRange
	}
	upper := re[j]

	j++
	if j >= len(re) || re[j] != ']' {
		return State{}, j, ErrUnterminatedRange
	}

	if upper < lower {
		return State{}, j, ErrInvertedRange
	}
	return State{Kind: Range, Lower: lower, Upper: upper}, j, nil
}
