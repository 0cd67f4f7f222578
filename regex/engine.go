package regex

import (
	"fmt"
	"slices"
	"strings"
)

// lineTerminator is the character every line implicitly ends with.
const lineTerminator = '\n'

// metaChars are the characters that must be escaped to be matched literally.
const metaChars = `^$?.*+[]\|`

type Kind int

const (
	Literal Kind = iota + 1
	EndOfLine
	Range
	Any
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case EndOfLine:
		return "eol"
	case Range:
		return "range"
	case Any:
		return "any"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// State is a single match unit of a compiled pattern.
// Repeatable states are always Optional.
type State struct {
	Kind       Kind
	Value      rune
	Lower      rune
	Upper      rune
	Optional   bool
	Repeatable bool
}

func (s State) matches(c rune) bool {
	switch s.Kind {
	case Literal:
		return c == s.Value
	case EndOfLine:
		return c == lineTerminator
	case Range:
		return c >= s.Lower && c <= s.Upper
	case Any:
		return c != lineTerminator
	}
	return false
}

// String renders the state in pattern syntax. Compiling the result yields the same state.
func (s State) String() string {
	b := strings.Builder{}
	switch s.Kind {
	case Literal:
		if strings.ContainsRune(metaChars, s.Value) {
			b.WriteByte('\\')
		}
		b.WriteRune(s.Value)
	case EndOfLine:
		b.WriteByte('$')
	case Range:
		fmt.Fprintf(&b, "[%c-%c]", s.Lower, s.Upper)
	case Any:
		b.WriteByte('.')
	}

	switch {
	case s.Repeatable:
		b.WriteByte('*')
	case s.Optional:
		b.WriteByte('?')
	}
	return b.String()
}

// Pattern is a single compiled alternative. It is never modified after compilation
// and may be shared between goroutines.
type Pattern struct {
	states   []State
	anchored bool
}

// States returns a copy of the compiled states.
func (p *Pattern) States() []State {
	return slices.Clone(p.states)
}

func (p *Pattern) Anchored() bool {
	return p.anchored
}

func (p *Pattern) Len() int {
	return len(p.states)
}

func (p *Pattern) String() string {
	b := strings.Builder{}
	if p.anchored {
		b.WriteByte('^')
	}
	for _, s := range p.states {
		b.WriteString(s.String())
	}
	return b.String()
}

// MatchString reports whether the pattern matches anywhere in line.
func (p *Pattern) MatchString(line string) bool {
	_, _, ok := p.find(newInput(line))
	return ok
}

// FindString returns the leftmost match of the pattern in line.
func (p *Pattern) FindString(line string) (Submatch, bool) {
	in := newInput(line)
	start, end, ok := p.find(in)
	if !ok {
		return Submatch{}, false
	}
	return in.submatch(start, end), true
}

// input is a line decoded into runes. Position len(runes) holds the line terminator.
type input struct {
	line  string
	runes []rune
	// byte offset of every rune in line, followed by len(line)
	offs []int
}

func newInput(line string) input {
	in := input{
		line:  line,
		runes: make([]rune, 0, len(line)),
		offs:  make([]int, 0, len(line)+1),
	}
	for i, r := range line {
		in.runes = append(in.runes, r)
		in.offs = append(in.offs, i)
	}
	in.offs = append(in.offs, len(line))
	return in
}

func (in input) at(n int) (rune, bool) {
	switch {
	case n < len(in.runes):
		return in.runes[n], true
	case n == len(in.runes):
		return lineTerminator, true
	}
	return 0, false
}

// submatch converts the rune span [start, end) into a Submatch. The terminator is never part of it.
func (in input) submatch(start, end int) Submatch {
	end = min(end, len(in.runes))
	return Submatch{
		Offset: in.offs[start],
		Str:    in.line[in.offs[start]:in.offs[end]],
	}
}

// test reports whether state i accepts the character at position n.
func (p *Pattern) test(in input, i, n int) bool {
	c, ok := in.at(n)
	return ok && p.states[i].matches(c)
}

// matchAt walks the states against the input starting at offset and returns the
// end of the match. On failure, next is the offset the scan resumes from; it is
// always greater than offset.
func (p *Pattern) matchAt(in input, offset int) (end, next int, ok bool) {
	count := len(p.states)
	next = offset + 1

	// A match can only start where the first state matches if that state is mandatory,
	// so the scan may skip ahead to the first such position seen during this walk.
	jumpable := count > 0 && !p.states[0].Optional
	jumped := false

	i, n := 0, offset
	for i < count && n <= len(in.runes) {
		if jumpable && !jumped && i > 0 && p.test(in, 0, n) {
			next, jumped = n, true
		}

		s := p.states[i]
		switch {
		case p.test(in, i, n):
			// repeatable states keep consuming unless the next state wants the next character
			if !s.Repeatable || (i+1 < count && p.test(in, i+1, n+1)) {
				i++
			}
			n++
		case s.Optional:
			i++
		default:
			return 0, next, false
		}
	}

	if i < count {
		return 0, next, false
	}
	return n, 0, true
}

// find scans the input for the leftmost match and returns its rune span.
func (p *Pattern) find(in input) (start, end int, ok bool) {
	if p.anchored {
		end, _, ok = p.matchAt(in, 0)
		return 0, end, ok
	}

	for offset := 0; offset <= len(in.runes); {
		end, next, ok := p.matchAt(in, offset)
		if ok {
			return offset, end, true
		}
		offset = next
	}
	return 0, 0, false
}
