package regex

import (
	"strings"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"
)

// buildLiteralPrefilter builds an Aho-Corasick automaton over the alternatives
// if all of them are plain literals. A line contains one of the literals iff
// the walk would match it, so the automaton can answer Match on its own.
func buildLiteralPrefilter(patterns []*Pattern) *ahocorasick.Automaton {
	builder := ahocorasick.NewBuilder()
	for _, p := range patterns {
		lit, ok := p.literal()
		if !ok {
			return nil
		}
		builder.AddPattern([]byte(lit))
	}

	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return auto
}

// literal returns the text matched by p if p consists of mandatory literal states only.
func (p *Pattern) literal() (string, bool) {
	if p.anchored || len(p.states) == 0 {
		return "", false
	}

	b := strings.Builder{}
	for _, s := range p.states {
		// the terminator and replacement characters don't survive the byte search
		if s.Kind != Literal || s.Optional || s.Value == lineTerminator || s.Value == utf8.RuneError {
			return "", false
		}
		b.WriteRune(s.Value)
	}
	return b.String(), true
}
