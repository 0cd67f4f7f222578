package search

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
)

// Palette holds the colors used when Options.Color is set.
type Palette struct {
	Match      *color.Color
	Filename   *color.Color
	LineNumber *color.Color
	Separator  *color.Color
}

// DefaultPalette mirrors the colors of GNU grep.
func DefaultPalette() Palette {
	return Palette{
		Match:      color.New(color.FgRed, color.Bold),
		Filename:   color.New(color.FgMagenta),
		LineNumber: color.New(color.FgGreen),
		Separator:  color.New(color.FgCyan),
	}
}

var attributes = map[string]color.Attribute{
	"black":     color.FgBlack,
	"red":       color.FgRed,
	"green":     color.FgGreen,
	"yellow":    color.FgYellow,
	"blue":      color.FgBlue,
	"magenta":   color.FgMagenta,
	"cyan":      color.FgCyan,
	"white":     color.FgWhite,
	"bold":      color.Bold,
	"faint":     color.Faint,
	"italic":    color.Italic,
	"underline": color.Underline,
	"reverse":   color.ReverseVideo,
}

// ParseColor parses a color spec such as "red" or "red+bold".
// An empty spec returns fallback.
func ParseColor(spec string, fallback *color.Color) (*color.Color, error) {
	if strings.TrimSpace(spec) == "" {
		return fallback, nil
	}

	var attrs []color.Attribute
	for _, name := range strings.Split(spec, "+") {
		attr, ok := attributes[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, errors.Newf("unknown color %q in %q", name, spec)
		}
		attrs = append(attrs, attr)
	}
	return color.New(attrs...), nil
}

// NewPalette builds a palette from color specs, using the defaults for empty specs.
func NewPalette(match, filename, lineNumber, separator string) (Palette, error) {
	p := DefaultPalette()
	var err error
	if p.Match, err = ParseColor(match, p.Match); err != nil {
		return Palette{}, errors.Wrap(err, "match color")
	}
	if p.Filename, err = ParseColor(filename, p.Filename); err != nil {
		return Palette{}, errors.Wrap(err, "filename color")
	}
	if p.LineNumber, err = ParseColor(lineNumber, p.LineNumber); err != nil {
		return Palette{}, errors.Wrap(err, "line number color")
	}
	if p.Separator, err = ParseColor(separator, p.Separator); err != nil {
		return Palette{}, errors.Wrap(err, "separator color")
	}
	return p, nil
}

func (p Palette) withDefaults() Palette {
	defaults := DefaultPalette()
	if p.Match == nil {
		p.Match = defaults.Match
	}
	if p.Filename == nil {
		p.Filename = defaults.Filename
	}
	if p.LineNumber == nil {
		p.LineNumber = defaults.LineNumber
	}
	if p.Separator == nil {
		p.Separator = defaults.Separator
	}
	return p
}

func (p Palette) colors() []*color.Color {
	return []*color.Color{p.Match, p.Filename, p.LineNumber, p.Separator}
}
