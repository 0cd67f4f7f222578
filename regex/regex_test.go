package regex

import (
	"regexp"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
)

func TestFind(t *testing.T) {
	type match struct {
		Found    bool
		Submatch Submatch
	}

	tests := map[string]struct {
		givenRe   string
		givenLine string
		want      match
	}{
		"happy full line": {
			givenRe:   "^hello$",
			givenLine: "hello",
			want:      match{true, Submatch{Offset: 0, Str: "hello"}},
		},
		"happy first maximal run": {
			givenRe:   "[a-z]+",
			givenLine: "ab3cd",
			want:      match{true, Submatch{Offset: 0, Str: "ab"}},
		},
		"happy dot star on empty line": {
			givenRe:   ".*",
			givenLine: "",
			want:      match{true, Submatch{Offset: 0, Str: ""}},
		},
		"happy optional absent": {
			givenRe:   "ab?c",
			givenLine: "ac",
			want:      match{true, Submatch{Offset: 0, Str: "ac"}},
		},
		"happy optional present": {
			givenRe:   "ab?c",
			givenLine: "abc",
			want:      match{true, Submatch{Offset: 0, Str: "abc"}},
		},
		"sad optional twice": {
			givenRe:   "ab?c",
			givenLine: "abbc",
		},
		"happy alternation": {
			givenRe:   "x|y|z",
			givenLine: "banana y",
			want:      match{true, Submatch{Offset: 7, Str: "y"}},
		},
		"happy first alternative wins over leftmost": {
			givenRe:   "na|ba",
			givenLine: "banana",
			want:      match{true, Submatch{Offset: 2, Str: "na"}},
		},
		"happy star matches nothing": {
			givenRe:   "a*",
			givenLine: "bbb",
			want:      match{true, Submatch{Offset: 0, Str: ""}},
		},
		"happy star run": {
			givenRe:   "ba*",
			givenLine: "xbaaac",
			want:      match{true, Submatch{Offset: 1, Str: "baaa"}},
		},
		"happy dot": {
			givenRe:   "a.c",
			givenLine: "xxabcx",
			want:      match{true, Submatch{Offset: 2, Str: "abc"}},
		},
		"happy optional letter": {
			givenRe:   "colou?r",
			givenLine: "color colour",
			want:      match{true, Submatch{Offset: 0, Str: "color"}},
		},
		"happy digits at end of line": {
			givenRe:   "[0-9]+$",
			givenLine: "abc 123",
			want:      match{true, Submatch{Offset: 4, Str: "123"}},
		},
		"sad digits not at end of line": {
			givenRe:   "[0-9]+$",
			givenLine: "123 abc",
		},
		"sad anchored": {
			givenRe:   "^abc",
			givenLine: "xabc",
		},
		"happy retries after a partial match": {
			givenRe:   "abc$",
			givenLine: "abcabc",
			want:      match{true, Submatch{Offset: 3, Str: "abc"}},
		},
		"happy eol alone": {
			givenRe:   "$",
			givenLine: "abc",
			want:      match{true, Submatch{Offset: 3, Str: ""}},
		},
		"happy empty line": {
			givenRe:   "^$",
			givenLine: "",
			want:      match{true, Submatch{Offset: 0, Str: ""}},
		},
		"sad empty line only": {
			givenRe:   "^$",
			givenLine: "a",
		},
		"happy empty alternative": {
			givenRe:   "a|",
			givenLine: "zzz",
			want:      match{true, Submatch{Offset: 0, Str: ""}},
		},
		"happy escaped separator": {
			givenRe:   `\|`,
			givenLine: "a|b",
			want:      match{true, Submatch{Offset: 1, Str: "|"}},
		},
		"happy escaped plus": {
			givenRe:   `a\+`,
			givenLine: "aa+",
			want:      match{true, Submatch{Offset: 1, Str: "a+"}},
		},
		"happy unicode range": {
			givenRe:   "[α-ω]+",
			givenLine: "abc λμ",
			want:      match{true, Submatch{Offset: 4, Str: "λμ"}},
		},
		"happy repeatable yields to the next state": {
			givenRe:   "a*ab",
			givenLine: "aaab",
			want:      match{true, Submatch{Offset: 1, Str: "aab"}},
		},
		"happy dot star runs to end of line": {
			givenRe:   ".*",
			givenLine: "abc",
			want:      match{true, Submatch{Offset: 0, Str: "abc"}},
		},
		"happy dot star stops before the last state": {
			givenRe:   "a.*b",
			givenLine: "abxb",
			want:      match{true, Submatch{Offset: 0, Str: "abxb"}},
		},
		"happy literal": {
			givenRe:   "needle",
			givenLine: "haystack with a needle in it",
			want:      match{true, Submatch{Offset: 16, Str: "needle"}},
		},
		"sad literal": {
			givenRe:   "needle",
			givenLine: "haystack with a needl in it",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// given
			re, err := Compile(tt.givenRe)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// when
			sm, found := re.Find(tt.givenLine)

			// then
			if d := cmp.Diff(tt.want, match{found, sm}); d != "" {
				t.Errorf("got diff (-want +got):\n%s", d)
			}
			if d := cmp.Diff(tt.want.Found, re.Match(tt.givenLine)); d != "" {
				t.Errorf("Match disagrees with Find (-want +got):\n%s", d)
			}
		})
	}
}

func TestQuantifiers(t *testing.T) {
	tests := map[string]struct {
		givenRe   string
		wantMatch []string
		wantMiss  []string
	}{
		"question mark": {
			givenRe:   "^a?$",
			wantMatch: []string{"", "a"},
			wantMiss:  []string{"aa", "b"},
		},
		"star": {
			givenRe:   "^a*$",
			wantMatch: []string{"", "a", "aa", "aaaaaa"},
			wantMiss:  []string{"ab", "b"},
		},
		"plus": {
			givenRe:   "^a+$",
			wantMatch: []string{"a", "aa", "aaaaaa"},
			wantMiss:  []string{"", "ab", "b"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			re := MustCompile(tt.givenRe)
			for _, s := range tt.wantMatch {
				if !re.Match(s) {
					t.Errorf("expected %q to match %q", tt.givenRe, s)
				}
			}
			for _, s := range tt.wantMiss {
				if re.Match(s) {
					t.Errorf("expected %q not to match %q", tt.givenRe, s)
				}
			}
		})
	}
}

// compares against the standard library for the part of the dialect where both agree
func TestFindLikeStdlib(t *testing.T) {
	tests := map[string]struct {
		givenStrings []string
		givenRe      string
	}{
		"literal": {
			givenRe:      "ana",
			givenStrings: []string{"banana", "ana", "an", "", "bananas and ananas"},
		},
		"anchored literal": {
			givenRe:      "^ban",
			givenStrings: []string{"banana", "a banana", "ban", ""},
		},
		"literal at end": {
			givenRe:      "na$",
			givenStrings: []string{"banana", "nana!", "na", "n"},
		},
		"ranges": {
			givenRe:      "[0-9][a-f][0-9]",
			givenStrings: []string{"0xdeadbeef", "a1b2c3", "1a1", "1g1", "9f9 0a0"},
		},
		"dots": {
			givenRe:      "a..b",
			givenStrings: []string{"a12b", "ab", "a1b", "xxa  bxx", "aaab", "aaaab"},
		},
		"escapes": {
			givenRe:      `\[\.\]\*`,
			givenStrings: []string{"[.]*", "x[.]*y", "[a]*", "[.]"},
		},
		"full line": {
			givenRe:      "^[A-Z]..$",
			givenStrings: []string{"Abc", "abc", "Ab", "Abcd", "A\tb"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// given
			re, err := Compile(tt.givenRe)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := regexp.MustCompile(tt.givenRe)

			for _, s := range tt.givenStrings {
				// when
				sm, found := re.Find(s)

				// then
				loc := want.FindStringIndex(s)
				if d := cmp.Diff(loc != nil, found); d != "" {
					t.Fatalf("%q on %q: got diff (-want +got):\n%s", tt.givenRe, s, d)
				}
				if loc == nil {
					continue
				}
				if d := cmp.Diff(Submatch{Offset: loc[0], Str: s[loc[0]:loc[1]]}, sm); d != "" {
					t.Errorf("%q on %q: got diff (-want +got):\n%s", tt.givenRe, s, d)
				}
			}
		})
	}
}

func TestLiteralIsSubstring(t *testing.T) {
	lines := []string{
		"",
		"a",
		"aaaa",
		"abababab",
		"mississippi",
		"the quick brown fox jumps over the lazy dog",
		"ünïcödé text",
	}
	patterns := []string{"a", "aa", "aab", "abab", "issip", "ssi", "ppi", "fox ", "dog", "cat", "ïcö", "é t", " "}

	for _, p := range patterns {
		re := MustCompile(p)
		for _, line := range lines {
			if d := cmp.Diff(strings.Contains(line, p), re.Match(line)); d != "" {
				t.Errorf("%q on %q: got diff (-want +got):\n%s", p, line, d)
			}

			// the walk must agree with the prefilter
			got := re.patterns[0].MatchString(line)
			if d := cmp.Diff(strings.Contains(line, p), got); d != "" {
				t.Errorf("%q on %q without prefilter: got diff (-want +got):\n%s", p, line, d)
			}
		}
	}
}

func TestRangeBounds(t *testing.T) {
	re := MustCompile("^[d-m]$")
	for c := rune(0x20); c < 0x7f; c++ {
		want := c >= 'd' && c <= 'm'
		if d := cmp.Diff(want, re.Match(string(c))); d != "" {
			t.Errorf("%q: got diff (-want +got):\n%s", c, d)
		}
	}
}

func TestEscapedMetaCharacters(t *testing.T) {
	for _, c := range metaChars {
		re := MustCompile(`\` + string(c))

		if !re.Match(string(c)) {
			t.Errorf(`\%c does not match %q`, c, string(c))
		}
		if re.Match("x") {
			t.Errorf(`\%c matches "x"`, c)
		}
		for _, other := range metaChars {
			if other != c && re.Match(string(other)) {
				t.Errorf(`\%c matches %q`, c, string(other))
			}
		}
	}
}

func TestAlternationIsOr(t *testing.T) {
	alternatives := []string{"ab", "^x", "[0-9]+$", "c.d", "e?f", ""}
	lines := []string{"", "ab", "xab", "x", "a1", "abc 1", "cxd", "f", "ef", "zzz"}

	for _, a := range alternatives {
		for _, b := range alternatives {
			re := MustCompile(a + "|" + b)
			reA, reB := MustCompile(a), MustCompile(b)
			for _, line := range lines {
				want := reA.Match(line) || reB.Match(line)
				if d := cmp.Diff(want, re.Match(line)); d != "" {
					t.Errorf("%q on %q: got diff (-want +got):\n%s", re, line, d)
				}
			}
		}
	}
}

func TestSplitAlternatives(t *testing.T) {
	tests := map[string]struct {
		givenRe string
		want    []string
	}{
		"single":                {givenRe: "abc", want: []string{"abc"}},
		"several":               {givenRe: "a|b|c", want: []string{"a", "b", "c"}},
		"escaped separator":     {givenRe: `a\|b`, want: []string{`a\|b`}},
		"escaped backslash":     {givenRe: `a\\|b`, want: []string{`a\\`, "b"}},
		"separator in a range":  {givenRe: "[|-~]|x", want: []string{"[|-~]", "x"}},
		"empty":                 {givenRe: "", want: []string{""}},
		"empty last":            {givenRe: "a|", want: []string{"a", ""}},
		"backslash in a range":  {givenRe: `[\-|]|y`, want: []string{`[\-|]`, "y"}},
		"trailing backslash":    {givenRe: `a|\`, want: []string{"a", `\`}},
		"unicode next to a bar": {givenRe: "é|ü", want: []string{"é", "ü"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if d := cmp.Diff(tt.want, splitAlternatives(tt.givenRe)); d != "" {
				t.Errorf("got diff (-want +got):\n%s", d)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := map[string]struct {
		givenRe     string
		wantErr     error
		wantMessage string
	}{
		"malformed range": {
			givenRe:     "[a-",
			wantErr:     ErrMalformedRange,
			wantMessage: `parser error at 0: malformed range: "[a-"`,
		},
		"second alternative": {
			givenRe:     "a|[z-a]",
			wantErr:     ErrInvertedRange,
			wantMessage: `alternative 2 ("[z-a]"): parser error at 0: upper bound of range is less than its lower bound: "[z-a]"`,
		},
		"escaped separator before the error": {
			givenRe:     "a\\|b|c\\",
			wantErr:     ErrTrailingEscape,
			wantMessage: `alternative 2 ("c\\"): parser error at 1: trailing \: "\\"`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// when
			re, err := Compile(tt.givenRe)

			// then
			if re != nil {
				t.Errorf("expected no regex, got %v", re)
			}
			if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrSyntax) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if d := cmp.Diff(tt.wantMessage, err.Error()); d != "" {
				t.Errorf("got diff (-want +got):\n%s", d)
			}
		})
	}
}

func TestLiteralPrefilter(t *testing.T) {
	tests := map[string]struct {
		givenRe string
		want    bool
	}{
		"literals":            {givenRe: "foo|bar|baz", want: true},
		"escaped literal":     {givenRe: `a\.b`, want: true},
		"quantifier":          {givenRe: "foo|ba+r"},
		"anchor":              {givenRe: "^foo|bar"},
		"eol":                 {givenRe: "foo$"},
		"range":               {givenRe: "[a-z]"},
		"empty alternative":   {givenRe: "foo|"},
		"replacement rune":    {givenRe: "�"},
		"any":                 {givenRe: "f.o"},
		"unicode is accepted": {givenRe: "smörgås|λ", want: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			re := MustCompile(tt.givenRe)
			if d := cmp.Diff(tt.want, re.literals != nil); d != "" {
				t.Errorf("got diff (-want +got):\n%s", d)
			}
		})
	}

	re := MustCompile("foo|bar|smörgås")
	for _, line := range []string{"", "fo", "xbarx", "a foo", "smörgåsbord", "smorgas", "ba r"} {
		want := false
		for _, p := range re.Patterns() {
			want = want || p.MatchString(line)
		}
		if d := cmp.Diff(want, re.Match(line)); d != "" {
			t.Errorf("%q: got diff (-want +got):\n%s", line, d)
		}
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic")
		}
	}()
	MustCompile("[")
}
