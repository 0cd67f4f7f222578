// Package gen generates Go source code that matches lines the same way a compiled regex.Regex does.
package gen

import (
	"fmt"
	"go/token"
	"io"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"

	"github.com/mfroeh/jrep/regex"
)

// Config holds the configuration for code generation.
type Config struct {
	Package string
	// Name of the generated type, must be exported
	Name string
}

func (c Config) validate() error {
	if !token.IsIdentifier(c.Package) {
		return errors.Newf("invalid package name %q", c.Package)
	}
	if !token.IsIdentifier(c.Name) || !token.IsExported(c.Name) {
		return errors.Newf("invalid type name %q, must be an exported identifier", c.Name)
	}
	return nil
}

type generator struct {
	cfg    Config
	file   *jen.File
	prefix string
}

func (g *generator) id(name string) string {
	return g.prefix + name
}

// Generate builds the Go file for re.
func Generate(re *regex.Regex, cfg Config) (*jen.File, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	g := &generator{
		cfg:    cfg,
		file:   jen.NewFile(cfg.Package),
		prefix: unexported(cfg.Name),
	}

	g.file.HeaderComment(fmt.Sprintf("Code generated by jrepgen for pattern: %q. DO NOT EDIT.", re.String()))

	g.file.Comment(fmt.Sprintf("%s matches lines against %q.", cfg.Name, re.String()))
	g.file.Type().Id(cfg.Name).Struct()
	g.file.Line()
	g.file.Var().Id("Compiled" + cfg.Name).Op("=").Id(cfg.Name).Values()
	g.file.Line()

	g.generateAlternativeType()
	g.generateAt()
	g.generateMatchAt()
	g.generateFind()

	alts := make([]jen.Code, 0, len(re.Patterns()))
	for k, p := range re.Patterns() {
		g.generateTest(k, p)
		alts = append(alts, g.alternativeValue(k, p))
	}
	g.file.Var().Id(g.id("Alternatives")).Op("=").Index().Id(g.id("Alternative")).Values(alts...)
	g.file.Line()

	g.generateMatchString()
	g.generateDecode()
	g.generateFindString()
	return g.file, nil
}

func unexported(name string) string {
	r := []rune(name)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// Write renders the generated file for re to w.
func Write(re *regex.Regex, cfg Config, w io.Writer) error {
	f, err := Generate(re, cfg)
	if err != nil {
		return err
	}
	return errors.Wrap(f.Render(w), "rendering generated code")
}

func (g *generator) generateAlternativeType() {
	g.file.Type().Id(g.id("Alternative")).Struct(
		jen.Id("test").Func().Params(jen.Int(), jen.Index().Rune(), jen.Int()).Bool(),
		jen.Id("optional").Index().Bool(),
		jen.Id("repeatable").Index().Bool(),
		jen.Id("anchored").Bool(),
	)
	g.file.Line()
}

// the position just past the line holds the terminator
func (g *generator) generateAt() {
	g.file.Func().Id(g.id("At")).
		Params(jen.Id("line").Index().Rune(), jen.Id("n").Int()).
		Params(jen.Rune(), jen.Bool()).
		Block(
			jen.Switch().Block(
				jen.Case(jen.Id("n").Op("<").Len(jen.Id("line"))).Block(
					jen.Return(jen.Id("line").Index(jen.Id("n")), jen.True()),
				),
				jen.Case(jen.Id("n").Op("==").Len(jen.Id("line"))).Block(
					jen.Return(jen.LitRune('\n'), jen.True()),
				),
			),
			jen.Return(jen.Lit(0), jen.False()),
		)
	g.file.Line()
}

func (g *generator) generateMatchAt() {
	test := func(i, n jen.Code) *jen.Statement {
		return jen.Id("a").Dot("test").Call(i, jen.Id("line"), n)
	}

	g.file.Func().Params(jen.Id("a").Id(g.id("Alternative"))).Id("matchAt").
		Params(jen.Id("line").Index().Rune(), jen.Id("offset").Int()).
		Params(jen.Int(), jen.Int(), jen.Bool()).
		Block(
			jen.Id("count").Op(":=").Len(jen.Id("a").Dot("optional")),
			jen.Id("next").Op(":=").Id("offset").Op("+").Lit(1),
			jen.Id("jumpable").Op(":=").Id("count").Op(">").Lit(0).Op("&&").Op("!").Id("a").Dot("optional").Index(jen.Lit(0)),
			jen.Id("jumped").Op(":=").False(),
			jen.Line(),
			jen.List(jen.Id("i"), jen.Id("n")).Op(":=").List(jen.Lit(0), jen.Id("offset")),
			jen.For(jen.Id("i").Op("<").Id("count").Op("&&").Id("n").Op("<=").Len(jen.Id("line"))).Block(
				jen.If(
					jen.Id("jumpable").Op("&&").Op("!").Id("jumped").Op("&&").Id("i").Op(">").Lit(0).
						Op("&&").Add(test(jen.Lit(0), jen.Id("n"))),
				).Block(
					jen.List(jen.Id("next"), jen.Id("jumped")).Op("=").List(jen.Id("n"), jen.True()),
				),
				jen.Switch().Block(
					jen.Case(test(jen.Id("i"), jen.Id("n"))).Block(
						jen.If(
							jen.Op("!").Id("a").Dot("repeatable").Index(jen.Id("i")).Op("||").Parens(
								jen.Id("i").Op("+").Lit(1).Op("<").Id("count").
									Op("&&").Add(test(jen.Id("i").Op("+").Lit(1), jen.Id("n").Op("+").Lit(1))),
							),
						).Block(
							jen.Id("i").Op("++"),
						),
						jen.Id("n").Op("++"),
					),
					jen.Case(jen.Id("a").Dot("optional").Index(jen.Id("i"))).Block(
						jen.Id("i").Op("++"),
					),
					jen.Default().Block(
						jen.Return(jen.Lit(0), jen.Id("next"), jen.False()),
					),
				),
			),
			jen.If(jen.Id("i").Op("<").Id("count")).Block(
				jen.Return(jen.Lit(0), jen.Id("next"), jen.False()),
			),
			jen.Return(jen.Id("n"), jen.Lit(0), jen.True()),
		)
	g.file.Line()
}

func (g *generator) generateFind() {
	g.file.Func().Params(jen.Id("a").Id(g.id("Alternative"))).Id("find").
		Params(jen.Id("line").Index().Rune()).
		Params(jen.Int(), jen.Int(), jen.Bool()).
		Block(
			jen.If(jen.Id("a").Dot("anchored")).Block(
				jen.List(jen.Id("end"), jen.Id("_"), jen.Id("ok")).Op(":=").Id("a").Dot("matchAt").Call(jen.Id("line"), jen.Lit(0)),
				jen.Return(jen.Lit(0), jen.Id("end"), jen.Id("ok")),
			),
			jen.For(
				jen.Id("offset").Op(":=").Lit(0),
				jen.Id("offset").Op("<=").Len(jen.Id("line")),
				jen.Empty(),
			).Block(
				jen.List(jen.Id("end"), jen.Id("next"), jen.Id("ok")).Op(":=").Id("a").Dot("matchAt").Call(jen.Id("line"), jen.Id("offset")),
				jen.If(jen.Id("ok")).Block(
					jen.Return(jen.Id("offset"), jen.Id("end"), jen.True()),
				),
				jen.Id("offset").Op("=").Id("next"),
			),
			jen.Return(jen.Lit(0), jen.Lit(0), jen.False()),
		)
	g.file.Line()
}

// generateTest unrolls the character test of every state of alternative k into a switch.
func (g *generator) generateTest(k int, p *regex.Pattern) {
	params := []jen.Code{jen.Id("i").Int(), jen.Id("line").Index().Rune(), jen.Id("n").Int()}
	g.file.Comment(fmt.Sprintf("%s tests the states of %q.", g.testName(k), p.String()))
	fn := g.file.Func().Id(g.testName(k)).Params(params...).Bool()

	states := p.States()
	if len(states) == 0 {
		fn.Block(jen.Return(jen.False()))
		g.file.Line()
		return
	}

	cases := make([]jen.Code, 0, len(states))
	for i, s := range states {
		cases = append(cases, jen.Case(jen.Lit(i)).Block(jen.Return(condition(s))))
	}
	fn.Block(
		jen.List(jen.Id("c"), jen.Id("ok")).Op(":=").Id(g.id("At")).Call(jen.Id("line"), jen.Id("n")),
		jen.If(jen.Op("!").Id("ok")).Block(jen.Return(jen.False())),
		jen.Switch(jen.Id("i")).Block(cases...),
		jen.Return(jen.False()),
	)
	g.file.Line()
}

func (g *generator) testName(k int) string {
	return g.id(fmt.Sprintf("Test%d", k))
}

func condition(s regex.State) jen.Code {
	c := jen.Id("c")
	switch s.Kind {
	case regex.Literal:
		return c.Op("==").LitRune(s.Value)
	case regex.EndOfLine:
		return c.Op("==").LitRune('\n')
	case regex.Range:
		return c.Op(">=").LitRune(s.Lower).Op("&&").Id("c").Op("<=").LitRune(s.Upper)
	case regex.Any:
		return c.Op("!=").LitRune('\n')
	}
	return jen.False()
}

func (g *generator) alternativeValue(k int, p *regex.Pattern) jen.Code {
	var optional, repeatable []jen.Code
	for _, s := range p.States() {
		optional = append(optional, jen.Lit(s.Optional))
		repeatable = append(repeatable, jen.Lit(s.Repeatable))
	}
	return jen.Values(jen.Dict{
		jen.Id("test"):       jen.Id(g.testName(k)),
		jen.Id("optional"):   jen.Index().Bool().Values(optional...),
		jen.Id("repeatable"): jen.Index().Bool().Values(repeatable...),
		jen.Id("anchored"):   jen.Lit(p.Anchored()),
	})
}

func (g *generator) generateMatchString() {
	g.file.Comment("MatchString reports whether any alternative matches line.")
	g.file.Func().Params(jen.Id(g.cfg.Name)).Id("MatchString").
		Params(jen.Id("line").String()).
		Bool().
		Block(
			jen.Id("runes").Op(":=").Index().Rune().Call(jen.Id("line")),
			jen.For(jen.List(jen.Id("_"), jen.Id("a")).Op(":=").Range().Id(g.id("Alternatives"))).Block(
				jen.If(
					jen.List(jen.Id("_"), jen.Id("_"), jen.Id("ok")).Op(":=").Id("a").Dot("find").Call(jen.Id("runes")),
					jen.Id("ok"),
				).Block(jen.Return(jen.True())),
			),
			jen.Return(jen.False()),
		)
	g.file.Line()
}

// generateDecode emits the rune decoding of a line together with the byte offset of every rune,
// so matched text is cut from the line itself and invalid bytes come back unchanged.
func (g *generator) generateDecode() {
	g.file.Func().Id(g.id("Decode")).
		Params(jen.Id("line").String()).
		Params(jen.Index().Rune(), jen.Index().Int()).
		Block(
			jen.Id("runes").Op(":=").Make(jen.Index().Rune(), jen.Lit(0), jen.Len(jen.Id("line"))),
			jen.Id("offs").Op(":=").Make(jen.Index().Int(), jen.Lit(0), jen.Len(jen.Id("line")).Op("+").Lit(1)),
			jen.For(jen.List(jen.Id("i"), jen.Id("r")).Op(":=").Range().Id("line")).Block(
				jen.Id("runes").Op("=").Append(jen.Id("runes"), jen.Id("r")),
				jen.Id("offs").Op("=").Append(jen.Id("offs"), jen.Id("i")),
			),
			jen.Return(jen.Id("runes"), jen.Append(jen.Id("offs"), jen.Len(jen.Id("line")))),
		)
	g.file.Line()
}

func (g *generator) generateFindString() {
	g.file.Comment("FindString returns the text matched by the first alternative that matches line.")
	g.file.Func().Params(jen.Id(g.cfg.Name)).Id("FindString").
		Params(jen.Id("line").String()).
		Params(jen.String(), jen.Bool()).
		Block(
			jen.List(jen.Id("runes"), jen.Id("offs")).Op(":=").Id(g.id("Decode")).Call(jen.Id("line")),
			jen.For(jen.List(jen.Id("_"), jen.Id("a")).Op(":=").Range().Id(g.id("Alternatives"))).Block(
				jen.If(
					jen.List(jen.Id("start"), jen.Id("end"), jen.Id("ok")).Op(":=").Id("a").Dot("find").Call(jen.Id("runes")),
					jen.Id("ok"),
				).Block(
					jen.Id("end").Op("=").Id("min").Call(jen.Id("end"), jen.Len(jen.Id("runes"))),
					jen.Return(
						jen.Id("line").Index(jen.Id("offs").Index(jen.Id("start")).Op(":").Id("offs").Index(jen.Id("end"))),
						jen.True(),
					),
				),
			),
			jen.Return(jen.Lit(""), jen.False()),
		)
}
