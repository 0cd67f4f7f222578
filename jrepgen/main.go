package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"

	"github.com/mfroeh/jrep/gen"
	"github.com/mfroeh/jrep/regex"
)

type CLI struct {
	Pattern string `arg:"" name:"pattern" help:"Pattern to generate a matcher for."`
	Package string `default:"main" help:"Package of the generated file."`
	Name    string `default:"Matcher" help:"Name of the generated type."`
	Output  string `short:"o" type:"path" help:"File to write, stdout if empty."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("jrepgen"),
		kong.Description("Generates Go code that matches lines against a jrep pattern."),
		kong.UsageOnError(),
	)
	if err := run(&cli, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "jrepgen: %v\n", err)
		os.Exit(2)
	}
}

func run(cli *CLI, stdout io.Writer) error {
	re, err := regex.Compile(cli.Pattern)
	if err != nil {
		return err
	}

	cfg := gen.Config{Package: cli.Package, Name: cli.Name}
	if cli.Output == "" {
		return gen.Write(re, cfg, stdout)
	}

	// render first so a bad config leaves no file behind
	f, err := gen.Generate(re, cfg)
	if err != nil {
		return err
	}
	return errors.Wrapf(f.Save(cli.Output), "writing %s", cli.Output)
}
