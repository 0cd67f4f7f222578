package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/mfroeh/jrep/internal/config"
	"github.com/mfroeh/jrep/internal/logger"
	"github.com/mfroeh/jrep/regex"
	"github.com/mfroeh/jrep/search"
)

const version = "jrep 1.0.0"

const (
	exitSelected = 0
	exitNone     = 1
	exitError    = 2
)

type CLI struct {
	Pattern string   `arg:"" name:"pattern" help:"Pattern to search for, alternatives separated by |."`
	Paths   []string `arg:"" optional:"" name:"path" help:"Files to search, - for standard input."`

	Count        bool   `short:"c" help:"Print only a count of selected lines per file."`
	WithFilename bool   `short:"H" name:"with-filename" help:"Print the file name for each match."`
	LineNumber   bool   `short:"n" name:"line-number" help:"Prefix each line with its line number."`
	OnlyMatching bool   `short:"o" name:"only-matching" help:"Print only the matched part of a line."`
	InvertMatch  bool   `short:"v" name:"invert-match" help:"Select non-matching lines."`
	Recursive    bool   `short:"r" help:"Search directories recursively."`
	Color        string `placeholder:"WHEN" help:"Colorize output: auto, always or never."`
	Config       string `type:"path" help:"Config file to use instead of the XDG one."`
	LogFile      string `name:"log-file" type:"path" help:"Write logs to this file."`
	LogLevel     string `name:"log-level" help:"Log level: debug, info, warn or error."`

	Version kong.VersionFlag `short:"V" help:"Print version information and quit."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("jrep"),
		kong.Description("Prints lines matching a pattern."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	os.Exit(run(&cli, os.Stdout, os.Stderr))
}

func run(cli *CLI, stdout, stderr io.Writer) int {
	fail := func(err error) int {
		fmt.Fprintf(stderr, "jrep: %v\n", err)
		return exitError
	}

	configPath := cli.Config
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fail(err)
	}
	if err := cli.merge(cfg); err != nil {
		return fail(err)
	}

	log, err := logger.New(cfg.Log.File, cfg.Log.Level, stderr)
	if err != nil {
		return fail(err)
	}
	defer log.Sync() // nolint: errcheck

	re, err := regex.Compile(cli.Pattern)
	if err != nil {
		return fail(err)
	}
	for i, p := range re.Patterns() {
		log.Debug("compiled alternative",
			zap.Int("index", i),
			zap.String("pattern", p.String()),
			zap.Int("states", p.Len()),
			zap.Bool("anchored", p.Anchored()))
	}

	palette, err := search.NewPalette(cfg.Colors.Match, cfg.Colors.Filename, cfg.Colors.LineNumber, cfg.Colors.Separator)
	if err != nil {
		return fail(errors.Wrap(err, "invalid color in config"))
	}

	paths := cli.Paths
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	opts := search.Options{
		Invert:       cli.InvertMatch,
		Count:        cli.Count,
		LineNumbers:  cfg.Output.LineNumber,
		WithFilename: cfg.Output.WithFilename || len(paths) > 1 || cli.Recursive,
		OnlyMatching: cli.OnlyMatching,
		Color:        useColor(cfg.Output.Color, stdout),
		Palette:      palette,
	}
	s := search.New(re, stdout, opts, log)

	var total search.Stats
	failed := false
	for _, path := range paths {
		st, err := s.SearchPath(path, cli.Recursive)
		total.Add(st)
		if err != nil {
			fmt.Fprintf(stderr, "jrep: %s: %v\n", path, err)
			failed = true
		}
	}
	log.Debug("search finished",
		zap.Int("inputs", len(paths)),
		zap.Int("lines", total.Lines),
		zap.Int("selected", total.Selected))

	switch {
	case failed:
		return exitError
	case total.Selected > 0:
		return exitSelected
	default:
		return exitNone
	}
}

// merge applies the command line on top of cfg.
func (cli *CLI) merge(cfg *config.Config) error {
	cfg.Output.LineNumber = cfg.Output.LineNumber || cli.LineNumber
	cfg.Output.WithFilename = cfg.Output.WithFilename || cli.WithFilename
	switch cli.Color {
	case "":
	case "auto", "always", "never":
		cfg.Output.Color = cli.Color
	default:
		return errors.Newf("invalid --color %q, want auto, always or never", cli.Color)
	}
	if cli.LogFile != "" {
		cfg.Log.File = cli.LogFile
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	return nil
}

func useColor(mode string, out io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
