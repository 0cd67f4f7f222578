package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

const relPath = "jrep/config.toml"

type Config struct {
	Output OutputConfig `toml:"output"`
	Colors ColorConfig  `toml:"colors"`
	Log    LogConfig    `toml:"log"`
}

type OutputConfig struct {
	Color        string `toml:"color"` // "auto", "always" or "never"
	LineNumber   bool   `toml:"line_number"`
	WithFilename bool   `toml:"with_filename"`
}

type ColorConfig struct {
	Match      string `toml:"match"`
	Filename   string `toml:"filename"`
	LineNumber string `toml:"line_number"`
	Separator  string `toml:"separator"`
}

type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Color: "auto",
		},
		Colors: ColorConfig{
			Match:      "red+bold",
			Filename:   "magenta",
			LineNumber: "green",
			Separator:  "cyan",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// DefaultPath returns the config file in the XDG config directories, or "" if there is none.
func DefaultPath() string {
	path, err := xdg.SearchConfigFile(relPath)
	if err != nil {
		return ""
	}
	return path
}

// Load reads the config at path on top of the defaults.
// A missing file is not an error, a malformed one is.
func Load(path string) (*Config, error) {
	config := NewDefaultConfig()
	if path == "" {
		return config, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil // no config file, return defaults
	}

	md, err := toml.DecodeFile(filepath.Clean(path), config)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode TOML config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Newf("unknown key %q in config %s", undecoded[0].String(), path)
	}

	switch config.Output.Color {
	case "auto", "always", "never":
	default:
		return nil, errors.Newf("invalid output.color %q in config %s", config.Output.Color, path)
	}
	return config, nil
}
