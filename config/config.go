/*
Package config reads the TOML configuration of the textable command.

A configuration file looks like this; every key is optional.

	[latex]
	borders = true
	bold_headers = false
	align = "left"
	class = "article"
	caption_level = 0

	[tables]
	pad = false

	[recovery]
	strategy = "strict"

	[trace]
	level = "Info"
*/
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/naoina/toml"
	"github.com/npillmayer/schuko/tracing"

	"github.com/wudi/texport/latex"
	"github.com/wudi/texport/recovery"
	"github.com/wudi/texport/tables"
)

type Config struct {
	LaTeX    LaTeX    `toml:"latex"`
	Tables   Tables   `toml:"tables"`
	Recovery Recovery `toml:"recovery"`
	Trace    Trace    `toml:"trace"`
}

type LaTeX struct {
	Borders      bool   `toml:"borders"`
	BoldHeaders  bool   `toml:"bold_headers"`
	Align        string `toml:"align"`
	Class        string `toml:"class"`         // document class for standalone output
	CaptionLevel int    `toml:"caption_level"` // 0 writes captions as comments
}

type Tables struct {
	Pad bool `toml:"pad"`
}

type Recovery struct {
	Strategy string `toml:"strategy"` // strict, lenient or skip
}

type Trace struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LaTeX:    LaTeX{Borders: true, Align: "left", Class: "article"},
		Recovery: Recovery{Strategy: "strict"},
		Trace:    Trace{Level: "Info"},
	}
}

// Load reads the configuration file at path on top of the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	conf, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return conf, nil
}

// Decode reads a configuration on top of the defaults and validates it.
func Decode(r io.Reader) (Config, error) {
	conf := Default()
	if err := toml.NewDecoder(r).Decode(&conf); err != nil {
		return Config{}, err
	}
	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

// Validate checks the values that are not free-form.
func (c Config) Validate() error {
	if c.LaTeX.Align != "" && tables.ParseAlign(c.LaTeX.Align) == tables.AlignUnspecified {
		return fmt.Errorf("latex.align: unknown alignment %q", c.LaTeX.Align)
	}
	if c.LaTeX.CaptionLevel < 0 {
		return fmt.Errorf("latex.caption_level: negative level %d", c.LaTeX.CaptionLevel)
	}
	if c.LaTeX.CaptionLevel == 2 && !latex.HasChapters(c.LaTeX.Class) {
		return fmt.Errorf("latex.caption_level: class %q has no \\chapter", c.LaTeX.Class)
	}
	if _, err := recovery.ByName(c.Recovery.Strategy); err != nil {
		return fmt.Errorf("recovery.strategy: %w", err)
	}
	if _, err := c.Trace.TraceLevel(); err != nil {
		return fmt.Errorf("trace.level: %w", err)
	}
	return nil
}

// TraceLevel maps the level name to a schuko trace level.
func (t Trace) TraceLevel() (tracing.TraceLevel, error) {
	switch t.Level {
	case "Debug":
		return tracing.LevelDebug, nil
	case "", "Info":
		return tracing.LevelInfo, nil
	case "Error":
		return tracing.LevelError, nil
	}
	return tracing.LevelError, fmt.Errorf("invalid trace level %q, want Debug, Info or Error", t.Level)
}

// TabularOptions translates the [latex] section into tabular writer options.
func (c Config) TabularOptions() []latex.Option {
	opts := []latex.Option{
		latex.WithBorders(c.LaTeX.Borders),
		latex.WithBoldHeaders(c.LaTeX.BoldHeaders),
	}
	if a := tables.ParseAlign(c.LaTeX.Align); a != tables.AlignUnspecified {
		opts = append(opts, latex.WithDefaultAlign(a))
	}
	return opts
}
