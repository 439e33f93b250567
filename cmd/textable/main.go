package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"

	"github.com/wudi/texport/config"
	"github.com/wudi/texport/convert"
	"github.com/wudi/texport/latex"
	"github.com/wudi/texport/observability"
	"github.com/wudi/texport/recovery"
	"github.com/wudi/texport/tables"
)

const traceKey = "texport.tables"

// tracer traces with key 'texport.tables'
func tracer() tracing.Trace {
	return tracing.Select(traceKey)
}

type options struct {
	input      string
	output     string
	format     string
	standalone bool
	events     bool
	conf       config.Config
}

func main() {
	initDisplay()

	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":   "go",
		"trace." + traceKey: "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Fprintf(os.Stderr, "textable: error configuring tracing: %v\n", err)
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprint(os.Stderr, pterm.Error.Sprintln(err.Error()))
		os.Exit(2)
	}
	level, _ := opts.conf.Trace.TraceLevel()
	tracer().SetTraceLevel(level)
	if err := run(context.Background(), opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprint(os.Stderr, pterm.Error.Sprintln(err.Error()))
		os.Exit(1)
	}
}

// We use pterm for moderately fancy output on stderr.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// parseFlags reads the command line. Flags given explicitly override the
// values of the configuration file.
func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var opts options
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: textable [flags] <markdown-or-html-file>\n")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "TOML configuration file")
	output := fs.String("out", "", "Write LaTeX to this file instead of stdout")
	format := fs.String("format", "", "Input format [markdown|html], guessed from the file extension if empty")
	standalone := fs.Bool("standalone", false, "Wrap the tables into a complete LaTeX document")
	events := fs.Bool("events", false, "Print the corrected event stream of every table")
	lenient := fs.Bool("lenient", false, "Pad short rows and replace broken tables with a comment instead of failing")
	pad := fs.Bool("pad", false, "Complete short rows with empty cells")
	borders := fs.Bool("borders", true, "Draw vertical borders")
	bold := fs.Bool("bold", false, "Set header cells in bold")
	level := fs.String("trace", "", "Trace level [Debug|Info|Error]")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return options{}, fmt.Errorf("missing input file")
	}

	opts.conf = config.Default()
	if *configPath != "" {
		conf, err := config.Load(*configPath)
		if err != nil {
			return options{}, fmt.Errorf("load config: %w", err)
		}
		opts.conf = conf
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lenient":
			if *lenient {
				opts.conf.Recovery.Strategy = "lenient"
			}
		case "pad":
			opts.conf.Tables.Pad = *pad
		case "borders":
			opts.conf.LaTeX.Borders = *borders
		case "bold":
			opts.conf.LaTeX.BoldHeaders = *bold
		case "trace":
			opts.conf.Trace.Level = *level
		}
	})
	if err := opts.conf.Validate(); err != nil {
		return options{}, err
	}

	opts.input = fs.Arg(0)
	opts.output = *output
	opts.standalone = *standalone
	opts.events = *events
	opts.format = strings.ToLower(*format)
	if opts.format == "" {
		opts.format = formatOf(opts.input)
	}
	if opts.format != "markdown" && opts.format != "html" {
		return options{}, fmt.Errorf("cannot convert %q: unknown input format %q", opts.input, opts.format)
	}
	return opts, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "markdown"
	case ".html", ".htm", ".xhtml":
		return "html"
	}
	return ""
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	source, err := os.ReadFile(opts.input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if opts.output == "" {
		return convertSource(ctx, opts, source, stdout, stderr)
	}
	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	return closeOutput(f, convertSource(ctx, opts, source, f, stderr))
}

// closeOutput closes the output file. An error of the conversion takes
// precedence over the close error.
func closeOutput(f io.Closer, err error) error {
	if cerr := f.Close(); cerr != nil && err == nil {
		return fmt.Errorf("close output: %w", cerr)
	}
	return err
}

func convertSource(ctx context.Context, opts options, source []byte, out, stderr io.Writer) error {
	strategy, err := recovery.ByName(opts.conf.Recovery.Strategy)
	if err != nil {
		return err
	}
	engineOpts := []convert.Option{
		convert.WithTabularOptions(opts.conf.TabularOptions()...),
		convert.WithPadding(opts.conf.Tables.Pad),
		convert.WithCaptionHeadings(opts.conf.LaTeX.CaptionLevel),
		convert.WithStrategy(strategy),
		convert.WithLogger(observability.NewTraceLogger(traceKey)),
		convert.WithTracer(observability.NewTraceTracer(traceKey)),
	}
	if opts.events {
		engineOpts = append(engineOpts, convert.WithInspector(func(index int, events []tables.Event) {
			printEvents(stderr, index, events)
		}))
	}
	engine := convert.NewEngine(out, engineOpts...)

	if opts.standalone {
		if err := latex.Preamble(out, opts.conf.LaTeX.Class); err != nil {
			return err
		}
	}
	switch opts.format {
	case "markdown":
		err = engine.ConvertMarkdown(ctx, source)
	case "html":
		err = engine.ConvertHTML(ctx, strings.NewReader(string(source)))
	}
	if err != nil {
		return fmt.Errorf("convert %s: %w", opts.input, err)
	}
	if opts.standalone {
		if err := latex.End(out); err != nil {
			return err
		}
	}

	stats := engine.Stats()
	fmt.Fprint(stderr, pterm.Info.Sprintf("%s: %d tables written, %d skipped, %d fixed\n",
		opts.input, stats.Written, stats.Skipped, stats.Fixed))
	if l, ok := strategy.(*recovery.LenientStrategy); ok {
		for _, e := range l.Errors {
			tracer().Infof("recovered: %v", e)
		}
	}
	return nil
}

// printEvents dumps the event stream of a table as a pterm table.
func printEvents(w io.Writer, index int, events []tables.Event) {
	table, err := pterm.DefaultTable.WithHasHeader().WithData(eventRows(events)).Srender()
	if err != nil {
		tracer().Errorf("table %d: %v", index, err)
		return
	}
	fmt.Fprintf(w, "table %d\n%s\n", index, table)
}

func eventRows(events []tables.Event) [][]string {
	data := [][]string{{"row", "event"}}
	row := 0
	for _, e := range events {
		if e.Type == tables.EventRowOpen {
			row++
		}
		r := ""
		if row > 0 && e.Type != tables.EventTableClose {
			r = strconv.Itoa(row)
		}
		data = append(data, []string{r, e.String()})
	}
	return data
}
