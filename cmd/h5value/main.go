// Command h5value converts an HDF5 file into JSON, YAML or a styled tree.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/h5value/command"
	"github.com/robert-malhotra/h5value/config"
	"github.com/robert-malhotra/h5value/hdf5"
	"github.com/robert-malhotra/h5value/tree"
	"github.com/robert-malhotra/h5value/value"
)

func main() {
	var (
		cfgFile     = flag.String("config", "", "Path to a YAML config file")
		format      = flag.String("format", "", "Output format: json, yaml or tree")
		color       = flag.String("color", "", "Colour: auto, always or never")
		maxDepth    = flag.Int("max-depth", 0, "Nesting limit for groups and types")
		duplicates  = flag.String("duplicates", "", "Duplicate field names: error or last-wins")
		interactive = flag.Bool("i", false, "Explore the result interactively")
		verbose     = flag.Bool("v", false, "Debug logging to stderr")
	)
	flag.Parse()

	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Usage: h5value [flags] [file.h5]")
		fmt.Fprintln(os.Stderr, "       h5value [flags] < file.h5")
		fmt.Fprintln(os.Stderr, "       h5value -i file.h5  (interactive mode)")
		os.Exit(2)
	}

	cfg := config.Default()
	if *cfgFile != "" {
		var err error
		if cfg, err = config.Load(*cfgFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Format = *format
		case "color":
			cfg.Color = *color
		case "max-depth":
			cfg.MaxDepth = *maxDepth
		case "duplicates":
			cfg.Duplicates = *duplicates
		}
	})
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	log, err := newLogger(cfg, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	tree.SetLogger(log.Named("tree"))
	hdf5.SetLogger(log.Named("hdf5"))

	setColorProfile(cfg.Color)

	if err := run(cfg, flag.Arg(0), *interactive, log); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}

func run(cfg config.Config, path string, interactive bool, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	data, name, err := readInput(path)
	if err != nil {
		return err
	}
	log.Debug("read input", zap.String("name", name), zap.Int("bytes", len(data)))

	cmd := &command.FromHDF5{Options: cfg.DecodeOptions(), Logger: log}
	v, lerr := cmd.Run(ctx, command.Binary(data))
	if lerr != nil {
		return lerr
	}

	if interactive {
		return runInteractive(name, v)
	}
	return write(os.Stdout, cfg.Format, v)
}

func readInput(path string) ([]byte, string, error) {
	if path == "" || path == "-" {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, "", fmt.Errorf("no input file and stdin is a terminal")
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "<stdin>", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	return data, path, nil
}

func write(w io.Writer, format string, v value.Value) error {
	switch format {
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v.Node()); err != nil {
			return err
		}
		return enc.Close()
	case config.FormatTree:
		_, err := io.WriteString(w, renderTree(v))
		return err
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	}
}

func newLogger(cfg config.Config, verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	return zc.Build()
}

func setColorProfile(mode string) {
	switch mode {
	case config.ColorAlways:
		lipgloss.SetColorProfile(termenv.ANSI256)
	case config.ColorNever:
		lipgloss.SetColorProfile(termenv.Ascii)
	default:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	}
}
