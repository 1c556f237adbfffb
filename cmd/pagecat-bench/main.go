// Package main provides pagecat-bench, which measures copy throughput across
// block size multipliers.
// Copyright (C) 2021  Sylvain Gaunet

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.

// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sgaunet/pagecat/pkg/bench"
	"github.com/sgaunet/pagecat/pkg/config"
	"github.com/sgaunet/pagecat/pkg/constants"
)

const (
	defaultFixtureMB = 64
	formatText       = "text"
	formatYAML       = "yaml"
)

var version = "development"

var errUnknownFormat = errors.New("unknown output format")

type options struct {
	configFile  string
	sizeMB      int
	multipliers string
	runs        int
	tmpDir      string
	verify      bool
	format      string
	showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (*options, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("pagecat-bench", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		w := fs.Output()
		fmt.Fprintf(w, "Usage: pagecat-bench [OPTIONS] [FILE]\n\n")
		fmt.Fprintf(w, "Copy FILE once per multiplier and run, and report throughput.\n")
		fmt.Fprintf(w, "Without FILE a pseudo-random fixture is generated and removed afterwards.\n\n")
		fmt.Fprintf(w, "OPTIONS:\n")
		fs.PrintDefaults()
	}

	o := &options{}
	fs.StringVar(&o.configFile, "c", "", "configuration file (YAML); environment variables are used otherwise")
	fs.IntVar(&o.sizeMB, "size", defaultFixtureMB, "fixture size in MB when no FILE is given")
	fs.StringVar(&o.multipliers, "multipliers", "1,2,4,8,16,32,64,128,256", "comma-separated multipliers to measure")
	fs.IntVar(&o.runs, "runs", 3, "passes per multiplier")
	fs.StringVar(&o.tmpDir, "tmpdir", os.TempDir(), "directory for the generated fixture")
	fs.BoolVar(&o.verify, "verify", false, "hash every pass with BLAKE2b and compare with the source")
	fs.StringVar(&o.format, "format", formatText, "report format: text or yaml")
	fs.BoolVar(&o.showVersion, "version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, fs, fmt.Errorf("parsing flags: %w", err)
	}
	if o.format != formatText && o.format != formatYAML {
		return nil, fs, fmt.Errorf("%w: %q", errUnknownFormat, o.format)
	}
	return o, fs, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.NewConfigFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading configuration from file: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("loading configuration from environment: %w", err)
	}
	return cfg, nil
}

//nolint:funlen // Sequential CLI steps read best in one place
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return constants.ExitSuccess
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return constants.ExitFailure
	}
	if o.showVersion {
		fmt.Fprintf(stdout, "pagecat-bench version %s\n", version)
		return constants.ExitSuccess
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(stderr, "Error: expected at most one FILE argument, got %d\n", fs.NArg())
		fs.Usage()
		return constants.ExitFailure
	}

	cfg, err := loadConfig(o.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return constants.ExitFailure
	}
	multipliers, err := bench.ParseMultipliers(o.multipliers)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return constants.ExitFailure
	}
	logger := initTrace(stderr, os.Getenv("DEBUGLEVEL"), cfg.NoLogTime)

	path := fs.Arg(0)
	if path == "" {
		if o.sizeMB < 1 {
			fmt.Fprintf(stderr, "Error: fixture size must be at least 1 MB, got %d\n", o.sizeMB)
			return constants.ExitFailure
		}
		path, err = bench.GenerateFixture(o.tmpDir, int64(o.sizeMB)*constants.MB)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return constants.ExitFailure
		}
		defer func() { _ = os.Remove(path) }()
		logger.Info("[BENCH] fixture generated", "path", path, "size_mb", o.sizeMB)
	}

	runner := bench.NewRunner(bench.Options{
		Multipliers:  multipliers,
		Runs:         o.runs,
		Verify:       o.verify,
		Strategy:     cfg.Strategy(),
		MinBlockSize: cfg.MinBlockSize,
		MaxBlockSize: cfg.MaxBlockSize,
	}, logger)

	report, err := runner.Run(ctx, path)
	if err != nil {
		fmt.Fprintf(stderr, "Error during benchmark: %v\n", err)
		return constants.ExitFailure
	}

	if o.format == formatYAML {
		err = report.WriteYAML(stdout)
	} else {
		err = report.WriteText(stdout)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return constants.ExitFailure
	}
	return constants.ExitSuccess
}

func main() {
	// Setup context with cancellation (Ctrl+C handling)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\n[BENCH] Interrupted - finishing current pass...")
		cancel()
	}()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
