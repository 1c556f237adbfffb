// Package main provides the pagecat command-line tool, which streams one file
// to standard output through a page-aligned, adaptively sized buffer.
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
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sgaunet/pagecat/pkg/app"
	"github.com/sgaunet/pagecat/pkg/config"
	"github.com/sgaunet/pagecat/pkg/constants"
	"github.com/sgaunet/pagecat/pkg/transfer"
)

var version = "development"

func usage(fs *flag.FlagSet) func() {
	return func() {
		w := fs.Output()
		fmt.Fprintf(w, "Usage: pagecat [OPTIONS] FILE\n\n")
		fmt.Fprintf(w, "Write FILE to standard output using a page-aligned buffer sized\n")
		fmt.Fprintf(w, "from the page size and the filesystem block size.\n\n")
		fmt.Fprintf(w, "OPTIONS:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nENVIRONMENT:\n")
		fmt.Fprintf(w, "  PAGECAT_MULTIPLIER, PAGECAT_MIN_BLOCK_SIZE, PAGECAT_MAX_BLOCK_SIZE,\n")
		fmt.Fprintf(w, "  PAGECAT_BLOCK_SIZE, PAGECAT_ALLOCATOR, PAGECAT_FADVISE, NOLOGTIME,\n")
		fmt.Fprintf(w, "  DEBUGLEVEL (debug|info|warn|error)\n")
		fmt.Fprintf(w, "  Run 'pagecat -cfg' for descriptions and current values.\n")
	}
}

func printConfiguration(stdout io.Writer) {
	c, err := config.NewConfigFromEnv()
	if err != nil {
		c = config.Default()
	}
	c.Usage()

	fmt.Fprintln(stdout, "--------------------------------------------------")
	fmt.Fprintln(stdout, "pagecat configuration:")
	fmt.Fprint(stdout, c.String())
}

// run executes pagecat and returns the process exit code.
func run(args []string, stdout transfer.Sink, stderr io.Writer) int {
	fs := flag.NewFlagSet("pagecat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs)

	showVersion := fs.Bool("version", false, "Show version and exit")
	fs.BoolVar(showVersion, "v", false, "Show version and exit (shorthand)")
	showHelp := fs.Bool("help", false, "Show help and exit")
	fs.BoolVar(showHelp, "h", false, "Show help and exit (shorthand)")
	printCfg := fs.Bool("cfg", false, "Print configuration and exit")

	if err := fs.Parse(args); err != nil {
		return constants.ExitFailure
	}

	// Handle utility flags first
	if *showHelp {
		fs.SetOutput(os.Stdout)
		fs.Usage()
		return constants.ExitSuccess
	}
	if *showVersion {
		fmt.Fprintln(os.Stdout, version)
		return constants.ExitSuccess
	}
	if *printCfg {
		printConfiguration(os.Stdout)
		return constants.ExitSuccess
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "pagecat: expected exactly one FILE argument, got %d\n", fs.NArg())
		fs.Usage()
		return constants.ExitFailure
	}

	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		fmt.Fprintf(stderr, "pagecat: configuration: %v\n", err)
		return constants.ExitFailure
	}

	a, err := app.NewApp(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "pagecat: %v\n", err)
		return constants.ExitFailure
	}
	a.SetOutput(stdout)
	l := initTrace(stderr, os.Getenv("DEBUGLEVEL"), cfg.NoLogTime)
	a.SetLogger(l)

	if err := a.Run(fs.Arg(0)); err != nil {
		fmt.Fprintf(stderr, "pagecat: %v\n", err)
		return constants.ExitFailure
	}
	return constants.ExitSuccess
}

func main() {
	os.Exit(run(os.Args[1:], transfer.Stdout, os.Stderr))
}
