// Package app wires block size advice, buffer allocation and the copy loop
// into a single file-to-stdout transfer.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sgaunet/pagecat/pkg/alignedbuf"
	"github.com/sgaunet/pagecat/pkg/blocksize"
	"github.com/sgaunet/pagecat/pkg/config"
	"github.com/sgaunet/pagecat/pkg/transfer"
)

var (
	// ErrOpen is returned when the source cannot be opened or inspected.
	ErrOpen = errors.New("open failed")
	// ErrNotRegular is returned when the source is not a regular file.
	ErrNotRegular = errors.New("not a regular file")
	// ErrAllocate is returned when the transfer buffer cannot be allocated.
	ErrAllocate = errors.New("buffer allocation failed")
	// ErrRelease is returned when the transfer buffer cannot be released.
	ErrRelease = errors.New("buffer release failed")
	// ErrClose is returned when the source descriptor cannot be closed.
	ErrClose = errors.New("close failed")
)

// App streams one file to an output sink.
type App struct {
	cfg    *config.Config
	output transfer.Sink
	log    *slog.Logger
}

// NewApp returns an App writing to standard output.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &App{
		cfg:    cfg,
		output: transfer.Stdout,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// SetLogger sets the logger used for diagnostics and progress.
func (a *App) SetLogger(l *slog.Logger) {
	a.log = l
}

// SetOutput replaces the standard output sink.
func (a *App) SetOutput(w transfer.Sink) {
	a.output = w
}

func (a *App) advisor() *blocksize.Advisor {
	return blocksize.New(
		blocksize.WithMultiplier(a.cfg.Multiplier),
		blocksize.WithBounds(a.cfg.MinBlockSize, a.cfg.MaxBlockSize),
		blocksize.WithFixedBlockSize(a.cfg.BlockSize),
		blocksize.WithLogger(a.log),
	)
}

// Run copies the file at path to the output. The buffer is released and the
// file closed on every return path, the buffer first.
func (a *App) Run(path string) (err error) {
	//nolint:gosec // G304: reading the user-supplied file is the purpose of the tool
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %s: %w", ErrClose, path, cerr)
		}
	}()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpen, err)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegular, path)
	}

	advice := a.advisor().Advise(f)
	a.log.Debug("block size computed",
		"path", path,
		"page_size", advice.PageSize,
		"hint", advice.Hint.Value,
		"hint_source", advice.Hint.Source,
		"sanitized_hint", advice.Sanitized,
		"block_size", advice.BlockSize,
	)

	buf, err := alignedbuf.Acquire(advice.BlockSize, advice.PageSize, a.cfg.Strategy())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAllocate, err)
	}
	defer func() {
		if rerr := buf.Release(); rerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrRelease, rerr)
		}
	}()

	if a.cfg.Fadvise {
		if ferr := adviseSequential(f); ferr != nil {
			a.log.Debug("sequential access hint rejected", "path", path, "error", ferr)
		}
	}

	_, err = transfer.Copy(a.output, transfer.FD(f.Fd()), buf.Bytes(),
		transfer.WithReporter(transfer.NewLogReporter(a.log, fi.Size())))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
