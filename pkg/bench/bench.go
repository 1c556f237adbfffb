// Package bench measures copy throughput for a range of block size
// multipliers, the experiment used to pick constants.DefaultMultiplier.
package bench

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/sgaunet/pagecat/pkg/alignedbuf"
	"github.com/sgaunet/pagecat/pkg/blocksize"
	"github.com/sgaunet/pagecat/pkg/constants"
	"github.com/sgaunet/pagecat/pkg/transfer"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sys/unix"
)

var (
	// ErrDigestMismatch is returned when a verified pass did not reproduce the source.
	ErrDigestMismatch = errors.New("output digest differs from source")
	// ErrNoMultipliers is returned when there is nothing to measure.
	ErrNoMultipliers = errors.New("no multipliers to measure")
)

// DefaultMultipliers are the factors measured when none are given.
var DefaultMultipliers = []int{1, 2, 4, 8, 16, 32, 64, 128, 256}

const nullDevice = "/dev/null"

// Options control a benchmark.
type Options struct {
	Multipliers  []int
	Runs         int
	Verify       bool
	Strategy     alignedbuf.Strategy
	MinBlockSize int
	MaxBlockSize int
}

// Runner executes benchmarks.
type Runner struct {
	opts Options
	log  *slog.Logger
	now  func() time.Time
}

// NewRunner returns a Runner. Zero options fall back to the package defaults.
func NewRunner(opts Options, logger *slog.Logger) *Runner {
	if len(opts.Multipliers) == 0 {
		opts.Multipliers = DefaultMultipliers
	}
	if opts.Runs < 1 {
		opts.Runs = 1
	}
	if opts.MinBlockSize <= 0 {
		opts.MinBlockSize = constants.MinBlockSize
	}
	if opts.MaxBlockSize <= 0 {
		opts.MaxBlockSize = constants.MaxBlockSize
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{opts: opts, log: logger, now: time.Now}
}

// Run copies the file at path once per multiplier and run. The context is
// checked between passes; a pass in progress always completes.
func (r *Runner) Run(ctx context.Context, path string) (*Report, error) {
	if len(r.opts.Multipliers) == 0 {
		return nil, ErrNoMultipliers
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}

	report := &Report{
		Path:     path,
		Size:     fi.Size(),
		PageSize: blocksize.PageSize(),
		Verified: r.opts.Verify,
	}
	if r.opts.Verify {
		report.SourceDigest, err = fileDigest(path)
		if err != nil {
			return nil, err
		}
	}

	for _, m := range r.opts.Multipliers {
		for run := 1; run <= r.opts.Runs; run++ {
			if err := ctx.Err(); err != nil {
				return report, fmt.Errorf("benchmark cancelled: %w", err)
			}
			res, err := r.pass(path, m, run)
			if err != nil {
				return report, err
			}
			report.Hint = res.hint
			if r.opts.Verify && res.Digest != report.SourceDigest {
				return report, fmt.Errorf("%w: multiplier %d run %d", ErrDigestMismatch, m, run)
			}
			r.log.Info(fmt.Sprintf("[BENCH] x%d run %d: %.1f MB/s", m, run, res.MBps),
				"block_size", res.BlockSize, "elapsed", res.Elapsed)
			report.Results = append(report.Results, res.Result)
		}
	}
	return report, nil
}

type passResult struct {
	Result
	hint int
}

// pass performs one timed copy.
func (r *Runner) pass(path string, multiplier, run int) (res passResult, err error) {
	//nolint:gosec // G304: benchmarking the user-supplied file is the purpose of the tool
	f, err := os.Open(path)
	if err != nil {
		return res, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	advice := blocksize.New(
		blocksize.WithMultiplier(multiplier),
		blocksize.WithBounds(r.opts.MinBlockSize, r.opts.MaxBlockSize),
		blocksize.WithLogger(r.log),
	).Advise(f)

	buf, err := alignedbuf.Acquire(advice.BlockSize, advice.PageSize, r.opts.Strategy)
	if err != nil {
		return res, fmt.Errorf("failed to allocate %d bytes: %w", advice.BlockSize, err)
	}
	defer func() {
		if rerr := buf.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	var (
		sink   transfer.Sink
		hasher hash.Hash
	)
	if r.opts.Verify {
		hasher = newHash()
		sink = hasher
	} else {
		null, err := unix.Open(nullDevice, unix.O_WRONLY|unix.O_CLOEXEC, 0)
		if err != nil {
			return res, fmt.Errorf("failed to open %s: %w", nullDevice, err)
		}
		defer func() { _ = unix.Close(null) }()
		sink = transfer.FD(null)
	}

	start := r.now()
	stats, err := transfer.Copy(sink, transfer.FD(f.Fd()), buf.Bytes())
	elapsed := r.now().Sub(start)
	if err != nil {
		return res, fmt.Errorf("multiplier %d run %d: %w", multiplier, run, err)
	}

	res = passResult{
		Result: Result{
			Multiplier: multiplier,
			BlockSize:  advice.BlockSize,
			Run:        run,
			Bytes:      stats.Bytes,
			Reads:      stats.Reads,
			Elapsed:    elapsed,
			MBps:       transfer.MegabytesPerSecond(stats.Bytes, elapsed),
		},
		hint: advice.Hint.Value,
	}
	if hasher != nil {
		res.Digest = hex.EncodeToString(hasher.Sum(nil))
	}
	return res, nil
}

func newHash() hash.Hash {
	// New256 only fails for keys longer than 64 bytes.
	h, _ := blake2b.New256(nil)
	return h
}

func fileDigest(path string) (string, error) {
	//nolint:gosec // G304: path is the benchmark source
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := newHash()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
