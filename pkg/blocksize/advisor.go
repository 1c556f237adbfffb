// Package blocksize computes the transfer size used to stream a file.
//
// The size is derived from the memory page size and the preferred I/O size
// reported by the filesystem holding the file. Both inputs are queried from
// the operating system and either query may fail or return garbage; sizing
// never fails; it degrades to the page size instead.
package blocksize

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/sgaunet/pagecat/pkg/constants"
)

const maxInt = int(^uint(0) >> 1)

// ErrInvalidHint is returned when the filesystem reports a non-positive block size.
var ErrInvalidHint = errors.New("filesystem reported an invalid block size")

// HintSource tells where a filesystem block hint came from.
type HintSource string

const (
	// SourceDescriptor means the hint came from fstatfs on the open descriptor.
	SourceDescriptor HintSource = "descriptor"
	// SourcePath means the hint came from statfs on the file path.
	SourcePath HintSource = "path"
	// SourcePageSize means both queries failed and the page size stands in.
	SourcePageSize HintSource = "page-size"
	// SourceFixed means the block size was configured explicitly.
	SourceFixed HintSource = "fixed"
)

// Hint is the preferred I/O granularity reported for a file.
type Hint struct {
	Value  int
	Source HintSource
}

// Advice records the inputs and the result of a block size computation.
type Advice struct {
	PageSize  int
	Hint      Hint
	Sanitized int
	BlockSize int
}

// Advisor computes block sizes. The zero value is not usable; use New.
type Advisor struct {
	multiplier int
	minSize    int
	maxSize    int
	fixed      int
	pageSize   func() int
	query      func(*os.File) (Hint, error)
	log        *slog.Logger
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithMultiplier sets the factor applied to lcm(page size, hint).
func WithMultiplier(m int) Option {
	return func(a *Advisor) {
		if m > 0 {
			a.multiplier = m
		}
	}
}

// WithBounds sets the inclusive range the block size is clamped into.
func WithBounds(minSize, maxSize int) Option {
	return func(a *Advisor) {
		if minSize > 0 {
			a.minSize = minSize
		}
		if maxSize > 0 {
			a.maxSize = maxSize
		}
	}
}

// WithFixedBlockSize bypasses the filesystem query. The size is still clamped
// and aligned to the page size. Zero keeps adaptive sizing.
func WithFixedBlockSize(size int) Option {
	return func(a *Advisor) {
		if size > 0 {
			a.fixed = size
		}
	}
}

// WithPageSize replaces the page size lookup.
func WithPageSize(fn func() int) Option {
	return func(a *Advisor) {
		a.pageSize = fn
	}
}

// WithHintQuery replaces the filesystem block hint lookup.
func WithHintQuery(fn func(*os.File) (Hint, error)) Option {
	return func(a *Advisor) {
		a.query = fn
	}
}

// WithLogger sets the logger used to report degraded sizing.
func WithLogger(l *slog.Logger) Option {
	return func(a *Advisor) {
		if l != nil {
			a.log = l
		}
	}
}

// New returns an Advisor using the defaults from the constants package.
func New(opts ...Option) *Advisor {
	a := &Advisor{
		multiplier: constants.DefaultMultiplier,
		minSize:    constants.MinBlockSize,
		maxSize:    constants.MaxBlockSize,
		pageSize:   PageSize,
		query:      QueryHint,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.maxSize < a.minSize {
		a.maxSize = a.minSize
	}
	return a
}

// Advise computes the block size for f. It never fails: when the filesystem
// cannot be queried the page size is used as the hint.
func (a *Advisor) Advise(f *os.File) Advice {
	page := a.pageSize()
	if page <= 0 {
		page = constants.DefaultPageSize
	}

	if a.fixed > 0 {
		return Advice{
			PageSize:  page,
			Hint:      Hint{Value: a.fixed, Source: SourceFixed},
			Sanitized: a.fixed,
			BlockSize: a.bound(a.fixed, page),
		}
	}

	hint, err := a.query(f)
	if err != nil {
		a.log.Debug("filesystem block hint unavailable, using page size", "error", err)
		hint = Hint{Value: page, Source: SourcePageSize}
	}

	return Advice{
		PageSize:  page,
		Hint:      hint,
		Sanitized: SanitizeHint(hint.Value),
		BlockSize: a.Compute(page, hint.Value),
	}
}

// Compute derives a block size from a page size and a raw filesystem hint.
// The result is a positive multiple of the page size, within the advisor's
// bounds unless the page itself is larger than the upper bound.
func (a *Advisor) Compute(pageSize, hint int) int {
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	size := lcm(pageSize, SanitizeHint(hint))
	size = mulSaturate(size, a.multiplier, a.maxSize)
	return a.bound(size, pageSize)
}

// bound clamps v into [minSize, maxSize] and restores page alignment.
func (a *Advisor) bound(v, pageSize int) int {
	v = clamp(v, a.minSize, a.maxSize)
	aligned := alignUp(v, pageSize)
	if aligned > a.maxSize {
		aligned = alignDown(a.maxSize, pageSize)
	}
	if aligned < pageSize {
		aligned = pageSize
	}
	return aligned
}

// SanitizeHint clamps a filesystem hint into
// [constants.MinFilesystemHint, constants.MaxFilesystemHint] and rounds it
// down to a power of two. Zero and negative values become the minimum.
func SanitizeHint(hint int) int {
	hint = clamp(hint, constants.MinFilesystemHint, constants.MaxFilesystemHint)
	return floorPowerOfTwo(hint)
}
