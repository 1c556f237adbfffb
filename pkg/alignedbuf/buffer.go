// Package alignedbuf provides byte buffers whose first byte sits at an
// address that is a multiple of a power-of-two alignment, typically the
// memory page size.
package alignedbuf

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/sgaunet/pagecat/pkg/constants"
	"golang.org/x/sys/unix"
)

const maxInt = int(^uint(0) >> 1)

var (
	// ErrInvalidSize is returned when the requested size is not positive or too large.
	ErrInvalidSize = errors.New("invalid buffer size")
	// ErrInvalidAlignment is returned when the alignment is not a positive power of two.
	ErrInvalidAlignment = errors.New("alignment must be a positive power of two")
	// ErrAllocation is returned when the memory could not be obtained.
	ErrAllocation = errors.New("failed to allocate aligned buffer")
	// ErrUnknownStrategy is returned by ParseStrategy for unsupported names.
	ErrUnknownStrategy = errors.New("unknown allocation strategy")
)

// Strategy selects how the backing memory is obtained.
type Strategy int

const (
	// StrategyMmap maps anonymous private memory, which the kernel aligns on
	// a page boundary.
	StrategyMmap Strategy = iota
	// StrategyHeap over-allocates a Go slice and slices it at the first
	// aligned address.
	StrategyHeap
)

func (s Strategy) String() string {
	switch s {
	case StrategyMmap:
		return constants.AllocatorMmap
	case StrategyHeap:
		return constants.AllocatorHeap
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy maps a configuration name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", constants.AllocatorMmap:
		return StrategyMmap, nil
	case constants.AllocatorHeap:
		return StrategyHeap, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Buffer is an aligned byte region. It is owned by a single goroutine and
// must be released exactly once; extra Release calls are no-ops.
type Buffer struct {
	data     []byte
	raw      []byte
	free     func([]byte) error
	strategy Strategy
}

// Acquire returns a buffer of exactly size usable bytes whose first byte is
// aligned on alignment.
func Acquire(size, alignment int, strategy Strategy) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if alignment <= 0 || alignment&(alignment-1) != 0 || alignment > maxInt/4 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAlignment, alignment)
	}
	if size > maxInt-2*alignment {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	switch strategy {
	case StrategyMmap:
		return acquireMmap(size, alignment)
	case StrategyHeap:
		return acquireHeap(size, alignment), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
}

func acquireMmap(size, alignment int) (*Buffer, error) {
	page := unix.Getpagesize()
	length := size
	if alignment > page {
		// mmap only guarantees page alignment; leave room to slide forward.
		length += alignment
	}
	length = (length + page - 1) / page * page

	raw, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %w", ErrAllocation, length, err)
	}
	return newBuffer(raw, size, alignment, StrategyMmap, unix.Munmap), nil
}

func acquireHeap(size, alignment int) *Buffer {
	// The Go heap does not move objects, so the offset computed here stays valid.
	raw := make([]byte, size+alignment-1)
	return newBuffer(raw, size, alignment, StrategyHeap, nil)
}

func newBuffer(raw []byte, size, alignment int, strategy Strategy, free func([]byte) error) *Buffer {
	off := alignOffset(raw, alignment)
	return &Buffer{
		// Capacity is capped so appends cannot spill past the aligned window.
		data:     raw[off : off+size : off+size],
		raw:      raw,
		free:     free,
		strategy: strategy,
	}
}

// alignOffset returns the distance from the start of raw to the first
// address that is a multiple of alignment.
func alignOffset(raw []byte, alignment int) int {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	a := uintptr(alignment)
	return int((a - addr%a) % a)
}

// Bytes returns the aligned region, or nil once released.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Len returns the usable size in bytes.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Addr returns the address of the first usable byte, or 0 once released.
func (b *Buffer) Addr() uintptr {
	if b == nil || len(b.data) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b.data)))
}

// IsAligned reports whether the buffer start is a multiple of alignment.
func (b *Buffer) IsAligned(alignment int) bool {
	if alignment <= 0 {
		return false
	}
	addr := b.Addr()
	return addr != 0 && addr%uintptr(alignment) == 0
}

// Strategy returns the strategy the buffer was acquired with.
func (b *Buffer) Strategy() Strategy {
	return b.strategy
}

// Released reports whether Release has been called.
func (b *Buffer) Released() bool {
	return b == nil || b.raw == nil
}

// Release frees the underlying allocation. Releasing a nil or already
// released buffer does nothing.
func (b *Buffer) Release() error {
	if b.Released() {
		return nil
	}
	raw := b.raw
	b.raw, b.data = nil, nil
	if b.free == nil {
		return nil
	}
	if err := b.free(raw); err != nil {
		return fmt.Errorf("failed to release %s buffer: %w", b.strategy, err)
	}
	return nil
}
