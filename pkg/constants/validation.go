package constants

// Configuration Limits.
const (
	// MaxMultiplier is the largest accepted block size multiplier.
	// Anything above this is clamped by MaxBlockSize anyway, so it is most
	// likely a typo.
	MaxMultiplier = 1024

	// AbsoluteMaxBlockSize is the largest value accepted for a configured
	// ceiling or fixed block size (1GB).
	AbsoluteMaxBlockSize = 1 * GB
)

// Allocator names accepted in configuration.
const (
	// AllocatorMmap selects anonymous mmap for the transfer buffer.
	AllocatorMmap = "mmap"

	// AllocatorHeap selects an over-allocated Go heap slice.
	AllocatorHeap = "heap"
)
