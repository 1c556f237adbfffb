package constants

// Size Constants
//
// Standard binary size units (powers of 1024, not 1000).
const (
	// Byte is the base unit (included for completeness).
	Byte = 1

	// KB is one kilobyte (1,024 bytes).
	KB = 1024

	// MB is one megabyte (1,024 kilobytes = 1,048,576 bytes).
	MB = 1024 * KB

	// GB is one gigabyte (1,024 megabytes = 1,073,741,824 bytes).
	GB = 1024 * MB
)

// Page Size
const (
	// DefaultPageSize is used when the operating system reports a page size
	// that is not a positive power of two.
	DefaultPageSize = 4 * KB
)

// Filesystem Block Hint
//
// The preferred I/O size reported by statfs is untrusted input. It is clamped
// into this range and rounded down to a power of two before use.
const (
	// MinFilesystemHint is the smallest filesystem hint accepted (one sector).
	MinFilesystemHint = 512

	// MaxFilesystemHint is the largest filesystem hint accepted.
	MaxFilesystemHint = 64 * KB
)

// Block Sizes
//
// These bound the transfer buffer. Larger buffers amortize syscall overhead
// but use more memory.
const (
	// MinBlockSize is the smallest transfer size produced by the advisor.
	MinBlockSize = 4 * KB

	// MaxBlockSize is the largest transfer size produced by the advisor.
	// Prevents unbounded allocation from a misreported filesystem block size.
	MaxBlockSize = 4 * MB

	// DefaultMultiplier scales lcm(page size, filesystem hint).
	// Measured sequential throughput peaks at 64x a 4KB page (256KB reads);
	// 16x and 32x are within 10%.
	DefaultMultiplier = 64
)
