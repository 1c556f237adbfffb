package blocksize

import (
	"sync"

	"github.com/sgaunet/pagecat/pkg/constants"
	"golang.org/x/sys/unix"
)

var pageSize = sync.OnceValue(func() int {
	p := unix.Getpagesize()
	if !isPowerOfTwo(p) {
		return constants.DefaultPageSize
	}
	return p
})

// PageSize returns the memory page size of the running system. It is queried
// once per process; an implausible answer is replaced by
// constants.DefaultPageSize.
func PageSize() int {
	return pageSize()
}
