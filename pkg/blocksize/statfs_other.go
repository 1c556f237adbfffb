//go:build !(linux || darwin || freebsd)

package blocksize

import (
	"errors"
	"fmt"
	"os"
)

// QueryHint is not supported on this platform; sizing uses the page size.
func QueryHint(f *os.File) (Hint, error) {
	return Hint{}, fmt.Errorf("failed to query filesystem block size of %s: %w", f.Name(), errors.ErrUnsupported)
}
