//go:build linux || darwin || freebsd

package blocksize

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// QueryHint asks the filesystem holding f for its preferred I/O size, first
// through the open descriptor and then through the file's path. Both queries
// may fail independently; the error joins both causes.
func QueryHint(f *os.File) (Hint, error) {
	var st unix.Statfs_t

	fdErr := unix.Fstatfs(int(f.Fd()), &st)
	if fdErr == nil {
		// Bsize is signed on some platforms; a valid mount never reports <= 0.
		if bs := int64(st.Bsize); bs > 0 && bs <= int64(maxInt) {
			return Hint{Value: int(bs), Source: SourceDescriptor}, nil
		}
		fdErr = ErrInvalidHint
	}

	pathErr := unix.Statfs(f.Name(), &st)
	if pathErr == nil {
		if bs := int64(st.Bsize); bs > 0 && bs <= int64(maxInt) {
			return Hint{Value: int(bs), Source: SourcePath}, nil
		}
		pathErr = ErrInvalidHint
	}

	return Hint{}, fmt.Errorf("failed to query filesystem block size of %s: %w",
		f.Name(), errors.Join(fmt.Errorf("fstatfs: %w", fdErr), fmt.Errorf("statfs: %w", pathErr)))
}
