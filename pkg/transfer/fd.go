package transfer

import "golang.org/x/sys/unix"

// FD is a raw file descriptor used directly with read(2) and write(2),
// bypassing the os.File poller and its EINTR handling.
type FD int

// Stdout is the process's standard output descriptor.
var Stdout = FD(unix.Stdout)

// Read reads into p with a single read(2).
func (fd FD) Read(p []byte) (int, error) {
	n, err := unix.Read(int(fd), p)
	if n < 0 {
		n = 0
	}
	return n, err
}

// Write writes p with a single write(2).
func (fd FD) Write(p []byte) (int, error) {
	n, err := unix.Write(int(fd), p)
	if n < 0 {
		n = 0
	}
	return n, err
}
