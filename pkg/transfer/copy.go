// Package transfer copies bytes from a source descriptor to a sink through a
// caller-provided buffer, handling short reads, short writes and interrupted
// system calls.
package transfer

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

var (
	// ErrRead is joined with the cause of any fatal read failure.
	ErrRead = errors.New("read failed")
	// ErrWrite is joined with the cause of any fatal write failure.
	ErrWrite = errors.New("write failed")
	// ErrEmptyBuffer is returned when Copy is given a zero-length buffer.
	ErrEmptyBuffer = errors.New("transfer buffer is empty")
)

//go:generate go tool github.com/matryer/moq -out mocks/source.go -pkg mocks . Source
//go:generate go tool github.com/matryer/moq -out mocks/sink.go -pkg mocks . Sink

// Source is a raw reader. A zero count with a nil error, or io.EOF, marks
// the end of the data.
type Source interface {
	Read(p []byte) (int, error)
}

// Sink is a raw writer. It may accept fewer bytes than offered.
type Sink interface {
	Write(p []byte) (int, error)
}

// Stats counts what happened during a copy.
type Stats struct {
	Bytes        int64
	Reads        int
	Writes       int
	ReadRetries  int
	WriteRetries int
	ShortWrites  int
}

// IsRetryable reports whether a failed read or write should be reissued
// as-is. Only interruption by a signal qualifies.
func IsRetryable(err error) bool {
	return errors.Is(err, unix.EINTR)
}

// Copy transfers everything from src to dst, one buffer at a time, until
// src reports end of file. Bytes reach dst in the order they were read and
// each block is fully written before the next read. On failure the returned
// Stats describe what was already written.
func Copy(dst Sink, src Source, buf []byte, opts ...Option) (Stats, error) {
	o := newOptions(opts)
	var stats Stats

	if len(buf) == 0 {
		return stats, ErrEmptyBuffer
	}

	o.reporter.Start(len(buf))
	for {
		nr, err := src.Read(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			if IsRetryable(err) {
				stats.ReadRetries++
				continue
			}
			err = fmt.Errorf("%w: %w", ErrRead, err)
			o.reporter.Fail(stats, err)
			return stats, err
		}
		if nr <= 0 {
			// EOF
			break
		}
		stats.Reads++

		if err := writeAll(dst, buf[:nr], &stats); err != nil {
			err = fmt.Errorf("%w: %w", ErrWrite, err)
			o.reporter.Fail(stats, err)
			return stats, err
		}
		o.reporter.Update(stats)
	}

	o.reporter.Complete(stats)
	return stats, nil
}

// writeAll writes p in as many calls as dst needs.
func writeAll(dst Sink, p []byte, stats *Stats) error {
	for len(p) > 0 {
		nw, err := dst.Write(p)
		if nw < 0 {
			nw = 0
		}
		if nw > len(p) {
			return fmt.Errorf("sink reported %d bytes written out of %d", nw, len(p))
		}
		if nw > 0 {
			stats.Writes++
			stats.Bytes += int64(nw)
			p = p[nw:]
		}
		if err != nil {
			if IsRetryable(err) {
				stats.WriteRetries++
				continue
			}
			return err
		}
		if nw == 0 {
			return io.ErrShortWrite
		}
		if len(p) > 0 {
			stats.ShortWrites++
		}
	}
	return nil
}
