package bench

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/sgaunet/pagecat/pkg/constants"
)

const fixtureChunk = 1 * constants.MB

// fixtureSeed keeps fixtures identical across runs.
var fixtureSeed = [32]byte{'p', 'a', 'g', 'e', 'c', 'a', 't'}

// GenerateFixture writes size pseudo-random bytes to a new file in dir and
// returns its path. The caller removes the file.
func GenerateFixture(dir string, size int64) (string, error) {
	if size < 0 {
		return "", fmt.Errorf("invalid fixture size %d", size)
	}
	f, err := os.CreateTemp(dir, "pagecat-bench-*.bin")
	if err != nil {
		return "", fmt.Errorf("failed to create fixture in %s: %w", dir, err)
	}

	if err := fill(f, size); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to close fixture: %w", err)
	}
	return f.Name(), nil
}

func fill(f *os.File, size int64) error {
	rng := rand.NewChaCha8(fixtureSeed)
	chunk := make([]byte, fixtureChunk)
	for size > 0 {
		n := int(min(size, int64(len(chunk))))
		_, _ = rng.Read(chunk[:n])
		if _, err := f.Write(chunk[:n]); err != nil {
			return fmt.Errorf("failed to write fixture: %w", err)
		}
		size -= int64(n)
	}
	return nil
}
