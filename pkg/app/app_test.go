package app_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sgaunet/pagecat/pkg/app"
	"github.com/sgaunet/pagecat/pkg/config"
	"github.com/sgaunet/pagecat/pkg/constants"
	"github.com/sgaunet/pagecat/pkg/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// failingSink accepts limit bytes, then fails every write with err.
type failingSink struct {
	bytes.Buffer
	limit int
	err   error
}

func (s *failingSink) Write(p []byte) (int, error) {
	room := s.limit - s.Len()
	if room <= 0 {
		return 0, s.err
	}
	if len(p) > room {
		p = p[:room]
	}
	return s.Buffer.Write(p)
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func newApp(t *testing.T, cfg *config.Config, out transfer.Sink) *app.App {
	t.Helper()
	a, err := app.NewApp(cfg)
	require.NoError(t, err)
	a.SetOutput(out)
	return a
}

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"ten bytes", []byte("ABCDEFGHIJ")},
		{"empty file", []byte{}},
		{"one page", pattern(4096)},
		{"not a multiple of the block size", pattern(3*256*constants.KB + 7)},
		{"larger than the ceiling", pattern(5*constants.MB + 3)},
	}

	for _, allocator := range []string{constants.AllocatorMmap, constants.AllocatorHeap} {
		for _, tt := range tests {
			t.Run(allocator+"/"+tt.name, func(t *testing.T) {
				cfg := config.Default()
				cfg.Allocator = allocator
				var out bytes.Buffer

				err := newApp(t, cfg, &out).Run(writeFile(t, tt.data))
				require.NoError(t, err)
				assert.True(t, bytes.Equal(tt.data, out.Bytes()), "output differs from source")
			})
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	path := writeFile(t, pattern(1*constants.MB+123))
	var first, second bytes.Buffer

	require.NoError(t, newApp(t, nil, &first).Run(path))
	require.NoError(t, newApp(t, nil, &second).Run(path))
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestRunOutputInvariantUnderBlockSize(t *testing.T) {
	data := pattern(200*constants.KB + 17)
	path := writeFile(t, data)

	for _, bs := range []int{1, 4096, 10000, 64 * constants.KB, 4 * constants.MB} {
		cfg := config.Default()
		cfg.BlockSize = bs
		var out bytes.Buffer
		require.NoError(t, newApp(t, cfg, &out).Run(path), "block size %d", bs)
		require.True(t, bytes.Equal(data, out.Bytes()), "block size %d", bs)
	}
}

func TestRunToFileDescriptor(t *testing.T) {
	data := pattern(70000)
	path := writeFile(t, data)
	dstPath := filepath.Join(t.TempDir(), "out")
	dst, err := os.Create(dstPath)
	require.NoError(t, err)
	defer dst.Close()

	require.NoError(t, newApp(t, nil, transfer.FD(dst.Fd())).Run(path))

	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestRunErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		var out bytes.Buffer
		err := newApp(t, nil, &out).Run(filepath.Join(t.TempDir(), "nope"))
		require.ErrorIs(t, err, app.ErrOpen)
		require.ErrorIs(t, err, os.ErrNotExist)
		assert.Zero(t, out.Len())
	})

	t.Run("directory", func(t *testing.T) {
		var out bytes.Buffer
		err := newApp(t, nil, &out).Run(t.TempDir())
		require.ErrorIs(t, err, app.ErrNotRegular)
		assert.Zero(t, out.Len())
	})

	t.Run("write failure keeps the flushed prefix", func(t *testing.T) {
		data := pattern(10000)
		out := &failingSink{limit: 3000, err: unix.EPIPE}
		err := newApp(t, nil, out).Run(writeFile(t, data))
		require.ErrorIs(t, err, transfer.ErrWrite)
		require.ErrorIs(t, err, unix.EPIPE)
		assert.Equal(t, data[:3000], out.Bytes())
	})
}

func TestNewAppRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Multiplier = 0
	_, err := app.NewApp(cfg)
	require.ErrorIs(t, err, config.ErrInvalidMultiplier)
}

func TestRunLogsBlockSize(t *testing.T) {
	var logs, out bytes.Buffer
	a := newApp(t, nil, &out)
	a.SetLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	require.NoError(t, a.Run(writeFile(t, []byte("hello"))))
	assert.Equal(t, "hello", out.String())
	assert.Contains(t, logs.String(), "block size computed")
	assert.Contains(t, logs.String(), "block_size=")
	assert.True(t, strings.Contains(logs.String(), "[COPY]"))
}
