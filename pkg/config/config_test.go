package config_test

import (
	"testing"

	"github.com/sgaunet/pagecat/pkg/alignedbuf"
	"github.com/sgaunet/pagecat/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestNewConfigFromFile(t *testing.T) {
	t.Run("normal case", func(t *testing.T) {
		cfg, err := config.NewConfigFromFile("testdata/good-cfg.yaml")
		require.NoError(t, err)
		require.NotNil(t, cfg)
		require.Equal(t, 32, cfg.Multiplier)
		require.Equal(t, 8192, cfg.MinBlockSize)
		require.Equal(t, 1048576, cfg.MaxBlockSize)
		require.Equal(t, 0, cfg.BlockSize)
		require.Equal(t, "heap", cfg.Allocator)
		require.Equal(t, alignedbuf.StrategyHeap, cfg.Strategy())
		require.True(t, cfg.NoLogTime)
		require.True(t, cfg.Fadvise)
	})
	t.Run("file not found", func(t *testing.T) {
		_, err := config.NewConfigFromFile("testdata/unknown.yaml")
		require.Error(t, err)
	})
	t.Run("invalid yaml", func(t *testing.T) {
		_, err := config.NewConfigFromFile("testdata/invalid-cfg.yaml")
		require.Error(t, err)
	})
	t.Run("inverted bounds", func(t *testing.T) {
		_, err := config.NewConfigFromFile("testdata/out-of-range-cfg.yaml")
		require.ErrorIs(t, err, config.ErrInvalidBounds)
	})
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := config.NewConfigFromEnv()
		require.NoError(t, err)
		require.Equal(t, config.Default(), cfg)
	})
	t.Run("valid environment variables", func(t *testing.T) {
		t.Setenv("PAGECAT_MULTIPLIER", "16")
		t.Setenv("PAGECAT_MIN_BLOCK_SIZE", "16384")
		t.Setenv("PAGECAT_MAX_BLOCK_SIZE", "2097152")
		t.Setenv("PAGECAT_BLOCK_SIZE", "65536")
		t.Setenv("PAGECAT_ALLOCATOR", "heap")
		t.Setenv("PAGECAT_FADVISE", "false")
		t.Setenv("NOLOGTIME", "true")

		cfg, err := config.NewConfigFromEnv()
		require.NoError(t, err)
		require.NotNil(t, cfg)
		require.Equal(t, 16, cfg.Multiplier)
		require.Equal(t, 16384, cfg.MinBlockSize)
		require.Equal(t, 2097152, cfg.MaxBlockSize)
		require.Equal(t, 65536, cfg.BlockSize)
		require.Equal(t, "heap", cfg.Allocator)
		require.False(t, cfg.Fadvise)
		require.True(t, cfg.NoLogTime)
	})
	t.Run("unknown allocator", func(t *testing.T) {
		t.Setenv("PAGECAT_ALLOCATOR", "malloc")
		_, err := config.NewConfigFromEnv()
		require.ErrorIs(t, err, alignedbuf.ErrUnknownStrategy)
	})
	t.Run("malformed number", func(t *testing.T) {
		t.Setenv("PAGECAT_MULTIPLIER", "lots")
		_, err := config.NewConfigFromEnv()
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *config.Config)
		expected error
	}{
		{"default is valid", func(_ *config.Config) {}, nil},
		{"zero multiplier", func(c *config.Config) { c.Multiplier = 0 }, config.ErrInvalidMultiplier},
		{"huge multiplier", func(c *config.Config) { c.Multiplier = 1 << 20 }, config.ErrInvalidMultiplier},
		{"zero minimum", func(c *config.Config) { c.MinBlockSize = 0 }, config.ErrInvalidBounds},
		{"minimum above maximum", func(c *config.Config) { c.MinBlockSize = c.MaxBlockSize + 1 }, config.ErrInvalidBounds},
		{"maximum too large", func(c *config.Config) { c.MaxBlockSize = 2 << 30 }, config.ErrInvalidBounds},
		{"negative fixed size", func(c *config.Config) { c.BlockSize = -1 }, config.ErrInvalidBlockSize},
		{"unknown allocator", func(c *config.Config) { c.Allocator = "slab" }, alignedbuf.ErrUnknownStrategy},
		{"empty allocator means mmap", func(c *config.Config) { c.Allocator = "" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.expected == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestString(t *testing.T) {
	out := config.Default().String()
	require.Contains(t, out, "multiplier: 64")
	require.Contains(t, out, "allocator: mmap")
	require.Contains(t, out, "fadvise: true")
}
