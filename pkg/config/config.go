// Package config provides configuration management for the pagecat tools.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/sgaunet/pagecat/pkg/alignedbuf"
	"github.com/sgaunet/pagecat/pkg/constants"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidMultiplier is returned when the multiplier is out of range.
	ErrInvalidMultiplier = errors.New("invalid block size multiplier")
	// ErrInvalidBounds is returned when the block size bounds are inconsistent.
	ErrInvalidBounds = errors.New("invalid block size bounds")
	// ErrInvalidBlockSize is returned when the fixed block size is out of range.
	ErrInvalidBlockSize = errors.New("invalid fixed block size")
)

// Config holds the application configuration.
type Config struct {
	Multiplier   int    `env:"PAGECAT_MULTIPLIER"     env-default:"64"      env-description:"factor applied to lcm(page size, filesystem block size)" yaml:"multiplier"`
	MinBlockSize int    `env:"PAGECAT_MIN_BLOCK_SIZE" env-default:"4096"    env-description:"smallest transfer size in bytes"                          yaml:"minBlockSize"`
	MaxBlockSize int    `env:"PAGECAT_MAX_BLOCK_SIZE" env-default:"4194304" env-description:"largest transfer size in bytes"                           yaml:"maxBlockSize"`
	BlockSize    int    `env:"PAGECAT_BLOCK_SIZE"     env-default:"0"       env-description:"fixed transfer size in bytes, 0 for adaptive sizing"     yaml:"blockSize"`
	Allocator    string `env:"PAGECAT_ALLOCATOR"      env-default:"mmap"    env-description:"buffer allocator: mmap or heap"                          yaml:"allocator"`
	Fadvise      bool   `env:"PAGECAT_FADVISE"        env-default:"true"    env-description:"advise the kernel of sequential access"                  yaml:"fadvise"`
	NoLogTime    bool   `env:"NOLOGTIME"              env-default:"false"   env-description:"omit timestamps from log lines"                          yaml:"noLogTime"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Multiplier:   constants.DefaultMultiplier,
		MinBlockSize: constants.MinBlockSize,
		MaxBlockSize: constants.MaxBlockSize,
		Allocator:    constants.AllocatorMmap,
		Fadvise:      true,
	}
}

// NewConfigFromFile returns a new Config struct from the given YAML file.
// Environment variables override values from the file.
func NewConfigFromFile(filePath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(filePath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from file %s: %w", filePath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewConfigFromEnv returns a new Config struct from the environment variables.
func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	err := cleanenv.ReadEnv(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	if c.Multiplier < 1 || c.Multiplier > constants.MaxMultiplier {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidMultiplier, c.Multiplier, constants.MaxMultiplier)
	}
	if c.MinBlockSize < 1 {
		return fmt.Errorf("%w: minimum %d must be positive", ErrInvalidBounds, c.MinBlockSize)
	}
	if c.MaxBlockSize > constants.AbsoluteMaxBlockSize {
		return fmt.Errorf("%w: maximum %d exceeds %d", ErrInvalidBounds, c.MaxBlockSize, constants.AbsoluteMaxBlockSize)
	}
	if c.MinBlockSize > c.MaxBlockSize {
		return fmt.Errorf("%w: minimum %d is above maximum %d", ErrInvalidBounds, c.MinBlockSize, c.MaxBlockSize)
	}
	if c.BlockSize < 0 || c.BlockSize > constants.AbsoluteMaxBlockSize {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, c.BlockSize)
	}
	if _, err := alignedbuf.ParseStrategy(c.Allocator); err != nil {
		return fmt.Errorf("invalid allocator: %w", err)
	}
	return nil
}

// Strategy returns the allocation strategy named by Allocator.
func (c *Config) Strategy() alignedbuf.Strategy {
	s, err := alignedbuf.ParseStrategy(c.Allocator)
	if err != nil {
		return alignedbuf.StrategyMmap
	}
	return s
}

func (c *Config) String() string {
	cyaml, err := yaml.Marshal(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return string(cyaml)
}

// Usage prints the environment variables understood by the config.
func (c *Config) Usage() {
	f := cleanenv.Usage(c, nil)
	f()
}
