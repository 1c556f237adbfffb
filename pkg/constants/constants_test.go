package constants_test

import (
	"math/bits"
	"testing"

	"github.com/sgaunet/pagecat/pkg/constants"
)

func TestSizeConstants(t *testing.T) {
	// Verify size calculations
	tests := []struct {
		name     string
		constant int
		expected int
	}{
		{"KB", constants.KB, 1024},
		{"MB", constants.MB, 1024 * 1024},
		{"GB", constants.GB, 1024 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("%s = %d, want %d", tt.name, tt.constant, tt.expected)
			}
		})
	}
}

func TestPowerOfTwoConstants(t *testing.T) {
	// Every size used for alignment must be a power of two
	tests := []struct {
		name     string
		constant int
	}{
		{"DefaultPageSize", constants.DefaultPageSize},
		{"MinFilesystemHint", constants.MinFilesystemHint},
		{"MaxFilesystemHint", constants.MaxFilesystemHint},
		{"MinBlockSize", constants.MinBlockSize},
		{"MaxBlockSize", constants.MaxBlockSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if bits.OnesCount(uint(tt.constant)) != 1 {
				t.Errorf("%s = %d is not a power of two", tt.name, tt.constant)
			}
		})
	}
}

func TestBlockSizeBounds(t *testing.T) {
	if constants.MinBlockSize != 4*constants.KB {
		t.Errorf("MinBlockSize = %d, want %d (4KB)", constants.MinBlockSize, 4*constants.KB)
	}
	if constants.MaxBlockSize != 4*constants.MB {
		t.Errorf("MaxBlockSize = %d, want %d (4MB)", constants.MaxBlockSize, 4*constants.MB)
	}
	if constants.MinFilesystemHint >= constants.MaxFilesystemHint {
		t.Error("MinFilesystemHint should be below MaxFilesystemHint")
	}
	if constants.MaxBlockSize > constants.AbsoluteMaxBlockSize {
		t.Error("MaxBlockSize should not exceed AbsoluteMaxBlockSize")
	}
}

func TestMultiplierConstants(t *testing.T) {
	if constants.DefaultMultiplier < 1 || constants.DefaultMultiplier > constants.MaxMultiplier {
		t.Errorf("DefaultMultiplier = %d, want within [1, %d]", constants.DefaultMultiplier, constants.MaxMultiplier)
	}
}

func TestExitCodes(t *testing.T) {
	if constants.ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", constants.ExitSuccess)
	}
	if constants.ExitFailure == constants.ExitSuccess {
		t.Error("ExitFailure must differ from ExitSuccess")
	}
}

func TestOutputConstants(t *testing.T) {
	// Verify output formatting constants
	if constants.SeparatorWidth != 60 {
		t.Errorf("SeparatorWidth = %d, want 60", constants.SeparatorWidth)
	}
}
