package bench

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-andiamo/splitter"
	"github.com/sgaunet/pagecat/pkg/constants"
)

// ErrInvalidMultiplier is returned by ParseMultipliers for bad entries.
var ErrInvalidMultiplier = errors.New("invalid multiplier")

// ParseMultipliers parses a comma-separated list such as "16, 32,64".
// Empty entries are skipped; duplicates are kept in order.
func ParseMultipliers(list string) ([]int, error) {
	listSplitter, err := splitter.NewSplitter(',')
	if err != nil {
		return nil, fmt.Errorf("failed to create list splitter: %w", err)
	}
	parts, err := listSplitter.Split(list, splitter.Trim(" \t"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse multipliers %q: %w", list, err)
	}

	multipliers := make([]int, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		m, err := strconv.Atoi(part)
		if err != nil || m < 1 || m > constants.MaxMultiplier {
			return nil, fmt.Errorf("%w: %q (must be between 1 and %d)", ErrInvalidMultiplier, part, constants.MaxMultiplier)
		}
		multipliers = append(multipliers, m)
	}
	if len(multipliers) == 0 {
		return nil, ErrNoMultipliers
	}
	return multipliers, nil
}
