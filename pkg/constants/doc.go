// Package constants provides centralized configuration constants for the pagecat project.
//
// This package consolidates the sizes, bounds and tunables used by block size
// computation, buffer allocation and the command-line tools into a single,
// documented source of truth.
//
// Organization:
//   - storage.go: size units, page and block size bounds, the multiplier
//   - validation.go: configuration boundaries
//   - output.go: exit codes and CLI output formatting
//
// Modifying Constants:
// The block size tunables come from throughput measurements of sequential
// reads. Before modifying:
//  1. Check the documentation comment for rationale
//  2. Rerun pagecat-bench on the target hardware
//  3. Update related constants if needed
package constants
