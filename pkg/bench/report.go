package bench

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sgaunet/pagecat/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Result is a single timed pass.
type Result struct {
	Multiplier int           `yaml:"multiplier"`
	BlockSize  int           `yaml:"blockSize"`
	Run        int           `yaml:"run"`
	Bytes      int64         `yaml:"bytes"`
	Reads      int           `yaml:"reads"`
	Elapsed    time.Duration `yaml:"elapsed"`
	MBps       float64       `yaml:"mbps"`
	Digest     string        `yaml:"digest,omitempty"`
}

// Summary aggregates the runs of one multiplier.
type Summary struct {
	Multiplier int     `yaml:"multiplier"`
	BlockSize  int     `yaml:"blockSize"`
	Runs       int     `yaml:"runs"`
	MeanMBps   float64 `yaml:"meanMBps"`
	MinMBps    float64 `yaml:"minMBps"`
	MaxMBps    float64 `yaml:"maxMBps"`
}

// Report is the outcome of a benchmark.
type Report struct {
	Path         string   `yaml:"path"`
	Size         int64    `yaml:"size"`
	PageSize     int      `yaml:"pageSize"`
	Hint         int      `yaml:"filesystemHint"`
	Verified     bool     `yaml:"verified"`
	SourceDigest string   `yaml:"sourceDigest,omitempty"`
	Results      []Result `yaml:"results"`
}

// Summaries groups results by multiplier, in ascending multiplier order.
func (r *Report) Summaries() []Summary {
	byMultiplier := make(map[int]*Summary)
	for _, res := range r.Results {
		s, ok := byMultiplier[res.Multiplier]
		if !ok {
			s = &Summary{Multiplier: res.Multiplier, BlockSize: res.BlockSize, MinMBps: res.MBps, MaxMBps: res.MBps}
			byMultiplier[res.Multiplier] = s
		}
		s.Runs++
		s.MeanMBps += res.MBps
		s.MinMBps = min(s.MinMBps, res.MBps)
		s.MaxMBps = max(s.MaxMBps, res.MBps)
	}

	summaries := make([]Summary, 0, len(byMultiplier))
	for _, s := range byMultiplier {
		s.MeanMBps /= float64(s.Runs)
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Multiplier < summaries[j].Multiplier
	})
	return summaries
}

// Best returns the summary with the highest mean throughput. ok is false
// when the report has no results.
func (r *Report) Best() (best Summary, ok bool) {
	for _, s := range r.Summaries() {
		if !ok || s.MeanMBps > best.MeanMBps {
			best, ok = s, true
		}
	}
	return best, ok
}

// WriteText renders the report as an aligned table.
func (r *Report) WriteText(w io.Writer) error {
	separator := strings.Repeat("=", constants.SeparatorWidth)
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "File:       %s (%d bytes)\n", r.Path, r.Size)
	fmt.Fprintf(w, "Page size:  %d\n", r.PageSize)
	fmt.Fprintf(w, "FS hint:    %d\n", r.Hint)
	if r.Verified {
		fmt.Fprintf(w, "BLAKE2b:    %s\n", r.SourceDigest)
	}
	fmt.Fprintln(w, separator)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "multiplier\tblock size\truns\tmean MB/s\tmin MB/s\tmax MB/s\t")
	for _, s := range r.Summaries() {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.1f\t%.1f\t%.1f\t\n",
			s.Multiplier, s.BlockSize, s.Runs, s.MeanMBps, s.MinMBps, s.MaxMBps)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Fprintln(w, separator)
	if best, ok := r.Best(); ok {
		fmt.Fprintf(w, "Best: x%d (%d bytes) at %.1f MB/s\n", best.Multiplier, best.BlockSize, best.MeanMBps)
	}
	return nil
}

// WriteYAML renders the report, its summaries included, as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	doc := struct {
		Report    `yaml:",inline"`
		Summaries []Summary `yaml:"summaries"`
	}{*r, r.Summaries()}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
