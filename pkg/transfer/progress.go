package transfer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sgaunet/pagecat/pkg/constants"
	"golang.org/x/time/rate"
)

// Reporter receives progress notifications from Copy.
type Reporter interface {
	// Start signals the beginning of a copy with the given block size.
	Start(blockSize int)

	// Update is called after each block has been fully written.
	Update(stats Stats)

	// Complete signals that the source reached end of file.
	Complete(stats Stats)

	// Fail signals a fatal read or write error.
	Fail(stats Stats, err error)
}

// LogReporter implements Reporter with slog output. Updates are throttled to
// one line per constants.ProgressLogIntervalSeconds.
type LogReporter struct {
	logger   *slog.Logger
	total    int64
	throttle *rate.Sometimes
	started  time.Time
	now      func() time.Time
}

// NewLogReporter creates a reporter for a transfer of total bytes.
// A non-positive total disables percentages.
func NewLogReporter(logger *slog.Logger, total int64) *LogReporter {
	return &LogReporter{
		logger:   logger,
		total:    total,
		throttle: &rate.Sometimes{Interval: constants.ProgressLogIntervalSeconds * time.Second},
		now:      time.Now,
	}
}

// Start logs the block size.
func (r *LogReporter) Start(blockSize int) {
	r.started = r.now()
	r.logger.Debug("[COPY] Starting", "block_size", blockSize, "total_bytes", r.total)
}

// Update logs the amount copied so far, at most once per interval.
func (r *LogReporter) Update(stats Stats) {
	r.throttle.Do(func() {
		r.logger.Info(fmt.Sprintf("[COPY] %s", r.progress(stats)))
	})
}

// Complete logs the final counters and the throughput.
func (r *LogReporter) Complete(stats Stats) {
	elapsed := r.now().Sub(r.started)
	r.logger.Info(fmt.Sprintf("[COPY] %s ✓", formatBytes(stats.Bytes)),
		"reads", stats.Reads,
		"writes", stats.Writes,
		"short_writes", stats.ShortWrites,
		"retries", stats.ReadRetries+stats.WriteRetries,
		"elapsed", elapsed,
		"throughput", Throughput(stats.Bytes, elapsed),
	)
}

// Fail logs the error with the amount already written.
func (r *LogReporter) Fail(stats Stats, err error) {
	r.logger.Error(fmt.Sprintf("[COPY] %s ✗ %v", r.progress(stats), err))
}

func (r *LogReporter) progress(stats Stats) string {
	if r.total <= 0 {
		return formatBytes(stats.Bytes)
	}
	pct := float64(stats.Bytes) * 100 / float64(r.total)
	return fmt.Sprintf("%s/%s (%.1f%%)", formatBytes(stats.Bytes), formatBytes(r.total), pct)
}

// NoOpReporter is a progress reporter that does nothing.
type NoOpReporter struct{}

// Start does nothing.
func (NoOpReporter) Start(_ int) {}

// Update does nothing.
func (NoOpReporter) Update(_ Stats) {}

// Complete does nothing.
func (NoOpReporter) Complete(_ Stats) {}

// Fail does nothing.
func (NoOpReporter) Fail(_ Stats, _ error) {}

// Throughput formats bytes transferred over elapsed as MB/s.
func Throughput(bytes int64, elapsed time.Duration) string {
	return fmt.Sprintf("%.1f MB/s", MegabytesPerSecond(bytes, elapsed))
}

// MegabytesPerSecond returns bytes/elapsed in MB/s, or 0 for a zero duration.
func MegabytesPerSecond(bytes int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(bytes) / constants.MB / elapsed.Seconds()
}

func formatBytes(n int64) string {
	switch {
	case n >= constants.GB:
		return fmt.Sprintf("%.2f GB", float64(n)/constants.GB)
	case n >= constants.MB:
		return fmt.Sprintf("%.2f MB", float64(n)/constants.MB)
	case n >= constants.KB:
		return fmt.Sprintf("%.2f KB", float64(n)/constants.KB)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
