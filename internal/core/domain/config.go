package domain

import "time"

// Config holds the tunable policy knobs of the analysis engine. Debounce and
// eviction have no single correct value, so they are configuration, not
// constants.
type Config struct {
	// Root is the workspace root directory.
	Root string
	// DiagnosticsDebounce is the window within which edit bursts coalesce
	// before a diagnostics recompute is triggered.
	DiagnosticsDebounce time.Duration
	// CacheBudget bounds the total cost of retained cache entries.
	CacheBudget int64
	// Workers bounds the compile/query worker pool.
	Workers int
	// FormatWidth is the target line width for the formatter.
	FormatWidth int
}

// Default policy values, used when tinymist.yaml is absent or partial.
const (
	DefaultDiagnosticsDebounce = 150 * time.Millisecond
	DefaultCacheBudget         = int64(64 << 20)
	DefaultFormatWidth         = 80
)

// ConfigFileName is the workspace configuration file the loader searches for.
const ConfigFileName = "tinymist.yaml"
