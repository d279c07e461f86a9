package config

// File represents the structure of the tinymist.yaml configuration file.
// Pointer fields distinguish "absent" from "zero".
type File struct {
	Root                  string `yaml:"root"`
	DiagnosticsDebounceMS *int   `yaml:"diagnosticsDebounceMs"`
	CacheBudget           *int64 `yaml:"cacheBudget"`
	Workers               *int   `yaml:"workers"`
	FormatWidth           *int   `yaml:"formatWidth"`
}
