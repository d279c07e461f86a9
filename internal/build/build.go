// Package build holds build-time version information, populated via ldflags
// at release time.
package build

var (
	// Version is the semantic version of this build.
	Version = "dev"
	// Commit is the VCS revision this binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
