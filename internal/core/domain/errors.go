package domain

import "go.trai.ch/zerr"

var (
	// ErrUnknownDocument is returned when an operation targets a document that is not open.
	ErrUnknownDocument = zerr.New("document is not open")

	// ErrStaleEdit is returned when an edit arrives with a version at or below the current one.
	ErrStaleEdit = zerr.New("stale edit: version is not newer than the current document version")

	// ErrEditConflict is returned when a computed edit list no longer applies cleanly.
	ErrEditConflict = zerr.New("edit conflict: edit list is inconsistent or no longer applicable")

	// ErrCancelled signals that a task was aborted on request. It is a signal, not a failure.
	ErrCancelled = zerr.New("task cancelled")

	// ErrSuperseded signals that a task's inputs advanced before it completed.
	ErrSuperseded = zerr.New("task superseded by a newer document version")

	// ErrComputeFailure is returned when the underlying compile engine fails.
	ErrComputeFailure = zerr.New("compile engine failure")

	// ErrSnapshotBuildFailed is returned when a snapshot cannot be assembled.
	ErrSnapshotBuildFailed = zerr.New("failed to build snapshot")

	// ErrInvalidPosition is returned when a position does not fall inside the document text.
	ErrInvalidPosition = zerr.New("position outside document")

	// ErrNoSymbol is returned when no symbol covers the requested position.
	ErrNoSymbol = zerr.New("no symbol at position")

	// ErrUnknownQueryKind is returned when a request carries a capability the engine does not know.
	ErrUnknownQueryKind = zerr.New("unknown query kind")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = zerr.New("invalid configuration value")

	// ErrServeFailed is returned when the language server terminates abnormally.
	ErrServeFailed = zerr.New("language server terminated abnormally")

	// ErrCompileCommandFailed is returned when the one-shot compile command fails.
	ErrCompileCommandFailed = zerr.New("compile command failed")
)

// Detail attaches a key-value pair to a sentinel while keeping the sentinel
// itself in the errors.Is chain. zerr.With applied to a sentinel value
// rebuilds it, which would orphan the sentinel from the chain.
func Detail(sentinel error, key string, value any) error {
	return zerr.With(zerr.Wrap(sentinel, ""), key, value)
}
