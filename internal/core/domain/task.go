package domain

// TaskClass separates interactive reads from background recomputes. The
// scheduler never lets background work starve interactive requests.
type TaskClass uint8

const (
	// ClassInteractive is a client-facing request (hover, completion, ...).
	ClassInteractive TaskClass = iota
	// ClassBackground is an internally triggered recompute (diagnostics).
	ClassBackground
)

// TaskState tracks a scheduled task through its lifecycle.
type TaskState string

const (
	// StateQueued indicates the task is waiting for a worker slot.
	StateQueued TaskState = "Queued"
	// StateRunning indicates the task is executing.
	StateRunning TaskState = "Running"
	// StateCompleted indicates the task returned a valid, non-stale result.
	StateCompleted TaskState = "Completed"
	// StateCancelled indicates the client cancelled or the document closed.
	StateCancelled TaskState = "Cancelled"
	// StateSuperseded indicates a newer edit invalidated the task's read set.
	StateSuperseded TaskState = "Superseded"
	// StateFailed indicates the resolver returned an error.
	StateFailed TaskState = "Failed"
)

// QueryKind is the closed set of editor-facing capabilities.
type QueryKind uint8

const (
	// KindHover answers documentation at a position.
	KindHover QueryKind = iota
	// KindCompletion proposes completions at a position.
	KindCompletion
	// KindDefinition resolves the definition of the symbol at a position.
	KindDefinition
	// KindRename rewrites every occurrence of the symbol at a position.
	KindRename
	// KindFormatting produces a formatting edit list for a document.
	KindFormatting
	// KindDiagnostics recompiles and derives the full diagnostic set.
	KindDiagnostics
)

// String names the capability for logs and trace spans.
func (k QueryKind) String() string {
	switch k {
	case KindHover:
		return "hover"
	case KindCompletion:
		return "completion"
	case KindDefinition:
		return "definition"
	case KindRename:
		return "rename"
	case KindFormatting:
		return "formatting"
	case KindDiagnostics:
		return "diagnostics"
	default:
		return "unknown"
	}
}
