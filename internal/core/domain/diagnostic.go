package domain

// Severity classifies a diagnostic.
type Severity uint8

const (
	// SeverityError marks a diagnostic that prevents compilation.
	SeverityError Severity = iota + 1
	// SeverityWarning marks a recoverable problem.
	SeverityWarning
	// SeverityHint marks informational output.
	SeverityHint
)

// Diagnostic is one compiler message anchored to a document range.
type Diagnostic struct {
	Range    Range
	Severity Severity
	Message  string
}

// DiagnosticSet is the complete diagnostic state for one document, versioned
// by the document version and the snapshot fingerprint that produced it.
// A set always supersedes the previous one wholesale; it is never patched.
type DiagnosticSet struct {
	URI         InternedString
	Version     int32
	Fingerprint Fingerprint
	Items       []Diagnostic
}

// EqualItems reports whether two sets carry value-identical diagnostics,
// ignoring version and fingerprint. Used to suppress redundant publishes.
func (s DiagnosticSet) EqualItems(other DiagnosticSet) bool {
	return EqualItems(s.Items, other.Items)
}

// EqualItems reports whether two diagnostic slices are value-identical.
func EqualItems(a, b []Diagnostic) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
