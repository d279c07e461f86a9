package domain

// SymbolKind classifies a symbol extracted from a document.
type SymbolKind uint8

const (
	// SymbolBinding is a let-binding or function definition.
	SymbolBinding SymbolKind = iota
	// SymbolLabel is an addressable <label>.
	SymbolLabel
	// SymbolHeading is a section heading.
	SymbolHeading
)

// Symbol is one definition site in a document.
type Symbol struct {
	Name   string
	Kind   SymbolKind
	URI    InternedString
	Range  Range
	Detail string
}

// Reference is one use site of a named symbol.
type Reference struct {
	Name  string
	URI   InternedString
	Range Range
}

// DocumentIndex is the per-document analysis result: every definition and use
// site found in that document alone. It depends only on the document's own
// text, which is what lets it be cached by document fingerprint.
type DocumentIndex struct {
	URI      InternedString
	Symbols  []Symbol
	Refs     []Reference
	Includes []string
}

// Artifact is the output of compiling a snapshot: the merged document indexes
// plus whatever the engine derived across documents.
type Artifact struct {
	Indexes map[InternedString]*DocumentIndex
}

// SymbolAt returns the symbol whose range covers the position, if any.
func (ix *DocumentIndex) SymbolAt(pos Position) (Symbol, bool) {
	for _, sym := range ix.Symbols {
		if sym.Range.Contains(pos) {
			return sym, true
		}
	}
	return Symbol{}, false
}

// RefAt returns the reference whose range covers the position, if any.
func (ix *DocumentIndex) RefAt(pos Position) (Reference, bool) {
	for _, ref := range ix.Refs {
		if ref.Range.Contains(pos) {
			return ref, true
		}
	}
	return Reference{}, false
}
