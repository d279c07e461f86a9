package domain

import (
	"fmt"
	"slices"
)

// Fingerprint is a deterministic hash identifying the semantic content of a
// snapshot (or of a single document within one). Equal fingerprints are
// interchangeable for caching purposes.
type Fingerprint uint64

// String renders the fingerprint as fixed-width hex.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// FileSlot is the exact text and version of one document as captured by a
// snapshot.
type FileSlot struct {
	Text    string
	Version int32
}

// Snapshot is an immutable view of every input that influences a compile: the
// captured documents plus the configuration and auxiliary-input revisions
// current at creation time. Snapshots are shared freely between concurrent
// queries and never mutated; new edits always produce a new snapshot.
type Snapshot struct {
	fingerprint     Fingerprint
	files           map[InternedString]FileSlot
	docFingerprints map[InternedString]Fingerprint
	configRevision  uint64
	auxRevision     uint64
}

// NewSnapshot assembles a snapshot from captured state. The fingerprint maps
// are computed by the snapshot builder; the constructor only freezes them.
func NewSnapshot(
	files map[InternedString]FileSlot,
	fingerprint Fingerprint,
	docFingerprints map[InternedString]Fingerprint,
	configRevision, auxRevision uint64,
) *Snapshot {
	return &Snapshot{
		fingerprint:     fingerprint,
		files:           files,
		docFingerprints: docFingerprints,
		configRevision:  configRevision,
		auxRevision:     auxRevision,
	}
}

// Fingerprint identifies the whole snapshot.
func (s *Snapshot) Fingerprint() Fingerprint {
	return s.fingerprint
}

// DocFingerprint identifies the minimal read set of a single document. Query
// results that only read one document are cached under this key so edits to
// unrelated documents do not invalidate them.
func (s *Snapshot) DocFingerprint(uri InternedString) (Fingerprint, bool) {
	fp, ok := s.docFingerprints[uri]
	return fp, ok
}

// File returns the captured slot for a document.
func (s *Snapshot) File(uri InternedString) (FileSlot, bool) {
	slot, ok := s.files[uri]
	return slot, ok
}

// URIs returns the captured document identities in deterministic order.
func (s *Snapshot) URIs() []InternedString {
	uris := make([]InternedString, 0, len(s.files))
	for uri := range s.files {
		uris = append(uris, uri)
	}
	slices.SortFunc(uris, func(a, b InternedString) int {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		default:
			return 0
		}
	})
	return uris
}

// ConfigRevision returns the configuration revision captured at build time.
func (s *Snapshot) ConfigRevision() uint64 {
	return s.configRevision
}

// AuxRevision returns the auxiliary-input (fonts, on-disk assets) revision
// captured at build time.
func (s *Snapshot) AuxRevision() uint64 {
	return s.auxRevision
}
