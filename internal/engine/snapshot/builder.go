// Package snapshot materializes immutable, fingerprinted world views from the
// document store. Building is pure data assembly: compilation happens later,
// when a cache entry is requested against the snapshot.
package snapshot

import (
	"encoding/binary"
	"errors"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/QuarticCat/tinymist/internal/engine/docstore"
	"go.trai.ch/zerr"
)

// Scope selects how much of the workspace a snapshot captures.
type Scope uint8

const (
	// ScopeDocument captures the target document plus its include closure.
	ScopeDocument Scope = iota
	// ScopeWorkspace captures every open document.
	ScopeWorkspace
)

// FingerprintFunc hashes the inputs that influence a compiled result. It is
// injectable so tests can substitute deterministic stand-ins.
type FingerprintFunc func(uris []domain.InternedString, files map[domain.InternedString]domain.FileSlot, configRev, auxRev uint64) domain.Fingerprint

// IncludeResolver extracts the include targets of a document, used to close
// over ScopeDocument builds. May be nil, in which case the closure is the
// document alone.
type IncludeResolver func(uri domain.InternedString, text string) []string

// Builder assembles snapshots from the document store plus auxiliary inputs.
type Builder struct {
	docs      *docstore.Store
	fpFn      FingerprintFunc
	includes  IncludeResolver
	configRev atomic.Uint64
	auxRev    atomic.Uint64
}

// New creates a Builder with the default xxhash fingerprint function.
func New(docs *docstore.Store) *Builder {
	return &Builder{
		docs: docs,
		fpFn: DefaultFingerprint,
	}
}

// WithFingerprintFunc overrides the fingerprint function.
func (b *Builder) WithFingerprintFunc(fn FingerprintFunc) *Builder {
	b.fpFn = fn
	return b
}

// WithIncludeResolver sets the resolver used to close over document scopes.
func (b *Builder) WithIncludeResolver(fn IncludeResolver) *Builder {
	b.includes = fn
	return b
}

// BumpConfig records a configuration change; subsequent snapshots fingerprint
// differently.
func (b *Builder) BumpConfig() {
	b.configRev.Add(1)
}

// BumpAux records an auxiliary-input change (fonts, on-disk assets).
func (b *Builder) BumpAux() {
	b.auxRev.Add(1)
}

// Build captures a consistent view of the requested scope. For ScopeDocument
// the main document must be open.
func (b *Builder) Build(scope Scope, main domain.InternedString) (*domain.Snapshot, error) {
	all := b.docs.Capture()

	var files map[domain.InternedString]domain.FileSlot
	switch scope {
	case ScopeWorkspace:
		files = all
	case ScopeDocument:
		if _, ok := all[main]; !ok {
			return nil, zerr.With(
				errors.Join(domain.ErrSnapshotBuildFailed, domain.ErrUnknownDocument),
				"uri", main.String(),
			)
		}
		files = b.closure(all, main)
	default:
		return nil, domain.Detail(domain.ErrSnapshotBuildFailed, "scope", "unknown")
	}

	configRev := b.configRev.Load()
	auxRev := b.auxRev.Load()

	snap := domain.NewSnapshot(
		files,
		b.fingerprint(files, configRev, auxRev),
		docFingerprints(files),
		configRev,
		auxRev,
	)
	return snap, nil
}

// closure walks includes breadth-first, keeping only open documents whose
// path matches an include target by suffix.
func (b *Builder) closure(
	all map[domain.InternedString]domain.FileSlot,
	main domain.InternedString,
) map[domain.InternedString]domain.FileSlot {
	files := map[domain.InternedString]domain.FileSlot{main: all[main]}
	if b.includes == nil {
		return files
	}

	queue := []domain.InternedString{main}
	for len(queue) > 0 {
		uri := queue[0]
		queue = queue[1:]

		for _, target := range b.includes(uri, files[uri].Text) {
			for candidate, slot := range all {
				if _, seen := files[candidate]; seen {
					continue
				}
				if matchesInclude(candidate.String(), target) {
					files[candidate] = slot
					queue = append(queue, candidate)
				}
			}
		}
	}
	return files
}

func matchesInclude(uri, target string) bool {
	if len(target) == 0 || len(uri) < len(target) {
		return false
	}
	return uri[len(uri)-len(target):] == target
}

func (b *Builder) fingerprint(files map[domain.InternedString]domain.FileSlot, configRev, auxRev uint64) domain.Fingerprint {
	uris := make([]domain.InternedString, 0, len(files))
	for uri := range files {
		uris = append(uris, uri)
	}
	slices.SortFunc(uris, func(a, b domain.InternedString) int {
		return strings.Compare(a.String(), b.String())
	})
	return b.fpFn(uris, files, configRev, auxRev)
}

// DefaultFingerprint hashes each document's (uri, version, text) in sorted
// order plus the config and aux revisions. NUL separators keep adjacent
// fields from aliasing.
func DefaultFingerprint(
	uris []domain.InternedString,
	files map[domain.InternedString]domain.FileSlot,
	configRev, auxRev uint64,
) domain.Fingerprint {
	digest := xxhash.New()
	var buf [8]byte

	for _, uri := range uris {
		slot := files[uri]
		_, _ = digest.WriteString(uri.String())
		_, _ = digest.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf[:], uint64(slot.Version))
		_, _ = digest.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], xxhash.Sum64String(slot.Text))
		_, _ = digest.Write(buf[:])
		_, _ = digest.Write([]byte{0})
	}

	binary.LittleEndian.PutUint64(buf[:], configRev)
	_, _ = digest.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], auxRev)
	_, _ = digest.Write(buf[:])

	return domain.Fingerprint(digest.Sum64())
}

// docFingerprints computes the minimal-read-set key for each document.
func docFingerprints(files map[domain.InternedString]domain.FileSlot) map[domain.InternedString]domain.Fingerprint {
	fps := make(map[domain.InternedString]domain.Fingerprint, len(files))
	for uri, slot := range files {
		digest := xxhash.New()
		var buf [8]byte

		_, _ = digest.WriteString(uri.String())
		_, _ = digest.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf[:], uint64(slot.Version))
		_, _ = digest.Write(buf[:])
		_, _ = digest.WriteString(slot.Text)

		fps[uri] = domain.Fingerprint(digest.Sum64())
	}
	return fps
}
