// Package docstore holds the authoritative text and version of every open
// document. All mutation arrives serialized from the transport loop; reads
// happen through immutable captures, never through shared mutable state.
package docstore

import (
	"strconv"
	"sync"

	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/QuarticCat/tinymist/internal/core/ports"
	"go.trai.ch/zerr"
)

// Invalidation is the signal emitted after every mutating call. The scheduler
// and publisher consume it to supersede stale work and trigger recomputes.
type Invalidation struct {
	URI     domain.InternedString
	Version int32
	Closed  bool
}

// Store implements the document store contract.
type Store struct {
	logger ports.Logger

	mu      sync.RWMutex
	docs    map[domain.InternedString]*domain.Document
	focused domain.InternedString
	subs    []func(Invalidation)
}

// New creates an empty document store.
func New(logger ports.Logger) *Store {
	return &Store{
		logger: logger,
		docs:   make(map[domain.InternedString]*domain.Document),
	}
}

// OnInvalidate registers a subscriber for invalidation signals. Subscribers
// must be registered at wiring time, before the transport starts delivering
// mutations.
func (s *Store) OnInvalidate(fn func(Invalidation)) {
	s.subs = append(s.subs, fn)
}

// Open registers a document. Reopening an already-open document replaces its
// content, matching editor behavior after a reload.
func (s *Store) Open(uri domain.InternedString, languageID, text string, version int32) {
	s.mu.Lock()
	s.docs[uri] = &domain.Document{
		URI:        uri,
		LanguageID: languageID,
		Text:       text,
		Version:    version,
	}
	if s.focused == (domain.InternedString{}) {
		s.focused = uri
	}
	s.mu.Unlock()

	s.notify(Invalidation{URI: uri, Version: version})
}

// Edit applies transport changes to an open document. Versions must be
// strictly increasing; a late-arriving edit is rejected with ErrStaleEdit and
// never applied, protecting against out-of-order delivery.
func (s *Store) Edit(uri domain.InternedString, changes []domain.ContentChange, newVersion int32) error {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		s.mu.Unlock()
		return domain.Detail(domain.ErrUnknownDocument, "uri", uri.String())
	}
	if newVersion <= doc.Version {
		current := doc.Version
		s.mu.Unlock()
		s.logger.Warn("dropping stale edit for " + uri.String() +
			" (version " + strconv.Itoa(int(newVersion)) + " <= " + strconv.Itoa(int(current)) + ")")
		staleErr := domain.Detail(domain.ErrStaleEdit, "uri", uri.String())
		staleErr = zerr.With(staleErr, "version", strconv.Itoa(int(newVersion)))
		return zerr.With(staleErr, "current", strconv.Itoa(int(current)))
	}

	text, err := domain.ApplyChanges(doc.Text, changes)
	if err != nil {
		s.mu.Unlock()
		return zerr.With(zerr.Wrap(err, "failed to apply edit"), "uri", uri.String())
	}
	doc.Text = text
	doc.Version = newVersion
	s.mu.Unlock()

	s.notify(Invalidation{URI: uri, Version: newVersion})
	return nil
}

// Close removes a document. In-flight tasks reading it are cancelled by the
// scheduler via the emitted invalidation.
func (s *Store) Close(uri domain.InternedString) error {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		s.mu.Unlock()
		return domain.Detail(domain.ErrUnknownDocument, "uri", uri.String())
	}
	version := doc.Version
	delete(s.docs, uri)
	if s.focused == uri {
		s.focused = domain.InternedString{}
		for other := range s.docs {
			s.focused = other
			break
		}
	}
	s.mu.Unlock()

	s.notify(Invalidation{URI: uri, Version: version, Closed: true})
	return nil
}

// Snapshot returns the current text and version of one document.
func (s *Store) Snapshot(uri domain.InternedString) (string, int32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[uri]
	if !ok {
		return "", 0, domain.Detail(domain.ErrUnknownDocument, "uri", uri.String())
	}
	return doc.Text, doc.Version, nil
}

// Version returns the current version of a document, or false if not open.
func (s *Store) Version(uri domain.InternedString) (int32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[uri]
	if !ok {
		return 0, false
	}
	return doc.Version, true
}

// Capture copies the full open-document state for snapshot assembly.
func (s *Store) Capture() map[domain.InternedString]domain.FileSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make(map[domain.InternedString]domain.FileSlot, len(s.docs))
	for uri, doc := range s.docs {
		files[uri] = domain.FileSlot{Text: doc.Text, Version: doc.Version}
	}
	return files
}

// Focus marks a document as the primary entry. Implicit focusing follows
// open and hover-class activity when the client never pins explicitly.
func (s *Store) Focus(uri domain.InternedString) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[uri]; ok {
		s.focused = uri
	}
}

// Focused returns the primary entry document, if any.
func (s *Store) Focused() (domain.InternedString, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.focused == (domain.InternedString{}) {
		return domain.InternedString{}, false
	}
	return s.focused, true
}

func (s *Store) notify(inv Invalidation) {
	for _, fn := range s.subs {
		fn(inv)
	}
}
