// Package publisher delivers diagnostics to the client with debouncing, a
// per-document monotonic version gate, and duplicate suppression.
package publisher

import (
	"sync"
	"time"

	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/QuarticCat/tinymist/internal/core/ports"
)

type published struct {
	version int32
	items   []domain.Diagnostic
}

// Publisher coalesces rapid diagnostic updates into batched publishes.
type Publisher struct {
	client ports.Client
	logger ports.Logger
	window time.Duration

	mu      sync.Mutex
	pending map[domain.InternedString]domain.DiagnosticSet
	last    map[domain.InternedString]published
	timer   *time.Timer
}

// New creates a publisher with the given debounce window.
func New(client ports.Client, logger ports.Logger, window time.Duration) *Publisher {
	if window <= 0 {
		window = domain.DefaultDiagnosticsDebounce
	}
	return &Publisher{
		client:  client,
		logger:  logger,
		window:  window,
		pending: make(map[domain.InternedString]domain.DiagnosticSet),
		last:    make(map[domain.InternedString]published),
	}
}

// Enqueue stages a diagnostic set for publication. The window counts from
// the first set staged since the last publish, so a steady stream of updates
// to one document cannot postpone another document's pending set. A set older
// than the last published version for its document is dropped.
func (p *Publisher) Enqueue(set domain.DiagnosticSet) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, ok := p.last[set.URI]; ok && set.Version < prev.version {
		p.logger.Info("dropping outdated diagnostics for " + set.URI.String())
		return
	}
	if cur, ok := p.pending[set.URI]; ok && set.Version < cur.Version {
		return
	}
	p.pending[set.URI] = set

	if p.timer == nil {
		p.timer = time.AfterFunc(p.window, p.fire)
	}
}

// Clear publishes an empty set for a closed document immediately, bypassing
// the debounce window, and forgets the document's history.
func (p *Publisher) Clear(uri domain.InternedString, version int32) {
	p.mu.Lock()
	delete(p.pending, uri)
	delete(p.last, uri)
	p.mu.Unlock()

	p.client.PublishDiagnostics(domain.DiagnosticSet{URI: uri, Version: version})
}

// fire is called when the debounce window expires.
func (p *Publisher) fire() {
	p.mu.Lock()
	if len(p.pending) == 0 {
		p.timer = nil
		p.mu.Unlock()
		return
	}

	batch := p.takeLocked()
	p.timer = nil
	p.mu.Unlock()

	for _, set := range batch {
		p.client.PublishDiagnostics(set)
	}
}

// Flush immediately publishes all pending diagnostics. It blocks until the
// client has seen them, which makes it suitable for shutdown.
func (p *Publisher) Flush() {
	p.mu.Lock()
	if p.timer != nil {
		if !p.timer.Stop() {
			// Timer already fired, let it complete rather than publishing twice.
			p.mu.Unlock()
			return
		}
		p.timer = nil
	}
	batch := p.takeLocked()
	p.mu.Unlock()

	for _, set := range batch {
		p.client.PublishDiagnostics(set)
	}
}

// takeLocked drains the pending map, applying the monotonic gate and
// duplicate suppression against the publish history. Callers hold p.mu.
func (p *Publisher) takeLocked() []domain.DiagnosticSet {
	batch := make([]domain.DiagnosticSet, 0, len(p.pending))
	for uri, set := range p.pending {
		prev, seen := p.last[uri]
		if seen && set.Version < prev.version {
			continue
		}
		if seen && domain.EqualItems(prev.items, set.Items) {
			// Same payload again; remember the newer version but stay quiet.
			p.last[uri] = published{version: set.Version, items: prev.items}
			continue
		}
		p.last[uri] = published{version: set.Version, items: set.Items}
		batch = append(batch, set)
	}
	p.pending = make(map[domain.InternedString]domain.DiagnosticSet)
	return batch
}
