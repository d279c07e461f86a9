// Package query implements the editor-facing capabilities as compositions of
// cached sub-computations over a snapshot. Capabilities form a closed set
// dispatched by kind; each declares the read set its result depends on.
package query

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/QuarticCat/tinymist/internal/core/ports"
	"github.com/QuarticCat/tinymist/internal/engine/memo"
)

// Request is one capability invocation against a snapshot.
type Request struct {
	Kind    domain.QueryKind
	URI     domain.InternedString
	Pos     domain.Position
	NewName string
}

// ReadSet returns the documents the request's result depends on, given the
// snapshot it will run against. Single-document capabilities read only their
// target; workspace capabilities read every captured document.
func (r Request) ReadSet(snap *domain.Snapshot) []domain.InternedString {
	switch r.Kind {
	case domain.KindHover, domain.KindCompletion, domain.KindFormatting:
		return []domain.InternedString{r.URI}
	default:
		return snap.URIs()
	}
}

// WorkspaceScoped reports whether the request needs a workspace snapshot
// rather than the target document's include closure.
func (r Request) WorkspaceScoped() bool {
	switch r.Kind {
	case domain.KindHover, domain.KindCompletion, domain.KindFormatting:
		return false
	default:
		return true
	}
}

// HoverResult is the answer to a hover request.
type HoverResult struct {
	Contents string
	Range    domain.Range
}

// CompletionItem is one completion proposal.
type CompletionItem struct {
	Label  string
	Kind   domain.SymbolKind
	Detail string
}

// Location is a resolved definition site.
type Location struct {
	URI   domain.InternedString
	Range domain.Range
}

// Response carries the result of exactly one capability; the field matching
// the request kind is populated.
type Response struct {
	Hover       *HoverResult
	Completions []CompletionItem
	Locations   []Location
	Rename      *domain.WorkspaceEdits
	Formatting  []domain.TextEdit
	Diagnostics map[domain.InternedString]domain.DiagnosticSet
}

type compileResult struct {
	artifact    *domain.Artifact
	diagnostics map[domain.InternedString][]domain.Diagnostic
}

// Engine resolves requests against snapshots through the memo cache.
type Engine struct {
	cache     *memo.Cache
	compiler  ports.CompileEngine
	formatter ports.Formatter
	tracer    ports.Tracer
	width     int
}

// New creates a query engine.
func New(cache *memo.Cache, compiler ports.CompileEngine, formatter ports.Formatter, tracer ports.Tracer, formatWidth int) *Engine {
	if formatWidth <= 0 {
		formatWidth = domain.DefaultFormatWidth
	}
	return &Engine{
		cache:     cache,
		compiler:  compiler,
		formatter: formatter,
		tracer:    tracer,
		width:     formatWidth,
	}
}

// Resolve runs one request against a snapshot. The snapshot is immutable, so
// resolution never observes a torn document state; staleness against the live
// store is the scheduler's job.
func (e *Engine) Resolve(ctx context.Context, snap *domain.Snapshot, req Request) (*Response, error) {
	ctx, span := e.tracer.Start(ctx, "query."+req.Kind.String())
	defer span.End()
	span.SetAttribute("uri", req.URI.String())
	span.SetAttribute("fingerprint", snap.Fingerprint().String())

	resp, err := e.resolve(ctx, snap, req)
	if err != nil {
		span.RecordError(err)
	}
	return resp, err
}

func (e *Engine) resolve(ctx context.Context, snap *domain.Snapshot, req Request) (*Response, error) {
	switch req.Kind {
	case domain.KindHover:
		return e.hover(ctx, snap, req)
	case domain.KindCompletion:
		return e.completion(ctx, snap, req)
	case domain.KindDefinition:
		return e.definition(ctx, snap, req)
	case domain.KindRename:
		return e.rename(ctx, snap, req)
	case domain.KindFormatting:
		return e.formatting(ctx, snap, req)
	case domain.KindDiagnostics:
		return e.diagnostics(ctx, snap, req)
	default:
		return nil, domain.Detail(domain.ErrUnknownQueryKind, "kind", req.Kind.String())
	}
}

// docIndex loads the per-document analysis index through the cache, keyed by
// the document fingerprint so edits elsewhere leave it untouched.
func (e *Engine) docIndex(ctx context.Context, snap *domain.Snapshot, uri domain.InternedString) (*domain.DocumentIndex, error) {
	slot, ok := snap.File(uri)
	if !ok {
		return nil, domain.Detail(domain.ErrUnknownDocument, "uri", uri.String())
	}
	fp, _ := snap.DocFingerprint(uri)

	val, err := e.cache.GetOrCompute(ctx, memo.KindDocIndex, fp, func(ctx context.Context) (any, error) {
		return e.compiler.AnalyzeDocument(ctx, uri, slot.Text)
	})
	if err != nil {
		return nil, err
	}
	return val.(*domain.DocumentIndex), nil
}

// compiled loads the full compile result for the snapshot through the cache.
func (e *Engine) compiled(ctx context.Context, snap *domain.Snapshot, main domain.InternedString) (*compileResult, error) {
	val, err := e.cache.GetOrCompute(ctx, memo.KindCompile, snap.Fingerprint(), func(ctx context.Context) (any, error) {
		artifact, diags, err := e.compiler.Compile(ctx, snap, main)
		if err != nil {
			return nil, errors.Join(domain.ErrComputeFailure, err)
		}
		return &compileResult{artifact: artifact, diagnostics: diags}, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*compileResult), nil
}

func (e *Engine) hover(ctx context.Context, snap *domain.Snapshot, req Request) (*Response, error) {
	ix, err := e.docIndex(ctx, snap, req.URI)
	if err != nil {
		return nil, err
	}

	if sym, ok := ix.SymbolAt(req.Pos); ok {
		return &Response{Hover: &HoverResult{Contents: hoverContents(sym), Range: sym.Range}}, nil
	}
	if ref, ok := ix.RefAt(req.Pos); ok {
		contents := "reference to `" + ref.Name + "`"
		return &Response{Hover: &HoverResult{Contents: contents, Range: ref.Range}}, nil
	}
	return &Response{}, nil
}

func hoverContents(sym domain.Symbol) string {
	var sb strings.Builder
	switch sym.Kind {
	case domain.SymbolBinding:
		sb.WriteString("```typst\n#let " + sym.Name + "\n```")
	case domain.SymbolLabel:
		sb.WriteString("label `<" + sym.Name + ">`")
	case domain.SymbolHeading:
		sb.WriteString("heading: " + sym.Name)
	}
	if sym.Detail != "" {
		sb.WriteString("\n\n" + sym.Detail)
	}
	return sb.String()
}

func (e *Engine) completion(ctx context.Context, snap *domain.Snapshot, req Request) (*Response, error) {
	ix, err := e.docIndex(ctx, snap, req.URI)
	if err != nil {
		return nil, err
	}

	items := make([]CompletionItem, 0, len(ix.Symbols))
	for _, sym := range ix.Symbols {
		items = append(items, CompletionItem{Label: sym.Name, Kind: sym.Kind, Detail: sym.Detail})
	}
	return &Response{Completions: items}, nil
}

func (e *Engine) definition(ctx context.Context, snap *domain.Snapshot, req Request) (*Response, error) {
	ix, err := e.docIndex(ctx, snap, req.URI)
	if err != nil {
		return nil, err
	}

	name := ""
	if ref, ok := ix.RefAt(req.Pos); ok {
		name = ref.Name
	} else if sym, ok := ix.SymbolAt(req.Pos); ok {
		name = sym.Name
	}
	if name == "" {
		return &Response{}, nil
	}

	var locs []Location
	for _, uri := range snap.URIs() {
		other, err := e.docIndex(ctx, snap, uri)
		if err != nil {
			return nil, err
		}
		for _, sym := range other.Symbols {
			if sym.Name == name {
				locs = append(locs, Location{URI: uri, Range: sym.Range})
			}
		}
	}
	return &Response{Locations: locs}, nil
}

func (e *Engine) rename(ctx context.Context, snap *domain.Snapshot, req Request) (*Response, error) {
	ix, err := e.docIndex(ctx, snap, req.URI)
	if err != nil {
		return nil, err
	}

	name := ""
	if sym, ok := ix.SymbolAt(req.Pos); ok {
		name = sym.Name
	} else if ref, ok := ix.RefAt(req.Pos); ok {
		name = ref.Name
	}
	if name == "" {
		return nil, domain.Detail(domain.ErrNoSymbol, "uri", req.URI.String())
	}

	edits := &domain.WorkspaceEdits{Changes: make(map[domain.InternedString]domain.DocumentEdits)}
	for _, uri := range snap.URIs() {
		other, err := e.docIndex(ctx, snap, uri)
		if err != nil {
			return nil, err
		}

		var docEdits []domain.TextEdit
		for _, sym := range other.Symbols {
			if sym.Name == name {
				docEdits = append(docEdits, domain.TextEdit{Range: sym.Range, NewText: req.NewName})
			}
		}
		for _, ref := range other.Refs {
			if ref.Name == name {
				docEdits = append(docEdits, domain.TextEdit{Range: ref.Range, NewText: req.NewName})
			}
		}
		if len(docEdits) == 0 {
			continue
		}

		sortEdits(docEdits)
		if err := domain.ValidateEdits(docEdits); err != nil {
			return nil, err
		}

		slot, _ := snap.File(uri)
		edits.Changes[uri] = domain.DocumentEdits{URI: uri, Version: slot.Version, Edits: docEdits}
	}
	return &Response{Rename: edits}, nil
}

func (e *Engine) formatting(ctx context.Context, snap *domain.Snapshot, req Request) (*Response, error) {
	slot, ok := snap.File(req.URI)
	if !ok {
		return nil, domain.Detail(domain.ErrUnknownDocument, "uri", req.URI.String())
	}

	fp, _ := snap.DocFingerprint(req.URI)
	val, err := e.cache.GetOrCompute(ctx, memo.KindFormat, fp, func(ctx context.Context) (any, error) {
		formatted, err := e.formatter.Format(ctx, slot.Text, e.width)
		if err != nil {
			return nil, err
		}
		return formatted, nil
	})
	if err != nil {
		return nil, err
	}

	edits := DiffEdits(slot.Text, val.(string))
	if err := domain.ValidateEdits(edits); err != nil {
		return nil, err
	}
	return &Response{Formatting: edits}, nil
}

func (e *Engine) diagnostics(ctx context.Context, snap *domain.Snapshot, req Request) (*Response, error) {
	main := req.URI
	res, err := e.compiled(ctx, snap, main)
	if err != nil {
		return nil, err
	}

	sets := make(map[domain.InternedString]domain.DiagnosticSet, len(snap.URIs()))
	for _, uri := range snap.URIs() {
		slot, _ := snap.File(uri)
		sets[uri] = domain.DiagnosticSet{
			URI:         uri,
			Version:     slot.Version,
			Fingerprint: snap.Fingerprint(),
			Items:       res.diagnostics[uri],
		}
	}
	return &Response{Diagnostics: sets}, nil
}

func sortEdits(edits []domain.TextEdit) {
	slices.SortFunc(edits, func(a, b domain.TextEdit) int {
		return domain.ComparePositions(a.Range.Start, b.Range.Start)
	})
}
