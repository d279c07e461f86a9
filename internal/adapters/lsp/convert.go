package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/QuarticCat/tinymist/internal/engine/query"
)

// Position and range conversions are lossless: both sides are zero-based
// with UTF-16 character offsets.

func toDomainPosition(p protocol.Position) domain.Position {
	return domain.Position{Line: p.Line, Character: p.Character}
}

func fromDomainPosition(p domain.Position) protocol.Position {
	return protocol.Position{Line: p.Line, Character: p.Character}
}

func fromDomainRange(r domain.Range) protocol.Range {
	return protocol.Range{Start: fromDomainPosition(r.Start), End: fromDomainPosition(r.End)}
}

func fromDomainEdits(edits []domain.TextEdit) []protocol.TextEdit {
	out := make([]protocol.TextEdit, len(edits))
	for i, e := range edits {
		out[i] = protocol.TextEdit{Range: fromDomainRange(e.Range), NewText: e.NewText}
	}
	return out
}

func fromDomainSeverity(s domain.Severity) protocol.DiagnosticSeverity {
	switch s {
	case domain.SeverityError:
		return protocol.DiagnosticSeverityError
	case domain.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityHint
	}
}

func fromDomainDiagnostics(items []domain.Diagnostic) []protocol.Diagnostic {
	source := "tinymist"
	// The protocol distinguishes "no diagnostics" from an absent field; an
	// empty slice clears the client's markers.
	out := make([]protocol.Diagnostic, len(items))
	for i, d := range items {
		severity := fromDomainSeverity(d.Severity)
		out[i] = protocol.Diagnostic{
			Range:    fromDomainRange(d.Range),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		}
	}
	return out
}

func fromDomainSymbolKind(k domain.SymbolKind) protocol.CompletionItemKind {
	switch k {
	case domain.SymbolBinding:
		return protocol.CompletionItemKindFunction
	case domain.SymbolLabel:
		return protocol.CompletionItemKindReference
	case domain.SymbolHeading:
		return protocol.CompletionItemKindText
	default:
		return protocol.CompletionItemKindText
	}
}

func fromCompletionItems(items []query.CompletionItem) []protocol.CompletionItem {
	out := make([]protocol.CompletionItem, len(items))
	for i, item := range items {
		kind := fromDomainSymbolKind(item.Kind)
		out[i] = protocol.CompletionItem{Label: item.Label, Kind: &kind}
		if item.Detail != "" {
			detail := item.Detail
			out[i].Detail = &detail
		}
	}
	return out
}

func fromLocations(locs []query.Location) []protocol.Location {
	out := make([]protocol.Location, len(locs))
	for i, loc := range locs {
		out[i] = protocol.Location{
			URI:   loc.URI.String(),
			Range: fromDomainRange(loc.Range),
		}
	}
	return out
}

// fromWorkspaceEdits converts rename output into a workspace edit with
// version-anchored document edits, so a client rejects the rename if the
// document moved on after the request.
func fromWorkspaceEdits(we *domain.WorkspaceEdits) *protocol.WorkspaceEdit {
	if we == nil {
		return nil
	}

	documentChanges := make([]any, 0, len(we.Changes))
	for uri, de := range we.Changes {
		version := de.Version
		edits := make([]any, 0, len(de.Edits))
		for _, e := range fromDomainEdits(de.Edits) {
			edits = append(edits, e)
		}
		documentChanges = append(documentChanges, protocol.TextDocumentEdit{
			TextDocument: protocol.OptionalVersionedTextDocumentIdentifier{
				TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri.String()},
				Version:                &version,
			},
			Edits: edits,
		})
	}

	return &protocol.WorkspaceEdit{DocumentChanges: documentChanges}
}

// toDomainChanges converts incremental or whole-document content changes.
// The protocol layer delivers them untyped.
func toDomainChanges(raw []any) []domain.ContentChange {
	changes := make([]domain.ContentChange, 0, len(raw))
	for _, c := range raw {
		switch change := c.(type) {
		case protocol.TextDocumentContentChangeEvent:
			dc := domain.ContentChange{Text: change.Text}
			if change.Range != nil {
				r := domain.Range{
					Start: toDomainPosition(change.Range.Start),
					End:   toDomainPosition(change.Range.End),
				}
				dc.Range = &r
			}
			changes = append(changes, dc)
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, domain.ContentChange{Text: change.Text})
		}
	}
	return changes
}

// uriToPath strips the file scheme from a document URI. Non-file URIs are
// returned unchanged.
func uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
