// Package typst implements the compile engine and formatter over a
// deterministic single-pass scanner. It extracts bindings, labels, headings,
// references and includes, and reports structural diagnostics; full layout
// and rendering stay outside this process.
package typst

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/QuarticCat/tinymist/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

var (
	letRe     = regexp.MustCompile(`#let\s+([A-Za-z_][A-Za-z0-9_-]*)`)
	labelRe   = regexp.MustCompile(`<([A-Za-z_][A-Za-z0-9_-]*)>`)
	refRe     = regexp.MustCompile(`@([A-Za-z_][A-Za-z0-9_-]*)`)
	includeRe = regexp.MustCompile(`#include\s+"([^"]+)"`)
	headingRe = regexp.MustCompile(`(?m)^(=+)\s+(.+)$`)
)

// Engine is the scanning implementation of ports.CompileEngine.
type Engine struct {
	tracer ports.Tracer
}

// NewEngine creates a scanner-backed compile engine.
func NewEngine(tracer ports.Tracer) *Engine {
	return &Engine{tracer: tracer}
}

// AnalyzeDocument extracts the symbol and reference index of one document.
// The result depends only on the document's own text.
func (e *Engine) AnalyzeDocument(ctx context.Context, uri domain.InternedString, text string) (*domain.DocumentIndex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	masked := maskNonCode(text)
	ix := &domain.DocumentIndex{URI: uri}

	for _, m := range letRe.FindAllStringSubmatchIndex(masked, -1) {
		ix.Symbols = append(ix.Symbols, domain.Symbol{
			Name:   text[m[2]:m[3]],
			Kind:   domain.SymbolBinding,
			URI:    uri,
			Range:  rangeAt(text, m[2], m[3]),
			Detail: "let binding",
		})
	}
	for _, m := range labelRe.FindAllStringSubmatchIndex(masked, -1) {
		ix.Symbols = append(ix.Symbols, domain.Symbol{
			Name:  text[m[2]:m[3]],
			Kind:  domain.SymbolLabel,
			URI:   uri,
			Range: rangeAt(text, m[2], m[3]),
		})
	}
	for _, m := range headingRe.FindAllStringSubmatchIndex(masked, -1) {
		level := m[3] - m[2]
		ix.Symbols = append(ix.Symbols, domain.Symbol{
			Name:   strings.TrimSpace(text[m[4]:m[5]]),
			Kind:   domain.SymbolHeading,
			URI:    uri,
			Range:  rangeAt(text, m[4], m[5]),
			Detail: "level " + strconv.Itoa(level) + " heading",
		})
	}
	for _, m := range refRe.FindAllStringSubmatchIndex(masked, -1) {
		ix.Refs = append(ix.Refs, domain.Reference{
			Name: text[m[2]:m[3]],
			URI:  uri,
			// Include the @ sigil so a cursor on it still resolves.
			Range: rangeAt(text, m[0], m[3]),
		})
	}
	for _, m := range includeRe.FindAllStringSubmatchIndex(masked, -1) {
		ix.Includes = append(ix.Includes, text[m[2]:m[3]])
	}

	return ix, nil
}

// Compile analyzes every document in the snapshot concurrently and resolves
// references across the whole set. Structural errors and unresolved
// references come back as diagnostics, not as a compile failure.
func (e *Engine) Compile(
	ctx context.Context,
	snap *domain.Snapshot,
	main domain.InternedString,
) (*domain.Artifact, map[domain.InternedString][]domain.Diagnostic, error) {
	ctx, span := e.tracer.Start(ctx, "typst.compile")
	defer span.End()
	span.SetAttribute("main", main.String())
	span.SetAttribute("documents", len(snap.URIs()))

	artifact := &domain.Artifact{
		Indexes: make(map[domain.InternedString]*domain.DocumentIndex, len(snap.URIs())),
	}
	diags := make(map[domain.InternedString][]domain.Diagnostic, len(snap.URIs()))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, uri := range snap.URIs() {
		slot, _ := snap.File(uri)
		g.Go(func() error {
			ix, err := e.AnalyzeDocument(gctx, uri, slot.Text)
			if err != nil {
				return err
			}
			structural := checkDelimiters(slot.Text)

			mu.Lock()
			artifact.Indexes[uri] = ix
			if len(structural) > 0 {
				diags[uri] = structural
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	// Cross-document reference resolution for the whole snapshot.
	defined := make(map[string]struct{})
	for _, ix := range artifact.Indexes {
		for _, sym := range ix.Symbols {
			defined[sym.Name] = struct{}{}
		}
	}
	for uri, ix := range artifact.Indexes {
		for _, ref := range ix.Refs {
			if _, ok := defined[ref.Name]; ok {
				continue
			}
			diags[uri] = append(diags[uri], domain.Diagnostic{
				Range:    ref.Range,
				Severity: domain.SeverityWarning,
				Message:  "unresolved reference: @" + ref.Name,
			})
		}
	}

	return artifact, diags, nil
}

func rangeAt(text string, start, end int) domain.Range {
	return domain.Range{
		Start: domain.PositionForOffset(text, start),
		End:   domain.PositionForOffset(text, end),
	}
}

// maskNonCode blanks out string literals, raw spans and comments so the token
// regexps never match inside them. The mask preserves byte offsets exactly.
func maskNonCode(text string) string {
	out := []byte(text)
	i := 0
	for i < len(out) {
		switch {
		case out[i] == '"':
			i = maskUntil(out, i+1, '"', true)
		case out[i] == '`':
			i = maskUntil(out, i+1, '`', false)
		case out[i] == '/' && i+1 < len(out) && out[i+1] == '/':
			for i < len(out) && out[i] != '\n' {
				out[i] = ' '
				i++
			}
		case out[i] == '/' && i+1 < len(out) && out[i+1] == '*':
			out[i], out[i+1] = ' ', ' '
			i += 2
			for i < len(out) {
				if out[i] == '*' && i+1 < len(out) && out[i+1] == '/' {
					out[i], out[i+1] = ' ', ' '
					i += 2
					break
				}
				if out[i] != '\n' {
					out[i] = ' '
				}
				i++
			}
		default:
			i++
		}
	}
	return string(out)
}

// maskUntil blanks from start to the closing delimiter. String literals stop
// at a newline; raw spans may cross lines.
func maskUntil(out []byte, start int, delim byte, stopAtNewline bool) int {
	i := start
	for i < len(out) {
		if out[i] == delim {
			return i + 1
		}
		if out[i] == '\n' {
			if stopAtNewline {
				return i
			}
			i++
			continue
		}
		if out[i] == '\\' && i+1 < len(out) {
			out[i] = ' '
			i++
		}
		out[i] = ' '
		i++
	}
	return i
}

type openDelim struct {
	r      rune
	offset int
}

// checkDelimiters reports unbalanced (), [] and {} pairs outside strings and
// comments.
func checkDelimiters(text string) []domain.Diagnostic {
	masked := maskNonCode(text)

	var stack []openDelim
	var out []domain.Diagnostic
	for i, r := range masked {
		switch r {
		case '(', '[', '{':
			stack = append(stack, openDelim{r: r, offset: i})
		case ')', ']', '}':
			if len(stack) == 0 || closerFor(stack[len(stack)-1].r) != r {
				out = append(out, domain.Diagnostic{
					Range:    rangeAt(text, i, i+len(string(r))),
					Severity: domain.SeverityError,
					Message:  "unmatched closing delimiter " + string(r),
				})
				continue
			}
			stack = stack[:len(stack)-1]
		}
	}
	for _, open := range stack {
		out = append(out, domain.Diagnostic{
			Range:    rangeAt(text, open.offset, open.offset+len(string(open.r))),
			Severity: domain.SeverityError,
			Message:  "unclosed delimiter " + string(open.r),
		})
	}
	return out
}

func closerFor(open rune) rune {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	}
	return 0
}
