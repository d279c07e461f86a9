package typst_test

import (
	"context"
	"testing"

	"github.com/QuarticCat/tinymist/internal/adapters/telemetry"
	"github.com/QuarticCat/tinymist/internal/adapters/typst"
	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, text string) *domain.DocumentIndex {
	t.Helper()
	e := typst.NewEngine(telemetry.NewNoOpTracer())
	ix, err := e.AnalyzeDocument(context.Background(), domain.NewInternedString("file:///main.typ"), text)
	require.NoError(t, err)
	return ix
}

func symbolNames(ix *domain.DocumentIndex, kind domain.SymbolKind) []string {
	var names []string
	for _, sym := range ix.Symbols {
		if sym.Kind == kind {
			names = append(names, sym.Name)
		}
	}
	return names
}

func TestAnalyzeDocument_Bindings(t *testing.T) {
	t.Parallel()

	ix := analyze(t, "#let title = [Intro]\n#let count = 3\n")

	require.Equal(t, []string{"title", "count"}, symbolNames(ix, domain.SymbolBinding))
	assert.Equal(t, domain.Range{
		Start: domain.Position{Line: 0, Character: 5},
		End:   domain.Position{Line: 0, Character: 10},
	}, ix.Symbols[0].Range)
}

func TestAnalyzeDocument_LabelsAndHeadings(t *testing.T) {
	t.Parallel()

	ix := analyze(t, "= Introduction <intro>\n\n== Details\n")

	assert.Equal(t, []string{"intro"}, symbolNames(ix, domain.SymbolLabel))
	headings := symbolNames(ix, domain.SymbolHeading)
	require.Len(t, headings, 2)
	assert.Equal(t, "Introduction <intro>", headings[0])
	assert.Equal(t, "Details", headings[1])
}

func TestAnalyzeDocument_References(t *testing.T) {
	t.Parallel()

	ix := analyze(t, "See @intro for details.\n")

	require.Len(t, ix.Refs, 1)
	assert.Equal(t, "intro", ix.Refs[0].Name)
	// The range covers the @ sigil so a cursor on it resolves.
	assert.Equal(t, domain.Range{
		Start: domain.Position{Line: 0, Character: 4},
		End:   domain.Position{Line: 0, Character: 10},
	}, ix.Refs[0].Range)
}

func TestAnalyzeDocument_Includes(t *testing.T) {
	t.Parallel()

	ix := analyze(t, "#include \"chapters/one.typ\"\n#include \"chapters/two.typ\"\n")
	assert.Equal(t, []string{"chapters/one.typ", "chapters/two.typ"}, ix.Includes)
}

func TestAnalyzeDocument_IgnoresMaskedRegions(t *testing.T) {
	t.Parallel()

	text := "// #let hidden = 1\n" +
		"/* @ghost <phantom> */\n" +
		"#let visible = \"@not-a-ref\"\n" +
		"`#let raw = 2`\n"
	ix := analyze(t, text)

	assert.Equal(t, []string{"visible"}, symbolNames(ix, domain.SymbolBinding))
	assert.Empty(t, symbolNames(ix, domain.SymbolLabel))
	assert.Empty(t, ix.Refs)
}

func TestCompile_CrossDocumentResolution(t *testing.T) {
	t.Parallel()

	main := domain.NewInternedString("file:///main.typ")
	lib := domain.NewInternedString("file:///lib.typ")
	snap := domain.NewSnapshot(
		map[domain.InternedString]domain.FileSlot{
			main: {Text: "See @helper and @missing.\n", Version: 1},
			lib:  {Text: "#let helper = 1\n", Version: 1},
		},
		domain.Fingerprint(1),
		map[domain.InternedString]domain.Fingerprint{main: 2, lib: 3},
		0, 0,
	)

	e := typst.NewEngine(telemetry.NewNoOpTracer())
	artifact, diags, err := e.Compile(context.Background(), snap, main)
	require.NoError(t, err)

	require.Contains(t, artifact.Indexes, main)
	require.Contains(t, artifact.Indexes, lib)

	// @helper resolves across documents; @missing does not.
	require.Len(t, diags[main], 1)
	assert.Equal(t, domain.SeverityWarning, diags[main][0].Severity)
	assert.Contains(t, diags[main][0].Message, "@missing")
}

func TestCompile_DelimiterDiagnostics(t *testing.T) {
	t.Parallel()

	main := domain.NewInternedString("file:///main.typ")
	snap := domain.NewSnapshot(
		map[domain.InternedString]domain.FileSlot{
			main: {Text: "#let x = (1, 2\n#let y = 3]\n", Version: 1},
		},
		domain.Fingerprint(1),
		map[domain.InternedString]domain.Fingerprint{main: 2},
		0, 0,
	)

	e := typst.NewEngine(telemetry.NewNoOpTracer())
	_, diags, err := e.Compile(context.Background(), snap, main)
	require.NoError(t, err)

	require.Len(t, diags[main], 2)
	for _, d := range diags[main] {
		assert.Equal(t, domain.SeverityError, d.Severity)
	}
}

func TestCompile_BalancedDocumentIsClean(t *testing.T) {
	t.Parallel()

	main := domain.NewInternedString("file:///main.typ")
	snap := domain.NewSnapshot(
		map[domain.InternedString]domain.FileSlot{
			main: {Text: "#let x = (1, 2)\n= Title <here>\nSee @here.\n", Version: 1},
		},
		domain.Fingerprint(1),
		map[domain.InternedString]domain.Fingerprint{main: 2},
		0, 0,
	)

	e := typst.NewEngine(telemetry.NewNoOpTracer())
	_, diags, err := e.Compile(context.Background(), snap, main)
	require.NoError(t, err)
	assert.Empty(t, diags[main])
}
