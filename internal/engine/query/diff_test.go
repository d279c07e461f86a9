package query_test

import (
	"testing"

	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/QuarticCat/tinymist/internal/engine/query"
	"github.com/stretchr/testify/require"
)

func TestDiffEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		old  string
		new  string
	}{
		{name: "identical", old: "#let x = 1\n", new: "#let x = 1\n"},
		{name: "middle change", old: "#let  x = 1\n", new: "#let x = 1\n"},
		{name: "append", old: "= Title\n", new: "= Title\n\nBody\n"},
		{name: "prepend", old: "Body\n", new: "= Title\nBody\n"},
		{name: "full rewrite", old: "abc", new: "xyz"},
		{name: "delete all", old: "abc", new: ""},
		{name: "insert into empty", old: "", new: "abc"},
		{name: "multibyte boundary", old: "héllo wörld", new: "héllo wérld"},
		{name: "repeated region", old: "aaaa", new: "aaa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			edits := query.DiffEdits(tt.old, tt.new)
			if tt.old == tt.new {
				require.Empty(t, edits)
				return
			}
			require.Len(t, edits, 1)

			applied, err := domain.ApplyEdits(tt.old, edits)
			require.NoError(t, err)
			require.Equal(t, tt.new, applied)
		})
	}
}

func TestDiffEdits_EditIsMinimal(t *testing.T) {
	t.Parallel()

	edits := query.DiffEdits("#let  x = 1\n", "#let x = 1\n")
	require.Len(t, edits, 1)
	require.Equal(t, uint32(0), edits[0].Range.Start.Line)
	require.Less(t, edits[0].Range.End.Character-edits[0].Range.Start.Character, uint32(6))
}
