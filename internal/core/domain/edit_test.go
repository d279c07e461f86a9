package domain_test

import (
	"testing"

	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edit(startLine, startChar, endLine, endChar uint32, text string) domain.TextEdit {
	return domain.TextEdit{
		Range: domain.Range{
			Start: domain.Position{Line: startLine, Character: startChar},
			End:   domain.Position{Line: endLine, Character: endChar},
		},
		NewText: text,
	}
}

func TestValidateEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		edits   []domain.TextEdit
		wantErr bool
	}{
		{
			name:  "empty",
			edits: nil,
		},
		{
			name:  "sorted disjoint",
			edits: []domain.TextEdit{edit(0, 0, 0, 2, "a"), edit(0, 4, 0, 6, "b")},
		},
		{
			name:  "adjacent ranges",
			edits: []domain.TextEdit{edit(0, 0, 0, 2, "a"), edit(0, 2, 0, 4, "b")},
		},
		{
			name:    "out of order",
			edits:   []domain.TextEdit{edit(0, 4, 0, 6, "b"), edit(0, 0, 0, 2, "a")},
			wantErr: true,
		},
		{
			name:    "overlapping",
			edits:   []domain.TextEdit{edit(0, 0, 0, 4, "a"), edit(0, 2, 0, 6, "b")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := domain.ValidateEdits(tt.edits)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrEditConflict)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestApplyEdits(t *testing.T) {
	t.Parallel()

	got, err := domain.ApplyEdits("#let aaa = 1\n@aaa\n", []domain.TextEdit{
		edit(0, 5, 0, 8, "bbb"),
		edit(1, 1, 1, 4, "bbb"),
	})
	require.NoError(t, err)
	assert.Equal(t, "#let bbb = 1\n@bbb\n", got)
}

func TestApplyEdits_RejectsConflicts(t *testing.T) {
	t.Parallel()

	_, err := domain.ApplyEdits("abcdef", []domain.TextEdit{
		edit(0, 0, 0, 4, "x"),
		edit(0, 2, 0, 6, "y"),
	})
	require.ErrorIs(t, err, domain.ErrEditConflict)
}
