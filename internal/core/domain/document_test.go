package domain_test

import (
	"testing"

	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rangePtr(startLine, startChar, endLine, endChar uint32) *domain.Range {
	return &domain.Range{
		Start: domain.Position{Line: startLine, Character: startChar},
		End:   domain.Position{Line: endLine, Character: endChar},
	}
}

func TestApplyChanges_WholeDocument(t *testing.T) {
	t.Parallel()

	got, err := domain.ApplyChanges("old content", []domain.ContentChange{
		{Text: "new content"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new content", got)
}

func TestApplyChanges_RangeEdit(t *testing.T) {
	t.Parallel()

	got, err := domain.ApplyChanges("#let x = 1\n", []domain.ContentChange{
		{Range: rangePtr(0, 9, 0, 10), Text: "42"},
	})
	require.NoError(t, err)
	assert.Equal(t, "#let x = 42\n", got)
}

func TestApplyChanges_SequentialEdits(t *testing.T) {
	t.Parallel()

	// The second edit's range is resolved against the text produced by the
	// first, mirroring how editors stream incremental changes.
	got, err := domain.ApplyChanges("abc\n", []domain.ContentChange{
		{Range: rangePtr(0, 1, 0, 2), Text: "XY"},   // abc -> aXYc
		{Range: rangePtr(0, 3, 0, 4), Text: ""},     // aXYc -> aXY
		{Range: rangePtr(0, 0, 0, 0), Text: "pre-"}, // aXY -> pre-aXY
	})
	require.NoError(t, err)
	assert.Equal(t, "pre-aXY\n", got)
}

func TestApplyChanges_Insertion(t *testing.T) {
	t.Parallel()

	got, err := domain.ApplyChanges("line one\nline two\n", []domain.ContentChange{
		{Range: rangePtr(1, 0, 1, 0), Text: "inserted\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, "line one\ninserted\nline two\n", got)
}

func TestApplyChanges_InvalidRange(t *testing.T) {
	t.Parallel()

	_, err := domain.ApplyChanges("short\n", []domain.ContentChange{
		{Range: rangePtr(9, 0, 9, 1), Text: "x"},
	})
	require.ErrorIs(t, err, domain.ErrInvalidPosition)
}
