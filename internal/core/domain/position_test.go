package domain_test

import (
	"testing"

	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparePositions(t *testing.T) {
	t.Parallel()

	a := domain.Position{Line: 1, Character: 5}
	b := domain.Position{Line: 2, Character: 0}
	c := domain.Position{Line: 1, Character: 9}

	assert.Negative(t, domain.ComparePositions(a, b))
	assert.Positive(t, domain.ComparePositions(b, a))
	assert.Negative(t, domain.ComparePositions(a, c))
	assert.Zero(t, domain.ComparePositions(a, a))
}

func TestRange_Contains(t *testing.T) {
	t.Parallel()

	r := domain.Range{
		Start: domain.Position{Line: 1, Character: 2},
		End:   domain.Position{Line: 1, Character: 6},
	}

	assert.True(t, r.Contains(domain.Position{Line: 1, Character: 2}))
	assert.True(t, r.Contains(domain.Position{Line: 1, Character: 4}))
	// End-inclusive: a cursor just after the symbol still hits.
	assert.True(t, r.Contains(domain.Position{Line: 1, Character: 6}))
	assert.False(t, r.Contains(domain.Position{Line: 1, Character: 7}))
	assert.False(t, r.Contains(domain.Position{Line: 0, Character: 4}))
}

func TestRange_Overlaps(t *testing.T) {
	t.Parallel()

	base := domain.Range{
		Start: domain.Position{Line: 0, Character: 2},
		End:   domain.Position{Line: 0, Character: 6},
	}
	touching := domain.Range{
		Start: domain.Position{Line: 0, Character: 6},
		End:   domain.Position{Line: 0, Character: 8},
	}
	crossing := domain.Range{
		Start: domain.Position{Line: 0, Character: 4},
		End:   domain.Position{Line: 0, Character: 8},
	}

	assert.False(t, base.Overlaps(touching))
	assert.True(t, base.Overlaps(crossing))
}

func TestOffsetForPosition(t *testing.T) {
	t.Parallel()

	text := "first\nsecond line\n"

	tests := []struct {
		name string
		pos  domain.Position
		want int
	}{
		{name: "start of text", pos: domain.Position{Line: 0, Character: 0}, want: 0},
		{name: "middle of first line", pos: domain.Position{Line: 0, Character: 3}, want: 3},
		{name: "end of first line", pos: domain.Position{Line: 0, Character: 5}, want: 5},
		{name: "start of second line", pos: domain.Position{Line: 1, Character: 0}, want: 6},
		{name: "middle of second line", pos: domain.Position{Line: 1, Character: 7}, want: 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := domain.OffsetForPosition(text, tt.pos)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOffsetForPosition_OutOfBounds(t *testing.T) {
	t.Parallel()

	_, err := domain.OffsetForPosition("one line\n", domain.Position{Line: 5, Character: 0})
	require.ErrorIs(t, err, domain.ErrInvalidPosition)

	_, err = domain.OffsetForPosition("ab", domain.Position{Line: 0, Character: 10})
	require.ErrorIs(t, err, domain.ErrInvalidPosition)
}

func TestOffsetForPosition_UTF16Units(t *testing.T) {
	t.Parallel()

	// The emoji is one rune, four bytes, two UTF-16 units.
	text := "a\U0001F600b"

	off, err := domain.OffsetForPosition(text, domain.Position{Line: 0, Character: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, off)
	assert.Equal(t, "b", text[off:off+1])
}

func TestPositionForOffset(t *testing.T) {
	t.Parallel()

	text := "first\nsecond\n"

	assert.Equal(t, domain.Position{Line: 0, Character: 0}, domain.PositionForOffset(text, 0))
	assert.Equal(t, domain.Position{Line: 0, Character: 5}, domain.PositionForOffset(text, 5))
	assert.Equal(t, domain.Position{Line: 1, Character: 0}, domain.PositionForOffset(text, 6))
	assert.Equal(t, domain.Position{Line: 1, Character: 3}, domain.PositionForOffset(text, 9))
	// Past the end clamps.
	assert.Equal(t, domain.Position{Line: 2, Character: 0}, domain.PositionForOffset(text, 99))
}

func TestPositionRoundTrip(t *testing.T) {
	t.Parallel()

	text := "= Title\n#let xé = 1\n\nbody \U0001F600 text\n"
	for off := 0; off <= len(text); off++ {
		// Skip offsets inside a multi-byte rune.
		if off < len(text) && text[off]&0xC0 == 0x80 {
			continue
		}
		pos := domain.PositionForOffset(text, off)
		back, err := domain.OffsetForPosition(text, pos)
		require.NoError(t, err)
		assert.Equal(t, off, back, "offset %d", off)
	}
}
