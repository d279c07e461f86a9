package typst_test

import (
	"context"
	"testing"

	"github.com/QuarticCat/tinymist/internal/adapters/typst"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_Golden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		width int
	}{
		{
			name:  "basic",
			input: "=  Intro \n\n\n== Background\nSome text here.   \n#let x = 1\t\n",
			width: 80,
		},
		{
			name:  "wrap",
			input: "aaa bbb ccc ddd eee fff\n",
			width: 20,
		},
		{
			name:  "raw_block",
			input: "```\ncode   \n```\ntext  \n",
			width: 80,
		},
	}

	f := typst.NewFormatter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := f.Format(context.Background(), tt.input, tt.width)
			require.NoError(t, err)

			g := goldie.New(t)
			g.Assert(t, tt.name, []byte(got))
		})
	}
}

func TestFormatter_Idempotent(t *testing.T) {
	t.Parallel()

	f := typst.NewFormatter()
	input := "=Heading\n\n\n\nprose line that is fine\n#let  x = 1  \n"

	once, err := f.Format(context.Background(), input, 80)
	require.NoError(t, err)
	twice, err := f.Format(context.Background(), once, 80)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestFormatter_AlreadyCanonical(t *testing.T) {
	t.Parallel()

	f := typst.NewFormatter()
	input := "= Title\n\nbody text\n"

	got, err := f.Format(context.Background(), input, 80)
	require.NoError(t, err)
	assert.Equal(t, input, got)
}

func TestFormatter_EmptyDocument(t *testing.T) {
	t.Parallel()

	f := typst.NewFormatter()
	got, err := f.Format(context.Background(), "", 80)
	require.NoError(t, err)
	assert.Empty(t, got)
}
