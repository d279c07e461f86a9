package output_test

import (
	"bytes"
	"testing"

	"github.com/QuarticCat/tinymist/internal/ui/output"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestColorProfile_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfile())
}

func TestColorProfile_Default(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	p := output.ColorProfile()
	assert.True(t, p >= termenv.TrueColor && p <= termenv.Ascii)
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	out := output.New(&buf)
	assert.NotNil(t, out)

	_, _ = out.WriteString("hello")
	assert.Equal(t, "hello", buf.String())
}

func TestNew_NilWriterDefaultsToStderr(t *testing.T) {
	assert.NotPanics(t, func() { output.New(nil) })
}
