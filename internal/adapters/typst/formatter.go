package typst

import (
	"context"
	"strings"
	"unicode"

	"github.com/QuarticCat/tinymist/internal/core/domain"
)

// Formatter normalizes markup whitespace: trailing spaces go, blank-line runs
// collapse to one, heading markers get a single separating space, and prose
// lines wrap at the configured width. Code lines and raw blocks are left
// untouched beyond trailing-space removal.
type Formatter struct{}

// NewFormatter creates a Formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format returns the canonical form of text at the given line width.
func (f *Formatter) Format(ctx context.Context, text string, width int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if width <= 0 {
		width = domain.DefaultFormatWidth
	}

	lines := strings.Split(text, "\n")
	var out []string
	blankRun := 0
	inRaw := false

	for _, line := range lines {
		if strings.Count(line, "```")%2 == 1 {
			inRaw = !inRaw
		}
		if inRaw || strings.Contains(line, "```") {
			out = append(out, line)
			blankRun = 0
			continue
		}

		line = strings.TrimRight(line, " \t")

		if line == "" {
			blankRun++
			if blankRun > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blankRun = 0

		line = normalizeHeading(line)

		if isProse(line) {
			out = append(out, wrap(line, width)...)
		} else {
			out = append(out, line)
		}
	}

	result := strings.Join(out, "\n")
	result = strings.TrimRight(result, "\n") + "\n"
	if strings.TrimSpace(result) == "" {
		return "", nil
	}
	return result, nil
}

// normalizeHeading rewrites "==Title" to "== Title".
func normalizeHeading(line string) string {
	i := 0
	for i < len(line) && line[i] == '=' {
		i++
	}
	if i == 0 || i == len(line) {
		return line
	}
	rest := strings.TrimLeft(line[i:], " \t")
	if rest == "" {
		return line[:i]
	}
	return line[:i] + " " + rest
}

// isProse reports whether a line is plain markup text that may be rewrapped.
// Lines carrying code, headings, labels or list markers keep their shape.
func isProse(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return false
	}
	switch trimmed[0] {
	case '#', '=', '<', '-', '+', '/':
		return false
	}
	return !strings.ContainsAny(line, "`$")
}

// wrap breaks a prose line at word boundaries so no line exceeds width in
// runes. Words longer than the width stay on their own line unbroken.
func wrap(line string, width int) []string {
	if runeLen(line) <= width {
		return []string{line}
	}

	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	words := strings.Fields(line)
	var out []string
	cur := indent

	for _, word := range words {
		switch {
		case cur == indent:
			cur += word
		case runeLen(cur)+1+runeLen(word) <= width:
			cur += " " + word
		default:
			out = append(out, cur)
			cur = indent + word
		}
	}
	if strings.TrimSpace(cur) != "" {
		out = append(out, cur)
	}
	return out
}

func runeLen(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		n++
	}
	return n
}
