package query

import (
	"unicode/utf8"

	"github.com/QuarticCat/tinymist/internal/core/domain"
)

// DiffEdits reduces a full-text rewrite to a single minimal replacement by
// trimming the longest common prefix and suffix. A no-op rewrite yields no
// edits, so callers never send the client a whole-document replace for an
// already formatted file.
func DiffEdits(oldText, newText string) []domain.TextEdit {
	if oldText == newText {
		return nil
	}

	prefix := commonPrefix(oldText, newText)
	suffix := commonSuffix(oldText[prefix:], newText[prefix:])

	start := domain.PositionForOffset(oldText, prefix)
	end := domain.PositionForOffset(oldText, len(oldText)-suffix)
	return []domain.TextEdit{{
		Range:   domain.Range{Start: start, End: end},
		NewText: newText[prefix : len(newText)-suffix],
	}}
}

// commonPrefix returns the length in bytes of the longest shared prefix,
// backed off to a rune boundary.
func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	for i > 0 && i < len(a) && !utf8.RuneStart(a[i]) {
		i--
	}
	return i
}

// commonSuffix returns the length in bytes of the longest shared suffix of
// the remainders after the prefix was trimmed, backed off to a rune boundary.
func commonSuffix(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	for i > 0 && !utf8.RuneStart(a[len(a)-i]) {
		i--
	}
	return i
}
