package domain

import "strings"

// Position is a zero-based line/character location in a document.
// Characters count UTF-16 code units, matching the editor protocol default.
type Position struct {
	Line      uint32
	Character uint32
}

// Range is a half-open [Start, End) span in a document.
type Range struct {
	Start Position
	End   Position
}

// ComparePositions orders positions by line, then character.
func ComparePositions(a, b Position) int {
	switch {
	case a.Line != b.Line:
		if a.Line < b.Line {
			return -1
		}
		return 1
	case a.Character != b.Character:
		if a.Character < b.Character {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Contains reports whether p falls inside the range (end-inclusive, so a
// cursor sitting just after a symbol still hits it).
func (r Range) Contains(p Position) bool {
	return ComparePositions(r.Start, p) <= 0 && ComparePositions(p, r.End) <= 0
}

// Overlaps reports whether two ranges share any span.
func (r Range) Overlaps(other Range) bool {
	return ComparePositions(r.Start, other.End) < 0 && ComparePositions(other.Start, r.End) < 0
}

// OffsetForPosition converts a position to a byte offset in text.
// Character offsets are counted in UTF-16 code units per line.
func OffsetForPosition(text string, p Position) (int, error) {
	offset := 0
	for line := uint32(0); line < p.Line; line++ {
		next := strings.IndexByte(text[offset:], '\n')
		if next < 0 {
			return 0, ErrInvalidPosition
		}
		offset += next + 1
	}

	// Walk the line rune by rune, counting UTF-16 units.
	var units uint32
	for i, r := range text[offset:] {
		if units >= p.Character || r == '\n' {
			return offset + i, nil
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	if units >= p.Character {
		return len(text), nil
	}
	return 0, ErrInvalidPosition
}

// PositionForOffset converts a byte offset to a position.
// Offsets past the end of text clamp to the final position.
func PositionForOffset(text string, offset int) Position {
	if offset > len(text) {
		offset = len(text)
	}

	var pos Position
	lineStart := 0
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			pos.Line++
			lineStart = i + 1
		}
	}
	for _, r := range text[lineStart:offset] {
		if r > 0xFFFF {
			pos.Character += 2
		} else {
			pos.Character++
		}
	}
	return pos
}
