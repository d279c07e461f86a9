package domain

import (
	"errors"
	"slices"
)

// TextEdit replaces one range of a document with new text.
type TextEdit struct {
	Range   Range
	NewText string
}

// DocumentEdits is an ordered edit list anchored to the exact document
// version it was computed from. Applying it against any other version is an
// edit conflict.
type DocumentEdits struct {
	URI     InternedString
	Version int32
	Edits   []TextEdit
}

// WorkspaceEdits groups edit lists across documents, as produced by rename.
type WorkspaceEdits struct {
	Changes map[InternedString]DocumentEdits
}

// ValidateEdits checks that an edit list is internally consistent: sorted by
// start position with no overlapping ranges. Returns ErrEditConflict otherwise.
func ValidateEdits(edits []TextEdit) error {
	if !slices.IsSortedFunc(edits, func(a, b TextEdit) int {
		return ComparePositions(a.Range.Start, b.Range.Start)
	}) {
		return Detail(ErrEditConflict, "reason", "edits out of order")
	}

	for i := 1; i < len(edits); i++ {
		if ComparePositions(edits[i-1].Range.End, edits[i].Range.Start) > 0 {
			return Detail(ErrEditConflict, "reason", "overlapping edit ranges")
		}
	}
	return nil
}

// ApplyEdits applies a validated edit list to text. Edits are applied back to
// front so earlier offsets stay valid.
func ApplyEdits(text string, edits []TextEdit) (string, error) {
	if err := ValidateEdits(edits); err != nil {
		return "", err
	}

	for i := len(edits) - 1; i >= 0; i-- {
		start, err := OffsetForPosition(text, edits[i].Range.Start)
		if err != nil {
			return "", errors.Join(ErrEditConflict, err)
		}
		end, err := OffsetForPosition(text, edits[i].Range.End)
		if err != nil {
			return "", errors.Join(ErrEditConflict, err)
		}
		text = text[:start] + edits[i].NewText + text[end:]
	}
	return text, nil
}
