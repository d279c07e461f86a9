package domain

// Document is the authoritative state of one open file: its full text and a
// monotonically increasing version. Only the document store mutates it.
type Document struct {
	URI        InternedString
	LanguageID string
	Text       string
	Version    int32
}

// ContentChange is a single edit from the transport layer. A nil Range means
// the whole document is replaced.
type ContentChange struct {
	Range *Range
	Text  string
}

// ApplyChanges applies a sequence of transport edits to text in order and
// returns the resulting text. Range edits are resolved against the text as it
// stands after the preceding change, mirroring editor semantics.
func ApplyChanges(text string, changes []ContentChange) (string, error) {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}

		start, err := OffsetForPosition(text, change.Range.Start)
		if err != nil {
			return "", err
		}
		end, err := OffsetForPosition(text, change.Range.End)
		if err != nil {
			return "", err
		}
		if end < start {
			return "", ErrInvalidPosition
		}
		text = text[:start] + change.Text + text[end:]
	}
	return text, nil
}
