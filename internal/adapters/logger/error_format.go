package logger

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// messager reports an error's own message without the wrapped chain. This
// matches the Message() method of zerr.Error; other errors fall back to
// their full Error() string.
type messager interface {
	Message() string
}

// metadataer exposes structured key-value context attached to an error,
// matching zerr.Error's Metadata() method.
type metadataer interface {
	Metadata() map[string]any
}

// errorEntry is one level of an error chain, flattened for display.
type errorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries walks the error chain from the outside in. Each zerr
// error contributes its own message and metadata; the first non-zerr error
// contributes its full Error() string and terminates the walk, since plain
// wrapped errors already embed their causes in that string. Zerr attaches
// metadata to sentinels and plain errors through an empty-message wrapper;
// those levels contribute their metadata to the next level instead of an
// empty line.
func collectErrorEntries(err error) []errorEntry {
	var entries []errorEntry
	var carried map[string]any

	for err != nil {
		m, ok := err.(messager)
		if !ok {
			entries = append(entries, errorEntry{Message: err.Error(), Metadata: carried})
			break
		}

		var md map[string]any
		if mder, ok := err.(metadataer); ok {
			md = mder.Metadata()
		}

		if m.Message() == "" {
			carried = mergeMetadata(carried, md)
			err = errors.Unwrap(err)
			continue
		}

		entries = append(entries, errorEntry{
			Message:  m.Message(),
			Metadata: mergeMetadata(carried, md),
		})
		carried = nil
		err = errors.Unwrap(err)
	}

	return entries
}

// mergeMetadata combines two metadata maps, inner (later) keys winning.
// Either map may be nil; a nil result means no metadata at all.
func mergeMetadata(outer, inner map[string]any) map[string]any {
	if len(outer) == 0 {
		if len(inner) == 0 {
			return nil
		}
		return inner
	}
	merged := make(map[string]any, len(outer)+len(inner))
	maps.Copy(merged, outer)
	maps.Copy(merged, inner)
	return merged
}

// formatErrorEntries renders collected entries as a human-readable block:
// the main error first, then its causes under a "Caused by:" header, with
// metadata keys sorted for stable output.
func formatErrorEntries(entries []errorEntry) string {
	if len(entries) == 0 {
		return ""
	}

	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")

		if i == 0 {
			lines = append(lines, "Error: "+msgLines[0])
			for _, l := range msgLines[1:] {
				lines = append(lines, "       "+l)
			}
			lines = append(lines, metadataLines(entry.Metadata, "       ")...)
			continue
		}

		if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}
		lines = append(lines, "    → "+msgLines[0])
		for _, l := range msgLines[1:] {
			lines = append(lines, "      "+l)
		}
		lines = append(lines, metadataLines(entry.Metadata, "      ")...)
	}

	return strings.Join(lines, "\n")
}

func metadataLines(md map[string]any, indent string) []string {
	if len(md) == 0 {
		return nil
	}

	lines := make([]string, 0, len(md))
	for _, key := range slices.Sorted(maps.Keys(md)) {
		lines = append(lines, fmt.Sprintf("%s%s: %v", indent, key, md[key]))
	}
	return lines
}
