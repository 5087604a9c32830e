// Package changelog turns the marker-delimited release notes served by the
// release API into ordered, categorized change records.
//
// Entries are introduced by one of four sentinels:
//
//	+ added    - removed    · fixed    | note
//
// A feed such as "+Dark mode -Legacy export ·Crash on save |Thanks!" yields
// one record per entry, grouped Added, Removed, Fixed, Note.
package changelog

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/adamancini/updraft/internal/types"
)

// Record is a single classified changelog entry.
type Record struct {
	Kind        types.ChangeKind `json:"kind" yaml:"kind"`
	Description string           `json:"description" yaml:"description"`
}

// unrecognizedMarkers start a segment when they open a whitespace-separated
// token; the segment is then dropped because its marker is not a sentinel.
const unrecognizedMarkers = "#*~>=!•"

// Parse classifies every entry of text. Segments that do not begin with a
// sentinel, including any text before the first sentinel, are discarded.
func Parse(text string) []Record {
	kinds := types.AllChangeKinds()
	groups := make([][]Record, len(kinds))

	for _, segment := range split(text) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		marker, size := utf8.DecodeRuneInString(segment)
		kind, ok := types.ChangeKindForSentinel(marker)
		if !ok {
			continue
		}

		rank := kind.Rank()
		groups[rank] = append(groups[rank], Record{
			Kind:        kind,
			Description: strings.TrimSpace(segment[size:]),
		})
	}

	var records []Record
	for _, group := range groups {
		records = append(records, group...)
	}
	return records
}

// split scans text left to right and cuts it immediately before every
// segment boundary. The first segment may not start with a marker.
func split(text string) []string {
	var segments []string
	start := 0
	prev := ' '

	for i, r := range text {
		if i > start && isBoundary(r, prev) {
			segments = append(segments, text[start:i])
			start = i
		}
		prev = r
	}

	if start < len(text) {
		segments = append(segments, text[start:])
	}
	return segments
}

func isBoundary(r, prev rune) bool {
	if _, ok := types.ChangeKindForSentinel(r); ok {
		return true
	}
	return unicode.IsSpace(prev) && strings.ContainsRune(unrecognizedMarkers, r)
}

// Group returns the records of a single kind in their original order.
func Group(records []Record, kind types.ChangeKind) []Record {
	var out []Record
	for _, r := range records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
