// Package stringdb parses STRING-DB dump files and loads them into the
// relational store. STRING publishes two line-oriented file schemas per
// species: detailed protein links and protein aliases. The header line
// decides which schema a file contains; the two use different column layouts
// and delimiters, so classification must happen before per-line parsing.
package stringdb

import (
	"fmt"
	"strings"
)

// FileKind identifies which of the two known STRING file schemas a file
// contains.
type FileKind int

const (
	// KindUnknown is returned alongside ErrUnknownHeader.
	KindUnknown FileKind = iota
	// KindInteractions marks a detailed protein-links file.
	KindInteractions
	// KindAliases marks a protein-aliases file.
	KindAliases
)

// String returns a human-readable schema name.
func (k FileKind) String() string {
	switch k {
	case KindInteractions:
		return "interactions"
	case KindAliases:
		return "aliases"
	default:
		return "unknown"
	}
}

// ErrUnknownHeader is returned when a header line matches neither known
// schema.
var ErrUnknownHeader = fmt.Errorf("unexpected file header")

// Column names expected in each schema. Extra columns are permitted and
// order does not matter; classification only requires these to be present.
var (
	interactionColumns = []string{"protein1", "protein2", "combined_score"}
	aliasColumns       = []string{"string_protein_id", "alias", "source"}
)

// ClassifyHeader inspects a raw header line, strips any leading comment
// marker, tokenizes on whitespace, and decides which schema the file
// contains. Headers matching neither token set fail with ErrUnknownHeader.
func ClassifyHeader(header string) (FileKind, error) {
	header = strings.TrimSpace(header)
	header = strings.TrimLeft(header, "#")

	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(header) {
		tokens[tok] = true
	}

	if containsAll(tokens, interactionColumns) {
		return KindInteractions, nil
	}
	if containsAll(tokens, aliasColumns) {
		return KindAliases, nil
	}

	return KindUnknown, fmt.Errorf("parse error: %w: %q", ErrUnknownHeader, header)
}

func containsAll(tokens map[string]bool, required []string) bool {
	for _, col := range required {
		if !tokens[col] {
			return false
		}
	}
	return true
}
