// Package normalize provides utilities for normalizing and sanitizing data.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PersonName canonicalizes a person name or surname for storage:
// Unicode NFC, null bytes stripped, surrounding whitespace trimmed, and
// interior whitespace runs collapsed to a single space.
//
//	"  Stanisław \t Lem " -> "Stanisław Lem"
//
// Composed vs decomposed accents ("é" vs "e"+combining acute) normalize
// to the same bytes, so equality on normalized names behaves the way a
// librarian expects.
func PersonName(raw string) string {
	s := norm.NFC.String(sanitizeString(raw))
	return strings.Join(strings.Fields(s), " ")
}

// Title canonicalizes a book title. Same treatment as PersonName.
func Title(raw string) string {
	return PersonName(raw)
}

// Fold lowercases a normalized string for case-insensitive matching.
// Callers normalize first; Fold does not trim or collapse whitespace.
func Fold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// sanitizeString removes null bytes from strings, which can cause
// issues in databases and JSON parsing. Imported records occasionally
// carry null terminators in strings.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 { // null byte
			return -1 // drop it
		}
		return r
	}, s)
}
