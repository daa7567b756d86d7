// Package util resolves user-typed id prefixes.
package util

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultShortIDLength is the number of characters shown for an id in listings.
	DefaultShortIDLength = 8
	// MaxAmbiguousCandidates caps the candidates named in an ambiguity error.
	MaxAmbiguousCandidates = 5
)

var (
	ErrAmbiguousID = errors.New("ambiguous ID prefix")
	ErrNotFound    = errors.New("not found")
)

// ShortID returns the first n characters of id.
// If n is 0 or negative, DefaultShortIDLength is used.
//
//	ShortID("3f2a9c1e-77d4-4b8e-9a51-0c6b2d8e4f10", 0) → "3f2a9c1e"
func ShortID(id string, n int) string {
	if n <= 0 {
		n = DefaultShortIDLength
	}
	if len(id) <= n {
		return id
	}
	return id[:n]
}

// ResolvePrefix picks the one id in candidates that idOrPrefix names.
//
// Resolution rules:
//  1. An exact match wins even if it is also a prefix of other ids.
//  2. A prefix matching exactly one id resolves to it.
//  3. Several matches return ErrAmbiguousID listing some of them.
//  4. No match returns ErrNotFound.
func ResolvePrefix(idOrPrefix string, candidates []string) (string, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return "", fmt.Errorf("empty ID: %w", ErrNotFound)
	}

	var matches []string
	for _, c := range candidates {
		if c == idOrPrefix {
			return c, nil
		}
		if strings.HasPrefix(c, idOrPrefix) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("ID with prefix %q: %w", idOrPrefix, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		shown := matches
		if len(shown) > MaxAmbiguousCandidates {
			shown = shown[:MaxAmbiguousCandidates]
		}
		return "", fmt.Errorf("%w: prefix %q matches %d IDs: %v",
			ErrAmbiguousID, idOrPrefix, len(matches), shown)
	}
}
