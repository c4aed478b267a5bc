// Package fspath maps document identifiers to relative filesystem paths.
package fspath

import (
	"net/url"
	"strings"
)

// Generator generates a relative, solidus delimited file path
// from a given identifier.  The resulting paths are used for mapping
// document identifiers to document directories (possibly with
// intervening directories, e.g. pairtrees).
type Generator interface {
	Generate(string) string
}

// GeneratorFunc is a function that can be used to satisfy the Generator interface
type GeneratorFunc func(string) string

// Generate a path from a given id string
func (g GeneratorFunc) Generate(id string) string {
	return g(id)
}

// Escape is the default Generator.  Each id maps to a single directory
// named by its query escaped form.
var Escape Generator = GeneratorFunc(url.QueryEscape)

// Pairtree spreads ids over nested directories of two-character segments of the
// escaped id, followed by the escaped id itself, e.g. abcde -> ab/cd/abcde.  Depth
// bounds the number of intermediate segments.
func Pairtree(depth int) Generator {
	return GeneratorFunc(func(id string) string {
		escaped := url.QueryEscape(id)

		var segments []string
		for i := 0; i < depth && i*2+2 <= len(escaped); i++ {
			segments = append(segments, escaped[i*2:i*2+2])
		}

		return strings.Join(append(segments, escaped), "/")
	})
}
