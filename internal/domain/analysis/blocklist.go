// Package analysis holds the pure detectors that infer SDK metadata from a
// loaded workspace and its parsed package surfaces.
package analysis

import (
	"sort"
	"strings"
)

// infraFragments are name segments that mark shared support packages. A
// service package never carries one of these as a name segment.
var infraFragments = []string{
	"auth", "bench", "build", "checksum", "codegen", "common", "config",
	"core", "credential", "derive", "endpoint", "eventstream", "example",
	"feature", "fuzz", "identity", "imds", "internal", "macro", "middleware",
	"mock", "protocol", "retry", "runtime", "sigv4", "sigv4a", "smithy",
	"test", "tool", "types", "util", "xtask",
}

// InfraFragments returns a copy of the built-in fragment table.
func InfraFragments() []string {
	return append([]string(nil), infraFragments...)
}

// Blocklist classifies package short names as infrastructure. It is built
// once and never mutated.
type Blocklist struct {
	fragments map[string]struct{}
}

// NewBlocklist returns the built-in blocklist extended with extra fragments.
func NewBlocklist(extra ...string) Blocklist {
	set := make(map[string]struct{}, len(infraFragments)+len(extra))
	for _, f := range infraFragments {
		set[f] = struct{}{}
	}
	for _, f := range extra {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			set[f] = struct{}{}
		}
	}
	return Blocklist{fragments: set}
}

// Fragments lists the active fragments in lexical order.
func (b Blocklist) Fragments() []string {
	out := make([]string, 0, len(b.fragments))
	for f := range b.fragments {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// IsInfrastructure reports whether any segment of name equals a fragment or
// its plural.
func (b Blocklist) IsInfrastructure(name string) bool {
	if b.fragments == nil {
		b = NewBlocklist()
	}
	for _, seg := range Segments(strings.ToLower(name)) {
		if _, ok := b.fragments[seg]; ok {
			return true
		}
		if s, ok := strings.CutSuffix(seg, "s"); ok {
			if _, ok := b.fragments[s]; ok {
				return true
			}
		}
	}
	return false
}

// Segments splits a package name on the delimiters '-', '_', '/' and '.'.
func Segments(name string) []string {
	return strings.FieldsFunc(name, isDelimiter)
}

func isDelimiter(r rune) bool {
	return r == '-' || r == '_' || r == '/' || r == '.'
}
