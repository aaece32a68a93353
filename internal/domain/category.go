package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is one of the nine fixed error categories.
type Category string

const (
	CategoryNotFound           Category = "not_found"
	CategoryAlreadyExists      Category = "already_exists"
	CategoryPermissionDenied   Category = "permission_denied"
	CategoryValidation         Category = "validation"
	CategoryFailedPrecondition Category = "failed_precondition"
	CategoryResourceExhausted  Category = "resource_exhausted"
	CategoryUnavailable        Category = "unavailable"
	CategoryDeadlineExceeded   Category = "deadline_exceeded"
	CategoryUnimplemented      Category = "unimplemented"
)

// AllCategories lists the closed category set in document order.
var AllCategories = []Category{
	CategoryNotFound,
	CategoryAlreadyExists,
	CategoryPermissionDenied,
	CategoryValidation,
	CategoryFailedPrecondition,
	CategoryResourceExhausted,
	CategoryUnavailable,
	CategoryDeadlineExceeded,
	CategoryUnimplemented,
}

// IsValid reports whether c belongs to the closed category set.
func (c Category) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// PatternKind describes where an error pattern is anchored.
type PatternKind int

const (
	PatternExact PatternKind = iota
	PatternPrefix
	PatternSuffix
	PatternContains
)

func (k PatternKind) String() string {
	switch k {
	case PatternPrefix:
		return "prefix"
	case PatternSuffix:
		return "suffix"
	case PatternContains:
		return "contains"
	default:
		return "exact"
	}
}

// ErrorPattern matches error codes by literal text with optional wildcards.
type ErrorPattern struct {
	Kind    PatternKind
	Literal string
}

func Exact(lit string) ErrorPattern    { return ErrorPattern{Kind: PatternExact, Literal: lit} }
func Prefix(lit string) ErrorPattern   { return ErrorPattern{Kind: PatternPrefix, Literal: lit} }
func Suffix(lit string) ErrorPattern   { return ErrorPattern{Kind: PatternSuffix, Literal: lit} }
func Contains(lit string) ErrorPattern { return ErrorPattern{Kind: PatternContains, Literal: lit} }

// String renders the pattern with '*' wildcard markers.
func (p ErrorPattern) String() string {
	switch p.Kind {
	case PatternPrefix:
		return p.Literal + "*"
	case PatternSuffix:
		return "*" + p.Literal
	case PatternContains:
		return "*" + p.Literal + "*"
	default:
		return p.Literal
	}
}

// Matches reports whether code satisfies the pattern.
func (p ErrorPattern) Matches(code string) bool {
	switch p.Kind {
	case PatternPrefix:
		return strings.HasPrefix(code, p.Literal)
	case PatternSuffix:
		return strings.HasSuffix(code, p.Literal)
	case PatternContains:
		return strings.Contains(code, p.Literal)
	default:
		return code == p.Literal
	}
}

// ParseErrorPattern parses the '*'-marked form produced by String.
func ParseErrorPattern(s string) (ErrorPattern, error) {
	lead := strings.HasPrefix(s, "*")
	trail := len(s) > 1 && strings.HasSuffix(s, "*")
	lit := s
	if lead {
		lit = lit[1:]
	}
	if trail {
		lit = lit[:len(lit)-1]
	}
	if lit == "" {
		return ErrorPattern{}, fmt.Errorf("empty error pattern %q", s)
	}
	if strings.Contains(lit, "*") {
		return ErrorPattern{}, fmt.Errorf("error pattern %q has a mid-string wildcard", s)
	}
	switch {
	case lead && trail:
		return Contains(lit), nil
	case lead:
		return Suffix(lit), nil
	case trail:
		return Prefix(lit), nil
	default:
		return Exact(lit), nil
	}
}

// CategoryBucket maps each category to its ordered, duplicate-free patterns.
type CategoryBucket struct {
	entries map[Category][]ErrorPattern
}

func NewCategoryBucket() *CategoryBucket {
	return &CategoryBucket{entries: make(map[Category][]ErrorPattern)}
}

// Add appends p to category c unless the same kind+literal is present.
func (b *CategoryBucket) Add(c Category, p ErrorPattern) bool {
	for _, existing := range b.entries[c] {
		if existing == p {
			return false
		}
	}
	b.entries[c] = append(b.entries[c], p)
	return true
}

// Patterns returns a copy of the patterns recorded for c.
func (b *CategoryBucket) Patterns(c Category) []ErrorPattern {
	if b == nil {
		return nil
	}
	return append([]ErrorPattern(nil), b.entries[c]...)
}

// Strings renders the patterns of c in insertion order.
func (b *CategoryBucket) Strings(c Category) []string {
	patterns := b.Patterns(c)
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = p.String()
	}
	return out
}

// Categories returns the non-empty categories in document order.
func (b *CategoryBucket) Categories() []Category {
	if b == nil {
		return nil
	}
	var out []Category
	for _, c := range AllCategories {
		if len(b.entries[c]) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Len counts the patterns across all categories.
func (b *CategoryBucket) Len() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, ps := range b.entries {
		n += len(ps)
	}
	return n
}

// Classify returns the first category, in document order, with a pattern
// matching code.
func (b *CategoryBucket) Classify(code string) (Category, bool) {
	for _, c := range b.Categories() {
		for _, p := range b.entries[c] {
			if p.Matches(code) {
				return c, true
			}
		}
	}
	return "", false
}

func (b *CategoryBucket) MarshalJSON() ([]byte, error) {
	out := make(map[string][]string)
	for _, c := range b.Categories() {
		out[string(c)] = b.Strings(c)
	}
	return json.Marshal(out)
}
