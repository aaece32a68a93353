package analysis

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/fatih/camelcase"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

// Names of the error metadata abstractions generated code imports.
var metadataTypeNames = []string{"ProvideErrorMetadata", "APIError"}

// ErrorSource is one parsed package scanned for error types. Token is the
// service token for service packages and empty for shared ones.
type ErrorSource struct {
	Surface *domain.PackageSurface
	Token   string
}

// CollectErrorPool gathers the deduplicated variants of every error type in
// sources, in first-seen order, and the number of error types scanned.
func CollectErrorPool(sources []ErrorSource) ([]string, int) {
	seen := make(map[string]bool)
	var pool []string
	types := 0
	for _, src := range sources {
		if src.Surface == nil {
			continue
		}
		for _, t := range src.Surface.Types {
			if !isErrorType(t) {
				continue
			}
			types++
			for _, v := range t.Variants {
				if v == "" || seen[v] {
					continue
				}
				seen[v] = true
				pool = append(pool, v)
			}
		}
	}
	return pool, types
}

func isErrorType(t domain.TypeDecl) bool {
	if len(t.Variants) == 0 {
		return false
	}
	return strings.Contains(t.Name, "Error") || strings.Contains(t.Name, "Exception")
}

// DetectErrors classifies the error pool of sources and locates the error
// metadata import path.
func DetectErrors(sources []ErrorSource) domain.DetectionResult[domain.ErrorAnalysis] {
	pool, types := CollectErrorPool(sources)
	res := ClassifyErrors(pool)
	res.Value.MetadataImport = MetadataImport(sources)
	res.Evidence = fmt.Sprintf("%s from %d error types", res.Evidence, types)
	return res
}

// ClassifyErrors buckets pool into the fixed categories. Each variant lands
// in at most one category; the score is the classified fraction of pool.
// The result is a pure function of pool.
func ClassifyErrors(pool []string) domain.DetectionResult[domain.ErrorAnalysis] {
	analysis := domain.ErrorAnalysis{
		Buckets:     domain.NewCategoryBucket(),
		PerCategory: make(map[domain.Category]float64, len(domain.AllCategories)),
		Pool:        append([]string(nil), pool...),
	}
	for _, c := range domain.AllCategories {
		analysis.PerCategory[c] = 0
	}
	if len(pool) == 0 {
		return domain.Detected(analysis, 0, "no error variants found")
	}

	assigned := make(map[string]domain.Category, len(pool))
	emitted := make(map[domain.Category][]domain.ErrorPattern)
	matched := make(map[domain.Category]int)
	for _, variant := range pool {
		c, p, ok := classifyVariant(variant)
		if !ok {
			analysis.Unclassified = append(analysis.Unclassified, variant)
			continue
		}
		assigned[variant] = c
		matched[c]++
		emitted[c] = append(emitted[c], p)
	}

	total := 0
	for _, c := range domain.AllCategories {
		for _, p := range collapseExact(emitted[c], c, assigned, pool) {
			analysis.Buckets.Add(c, p)
		}
		analysis.PerCategory[c] = float64(matched[c]) / float64(len(pool))
		total += matched[c]
	}

	evidence := fmt.Sprintf("classified %d of %d error variants", total, len(pool))
	return domain.Detected(analysis, float64(total)/float64(len(pool)), evidence)
}

// classifyVariant applies the first matching rule. Prefix and suffix rules
// emit the rule pattern; contains rules emit the variant from the keyword
// onwards as a suffix pattern. SCREAMING_SNAKE codes match through their
// CamelCase form and are always emitted exact.
func classifyVariant(variant string) (domain.Category, domain.ErrorPattern, bool) {
	key := variant
	screaming := isScreamingSnake(variant)
	if screaming {
		key = screamingToCamel(variant)
	}
	rule, ok := MatchRule(key)
	if !ok {
		return "", domain.ErrorPattern{}, false
	}
	if screaming {
		return rule.Category, domain.Exact(variant), true
	}
	switch rule.Pattern.Kind {
	case domain.PatternContains:
		i := strings.Index(key, rule.Pattern.Literal)
		if i == 0 && key == rule.Pattern.Literal {
			return rule.Category, domain.Exact(variant), true
		}
		return rule.Category, domain.Suffix(key[i:]), true
	case domain.PatternExact:
		return rule.Category, domain.Exact(variant), true
	default:
		return rule.Category, rule.Pattern, true
	}
}

// collapseExact merges two or more exact literals of one category that share
// leading words into a single prefix pattern, unless the prefix would also
// match a pool variant outside the category.
func collapseExact(patterns []domain.ErrorPattern, c domain.Category, assigned map[string]domain.Category, pool []string) []domain.ErrorPattern {
	groups := make(map[string][]int)
	var order []string
	for i, p := range patterns {
		if p.Kind != domain.PatternExact {
			continue
		}
		words := codeWords(p.Literal)
		if len(words) < 2 {
			continue
		}
		if _, ok := groups[words[0]]; !ok {
			order = append(order, words[0])
		}
		groups[words[0]] = append(groups[words[0]], i)
	}

	replace := make(map[int]domain.ErrorPattern)
	drop := make(map[int]bool)
	for _, first := range order {
		idx := groups[first]
		if len(idx) < 2 {
			continue
		}
		literals := make([]string, len(idx))
		for i, j := range idx {
			literals[i] = patterns[j].Literal
		}
		prefix := sharedWordPrefix(literals)
		if prefix == "" || !prefixIsSafe(prefix, c, assigned, pool) {
			continue
		}
		replace[idx[0]] = domain.Prefix(prefix)
		for _, j := range idx[1:] {
			drop[j] = true
		}
	}

	out := make([]domain.ErrorPattern, 0, len(patterns))
	for i, p := range patterns {
		if drop[i] {
			continue
		}
		if r, ok := replace[i]; ok {
			p = r
		}
		out = append(out, p)
	}
	return out
}

func prefixIsSafe(prefix string, c domain.Category, assigned map[string]domain.Category, pool []string) bool {
	for _, v := range pool {
		if strings.HasPrefix(v, prefix) && assigned[v] != c {
			return false
		}
	}
	return true
}

// sharedWordPrefix returns the longest run of leading words common to all
// literals, including the separator that follows it, or "" when a literal
// would be consumed whole.
func sharedWordPrefix(literals []string) string {
	split := make([][]string, len(literals))
	for i, l := range literals {
		split[i] = codeWords(l)
	}
	n := len(split[0])
	for _, ws := range split[1:] {
		k := 0
		for k < n && k < len(ws) && ws[k] == split[0][k] {
			k++
		}
		n = k
	}
	if n == 0 {
		return ""
	}
	for _, ws := range split {
		if len(ws) == n {
			return ""
		}
	}
	if isScreamingSnake(literals[0]) {
		return strings.Join(split[0][:n], "_") + "_"
	}
	return strings.Join(split[0][:n], "")
}

// codeWords splits an error code into words: on '_' for SCREAMING_SNAKE and
// on case changes otherwise.
func codeWords(code string) []string {
	if isScreamingSnake(code) {
		return strings.FieldsFunc(code, func(r rune) bool { return r == '_' })
	}
	return camelcase.Split(code)
}

func isScreamingSnake(s string) bool {
	if len(s) < 2 {
		return false
	}
	upper := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case r == '_' || unicode.IsDigit(r):
		default:
			return false
		}
	}
	return upper
}

func screamingToCamel(s string) string {
	var b strings.Builder
	for _, w := range strings.FieldsFunc(s, func(r rune) bool { return r == '_' }) {
		b.WriteString(w[:1])
		b.WriteString(strings.ToLower(w[1:]))
	}
	return b.String()
}

// MetadataImport returns the path of the error metadata abstraction. Shared
// packages are preferred; a path found in a service package is templatized.
func MetadataImport(sources []ErrorSource) string {
	ordered := append([]ErrorSource(nil), sources...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Token == "" && ordered[j].Token != ""
	})
	for _, name := range metadataTypeNames {
		for _, src := range ordered {
			if src.Surface == nil {
				continue
			}
			t, ok := src.Surface.FindType(name)
			if !ok || (t.Kind != domain.KindInterface && t.Kind != domain.KindAlias) {
				continue
			}
			if src.Token == "" {
				return t.Path
			}
			if tmpl, ok := Templatize(t.Path, src.Surface.Ident, src.Token); ok {
				return string(tmpl)
			}
			return t.Path
		}
	}
	return ""
}
