package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

// MonolithicConfidence is the fixed confidence of a single-package SDK.
const MonolithicConfidence = 0.5

var serviceTokenRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// DetectCratePattern infers the service package naming template of ws.
// Packages whose short name is infrastructure, or empty, are not candidates.
func DetectCratePattern(ws *domain.WorkspaceModel, provider string, bl Blocklist) domain.DetectionResult[domain.CratePattern] {
	var candidates []domain.PackageInfo
	for _, p := range ws.Packages {
		short := ws.ShortName(p)
		if short == "" || bl.IsInfrastructure(short) {
			continue
		}
		candidates = append(candidates, p)
	}

	switch len(candidates) {
	case 0:
		return domain.Detected(domain.CratePattern{}, 0, "no service packages found")
	case 1:
		return domain.Detected(domain.CratePattern{
			Monolithic: true,
			Services:   []domain.ServicePackage{{Package: candidates[0]}},
		}, MonolithicConfidence, "single SDK package")
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	tmpl := InferTemplate(names)

	var services []domain.ServicePackage
	for _, c := range candidates {
		token, ok := tmpl.Extract(c.Name)
		if !ok || !serviceTokenRe.MatchString(token) {
			continue
		}
		services = append(services, domain.ServicePackage{Package: c, Token: token})
	}

	conf := TemplateConfidence(len(services), len(candidates))
	if provider != "" && !strings.Contains(strings.ToLower(tmpl.Literal()), strings.ToLower(provider)) {
		conf *= 0.9
	}

	evidence := fmt.Sprintf("%d of %d service packages match %s", len(services), len(candidates), tmpl)
	return domain.Detected(domain.CratePattern{Template: tmpl, Services: services}, conf, evidence)
}

// TemplateConfidence scales the consistent fraction by a sample-count factor
// that reaches 1.0 at five consistent samples.
func TemplateConfidence(consistent, total int) float64 {
	if total == 0 || consistent == 0 {
		return 0
	}
	countFactor := min(1.0, 0.75+0.05*float64(consistent))
	return float64(consistent) / float64(total) * countFactor
}

// InferTemplate builds prefix + {service} + suffix from the longest common
// prefix and suffix of names, both snapped to delimiter boundaries. The
// service token of every name stays non-empty.
func InferTemplate(names []string) domain.NamingTemplate {
	if len(names) == 0 {
		return ""
	}
	prefix := snapPrefix(commonPrefix(names))
	suffix := snapSuffix(commonSuffix(names))

	fits := func(p, s string) bool {
		for _, n := range names {
			if len(n) <= len(p)+len(s) {
				return false
			}
		}
		return true
	}
	for !fits(prefix, suffix) && suffix != "" {
		suffix = snapSuffix(suffix[1:])
	}
	for !fits(prefix, suffix) && prefix != "" {
		prefix = snapPrefix(prefix[:len(prefix)-1])
	}
	return domain.NamingTemplate(prefix + domain.ServicePlaceholder + suffix)
}

func commonPrefix(names []string) string {
	p := names[0]
	for _, n := range names[1:] {
		i := 0
		for i < len(p) && i < len(n) && p[i] == n[i] {
			i++
		}
		p = p[:i]
	}
	return p
}

func commonSuffix(names []string) string {
	s := names[0]
	for _, n := range names[1:] {
		i := 0
		for i < len(s) && i < len(n) && s[len(s)-1-i] == n[len(n)-1-i] {
			i++
		}
		s = s[len(s)-i:]
	}
	return s
}

// snapPrefix trims p back so it ends with a delimiter.
func snapPrefix(p string) string {
	i := strings.LastIndexFunc(p, isDelimiter)
	if i < 0 {
		return ""
	}
	return p[:i+1]
}

// snapSuffix trims s forward so it starts with a delimiter.
func snapSuffix(s string) string {
	i := strings.IndexFunc(s, isDelimiter)
	if i < 0 {
		return ""
	}
	return s[i:]
}
