package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

// ClientTypeName is the conventional name of an SDK client type.
const ClientTypeName = "Client"

// Sample picks at most limit services at an even stride, keeping order.
func Sample(services []domain.ServicePackage, limit int) []domain.ServicePackage {
	if limit <= 0 || len(services) <= limit {
		return services
	}
	out := make([]domain.ServicePackage, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, services[i*len(services)/limit])
	}
	return out
}

// DetectClientType locates the Client type of every sampled service package
// and returns the modal type-path template. Packages that failed to parse
// are skipped and do not count against the agreement ratio.
func DetectClientType(crate domain.CratePattern, surfaces domain.Surfaces, maxSamples int) domain.DetectionResult[domain.ClientPattern] {
	if crate.Monolithic && len(crate.Services) == 1 {
		return detectSharedClient(crate.Services[0].Package, surfaces)
	}

	sample := Sample(crate.Services, maxSamples)
	votes := make(map[domain.NamingTemplate]int)
	var parsed, skipped, async int
	var paths []string
	for _, svc := range sample {
		surface, ok := surfaces.Get(svc.Package.Name)
		if !ok {
			skipped++
			continue
		}
		parsed++
		if surface.HasAsync() {
			async++
		}
		t, found := findClient(surface)
		if !found {
			continue
		}
		tmpl, ok := Templatize(t.Path, surface.Ident, svc.Token)
		if !ok {
			continue
		}
		votes[tmpl]++
		paths = append(paths, t.Path)
	}

	if parsed == 0 {
		return domain.Detected(domain.ClientPattern{}, 0,
			fmt.Sprintf("no parsable service packages (%d skipped)", skipped))
	}
	if len(votes) == 0 {
		return domain.Detected(domain.ClientPattern{Async: async*2 > parsed}, 0,
			fmt.Sprintf("no %s type found in %d parsed packages", ClientTypeName, parsed))
	}

	modal, count := modalTemplate(votes)
	evidence := fmt.Sprintf("%d of %d parsed packages expose %s", count, parsed, modal)
	if skipped > 0 {
		evidence += fmt.Sprintf(" (%d skipped on parse failure)", skipped)
	}
	return domain.Detected(domain.ClientPattern{
		Template: modal,
		Async:    async*2 > parsed,
		Samples:  paths,
	}, float64(count)/float64(parsed), evidence)
}

func detectSharedClient(pkg domain.PackageInfo, surfaces domain.Surfaces) domain.DetectionResult[domain.ClientPattern] {
	surface, ok := surfaces.Get(pkg.Name)
	if !ok {
		return domain.Detected(domain.ClientPattern{}, 0,
			fmt.Sprintf("package %s could not be parsed", pkg.Name))
	}
	t, found := findClient(surface)
	if !found {
		return domain.Detected(domain.ClientPattern{Async: surface.HasAsync()}, 0,
			fmt.Sprintf("no %s type found in %s", ClientTypeName, pkg.Name))
	}
	return domain.Detected(domain.ClientPattern{
		SharedType: t.Path,
		Async:      surface.HasAsync(),
		Samples:    []string{t.Path},
	}, 1, fmt.Sprintf("shared client %s", t.Path))
}

func findClient(surface *domain.PackageSurface) (domain.TypeDecl, bool) {
	var fallback *domain.TypeDecl
	for i := range surface.Types {
		t := &surface.Types[i]
		if t.Name != ClientTypeName || (t.Kind != domain.KindStruct && t.Kind != domain.KindAlias) {
			continue
		}
		if t.Root {
			return *t, true
		}
		if fallback == nil {
			fallback = t
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return domain.TypeDecl{}, false
}

// Templatize replaces the last occurrence of the service token inside the
// package identifier part of path with {service}. Tokens are normalized to
// identifier form ('-' becomes '_') before the raw form is tried.
func Templatize(path, ident, token string) (domain.NamingTemplate, bool) {
	if token == "" {
		return "", false
	}
	head, tail := path, ""
	if ident != "" && strings.HasPrefix(path, ident) {
		head, tail = ident, path[len(ident):]
	}
	for _, tok := range []string{strings.ReplaceAll(token, "-", "_"), token} {
		if i := strings.LastIndex(head, tok); i >= 0 {
			return domain.NamingTemplate(head[:i] + domain.ServicePlaceholder + head[i+len(tok):] + tail), true
		}
	}
	return "", false
}

// modalTemplate returns the most voted template; ties break lexically.
func modalTemplate(votes map[domain.NamingTemplate]int) (domain.NamingTemplate, int) {
	keys := make([]domain.NamingTemplate, 0, len(votes))
	for k := range votes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if votes[keys[i]] != votes[keys[j]] {
			return votes[keys[i]] > votes[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys[0], votes[keys[0]]
}
