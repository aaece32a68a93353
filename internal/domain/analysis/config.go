package analysis

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/fatih/camelcase"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

// configKeywords in priority order, with the confidence of a hit.
var configKeywords = []struct {
	keyword    string
	confidence float64
}{
	{"config", 0.95},
	{"credentials", 0.85},
	{"auth", 0.85},
	{"identity", 0.85},
}

// attributeVocabulary is the recognized configuration attribute set, in
// emission order.
var attributeVocabulary = []struct {
	name        string
	description string
}{
	{"region", "Region for requests"},
	{"zone", "Availability zone"},
	{"project", "Project identifier"},
	{"profile", "Named credentials profile"},
	{"endpoint", "Custom service endpoint"},
	{"location", "Resource location"},
	{"namespace", "Resource namespace"},
	{"credentials", "Credentials provider"},
	{"timeout", "Request timeout"},
	{"retries", "Maximum retry attempts"},
	{"account", "Account identifier"},
	{"tenant", "Tenant identifier"},
	{"subscription", "Subscription identifier"},
	{"universe_domain", "Universe domain"},
	{"proxy", "HTTP proxy"},
	{"app_name", "Application name reported to the provider"},
}

const (
	exactAttrConfidence     = 0.9
	substringAttrConfidence = 0.6
	builderBonus            = 0.05
)

// SelectConfigPackage finds the configuration package among the non-service
// members of ws. An override names the package explicitly.
func SelectConfigPackage(ws *domain.WorkspaceModel, crate domain.CratePattern, override string) domain.DetectionResult[*string] {
	if override != "" {
		if _, ok := ws.Package(override); ok {
			name := override
			return domain.Detected(&name, 1, fmt.Sprintf("package %s configured explicitly", override))
		}
	}

	services := make(map[string]bool, len(crate.Services))
	for _, s := range crate.Services {
		services[s.Package.Name] = true
	}

	for _, kw := range configKeywords {
		var hits []string
		for _, p := range ws.Packages {
			if services[p.Name] {
				continue
			}
			if strings.Contains(strings.ToLower(ws.ShortName(p)), kw.keyword) {
				hits = append(hits, p.Name)
			}
		}
		if len(hits) == 0 {
			continue
		}
		sort.Slice(hits, func(i, j int) bool {
			if len(hits[i]) != len(hits[j]) {
				return len(hits[i]) < len(hits[j])
			}
			return hits[i] < hits[j]
		})
		name := hits[0]
		return domain.Detected(&name, kw.confidence,
			fmt.Sprintf("package %s matches keyword %q", name, kw.keyword))
	}
	return domain.Detected[*string](nil, 0, "no configuration package found")
}

// DetectConfigAttributes matches the public setters of surface against the
// attribute vocabulary. One result per attribute name survives, the most
// confident one.
func DetectConfigAttributes(kind domain.WorkspaceKind, surface *domain.PackageSurface) []domain.DetectionResult[domain.ConfigAttribute] {
	if surface == nil {
		return nil
	}
	best := make(map[string]domain.DetectionResult[domain.ConfigAttribute])
	for _, fn := range surface.Functions {
		norm := NormalizeMethodName(fn.Name)
		if norm == "" {
			continue
		}
		name, description, conf, ok := matchAttribute(norm)
		if !ok {
			continue
		}
		// Getters take no value and are not configuration setters.
		param, hasParam := firstParam(fn)
		if !hasParam {
			continue
		}
		if isBuilderLike(fn) {
			conf += builderBonus
		}

		attr := domain.ConfigAttribute{
			Name:        name,
			Description: description,
			Required:    !param.Optional,
			Setter:      setterSnippet(kind, surface, fn),
			Extractor:   ExtractorFor(param.Type),
			Source:      qualifiedName(surface, fn),
		}

		evidence := fmt.Sprintf("%s matches %q", attr.Source, name)
		if prev, seen := best[name]; seen && prev.Confidence >= domain.Clamp01(conf) {
			continue
		}
		best[name] = domain.Detected(attr, conf, evidence)
	}

	var out []domain.DetectionResult[domain.ConfigAttribute]
	for _, v := range attributeVocabulary {
		if r, ok := best[v.name]; ok {
			out = append(out, r)
		}
	}
	return out
}

// RegionAttribute returns the detected region-like attribute name, if any.
func RegionAttribute(attrs []domain.DetectionResult[domain.ConfigAttribute]) string {
	for _, want := range []string{"region", "location"} {
		for _, a := range attrs {
			if a.Value.Name == want {
				return want
			}
		}
	}
	return ""
}

// NormalizeMethodName strips setter prefixes and converts the rest to
// snake_case: WithRegion, set_region and region all become "region".
func NormalizeMethodName(name string) string {
	var words []string
	for _, part := range strings.Split(name, "_") {
		for _, w := range camelcase.Split(part) {
			if w = strings.ToLower(w); w != "" {
				words = append(words, w)
			}
		}
	}
	if len(words) > 1 && (words[0] == "with" || words[0] == "set") {
		words = words[1:]
	}
	return strings.Join(words, "_")
}

func matchAttribute(norm string) (name, description string, conf float64, ok bool) {
	for _, v := range attributeVocabulary {
		if norm == v.name {
			return v.name, v.description, exactAttrConfidence, true
		}
	}
	for _, v := range attributeVocabulary {
		if strings.Contains(norm, v.name) {
			return v.name, v.description, substringAttrConfidence, true
		}
	}
	return "", "", 0, false
}

func isBuilderLike(fn domain.FuncDecl) bool {
	r := fn.Receiver
	if strings.Contains(r, "Builder") || strings.Contains(r, "Loader") || strings.Contains(r, "Options") {
		return true
	}
	return r == "" && strings.HasPrefix(fn.Name, "With")
}

func firstParam(fn domain.FuncDecl) (domain.Param, bool) {
	for _, p := range fn.Params {
		if p.Name == "self" || strings.HasSuffix(p.Name, "self") {
			continue
		}
		return p, true
	}
	return domain.Param{}, false
}

// ExtractorFor guesses the value extractor from a parameter's type text.
func ExtractorFor(typ string) string {
	kind := "as_str()"
	for _, tok := range typeWordRe.FindAllString(strings.ToLower(typ), -1) {
		switch tok {
		case "bool":
			return "as_bool()"
		case "f32", "f64", "float32", "float64":
			return "as_f64()"
		case "u8", "u16", "u32", "u64", "usize", "uint", "uint8", "uint16", "uint32", "uint64", "duration":
			return "as_u64()"
		case "i8", "i16", "i32", "i64", "isize", "int", "int8", "int16", "int32", "int64":
			kind = "as_i64()"
		}
	}
	return kind
}

var typeWordRe = regexp.MustCompile(`[a-z0-9]+`)

func setterSnippet(kind domain.WorkspaceKind, surface *domain.PackageSurface, fn domain.FuncDecl) string {
	if kind == domain.WorkspaceGo && fn.Receiver == "" {
		return fmt.Sprintf("{config} = append({config}, %s.%s({value}))", Qualifier(surface), fn.Name)
	}
	return fmt.Sprintf("{config} = {config}.%s({value})", fn.Name)
}

func qualifiedName(surface *domain.PackageSurface, fn domain.FuncDecl) string {
	sep := surface.Separator
	if sep == "" {
		sep = "."
	}
	if fn.Receiver != "" {
		return surface.Ident + sep + fn.Receiver + sep + fn.Name
	}
	return surface.Ident + sep + fn.Name
}

// Qualifier is the name source code uses to refer to the package: the crate
// identifier, or the last import path element of a Go package.
func Qualifier(surface *domain.PackageSurface) string {
	if strings.Contains(surface.Ident, "/") {
		return path.Base(surface.Ident)
	}
	return surface.Ident
}
