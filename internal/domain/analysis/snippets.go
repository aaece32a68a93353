package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

// Variable names used by the emitted configuration snippets.
const (
	ConfigLoaderVar = "config_loader"
	SDKConfigVar    = "sdk_config"
	ClientVar       = "client"
)

// DetectSnippets derives the initialization, load and client construction
// snippets. configSurface may be nil when no config package exists or it
// failed to parse; clientSurface is a sampled service package surface.
func DetectSnippets(kind domain.WorkspaceKind, configPkg *string, configSurface, clientSurface *domain.PackageSurface) domain.DetectionResult[domain.ConfigSnippets] {
	if kind == domain.WorkspaceGo {
		return goSnippets(configSurface, clientSurface)
	}
	return cargoSnippets(configPkg, configSurface)
}

func cargoSnippets(configPkg *string, surface *domain.PackageSurface) domain.DetectionResult[domain.ConfigSnippets] {
	snippets := domain.ConfigSnippets{
		Initialization: domain.Snippet{Code: "Config::from_env()", VarName: ConfigLoaderVar},
		Load:           domain.Snippet{Code: ConfigLoaderVar + ".load().await", VarName: SDKConfigVar},
		ClientFrom:     domain.Snippet{Code: "{client_type}::new(&" + SDKConfigVar + ")", VarName: ClientVar},
	}
	if configPkg == nil {
		return domain.Detected(snippets, 0.3, "no configuration package, generic loader assumed")
	}

	ident := strings.ReplaceAll(*configPkg, "-", "_")
	snippets.Initialization.Code = ident + "::from_env()"
	if surface != nil && surface.HasFunction("from_env") {
		return domain.Detected(snippets, 0.9, fmt.Sprintf("%s::from_env found", ident))
	}
	return domain.Detected(snippets, 0.6, fmt.Sprintf("%s::from_env assumed", ident))
}

func goSnippets(configSurface, clientSurface *domain.PackageSurface) domain.DetectionResult[domain.ConfigSnippets] {
	snippets := domain.ConfigSnippets{
		Initialization: domain.Snippet{Code: "nil", VarName: ConfigLoaderVar},
		Load:           domain.Snippet{Code: "LoadDefaultConfig(ctx, " + ConfigLoaderVar + "...)", VarName: SDKConfigVar},
		ClientFrom:     domain.Snippet{Code: "{service}.New(" + SDKConfigVar + ")", VarName: ClientVar},
	}

	conf := 0.3
	var found []string
	if configSurface != nil {
		q := Qualifier(configSurface)
		if _, ok := configSurface.FindType("LoadOptions"); ok {
			snippets.Initialization.Code = fmt.Sprintf("[]func(*%s.LoadOptions) error{}", q)
			found = append(found, "LoadOptions")
			conf += 0.2
		}
		if configSurface.HasFunction("LoadDefaultConfig") {
			snippets.Load.Code = fmt.Sprintf("%s.LoadDefaultConfig(ctx, %s...)", q, ConfigLoaderVar)
			found = append(found, "LoadDefaultConfig")
			conf += 0.2
		}
	}
	if clientSurface != nil && clientSurface.HasFunction("NewFromConfig") {
		snippets.ClientFrom.Code = "{service}.NewFromConfig(" + SDKConfigVar + ")"
		found = append(found, "NewFromConfig")
		conf += 0.2
	}
	if len(found) == 0 {
		return domain.Detected(snippets, conf, "no loader functions found, generic snippets assumed")
	}
	return domain.Detected(snippets, conf, "found "+strings.Join(found, ", "))
}

// Dependencies lists the packages generated code depends on: the config
// package first, then infrastructure packages used by at least half of the
// service packages.
func Dependencies(ws *domain.WorkspaceModel, crate domain.CratePattern, configPkg *string) []string {
	services := make(map[string]bool, len(crate.Services))
	for _, s := range crate.Services {
		services[s.Package.Name] = true
	}

	counts := make(map[string]int)
	for _, s := range crate.Services {
		seen := make(map[string]bool)
		for _, d := range s.Package.Dependencies {
			if services[d] || seen[d] {
				continue
			}
			if _, member := ws.Package(d); !member {
				continue
			}
			seen[d] = true
			counts[d]++
		}
	}

	var names []string
	if configPkg != nil {
		names = append(names, *configPkg)
	}
	var shared []string
	for name, n := range counts {
		if n*2 >= len(crate.Services) && (configPkg == nil || name != *configPkg) {
			shared = append(shared, name)
		}
	}
	sort.Strings(shared)
	names = append(names, shared...)

	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, FormatDependency(ws, name))
	}
	return out
}

// FormatDependency renders a dependency line for the workspace kind.
func FormatDependency(ws *domain.WorkspaceModel, name string) string {
	if ws.Kind == domain.WorkspaceGo {
		return name
	}
	p, _ := ws.Package(name)
	return fmt.Sprintf("%s = %q", name, CompatibleVersion(p.Version))
}

// CompatibleVersion reduces a semantic version to its caret-compatible
// requirement: "1.2.3" is "1", "0.55.1" is "0.55".
func CompatibleVersion(v string) string {
	parts := strings.Split(strings.TrimPrefix(v, "v"), ".")
	switch {
	case v == "" || parts[0] == "":
		return "*"
	case parts[0] == "0" && len(parts) > 1:
		return parts[0] + "." + parts[1]
	default:
		return parts[0]
	}
}
