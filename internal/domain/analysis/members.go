package analysis

import (
	"github.com/sdkprobe/sdkprobe/internal/domain"
)

// errorBearingFragments mark shared packages that define error types or the
// error metadata abstraction.
var errorBearingFragments = map[string]bool{
	"error": true, "errors": true, "types": true, "type": true,
	"runtime": true, "smithy": true,
}

// SharedErrorPackages returns the non-service members scanned for shared
// error types: infrastructure packages with an error-bearing name segment
// and, for Go workspaces, the root module.
func SharedErrorPackages(ws *domain.WorkspaceModel, crate domain.CratePattern) []domain.PackageInfo {
	services := serviceNames(crate)
	var out []domain.PackageInfo
	for _, p := range ws.Packages {
		if services[p.Name] {
			continue
		}
		if ws.Kind == domain.WorkspaceGo && p.IsRoot {
			out = append(out, p)
			continue
		}
		for _, seg := range Segments(ws.ShortName(p)) {
			if errorBearingFragments[seg] {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// ClassifyMembers assigns every member a role and counts how many other
// members depend on it.
func ClassifyMembers(ws *domain.WorkspaceModel, crate domain.CratePattern, configPkg *string) []domain.MemberSummary {
	tokens := make(map[string]string, len(crate.Services))
	for _, s := range crate.Services {
		tokens[s.Package.Name] = s.Token
	}
	fanIn := make(map[string]int)
	for _, p := range ws.Packages {
		for _, d := range p.Dependencies {
			fanIn[d]++
		}
	}

	out := make([]domain.MemberSummary, 0, len(ws.Packages))
	for _, p := range ws.Packages {
		m := domain.MemberSummary{
			Package:      p,
			ShortName:    ws.ShortName(p),
			Role:         domain.RoleInfrastructure,
			DependedOnBy: fanIn[p.Name],
		}
		if token, ok := tokens[p.Name]; ok {
			m.Role = domain.RoleService
			m.Token = token
		}
		if configPkg != nil && *configPkg == p.Name {
			m.Role = domain.RoleConfig
		}
		out = append(out, m)
	}
	return out
}

func serviceNames(crate domain.CratePattern) map[string]bool {
	services := make(map[string]bool, len(crate.Services))
	for _, s := range crate.Services {
		services[s.Package.Name] = true
	}
	return services
}
