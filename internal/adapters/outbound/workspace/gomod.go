package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"

	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/scanner"
	"github.com/sdkprobe/sdkprobe/internal/domain"
)

const (
	goModManifest  = "go.mod"
	goWorkManifest = "go.work"
)

type goModule struct {
	info     domain.PackageInfo
	requires map[string]string
}

func readGoMod(dir string) (*goModule, error) {
	path := filepath.Join(dir, goModManifest)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return nil, malformed(path, err)
	}
	if f.Module == nil || f.Module.Mod.Path == "" {
		return nil, malformed(path, errors.New("missing module directive"))
	}
	m := &goModule{
		info:     domain.PackageInfo{Name: f.Module.Mod.Path, Path: dir},
		requires: make(map[string]string, len(f.Require)),
	}
	for _, r := range f.Require {
		m.info.Dependencies = append(m.info.Dependencies, r.Mod.Path)
		m.requires[r.Mod.Path] = r.Mod.Version
	}
	return m, nil
}

// loadGoWork loads the modules listed by use directives.
func (l *Loader) loadGoWork(root string) (*domain.WorkspaceModel, error) {
	path := filepath.Join(root, goWorkManifest)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, workspaceError(root, err)
	}
	wf, err := modfile.ParseWork(path, data, nil)
	if err != nil {
		return nil, malformed(path, err)
	}

	var modules []*goModule
	for _, use := range wf.Use {
		dir, err := securejoin.SecureJoin(root, use.Path)
		if err != nil {
			return nil, &domain.WorkspaceError{Path: root, Err: fmt.Errorf("resolving use %q: %w", use.Path, err)}
		}
		m, err := readGoMod(dir)
		if err != nil {
			return nil, workspaceError(root, err)
		}
		modules = append(modules, m)
	}
	return l.goModel(root, modules), nil
}

// loadGoModules loads a root go.mod and every nested module below it.
func (l *Loader) loadGoModules(root string) (*domain.WorkspaceModel, error) {
	manifests, err := l.scanner.Files(root, scanner.Named(goModManifest))
	if err != nil {
		return nil, workspaceError(root, err)
	}
	modules := make([]*goModule, 0, len(manifests))
	for _, rel := range manifests {
		dir, err := securejoin.SecureJoin(root, filepath.Dir(filepath.FromSlash(rel)))
		if err != nil {
			return nil, workspaceError(root, err)
		}
		m, err := readGoMod(dir)
		if err != nil {
			return nil, workspaceError(root, err)
		}
		modules = append(modules, m)
	}
	return l.goModel(root, modules), nil
}

// goModel assembles the workspace. A member's version is the highest
// version at which the other members require it.
func (l *Loader) goModel(root string, modules []*goModule) *domain.WorkspaceModel {
	ws := &domain.WorkspaceModel{Root: root, Kind: domain.WorkspaceGo, Virtual: true}
	for _, m := range modules {
		info := m.info
		info.IsRoot = filepath.Clean(info.Path) == filepath.Clean(root)
		for _, other := range modules {
			if v, ok := other.requires[info.Name]; ok && semver.Compare(v, info.Version) > 0 {
				info.Version = v
			}
		}
		if info.IsRoot {
			ws.Virtual = false
			ws.RootModule = info.Name
		}
		ws.Packages = append(ws.Packages, info)
	}
	if ws.RootModule == "" {
		names := make([]string, len(ws.Packages))
		for i, p := range ws.Packages {
			names[i] = p.Name
		}
		ws.RootModule = commonModulePrefix(names)
	}
	sortPackages(ws.Packages)
	l.logger.Debug("go workspace loaded", "root", root, "root_module", ws.RootModule, "modules", len(ws.Packages))
	return ws
}

// commonModulePrefix returns the longest common path-element prefix.
func commonModulePrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	prefix := strings.Split(paths[0], "/")
	for _, p := range paths[1:] {
		parts := strings.Split(p, "/")
		n := 0
		for n < len(prefix) && n < len(parts) && prefix[n] == parts[n] {
			n++
		}
		prefix = prefix[:n]
	}
	return strings.Join(prefix, "/")
}
