package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/pelletier/go-toml/v2"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

const cargoManifest = "Cargo.toml"

type cargoFile struct {
	Workspace    *cargoWorkspace `toml:"workspace"`
	Package      *cargoPackage   `toml:"package"`
	Dependencies map[string]any  `toml:"dependencies"`
}

type cargoWorkspace struct {
	Members []string `toml:"members"`
	Exclude []string `toml:"exclude"`
	Package struct {
		Version string `toml:"version"`
	} `toml:"package"`
}

type cargoPackage struct {
	Name string `toml:"name"`
	// Version is a string or an inherited {workspace = true} table.
	Version any `toml:"version"`
}

func readCargo(path string) (*cargoFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m cargoFile
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, malformed(path, err)
	}
	if m.Workspace == nil && m.Package == nil {
		return nil, malformed(path, errors.New("neither [workspace] nor [package] present"))
	}
	if m.Package != nil && m.Package.Name == "" {
		return nil, malformed(path, errors.New("[package] without a name"))
	}
	return &m, nil
}

// packageInfo converts a member manifest. Inherited versions resolve to the
// workspace version.
func (m *cargoFile) packageInfo(dir, workspaceVersion string, isRoot bool) domain.PackageInfo {
	version := workspaceVersion
	if v, ok := m.Package.Version.(string); ok {
		version = v
	}
	return domain.PackageInfo{
		Name:         m.Package.Name,
		Path:         dir,
		Version:      version,
		Dependencies: cargoDependencies(m.Dependencies),
		IsRoot:       isRoot,
	}
}

// cargoDependencies returns the depended-on package names, honouring
// `alias = { package = "real-name" }` renames.
func cargoDependencies(deps map[string]any) []string {
	names := make([]string, 0, len(deps))
	for key, spec := range deps {
		name := key
		if table, ok := spec.(map[string]any); ok {
			if renamed, ok := table["package"].(string); ok && renamed != "" {
				name = renamed
			}
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadCargoWorkspace expands the member globs of a [workspace] manifest.
func (l *Loader) loadCargoWorkspace(root string, m *cargoFile) (*domain.WorkspaceModel, error) {
	version := m.Workspace.Package.Version
	ws := &domain.WorkspaceModel{
		Root:    root,
		Kind:    domain.WorkspaceCargo,
		Virtual: m.Package == nil,
	}
	if m.Package != nil {
		ws.Packages = append(ws.Packages, m.packageInfo(root, version, true))
	}

	seen := map[string]bool{root: true}
	for _, pattern := range m.Workspace.Members {
		joined, err := securejoin.SecureJoin(root, pattern)
		if err != nil {
			return nil, &domain.WorkspaceError{Path: root, Err: fmt.Errorf("resolving member %q: %w", pattern, err)}
		}
		matches, err := filepath.Glob(joined)
		if err != nil {
			return nil, malformed(filepath.Join(root, cargoManifest), fmt.Errorf("member pattern %q: %w", pattern, err))
		}
		for _, match := range matches {
			dir, err := resolveMember(root, match)
			if err != nil {
				return nil, &domain.WorkspaceError{Path: root, Err: fmt.Errorf("resolving member %q: %w", match, err)}
			}
			if dir != match {
				l.logger.Debug("member resolved through symlink", "match", match, "dir", dir)
			}
			if seen[dir] || excluded(root, dir, m.Workspace.Exclude) {
				continue
			}
			seen[dir] = true
			manifest := filepath.Join(dir, cargoManifest)
			if !isFile(manifest) {
				l.logger.Debug("member without manifest skipped", "dir", dir)
				continue
			}
			member, err := readCargo(manifest)
			if err != nil {
				return nil, workspaceError(root, err)
			}
			if member.Package == nil {
				return nil, malformed(manifest, errors.New("workspace member has no [package]"))
			}
			ws.Packages = append(ws.Packages, member.packageInfo(dir, version, false))
		}
	}

	sortPackages(ws.Packages)
	l.logger.Debug("cargo workspace loaded", "root", root, "members", len(ws.Packages))
	return ws, nil
}

// resolveMember re-resolves a glob match beneath root so a symlinked
// directory cannot lead outside the workspace.
func resolveMember(root, match string) (string, error) {
	rel, err := filepath.Rel(root, match)
	if err != nil {
		return "", err
	}
	return securejoin.SecureJoin(root, rel)
}

func (l *Loader) loadCargoPackage(dir string, m *cargoFile) *domain.WorkspaceModel {
	return &domain.WorkspaceModel{
		Root:     dir,
		Kind:     domain.WorkspaceCargo,
		Packages: []domain.PackageInfo{m.packageInfo(dir, "", true)},
	}
}

func excluded(root, dir string, patterns []string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range patterns {
		p = strings.TrimSuffix(filepath.ToSlash(filepath.Clean(p)), "/")
		if ok, _ := filepath.Match(p, rel); ok || p == rel {
			return true
		}
	}
	return false
}
