// Package workspace discovers and reads SDK workspace manifests: Cargo
// workspaces and single crates, go.work files and multi-module Go trees.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/scanner"
	"github.com/sdkprobe/sdkprobe/internal/domain"
)

// Loader implements domain.WorkspaceLoader.
type Loader struct {
	scanner *scanner.FileScanner
	logger  *slog.Logger
}

func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{scanner: scanner.New(), logger: logger}
}

// Load ascends from path to the nearest manifest graph. At each directory a
// go.work wins over a Cargo [workspace], which wins over a go.mod. A single
// Cargo [package] is used only when no enclosing Cargo workspace exists
// below the repository boundary.
func (l *Loader) Load(path string) (*domain.WorkspaceModel, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &domain.WorkspaceError{Path: path, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &domain.WorkspaceError{Path: path, Err: err}
	}
	if !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	var (
		pending     string
		pendingFile *cargoFile
	)
	for dir := abs; ; {
		if pending == "" && isFile(filepath.Join(dir, goWorkManifest)) {
			return l.loadGoWork(dir)
		}
		if manifest := filepath.Join(dir, cargoManifest); isFile(manifest) {
			m, err := readCargo(manifest)
			if err != nil {
				return nil, workspaceError(dir, err)
			}
			if m.Workspace != nil {
				return l.loadCargoWorkspace(dir, m)
			}
			if pending == "" {
				pending, pendingFile = dir, m
			}
		}
		if pending == "" && isFile(filepath.Join(dir, goModManifest)) {
			return l.loadGoModules(dir)
		}

		parent := filepath.Dir(dir)
		if exists(filepath.Join(dir, ".git")) || parent == dir {
			break
		}
		dir = parent
	}

	if pending != "" {
		l.logger.Debug("single crate loaded", "root", pending, "package", pendingFile.Package.Name)
		return l.loadCargoPackage(pending, pendingFile), nil
	}
	return nil, &domain.WorkspaceError{Path: abs, Err: domain.ErrNoManifest}
}

func malformed(path string, err error) error {
	return &domain.WorkspaceError{Path: path, Err: fmt.Errorf("%w: %w", domain.ErrMalformedManifest, err)}
}

// workspaceError wraps err unless it already is a *domain.WorkspaceError.
func workspaceError(path string, err error) error {
	var we *domain.WorkspaceError
	if errors.As(err, &we) {
		return err
	}
	return &domain.WorkspaceError{Path: path, Err: err}
}

func sortPackages(pkgs []domain.PackageInfo) {
	sort.SliceStable(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
