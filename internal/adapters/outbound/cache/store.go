// Package cache stores parsed package surfaces under the workspace so that
// unchanged packages are not parsed again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/scanner"
	"github.com/sdkprobe/sdkprobe/internal/domain"
)

// Store is a file-based implementation of domain.SurfaceCache.
type Store struct{}

// New creates a new file-based cache store.
func New() *Store {
	return &Store{}
}

// Path returns the cache file of a workspace.
func Path(workspacePath string) string {
	return filepath.Join(workspacePath, ".sdkprobe", "cache", "surfaces.json")
}

// Load reads the cache of a workspace. A missing, unreadable or outdated
// cache yields an empty one.
func (s *Store) Load(workspacePath string) (*domain.ParseCache, error) {
	data, err := os.ReadFile(Path(workspacePath))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewParseCache(), nil // no cache is not an error
		}
		return nil, err
	}

	var c domain.ParseCache
	if err := json.Unmarshal(data, &c); err != nil || c.Version != domain.ParseCacheVersion {
		return domain.NewParseCache(), nil
	}
	if c.Entries == nil {
		c.Entries = make(map[string]domain.CachedSurface)
	}
	return &c, nil
}

// Save writes the cache, creating directories as needed.
func (s *Store) Save(workspacePath string, c *domain.ParseCache) error {
	path := Path(workspacePath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Invalidate removes the cache file of a workspace.
func (s *Store) Invalidate(workspacePath string) error {
	if err := os.Remove(Path(workspacePath)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Fingerprint hashes the names, sizes and modification times of the
// package's manifest and source files. Nested packages are not included.
func (s *Store) Fingerprint(kind domain.WorkspaceKind, pkg domain.PackageInfo) (string, error) {
	fs := scanner.New()
	var keep func(string) bool
	switch kind {
	case domain.WorkspaceCargo:
		fs.StopAt = "Cargo.toml"
		keep = func(rel string) bool { return strings.HasSuffix(rel, ".rs") || rel == "Cargo.toml" }
	case domain.WorkspaceGo:
		fs.StopAt = "go.mod"
		keep = func(rel string) bool { return strings.HasSuffix(rel, ".go") || rel == "go.mod" }
	default:
		return "", fmt.Errorf("unsupported workspace kind %q", kind)
	}

	files, err := fs.Files(pkg.Path, keep)
	if err != nil {
		return "", fmt.Errorf("fingerprinting %s: %w", pkg.Name, err)
	}

	h := sha256.New()
	for _, rel := range files {
		info, err := os.Stat(filepath.Join(pkg.Path, filepath.FromSlash(rel)))
		if err != nil {
			return "", fmt.Errorf("fingerprinting %s: %w", pkg.Name, err)
		}
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", rel, info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
