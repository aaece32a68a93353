package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"bin":          true,
	"target":       true,
	"testdata":     true,
}

// FileScanner walks a directory tree without following symlinks.
type FileScanner struct {
	// MaxDepth bounds the directory depth below the root; 0 is unlimited.
	MaxDepth int
	// StopAt names a marker file; subdirectories containing it are not
	// entered. Nested Go modules are skipped this way.
	StopAt string
}

func New() *FileScanner {
	return &FileScanner{}
}

// Files returns the slash-separated paths, relative to root, of the regular
// files accepted by keep. Results are in lexical walk order.
func (s *FileScanner) Files(root string, keep func(rel string) bool) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(absRoot, path)
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if s.MaxDepth > 0 && strings.Count(rel, "/")+1 > s.MaxDepth {
				return filepath.SkipDir
			}
			if s.StopAt != "" && exists(filepath.Join(path, s.StopAt)) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if keep(rel) {
			files = append(files, rel)
		}
		return nil
	})
	return files, err
}

// Named returns a predicate accepting files with the given base name.
func Named(name string) func(string) bool {
	return func(rel string) bool { return filepath.Base(rel) == name }
}

// WithSuffix returns a predicate accepting files ending in suffix but not
// in any of the excluded suffixes.
func WithSuffix(suffix string, exclude ...string) func(string) bool {
	return func(rel string) bool {
		if !strings.HasSuffix(rel, suffix) {
			return false
		}
		for _, e := range exclude {
			if strings.HasSuffix(rel, e) {
				return false
			}
		}
		return true
	}
}

func exists(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode().IsRegular()
}
