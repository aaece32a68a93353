package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoManifest is wrapped when no manifest graph exists at or above a path.
	ErrNoManifest = errors.New("no workspace manifest found")
	// ErrMalformedManifest is wrapped when a manifest cannot be parsed.
	ErrMalformedManifest = errors.New("malformed workspace manifest")
)

// WorkspaceError is fatal: the run aborts at workspace-load time.
type WorkspaceError struct {
	Path string
	Err  error
}

func (e *WorkspaceError) Error() string {
	return fmt.Sprintf("workspace %s: %v", e.Path, e.Err)
}

func (e *WorkspaceError) Unwrap() error { return e.Err }

// PackageParseWarning records a package whose sources failed to parse. The
// package is excluded from detector samples and the run continues.
type PackageParseWarning struct {
	Package string
	File    string
	Err     error
}

func (w *PackageParseWarning) Error() string {
	if w.File == "" {
		return fmt.Sprintf("package %s: %v", w.Package, w.Err)
	}
	return fmt.Sprintf("package %s: %s: %v", w.Package, w.File, w.Err)
}

func (w *PackageParseWarning) Unwrap() error { return w.Err }

// IoError is returned when the metadata document cannot be written. No
// partial file is left behind.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }
