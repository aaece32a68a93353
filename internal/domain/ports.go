package domain

import "context"

// WorkspaceLoader reads a workspace manifest graph from disk.
type WorkspaceLoader interface {
	Load(path string) (*WorkspaceModel, error)
}

// SourceParser extracts the public surface of a package. Errors are per
// package and never abort a run.
type SourceParser interface {
	ParsePackage(ctx context.Context, ws *WorkspaceModel, pkg PackageInfo) (*PackageSurface, error)
}

// ConfigLoader loads the analyzer configuration for a workspace, or from an
// explicit file.
type ConfigLoader interface {
	Load(workspacePath string) (AnalyzerConfig, error)
	LoadFile(path string) (AnalyzerConfig, error)
}

// MetadataWriter renders an analysis result as the metadata document.
type MetadataWriter interface {
	Render(r *AnalysisResult) ([]byte, error)
	WriteFile(path string, r *AnalysisResult) error
}

// GitInfo reads version control metadata of a workspace.
type GitInfo interface {
	CommitHash(path string) (string, error)
}

// RunHistory persists analysis runs.
type RunHistory interface {
	Save(workspacePath string, entry RunEntry) error
	Load(workspacePath string) ([]RunEntry, error)
}

// SurfaceCache persists parsed surfaces between runs of one workspace.
type SurfaceCache interface {
	Load(workspacePath string) (*ParseCache, error)
	Save(workspacePath string, c *ParseCache) error
	Fingerprint(kind WorkspaceKind, pkg PackageInfo) (string, error)
}
