package application

import (
	"fmt"

	"github.com/sdkprobe/sdkprobe/internal/domain"
	"github.com/sdkprobe/sdkprobe/internal/domain/analysis"
)

// WorkspaceService classifies the members of a workspace without parsing
// any sources.
type WorkspaceService struct {
	loader domain.WorkspaceLoader
	config domain.ConfigLoader
}

func NewWorkspaceService(loader domain.WorkspaceLoader, config domain.ConfigLoader) *WorkspaceService {
	return &WorkspaceService{loader: loader, config: config}
}

// Summarize loads the workspace at path and classifies its members. The
// provider is optional here; it only affects the pattern confidence.
func (s *WorkspaceService) Summarize(path string, overrides domain.AnalyzerConfig) (*domain.WorkspaceSummary, error) {
	ws, err := s.loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading workspace: %w", err)
	}

	cfg, err := s.config.Load(ws.Root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg = cfg.Merge(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	ws = ws.Without(cfg.ExcludePackages...)

	crate := analysis.DetectCratePattern(ws, cfg.Provider, analysis.NewBlocklist(cfg.InfraFragments...))
	configSel := analysis.SelectConfigPackage(ws, crate.Value, cfg.ConfigPackage)

	return &domain.WorkspaceSummary{
		Workspace:    ws,
		CratePattern: crate,
		Members:      analysis.ClassifyMembers(ws, crate.Value, configSel.Value),
	}, nil
}
