// Package parser extracts the public surface of SDK packages. Cargo crates
// are read with a lexical item walk; Go modules with go/ast.
package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

// Parser dispatches on the workspace kind. It implements domain.SourceParser.
type Parser struct {
	rust   *RustParser
	golang *GoParser
	logger *slog.Logger
}

func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{rust: NewRustParser(), golang: NewGoParser(), logger: logger}
}

// ParsePackage returns the package surface or a *domain.PackageParseWarning.
// Context cancellation is returned unwrapped.
func (p *Parser) ParsePackage(ctx context.Context, ws *domain.WorkspaceModel, pkg domain.PackageInfo) (*domain.PackageSurface, error) {
	var (
		surface *domain.PackageSurface
		err     error
	)
	switch ws.Kind {
	case domain.WorkspaceCargo:
		surface, err = p.rust.ParseCrate(ctx, pkg)
	case domain.WorkspaceGo:
		surface, err = p.golang.ParseModule(ctx, pkg)
	default:
		err = &domain.PackageParseWarning{Package: pkg.Name, Err: fmt.Errorf("unsupported workspace kind %q", ws.Kind)}
	}
	if err != nil {
		var warn *domain.PackageParseWarning
		if errors.As(err, &warn) {
			p.logger.Debug("package parse failed", "package", pkg.Name, "file", warn.File, "error", warn.Err)
		}
		return nil, err
	}
	p.logger.Debug("package parsed", "package", pkg.Name,
		"files", surface.Files, "types", len(surface.Types), "functions", len(surface.Functions))
	return surface, nil
}
