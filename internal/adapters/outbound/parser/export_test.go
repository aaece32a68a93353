package parser

import (
	"strings"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

// ParseRustSource runs the item walk over a single crate root file.
func ParseRustSource(crate, src string) (*domain.PackageSurface, error) {
	tokens, err := lexRust(src)
	if err != nil {
		return nil, err
	}
	c := &crateWalker{ident: strings.ReplaceAll(crate, "-", "_"), file: "src/lib.rs"}
	c.items(tokens, 0, len(tokens), scope{})
	return &domain.PackageSurface{
		Package:   crate,
		Ident:     c.ident,
		Separator: "::",
		Types:     c.resolveTypes(),
		Functions: c.funcs,
		Files:     1,
	}, nil
}
