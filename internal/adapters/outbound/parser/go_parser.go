package parser

import (
	"context"
	"errors"
	"go/ast"
	goparser "go/parser"
	gotoken "go/token"
	"go/types"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/scanner"
	"github.com/sdkprobe/sdkprobe/internal/domain"
)

// errorCodeType names the synthetic error set collected from ErrorCode
// methods.
const errorCodeType = "ErrorCode"

// GoParser extracts the exported surface of a Go module using go/ast.
// Nested modules and internal packages are not part of the surface.
type GoParser struct {
	scanner *scanner.FileScanner
}

func NewGoParser() *GoParser {
	return &GoParser{scanner: &scanner.FileScanner{StopAt: "go.mod"}}
}

// ParseModule parses the non-test Go files of the module rooted at pkg.Path.
func (p *GoParser) ParseModule(ctx context.Context, pkg domain.PackageInfo) (*domain.PackageSurface, error) {
	files, err := p.scanner.Files(pkg.Path, goSource)
	if err != nil {
		return nil, &domain.PackageParseWarning{Package: pkg.Name, Err: err}
	}
	if len(files) == 0 {
		return nil, &domain.PackageParseWarning{Package: pkg.Name, Err: errors.New("no Go sources")}
	}

	m := &moduleWalker{module: pkg.Name, errorSets: make(map[string]*domain.TypeDecl)}
	fset := gotoken.NewFileSet()
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, err := goparser.ParseFile(fset, filepath.Join(pkg.Path, filepath.FromSlash(rel)), nil, goparser.SkipObjectResolution)
		if err != nil {
			return nil, &domain.PackageParseWarning{Package: pkg.Name, File: rel, Err: err}
		}
		m.file(rel, file)
	}

	return &domain.PackageSurface{
		Package:   pkg.Name,
		Ident:     pkg.Name,
		Separator: ".",
		Types:     m.resolveTypes(),
		Functions: m.funcs,
		Files:     len(files),
	}, nil
}

func goSource(rel string) bool {
	if !strings.HasSuffix(rel, ".go") || strings.HasSuffix(rel, "_test.go") {
		return false
	}
	for _, seg := range strings.Split(path.Dir(rel), "/") {
		if seg == "internal" {
			return false
		}
	}
	return true
}

type moduleWalker struct {
	module    string
	types     []domain.TypeDecl
	funcs     []domain.FuncDecl
	errorSets map[string]*domain.TypeDecl
	order     []string
}

func (m *moduleWalker) importPath(dir string) string {
	if dir == "." || dir == "" {
		return m.module
	}
	return m.module + "/" + dir
}

func (m *moduleWalker) file(rel string, f *ast.File) {
	dir := path.Dir(rel)
	pkgPath := m.importPath(dir)
	root := dir == "."

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			switch d.Tok {
			case gotoken.TYPE:
				m.typeSpecs(d, rel, pkgPath, root)
			case gotoken.CONST:
				m.constSpecs(d, rel, pkgPath, root)
			}
		case *ast.FuncDecl:
			m.funcDecl(d, rel)
		}
	}
}

func (m *moduleWalker) typeSpecs(d *ast.GenDecl, rel, pkgPath string, root bool) {
	for _, spec := range d.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok || !ts.Name.IsExported() {
			continue
		}
		kind := domain.KindOther
		switch {
		case ts.Assign.IsValid():
			kind = domain.KindAlias
		default:
			switch ts.Type.(type) {
			case *ast.StructType:
				kind = domain.KindStruct
			case *ast.InterfaceType:
				kind = domain.KindInterface
			}
		}
		m.types = append(m.types, domain.TypeDecl{
			Name: ts.Name.Name,
			Kind: kind,
			Root: root,
			Path: pkgPath + "." + ts.Name.Name,
			File: rel,
		})
	}
}

// constSpecs collects typed constant groups whose type names an error code
// set. Untyped specs in a group inherit the previous spec's type.
func (m *moduleWalker) constSpecs(d *ast.GenDecl, rel, pkgPath string, root bool) {
	typeName := ""
	for _, spec := range d.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		if id, ok := vs.Type.(*ast.Ident); ok {
			typeName = id.Name
		} else if vs.Type != nil {
			typeName = ""
		}
		if !strings.Contains(typeName, "Error") || !ast.IsExported(typeName) {
			continue
		}
		for i, name := range vs.Names {
			if !name.IsExported() {
				continue
			}
			variant := name.Name
			if i < len(vs.Values) {
				if s, ok := stringLiteral(vs.Values[i]); ok {
					variant = s
				}
			}
			m.addVariant(typeName, pkgPath, rel, root, variant)
		}
	}
}

func (m *moduleWalker) funcDecl(d *ast.FuncDecl, rel string) {
	receiver := ""
	if d.Recv != nil && len(d.Recv.List) > 0 {
		receiver = receiverName(d.Recv.List[0].Type)
		if d.Name.Name == errorCodeType && receiver != "" && d.Body != nil {
			code, ok := firstReturnedString(d.Body)
			if !ok {
				code = receiver
			}
			m.addVariant(errorCodeType, m.importPath(path.Dir(rel)), rel, path.Dir(rel) == ".", code)
		}
		if !ast.IsExported(receiver) {
			return
		}
	}
	if !d.Name.IsExported() {
		return
	}

	var params []domain.Param
	for _, field := range d.Type.Params.List {
		_, star := field.Type.(*ast.StarExpr)
		_, variadic := field.Type.(*ast.Ellipsis)
		p := domain.Param{Type: types.ExprString(field.Type), Optional: star || variadic}
		if len(field.Names) == 0 {
			params = append(params, p)
			continue
		}
		for _, n := range field.Names {
			p.Name = n.Name
			params = append(params, p)
		}
	}
	m.funcs = append(m.funcs, domain.FuncDecl{
		Name:     d.Name.Name,
		Receiver: receiver,
		Params:   params,
		File:     rel,
	})
}

func (m *moduleWalker) addVariant(typeName, pkgPath, rel string, root bool, variant string) {
	key := pkgPath + "." + typeName
	set, ok := m.errorSets[key]
	if !ok {
		set = &domain.TypeDecl{Name: typeName, Kind: domain.KindErrorSet, Root: root, Path: key, File: rel}
		m.errorSets[key] = set
		m.order = append(m.order, key)
	}
	for _, v := range set.Variants {
		if v == variant {
			return
		}
	}
	set.Variants = append(set.Variants, variant)
}

// resolveTypes folds the collected error sets into the declared types. A
// declared type that backs an error set becomes that set.
func (m *moduleWalker) resolveTypes() []domain.TypeDecl {
	out := make([]domain.TypeDecl, 0, len(m.types)+len(m.order))
	merged := make(map[string]bool)
	for _, t := range m.types {
		if set, ok := m.errorSets[t.Path]; ok && !merged[t.Path] {
			t.Kind = domain.KindErrorSet
			t.Variants = set.Variants
			merged[t.Path] = true
		}
		out = append(out, t)
	}
	for _, key := range m.order {
		if !merged[key] {
			out = append(out, *m.errorSets[key])
		}
	}
	return out
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	default:
		return ""
	}
}

func stringLiteral(expr ast.Expr) (string, bool) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != gotoken.STRING {
		return "", false
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

func firstReturnedString(body *ast.BlockStmt) (string, bool) {
	var found string
	ast.Inspect(body, func(n ast.Node) bool {
		if found != "" {
			return false
		}
		ret, ok := n.(*ast.ReturnStmt)
		if !ok {
			return true
		}
		for _, r := range ret.Results {
			if s, ok := stringLiteral(r); ok {
				found = s
				return false
			}
		}
		return true
	})
	return found, found != ""
}
