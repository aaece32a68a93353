package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/scanner"
	"github.com/sdkprobe/sdkprobe/internal/domain"
)

const rustSourceDepth = 3

// RustParser extracts the public surface of a Cargo crate from its src/
// tree using a lexical item walk. It never expands macros.
type RustParser struct {
	scanner *scanner.FileScanner
}

func NewRustParser() *RustParser {
	return &RustParser{scanner: &scanner.FileScanner{MaxDepth: rustSourceDepth}}
}

// ParseCrate parses every .rs file under the crate's src directory.
func (p *RustParser) ParseCrate(ctx context.Context, pkg domain.PackageInfo) (*domain.PackageSurface, error) {
	srcDir := filepath.Join(pkg.Path, "src")
	if _, err := os.Stat(srcDir); err != nil {
		return nil, &domain.PackageParseWarning{Package: pkg.Name, Err: errors.New("no src directory")}
	}
	files, err := p.scanner.Files(srcDir, scanner.WithSuffix(".rs"))
	if err != nil {
		return nil, &domain.PackageParseWarning{Package: pkg.Name, Err: err}
	}
	if len(files) == 0 {
		return nil, &domain.PackageParseWarning{Package: pkg.Name, Err: errors.New("no Rust sources")}
	}

	ident := strings.ReplaceAll(pkg.Name, "-", "_")
	c := &crateWalker{ident: ident}
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(srcDir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, &domain.PackageParseWarning{Package: pkg.Name, File: "src/" + rel, Err: err}
		}
		tokens, err := lexRust(string(data))
		if err != nil {
			return nil, &domain.PackageParseWarning{Package: pkg.Name, File: "src/" + rel, Err: err}
		}
		c.file = "src/" + rel
		c.items(tokens, 0, len(tokens), scope{mod: modulePath(rel)})
	}

	return &domain.PackageSurface{
		Package:   pkg.Name,
		Ident:     ident,
		Separator: "::",
		Types:     c.resolveTypes(),
		Functions: c.funcs,
		Files:     len(files),
	}, nil
}

// modulePath maps a file below src/ to its module path: lib.rs is the crate
// root, a/mod.rs and a.rs are module a.
func modulePath(rel string) []string {
	rel = strings.TrimSuffix(rel, ".rs")
	parts := strings.Split(rel, "/")
	last := parts[len(parts)-1]
	if last == "mod" || (len(parts) == 1 && (last == "lib" || last == "main")) {
		parts = parts[:len(parts)-1]
	}
	return parts
}

type scope struct {
	mod  []string
	impl string // self type inside an impl block
}

type reexport struct {
	orig, name string
	mod        []string
}

type crateWalker struct {
	ident     string
	file      string
	types     []domain.TypeDecl
	funcs     []domain.FuncDecl
	reexports []reexport
}

func (c *crateWalker) path(mod []string, name string) string {
	parts := append([]string{c.ident}, mod...)
	return strings.Join(append(parts, name), "::")
}

// items walks the items in toks[start:end].
func (c *crateWalker) items(toks []token, start, end int, sc scope) {
	i := start
	for i < end {
		t := toks[i]
		switch {
		case t.punct("#"):
			i = skipAttribute(toks, i, end)
			continue
		case t.punct("{") || t.punct("(") || t.punct("["):
			i = skipGroup(toks, i)
			continue
		case t.kind != tokIdent:
			i++
			continue
		}

		public := false
		if t.ident("pub") {
			public = true
			i++
			if i < end && toks[i].punct("(") {
				// pub(crate), pub(super): not part of the public surface
				public = false
				i = skipGroup(toks, i)
			}
		}
		async := false
		for i < end && toks[i].kind == tokIdent && isFnModifier(toks, i, end) {
			if toks[i].text == "async" {
				async = true
			}
			i++
		}
		if i < end && toks[i].kind == tokLiteral {
			i++ // extern "C"
		}
		if i >= end {
			break
		}

		kw := toks[i]
		switch {
		case kw.ident("struct") || kw.ident("union"):
			i = c.typeItem(toks, i, end, sc, public, domain.KindStruct)
		case kw.ident("enum"):
			i = c.enumItem(toks, i, end, sc, public)
		case kw.ident("trait"):
			i = c.typeItem(toks, i, end, sc, public, domain.KindInterface)
		case kw.ident("type"):
			if sc.impl != "" {
				i = skipItem(toks, i+1, end)
				continue
			}
			i = c.typeItem(toks, i, end, sc, public, domain.KindAlias)
		case kw.ident("fn"):
			i = c.fnItem(toks, i, end, sc, public, async)
		case kw.ident("impl"):
			i = c.implItem(toks, i, end, sc)
		case kw.ident("mod"):
			i = c.modItem(toks, i, end, sc)
		case kw.ident("use"):
			i = c.useItem(toks, i, end, sc, public)
		case kw.ident("macro_rules"):
			i = skipItem(toks, i+1, end)
		case kw.ident("const") || kw.ident("static") || kw.ident("extern") || kw.ident("let"):
			i = skipItem(toks, i+1, end)
		default:
			i++
		}
	}
}

func isFnModifier(toks []token, i, end int) bool {
	switch toks[i].text {
	case "async", "unsafe", "default":
		return true
	case "const", "extern":
		// const fn / extern "C" fn, as opposed to a const item
		j := i + 1
		if j < end && toks[j].kind == tokLiteral {
			j++
		}
		return j < end && (toks[j].ident("fn") || toks[j].ident("unsafe") || toks[j].ident("async"))
	}
	return false
}

func (c *crateWalker) typeItem(toks []token, i, end int, sc scope, public bool, kind domain.TypeKind) int {
	if i+1 >= end || toks[i+1].kind != tokIdent {
		return i + 1
	}
	name := toks[i+1].text
	if public && sc.impl == "" {
		c.types = append(c.types, domain.TypeDecl{
			Name: name,
			Kind: kind,
			Root: len(sc.mod) == 0,
			Path: c.path(sc.mod, name),
			File: c.file,
		})
	}
	return skipItem(toks, i+2, end)
}

func (c *crateWalker) enumItem(toks []token, i, end int, sc scope, public bool) int {
	if i+1 >= end || toks[i+1].kind != tokIdent {
		return i + 1
	}
	name := toks[i+1].text
	j := i + 2
	for j < end && !toks[j].punct("{") {
		if toks[j].punct(";") {
			return j + 1
		}
		j++
	}
	if j >= end {
		return end
	}
	after := skipGroup(toks, j)
	if public && sc.impl == "" {
		c.types = append(c.types, domain.TypeDecl{
			Name:     name,
			Kind:     domain.KindEnum,
			Root:     len(sc.mod) == 0,
			Path:     c.path(sc.mod, name),
			File:     c.file,
			Variants: enumVariants(toks, j+1, after-1),
		})
	}
	return after
}

// enumVariants reads the variant names between the braces of an enum body.
func enumVariants(toks []token, start, end int) []string {
	var variants []string
	i := start
	expectName := true
	for i < end {
		t := toks[i]
		switch {
		case t.punct("#"):
			i = skipAttribute(toks, i, end)
			continue
		case t.punct("(") || t.punct("{") || t.punct("["):
			i = skipGroup(toks, i)
			continue
		case t.punct(","):
			expectName = true
		case expectName && t.kind == tokIdent:
			variants = append(variants, t.text)
			expectName = false
		}
		i++
	}
	return variants
}

func (c *crateWalker) fnItem(toks []token, i, end int, sc scope, public, async bool) int {
	if i+1 >= end || toks[i+1].kind != tokIdent {
		return i + 1
	}
	name := toks[i+1].text
	j := i + 2
	if j < end && toks[j].punct("<") {
		j = skipAngles(toks, j, end)
	}
	var params []domain.Param
	if j < end && toks[j].punct("(") {
		after := skipGroup(toks, j)
		params = rustParams(toks, j+1, after-1)
		j = after
	}
	if public {
		c.funcs = append(c.funcs, domain.FuncDecl{
			Name:     name,
			Receiver: sc.impl,
			Params:   params,
			Async:    async,
			File:     c.file,
		})
	}
	return skipItem(toks, j, end)
}

// rustParams splits a parameter list on top-level commas, dropping self.
func rustParams(toks []token, start, end int) []domain.Param {
	var params []domain.Param
	for _, part := range splitTopLevel(toks, start, end) {
		colon := -1
		for k, t := range part {
			if t.punct(":") && (k+1 >= len(part) || !part[k+1].punct(":")) && (k == 0 || !part[k-1].punct(":")) {
				colon = k
				break
			}
		}
		if colon < 0 {
			continue // self, &self, &mut self
		}
		var nameToks []string
		for _, t := range part[:colon] {
			if t.kind == tokIdent && t.text != "mut" && t.text != "ref" {
				nameToks = append(nameToks, t.text)
			}
		}
		name := strings.Join(nameToks, "_")
		if name == "self" {
			continue
		}
		typ := joinTokens(part[colon+1:])
		params = append(params, domain.Param{
			Name:     name,
			Type:     typ,
			Optional: strings.Contains(typ, "Option<"),
		})
	}
	return params
}

func splitTopLevel(toks []token, start, end int) [][]token {
	var parts [][]token
	var cur []token
	depth := 0
	for i := start; i < end; i++ {
		t := toks[i]
		switch {
		case t.punct("(") || t.punct("[") || t.punct("{") || t.punct("<"):
			depth++
		case t.punct(")") || t.punct("]") || t.punct("}"):
			depth--
		case t.punct(">") && !(i > start && toks[i-1].punct("-")):
			depth--
		case t.punct(",") && depth == 0:
			parts = append(parts, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		parts = append(parts, cur)
	}
	return parts
}

// joinTokens renders a token run as source text, spacing adjacent words.
func joinTokens(toks []token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && isWordy(toks[i-1]) && isWordy(t) {
			b.WriteByte(' ')
		}
		b.WriteString(t.text)
	}
	return b.String()
}

func isWordy(t token) bool {
	return t.kind == tokIdent || t.kind == tokLifetime || t.kind == tokLiteral
}

func (c *crateWalker) implItem(toks []token, i, end int, sc scope) int {
	j := i + 1
	if j < end && toks[j].punct("<") {
		j = skipAngles(toks, j, end)
	}
	headerStart := j
	for j < end && !toks[j].punct("{") {
		if toks[j].punct(";") {
			return j + 1
		}
		if toks[j].punct("(") || toks[j].punct("[") {
			j = skipGroup(toks, j)
			continue
		}
		j++
	}
	if j >= end {
		return end
	}
	target := implTarget(toks[headerStart:j])
	after := skipGroup(toks, j)
	c.items(toks, j+1, after-1, scope{mod: sc.mod, impl: target})
	return after
}

// implTarget returns the self type name of an impl header.
func implTarget(header []token) string {
	start := 0
	depth := 0
	for k, t := range header {
		switch {
		case t.punct("<"):
			depth++
		case t.punct(">") && !(k > 0 && header[k-1].punct("-")):
			depth--
		case depth == 0 && t.ident("for"):
			start = k + 1
		}
	}
	name := ""
	depth = 0
	for k := start; k < len(header); k++ {
		t := header[k]
		switch {
		case t.punct("<"):
			depth++
		case t.punct(">"):
			depth--
		case depth == 0 && t.ident("where"):
			return name
		case depth == 0 && t.kind == tokIdent && t.text != "dyn" && t.text != "mut":
			name = t.text
		}
	}
	return name
}

func (c *crateWalker) modItem(toks []token, i, end int, sc scope) int {
	if i+1 >= end || toks[i+1].kind != tokIdent {
		return i + 1
	}
	name := toks[i+1].text
	j := i + 2
	if j < end && toks[j].punct("{") {
		after := skipGroup(toks, j)
		mod := append(append([]string(nil), sc.mod...), name)
		c.items(toks, j+1, after-1, scope{mod: mod})
		return after
	}
	return skipItem(toks, j, end)
}

// useItem records the names a pub use declaration re-exports.
func (c *crateWalker) useItem(toks []token, i, end int, sc scope, public bool) int {
	j := i + 1
	stop := j
	for stop < end && !toks[stop].punct(";") {
		stop++
	}
	if !public || sc.impl != "" {
		return stop + 1
	}

	var prefixes []string
	last := ""
	for k := j; k < stop; k++ {
		t := toks[k]
		switch {
		case t.punct("{"):
			prefixes = append(prefixes, last)
		case t.punct("}"):
			if len(prefixes) > 0 {
				prefixes = prefixes[:len(prefixes)-1]
			}
		case t.kind == tokIdent && t.text != "as":
			next := k + 1
			if next < stop && toks[next].punct(":") {
				last = t.text
				continue
			}
			orig, name := t.text, t.text
			if orig == "self" && len(prefixes) > 0 {
				orig, name = prefixes[len(prefixes)-1], prefixes[len(prefixes)-1]
			}
			if next+1 < stop && toks[next].ident("as") && toks[next+1].kind == tokIdent {
				name = toks[next+1].text
				k = next + 1
			}
			if name != "_" {
				c.reexports = append(c.reexports, reexport{orig: orig, name: name, mod: sc.mod})
			}
		}
	}
	return stop + 1
}

// resolveTypes adds re-exported type names to the declared types. A
// re-export of a type declared in the crate carries its kind and variants;
// one of an external item is recorded as an alias.
func (c *crateWalker) resolveTypes() []domain.TypeDecl {
	declared := make(map[string]domain.TypeDecl, len(c.types))
	for _, t := range c.types {
		if _, ok := declared[t.Name]; !ok {
			declared[t.Name] = t
		}
	}
	out := append([]domain.TypeDecl(nil), c.types...)
	for _, r := range c.reexports {
		if r.name == "" || !unicode.IsUpper([]rune(r.name)[0]) {
			continue
		}
		decl := domain.TypeDecl{Name: r.name, Kind: domain.KindAlias}
		if d, ok := declared[r.orig]; ok {
			decl.Kind = d.Kind
			decl.Variants = d.Variants
			decl.File = d.File
		}
		decl.Root = len(r.mod) == 0
		decl.Path = c.path(r.mod, r.name)
		out = append(out, decl)
	}
	return out
}

// skipGroup returns the index after the delimiter group opened at i.
func skipGroup(toks []token, i int) int {
	depth := 0
	for j := i; j < len(toks); j++ {
		switch toks[j].text {
		case "(", "[", "{":
			if toks[j].kind == tokPunct {
				depth++
			}
		case ")", "]", "}":
			if toks[j].kind == tokPunct {
				depth--
				if depth == 0 {
					return j + 1
				}
			}
		}
	}
	return len(toks)
}

// skipAngles returns the index after a generic parameter list opened at i.
func skipAngles(toks []token, i, end int) int {
	depth := 0
	for j := i; j < end; j++ {
		switch {
		case toks[j].punct("<"):
			depth++
		case toks[j].punct(">") && !(j > i && toks[j-1].punct("-")):
			depth--
			if depth == 0 {
				return j + 1
			}
		case toks[j].punct("(") || toks[j].punct("["):
			j = skipGroup(toks, j) - 1
		}
	}
	return end
}

// skipItem advances past the end of an item: a ';' or a brace body.
func skipItem(toks []token, i, end int) int {
	for i < end {
		switch {
		case toks[i].punct(";"):
			return i + 1
		case toks[i].punct("{"):
			return skipGroup(toks, i)
		case toks[i].punct("(") || toks[i].punct("["):
			i = skipGroup(toks, i)
		default:
			i++
		}
	}
	return end
}

func skipAttribute(toks []token, i, end int) int {
	j := i + 1
	if j < end && toks[j].punct("!") {
		j++
	}
	if j < end && toks[j].punct("[") {
		return skipGroup(toks, j)
	}
	return j
}
