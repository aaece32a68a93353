package domain

// TypeKind classifies a declared type on a package surface.
type TypeKind string

const (
	KindStruct    TypeKind = "struct"
	KindAlias     TypeKind = "alias"
	KindEnum      TypeKind = "enum"
	KindInterface TypeKind = "interface"
	KindErrorSet  TypeKind = "error_set"
	KindOther     TypeKind = "other"
)

// PackageSurface is the public, syntactic surface of one package.
type PackageSurface struct {
	Package   string     `json:"package"`
	Ident     string     `json:"ident"`
	Separator string     `json:"separator"`
	Types     []TypeDecl `json:"types,omitempty"`
	Functions []FuncDecl `json:"functions,omitempty"`
	Files     int        `json:"files"`
}

// TypeDecl is one public type. Root types are reachable at the package root;
// Path is the fully qualified type path.
type TypeDecl struct {
	Name     string   `json:"name"`
	Kind     TypeKind `json:"kind"`
	Root     bool     `json:"root"`
	Path     string   `json:"path"`
	File     string   `json:"file,omitempty"`
	Variants []string `json:"variants,omitempty"`
}

// FuncDecl is one public function or method.
type FuncDecl struct {
	Name     string  `json:"name"`
	Receiver string  `json:"receiver,omitempty"`
	Params   []Param `json:"params,omitempty"`
	Async    bool    `json:"async,omitempty"`
	File     string  `json:"file,omitempty"`
}

// Param is one function parameter. Optional is set when the declared type is
// wrapped in an optional form (Option<T>, *T).
type Param struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
}

// FindType returns the first type named name, preferring root types.
func (s *PackageSurface) FindType(name string) (TypeDecl, bool) {
	var fallback *TypeDecl
	for i := range s.Types {
		t := &s.Types[i]
		if t.Name != name {
			continue
		}
		if t.Root {
			return *t, true
		}
		if fallback == nil {
			fallback = t
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return TypeDecl{}, false
}

// HasFunction reports whether a free function named name exists.
func (s *PackageSurface) HasFunction(name string) bool {
	for _, f := range s.Functions {
		if f.Name == name && f.Receiver == "" {
			return true
		}
	}
	return false
}

// HasAsync reports whether any public function is async.
func (s *PackageSurface) HasAsync() bool {
	for _, f := range s.Functions {
		if f.Async {
			return true
		}
	}
	return false
}

// ParsedPackage is the per-package parse outcome shared by the detectors.
type ParsedPackage struct {
	Package PackageInfo
	Surface *PackageSurface
	Warning *PackageParseWarning
}

// Surfaces maps package names to their parse outcome. It is built once per
// run and only read afterwards.
type Surfaces map[string]ParsedPackage

// Get returns the surface of a successfully parsed package.
func (s Surfaces) Get(name string) (*PackageSurface, bool) {
	p, ok := s[name]
	if !ok || p.Surface == nil {
		return nil, false
	}
	return p.Surface, true
}
