package domain

import (
	"path"
	"strings"
	"time"
)

// WorkspaceKind identifies the manifest format of an inspected SDK workspace.
type WorkspaceKind string

const (
	WorkspaceCargo WorkspaceKind = "cargo"
	WorkspaceGo    WorkspaceKind = "go"
)

// PackageInfo describes one member package of an SDK workspace.
type PackageInfo struct {
	Name         string   `json:"name"`
	Path         string   `json:"path"`
	Version      string   `json:"version,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	IsRoot       bool     `json:"is_root"`
}

// WorkspaceModel is the flat, immutable member list of an SDK workspace.
type WorkspaceModel struct {
	Root       string        `json:"root"`
	Kind       WorkspaceKind `json:"kind"`
	RootModule string        `json:"root_module,omitempty"`
	Virtual    bool          `json:"virtual"`
	Packages   []PackageInfo `json:"packages"`
}

// IsWorkspace reports whether the model holds more than one member.
func (w *WorkspaceModel) IsWorkspace() bool { return len(w.Packages) > 1 }

// Version returns the first non-empty member version.
func (w *WorkspaceModel) Version() string {
	for _, p := range w.Packages {
		if p.Version != "" {
			return p.Version
		}
	}
	return ""
}

// ShortName returns the package name relative to the root module path.
// Cargo crate names are returned unchanged. The root module of a Go
// workspace with other members has an empty short name; a lone module is
// named by its last path element.
func (w *WorkspaceModel) ShortName(p PackageInfo) string {
	if w.RootModule == "" || w.Kind != WorkspaceGo {
		return p.Name
	}
	if p.Name == w.RootModule {
		if w.IsWorkspace() {
			return ""
		}
		return path.Base(p.Name)
	}
	return strings.TrimPrefix(p.Name, w.RootModule+"/")
}

// Without returns a copy of the model with the named packages removed.
func (w *WorkspaceModel) Without(names ...string) *WorkspaceModel {
	if len(names) == 0 {
		return w
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := *w
	out.Packages = make([]PackageInfo, 0, len(w.Packages))
	for _, p := range w.Packages {
		if !drop[p.Name] {
			out.Packages = append(out.Packages, p)
		}
	}
	return &out
}

// Package looks up a member by name.
func (w *WorkspaceModel) Package(name string) (PackageInfo, bool) {
	for _, p := range w.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return PackageInfo{}, false
}

// Confident is implemented by every detector output that carries a score.
type Confident interface {
	Score() float64
}

// DetectionResult wraps a detected value with its confidence and evidence.
type DetectionResult[T any] struct {
	Value      T       `json:"value"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence"`
}

func (d DetectionResult[T]) Score() float64 { return d.Confidence }

// Detected builds a DetectionResult with the confidence clamped to [0,1].
func Detected[T any](value T, confidence float64, evidence string) DetectionResult[T] {
	return DetectionResult[T]{Value: value, Confidence: Clamp01(confidence), Evidence: evidence}
}

// Clamp01 bounds v to the closed unit interval.
func Clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// ServicePackage pairs a service package with its derived service token.
type ServicePackage struct {
	Package PackageInfo `json:"package"`
	Token   string      `json:"token"`
}

// CratePattern is the crate naming detection outcome.
type CratePattern struct {
	Template   NamingTemplate   `json:"template"`
	Monolithic bool             `json:"monolithic"`
	Services   []ServicePackage `json:"services,omitempty"`
}

// ClientPattern is the client type detection outcome. Monolithic SDKs carry
// the literal client type path in SharedType and an empty template.
type ClientPattern struct {
	Template   NamingTemplate `json:"template"`
	SharedType string         `json:"shared_type,omitempty"`
	Async      bool           `json:"async"`
	Samples    []string       `json:"samples,omitempty"`
}

// TypePath returns the template, or the shared type for monolithic SDKs.
func (c ClientPattern) TypePath() string {
	if c.Template != "" {
		return string(c.Template)
	}
	return c.SharedType
}

// ConfigAttribute is one recognized provider configuration attribute.
type ConfigAttribute struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Setter      string `json:"setter,omitempty"`
	Extractor   string `json:"extractor,omitempty"`
	Source      string `json:"source,omitempty"`
}

// ConfigSnippets holds the opaque configuration code templates.
type ConfigSnippets struct {
	Initialization Snippet `json:"initialization"`
	Load           Snippet `json:"load"`
	ClientFrom     Snippet `json:"client_from_config"`
}

type Snippet struct {
	Code    string `json:"snippet"`
	VarName string `json:"var_name"`
}

// ErrorAnalysis is the error categorization outcome.
type ErrorAnalysis struct {
	Buckets        *CategoryBucket      `json:"buckets"`
	PerCategory    map[Category]float64 `json:"per_category"`
	Pool           []string             `json:"pool,omitempty"`
	Unclassified   []string             `json:"unclassified,omitempty"`
	MetadataImport string               `json:"metadata_import,omitempty"`
}

// AnalysisResult aggregates all detector outputs of a single run.
type AnalysisResult struct {
	Provider      string                             `json:"provider"`
	DisplayName   string                             `json:"display_name,omitempty"`
	Workspace     *WorkspaceModel                    `json:"workspace"`
	CratePattern  DetectionResult[CratePattern]      `json:"crate_pattern"`
	ClientType    DetectionResult[ClientPattern]     `json:"client_type"`
	ConfigPackage DetectionResult[*string]           `json:"config_package"`
	Attributes    []DetectionResult[ConfigAttribute] `json:"attributes"`
	Snippets      DetectionResult[ConfigSnippets]    `json:"snippets"`
	Errors        DetectionResult[ErrorAnalysis]     `json:"errors"`
	Dependencies  []string                           `json:"dependencies,omitempty"`
	RegionAttr    string                             `json:"region_attr,omitempty"`
	Confidence    ConfidenceScore                    `json:"confidence"`
	Warnings      []Warning                          `json:"warnings,omitempty"`
	CommitHash    string                             `json:"commit_hash,omitempty"`
	Timestamp     time.Time                          `json:"timestamp"`
}

// ConfigPackageName returns the detected config package or "".
func (r *AnalysisResult) ConfigPackageName() string {
	if r.ConfigPackage.Value == nil {
		return ""
	}
	return *r.ConfigPackage.Value
}

// AttributesConfidence is the mean confidence of the detected attributes.
func (r *AnalysisResult) AttributesConfidence() float64 {
	return MeanConfidence(r.Attributes)
}

// MeanConfidence averages the scores of results; an empty set scores 0.
func MeanConfidence[T any](results []DetectionResult[T]) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Confidence
	}
	return sum / float64(len(results))
}

// WarningKind classifies non-fatal anomalies surfaced by a run.
type WarningKind string

const (
	WarningLowConfidence  WarningKind = "low_confidence"
	WarningNoPattern      WarningKind = "no_pattern"
	WarningRequiresReview WarningKind = "requires_review"
	WarningParseFailure   WarningKind = "parse_failure"
)

// Warning is a non-fatal anomaly a caller should display.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Field   string      `json:"field,omitempty"`
	Package string      `json:"package,omitempty"`
	Message string      `json:"message"`
	Score   float64     `json:"score,omitempty"`
}

// RunEntry records one analysis run in the workspace history.
type RunEntry struct {
	Timestamp  string  `json:"timestamp"`
	Provider   string  `json:"provider"`
	CommitHash string  `json:"commit_hash,omitempty"`
	Overall    float64 `json:"overall"`
	Level      string  `json:"level"`
	Warnings   int     `json:"warnings"`
}

// MemberRole classifies a workspace member for display.
type MemberRole string

const (
	RoleService        MemberRole = "service"
	RoleInfrastructure MemberRole = "infrastructure"
	RoleConfig         MemberRole = "config"
)

// MemberSummary is one classified workspace member.
type MemberSummary struct {
	Package      PackageInfo `json:"package"`
	ShortName    string      `json:"short_name"`
	Role         MemberRole  `json:"role"`
	Token        string      `json:"token,omitempty"`
	DependedOnBy int         `json:"depended_on_by"`
}

// WorkspaceSummary is the classified member list of a workspace together
// with its detected naming pattern.
type WorkspaceSummary struct {
	Workspace    *WorkspaceModel               `json:"workspace"`
	CratePattern DetectionResult[CratePattern] `json:"crate_pattern"`
	Members      []MemberSummary               `json:"members"`
}
