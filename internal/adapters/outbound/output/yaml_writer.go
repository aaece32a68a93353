// Package output renders an analysis result as the annotated YAML metadata
// document consumed by the provider generator.
package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

// SchemaVersion is the metadata document version.
const SchemaVersion = 1

// YAMLWriter renders results. Fields scored below Threshold carry an inline
// review comment.
type YAMLWriter struct {
	Threshold float64
	Version   string
}

func New(threshold float64, version string) *YAMLWriter {
	return &YAMLWriter{Threshold: threshold, Version: version}
}

// Render returns the annotated YAML document for r.
func (w *YAMLWriter) Render(r *domain.AnalysisResult) ([]byte, error) {
	root := mapping()
	addPair(root, "version", intNode(SchemaVersion))
	addPair(root, "provider", w.providerNode(r))
	addPair(root, "sdk", w.sdkNode(r))
	addPair(root, "config", w.configNode(r))
	addPair(root, "errors", w.errorsNode(r))

	doc := &yaml.Node{Kind: yaml.DocumentNode, HeadComment: w.header(r), Content: []*yaml.Node{root}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders r and replaces path atomically. On failure no partial
// file is left and the error is a *domain.IoError.
func (w *YAMLWriter) WriteFile(path string, r *domain.AnalysisResult) error {
	data, err := w.Render(r)
	if err != nil {
		return &domain.IoError{Path: path, Err: err}
	}
	return WriteAtomic(path, data)
}

// WriteAtomic writes data to a temp file in the destination directory and
// renames it over path.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &domain.IoError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &domain.IoError{Path: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &domain.IoError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &domain.IoError{Path: path, Err: err}
	}
	return nil
}

func (w *YAMLWriter) header(r *domain.AnalysisResult) string {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	lines := []string{
		"# SDK Analysis Result",
		"# Generated: " + ts.UTC().Format(time.RFC3339),
		fmt.Sprintf("# Overall Confidence: %.2f (%s)", r.Confidence.Overall, r.Confidence.Level),
	}
	if r.CommitHash != "" {
		lines = append(lines, "# Source Commit: "+r.CommitHash)
	}
	if w.Version != "" {
		lines = append(lines, "# Analyzer Version: "+w.Version)
	}
	return strings.Join(lines, "\n")
}

func (w *YAMLWriter) providerNode(r *domain.AnalysisResult) *yaml.Node {
	display := r.DisplayName
	if display == "" {
		display = capitalize(r.Provider)
	}
	m := mapping()
	addPair(m, "name", str(r.Provider))
	addPair(m, "display_name", str(display))
	return m
}

func (w *YAMLWriter) sdkNode(r *domain.AnalysisResult) *yaml.Node {
	crate := r.CratePattern.Value
	m := mapping()

	pattern := string(crate.Template)
	if crate.Monolithic && len(crate.Services) == 1 {
		pattern = crate.Services[0].Package.Name
	}
	w.addScored(m, "crate_pattern", quoted(pattern), r.CratePattern.Confidence, r.CratePattern.Evidence)
	w.addScored(m, "client_type_pattern", quoted(r.ClientType.Value.TypePath()), r.ClientType.Confidence, r.ClientType.Evidence)
	if name := r.ConfigPackageName(); name != "" {
		w.addScored(m, "config_crate", str(name), r.ConfigPackage.Confidence, r.ConfigPackage.Evidence)
	}
	addPair(m, "async_client", boolNode(r.ClientType.Value.Async))
	if crate.Monolithic {
		addPair(m, "uses_shared_client", boolNode(true))
	}
	if r.RegionAttr != "" {
		addPair(m, "region_attr", str(r.RegionAttr))
	}

	deps := sequence()
	for _, d := range r.Dependencies {
		deps.Content = append(deps.Content, quoted(d))
	}
	addPair(m, "dependencies", deps)
	return m
}

func (w *YAMLWriter) configNode(r *domain.AnalysisResult) *yaml.Node {
	s := r.Snippets.Value
	m := mapping()
	snippet := func(key string, sn domain.Snippet) {
		n := mapping()
		addPair(n, "snippet", quoted(sn.Code))
		addPair(n, "var_name", str(sn.VarName))
		w.addScored(m, key, n, r.Snippets.Confidence, r.Snippets.Evidence)
	}
	snippet("initialization", s.Initialization)
	snippet("load", s.Load)
	snippet("client_from_config", s.ClientFrom)

	attrs := sequence()
	for _, a := range r.Attributes {
		n := mapping()
		addPair(n, "name", str(a.Value.Name))
		if comment, ok := w.marker(a.Confidence, a.Evidence); ok {
			n.Content[len(n.Content)-1].LineComment = comment
		}
		addPair(n, "description", quoted(a.Value.Description))
		addPair(n, "required", boolNode(a.Value.Required))
		if a.Value.Setter != "" {
			addPair(n, "setter", quoted(a.Value.Setter))
		}
		if a.Value.Extractor != "" {
			addPair(n, "extractor", quoted(a.Value.Extractor))
		}
		attrs.Content = append(attrs.Content, n)
	}
	w.addScored(m, "attributes", attrs, r.AttributesConfidence(), fmt.Sprintf("%d attributes detected", len(r.Attributes)))
	return m
}

func (w *YAMLWriter) errorsNode(r *domain.AnalysisResult) *yaml.Node {
	e := r.Errors.Value
	m := mapping()
	if e.MetadataImport != "" {
		addPair(m, "metadata_import", quoted(e.MetadataImport))
	}

	cats := mapping()
	for _, c := range domain.AllCategories {
		patterns := e.Buckets.Strings(c)
		if len(patterns) == 0 {
			continue
		}
		seq := sequence()
		for _, p := range patterns {
			seq.Content = append(seq.Content, quoted(p))
		}
		addPair(cats, string(c), seq)
	}
	w.addScored(m, "categorization", cats, r.Errors.Confidence, r.Errors.Evidence)
	return m
}

// addScored adds key: value and annotates it when conf is below the
// threshold. An empty collection takes the marker on the line above its
// key so the flow value stays on the key's line.
func (w *YAMLWriter) addScored(m *yaml.Node, key string, value *yaml.Node, conf float64, evidence string) {
	k := addPair(m, key, value)
	comment, ok := w.marker(conf, evidence)
	if !ok {
		return
	}
	switch {
	case value.Kind == yaml.ScalarNode:
		value.LineComment = comment
	case len(value.Content) == 0:
		value.Style = yaml.FlowStyle
		k.HeadComment = comment
	default:
		k.LineComment = comment
	}
}

func (w *YAMLWriter) marker(conf float64, evidence string) (string, bool) {
	if conf >= w.Threshold {
		return "", false
	}
	comment := fmt.Sprintf("# REVIEW: confidence %.2f (%s)", conf, domain.LevelFor(conf))
	if evidence != "" {
		comment += ": " + evidence
	}
	return comment, true
}

func mapping() *yaml.Node  { return &yaml.Node{Kind: yaml.MappingNode} }
func sequence() *yaml.Node { return &yaml.Node{Kind: yaml.SequenceNode} }

func addPair(m *yaml.Node, key string, value *yaml.Node) *yaml.Node {
	k := str(key)
	m.Content = append(m.Content, k, value)
	return k
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func quoted(s string) *yaml.Node {
	n := str(s)
	n.Style = yaml.DoubleQuotedStyle
	return n
}

func boolNode(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
}

func intNode(i int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(i)}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
