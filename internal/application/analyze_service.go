package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sdkprobe/sdkprobe/internal/domain"
	"github.com/sdkprobe/sdkprobe/internal/domain/analysis"
)

// ErrProviderRequired is returned when neither the request nor the config
// file names the provider.
var ErrProviderRequired = errors.New("provider name required: pass --provider or set provider in .sdkprobe.yaml")

// AnalyzeRequest describes one analysis run.
type AnalyzeRequest struct {
	// Path is any directory inside the SDK workspace.
	Path string
	// ConfigPath overrides the .sdkprobe.yaml lookup in the workspace root.
	ConfigPath string
	// Overrides carries explicit flag values; zero fields keep file values.
	Overrides domain.AnalyzerConfig
	// NoRecord skips the history entry.
	NoRecord bool
	// NoCache parses every package even when a cached surface is current.
	NoCache bool
}

// AnalyzeResponse is a finished run together with the effective config.
type AnalyzeResponse struct {
	Result *domain.AnalysisResult
	Config domain.AnalyzerConfig
}

// AnalyzeService orchestrates a run:
// load workspace → config → crate pattern → parse samples → detectors → score.
type AnalyzeService struct {
	loader  domain.WorkspaceLoader
	parser  domain.SourceParser
	config  domain.ConfigLoader
	git     domain.GitInfo
	history domain.RunHistory
	cache   domain.SurfaceCache
	logger  *slog.Logger
	now     func() time.Time
}

// AnalyzeOption customizes an AnalyzeService.
type AnalyzeOption func(*AnalyzeService)

// WithGitInfo attaches the source commit to results.
func WithGitInfo(g domain.GitInfo) AnalyzeOption { return func(s *AnalyzeService) { s.git = g } }

// WithHistory records every run.
func WithHistory(h domain.RunHistory) AnalyzeOption { return func(s *AnalyzeService) { s.history = h } }

// WithSurfaceCache reuses surfaces of unchanged packages across runs.
func WithSurfaceCache(c domain.SurfaceCache) AnalyzeOption {
	return func(s *AnalyzeService) { s.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) AnalyzeOption { return func(s *AnalyzeService) { s.logger = l } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AnalyzeOption { return func(s *AnalyzeService) { s.now = now } }

func NewAnalyzeService(
	loader domain.WorkspaceLoader,
	parser domain.SourceParser,
	config domain.ConfigLoader,
	opts ...AnalyzeOption,
) *AnalyzeService {
	s := &AnalyzeService{
		loader: loader,
		parser: parser,
		config: config,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze runs the full pipeline. Only workspace and config failures abort
// the run; package parse failures surface as warnings.
func (s *AnalyzeService) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	// 1. Load workspace
	ws, err := s.loader.Load(req.Path)
	if err != nil {
		return nil, fmt.Errorf("loading workspace: %w", err)
	}
	s.logger.Info("workspace loaded", "root", ws.Root, "kind", ws.Kind, "packages", len(ws.Packages))

	// 2. Load config, apply overrides
	cfg, err := s.loadConfig(ws.Root, req)
	if err != nil {
		return nil, err
	}
	ws = ws.Without(cfg.ExcludePackages...)

	// 3. Name-based detection
	bl := analysis.NewBlocklist(cfg.InfraFragments...)
	crate := analysis.DetectCratePattern(ws, cfg.Provider, bl)
	configSel := analysis.SelectConfigPackage(ws, crate.Value, cfg.ConfigPackage)
	s.logger.Info("crate pattern detected",
		"template", crate.Value.Template, "monolithic", crate.Value.Monolithic,
		"services", len(crate.Value.Services), "confidence", crate.Confidence)

	// 4. Parse the packages the detectors read
	maxSamples := cfg.EffectiveMaxSamples()
	sample := analysis.Sample(crate.Value.Services, maxSamples)
	shared := analysis.SharedErrorPackages(ws, crate.Value)
	needed := neededPackages(ws, sample, configSel.Value, shared)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	surfaces, err := s.parsePackages(ctx, ws, needed, workers, req.NoCache)
	if err != nil {
		return nil, err
	}

	// 5. Surface-based detection
	result := &domain.AnalysisResult{
		Provider:      cfg.Provider,
		DisplayName:   cfg.DisplayName,
		Workspace:     ws,
		CratePattern:  crate,
		ConfigPackage: configSel,
	}
	s.detect(ws, result, surfaces, sample, shared, maxSamples)
	result.Dependencies = analysis.Dependencies(ws, crate.Value, configSel.Value)
	result.RegionAttr = analysis.RegionAttribute(result.Attributes)

	// 6. Score and warn
	result.Confidence = domain.ComputeConfidence(domain.ScoreInputs{
		CratePattern:        result.CratePattern,
		ClientType:          result.ClientType,
		ConfigCrate:         result.ConfigPackage,
		ConfigAttrs:         domain.ScoreValue(result.AttributesConfidence()),
		ErrorCategorization: result.Errors,
	})
	result.Warnings = buildWarnings(result, surfaces, cfg.EffectiveThreshold())
	result.Timestamp = s.now().UTC()

	// 7. Source commit, best effort
	if s.git != nil {
		hash, err := s.git.CommitHash(ws.Root)
		if err != nil {
			s.logger.Debug("no source commit", "error", err)
		}
		result.CommitHash = hash
	}

	s.logger.Info("analysis complete",
		"overall", result.Confidence.Overall, "level", result.Confidence.Level, "warnings", len(result.Warnings))

	if !req.NoRecord {
		s.record(ws.Root, result)
	}
	return &AnalyzeResponse{Result: result, Config: cfg}, nil
}

func (s *AnalyzeService) loadConfig(root string, req AnalyzeRequest) (domain.AnalyzerConfig, error) {
	var (
		cfg domain.AnalyzerConfig
		err error
	)
	if req.ConfigPath != "" {
		cfg, err = s.config.LoadFile(req.ConfigPath)
	} else {
		cfg, err = s.config.Load(root)
	}
	if err != nil {
		return domain.AnalyzerConfig{}, fmt.Errorf("loading config: %w", err)
	}
	cfg = cfg.Merge(req.Overrides)
	if err := cfg.Validate(); err != nil {
		return domain.AnalyzerConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Provider == "" {
		return domain.AnalyzerConfig{}, ErrProviderRequired
	}
	return cfg, nil
}

// neededPackages is the ordered, duplicate-free union of the sampled
// services, the config package and the shared error packages.
func neededPackages(ws *domain.WorkspaceModel, sample []domain.ServicePackage, configPkg *string, shared []domain.PackageInfo) []domain.PackageInfo {
	seen := make(map[string]bool)
	var out []domain.PackageInfo
	add := func(p domain.PackageInfo) {
		if !seen[p.Name] {
			seen[p.Name] = true
			out = append(out, p)
		}
	}
	for _, svc := range sample {
		add(svc.Package)
	}
	if configPkg != nil {
		if p, ok := ws.Package(*configPkg); ok {
			add(p)
		}
	}
	for _, p := range shared {
		add(p)
	}
	return out
}

// parsePackages parses pkgs with at most workers concurrent parses. Each
// task writes only its own slot; the map is built after the join.
func (s *AnalyzeService) parsePackages(ctx context.Context, ws *domain.WorkspaceModel, pkgs []domain.PackageInfo, workers int, noCache bool) (domain.Surfaces, error) {
	cached := s.loadCache(ws.Root, noCache)

	parsed := make([]domain.ParsedPackage, len(pkgs))
	fingerprints := make([]string, len(pkgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, pkg := range pkgs {
		g.Go(func() error {
			parsed[i].Package = pkg
			if cached != nil {
				fp, err := s.cache.Fingerprint(ws.Kind, pkg)
				if err == nil {
					fingerprints[i] = fp
					if surface, ok := cached.Lookup(pkg.Name, fp); ok {
						parsed[i].Surface = surface
						return nil
					}
				}
			}

			surface, err := s.parser.ParsePackage(gctx, ws, pkg)
			if err == nil {
				parsed[i].Surface = surface
				return nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			var warn *domain.PackageParseWarning
			if !errors.As(err, &warn) {
				warn = &domain.PackageParseWarning{Package: pkg.Name, Err: err}
			}
			parsed[i].Warning = warn
			s.logger.Warn("package skipped", "package", pkg.Name, "error", warn)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("parsing packages: %w", err)
	}

	surfaces := make(domain.Surfaces, len(parsed))
	for _, p := range parsed {
		surfaces[p.Package.Name] = p
	}
	s.logger.Debug("packages parsed", "count", len(parsed), "workers", workers)

	if cached != nil {
		s.storeCache(ws.Root, cached, parsed, fingerprints)
	}
	return surfaces, nil
}

func (s *AnalyzeService) loadCache(root string, noCache bool) *domain.ParseCache {
	if s.cache == nil || noCache {
		return nil
	}
	c, err := s.cache.Load(root)
	if err != nil {
		s.logger.Debug("surface cache unavailable", "error", err)
		return domain.NewParseCache()
	}
	return c
}

func (s *AnalyzeService) storeCache(root string, prev *domain.ParseCache, parsed []domain.ParsedPackage, fingerprints []string) {
	next := domain.NewParseCache()
	for name, e := range prev.Entries {
		next.Entries[name] = e
	}
	for i, p := range parsed {
		if p.Surface == nil || fingerprints[i] == "" {
			continue
		}
		next.Entries[p.Package.Name] = domain.CachedSurface{Fingerprint: fingerprints[i], Surface: p.Surface}
	}
	if err := s.cache.Save(root, next); err != nil {
		s.logger.Debug("surface cache not saved", "error", err)
	}
}

// detect runs the surface-based detectors concurrently over the immutable
// surfaces and stores their outputs once all have finished.
func (s *AnalyzeService) detect(
	ws *domain.WorkspaceModel,
	result *domain.AnalysisResult,
	surfaces domain.Surfaces,
	sample []domain.ServicePackage,
	shared []domain.PackageInfo,
	maxSamples int,
) {
	crate := result.CratePattern.Value
	configPkg := result.ConfigPackage.Value

	var configSurface *domain.PackageSurface
	if configPkg != nil {
		configSurface, _ = surfaces.Get(*configPkg)
	}
	var clientSurface *domain.PackageSurface
	for _, svc := range sample {
		if surface, ok := surfaces.Get(svc.Package.Name); ok {
			clientSurface = surface
			break
		}
	}

	var (
		client   domain.DetectionResult[domain.ClientPattern]
		attrs    []domain.DetectionResult[domain.ConfigAttribute]
		snippets domain.DetectionResult[domain.ConfigSnippets]
		errs     domain.DetectionResult[domain.ErrorAnalysis]
	)

	var g errgroup.Group
	g.Go(func() error {
		client = analysis.DetectClientType(crate, surfaces, maxSamples)
		return nil
	})
	g.Go(func() error {
		attrSurface := configSurface
		if attrSurface == nil {
			attrSurface = clientSurface
		}
		attrs = analysis.DetectConfigAttributes(ws.Kind, attrSurface)
		snippets = analysis.DetectSnippets(ws.Kind, configPkg, configSurface, clientSurface)
		return nil
	})
	g.Go(func() error {
		errs = analysis.DetectErrors(errorSources(surfaces, sample, shared))
		return nil
	})
	_ = g.Wait()

	result.ClientType = client
	result.Attributes = attrs
	result.Snippets = snippets
	result.Errors = errs
	s.logger.Debug("detectors finished",
		"client", client.Value.TypePath(), "attributes", len(attrs), "error_patterns", errs.Value.Buckets.Len())
}

func errorSources(surfaces domain.Surfaces, sample []domain.ServicePackage, shared []domain.PackageInfo) []analysis.ErrorSource {
	var sources []analysis.ErrorSource
	for _, svc := range sample {
		if surface, ok := surfaces.Get(svc.Package.Name); ok {
			sources = append(sources, analysis.ErrorSource{Surface: surface, Token: svc.Token})
		}
	}
	for _, p := range shared {
		if surface, ok := surfaces.Get(p.Name); ok {
			sources = append(sources, analysis.ErrorSource{Surface: surface})
		}
	}
	return sources
}

// buildWarnings lists every non-fatal anomaly of the run: parse failures,
// fields without a pattern, fields below threshold, and the standing review
// note on error categorization.
func buildWarnings(r *domain.AnalysisResult, surfaces domain.Surfaces, threshold float64) []domain.Warning {
	var warnings []domain.Warning

	names := make([]string, 0, len(surfaces))
	for name, p := range surfaces {
		if p.Warning != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		w := surfaces[name].Warning
		msg := w.Err.Error()
		if w.File != "" {
			msg = w.File + ": " + msg
		}
		warnings = append(warnings, domain.Warning{
			Kind:    domain.WarningParseFailure,
			Package: name,
			Message: "excluded from samples: " + msg,
		})
	}

	missing := map[string]bool{
		domain.FieldCratePattern: r.CratePattern.Value.Template == "" && !r.CratePattern.Value.Monolithic,
		domain.FieldClientType:   r.ClientType.Value.TypePath() == "",
		domain.FieldConfigCrate:  r.ConfigPackage.Value == nil,
		domain.FieldConfigAttrs:  len(r.Attributes) == 0,
	}
	for _, field := range []string{
		domain.FieldCratePattern, domain.FieldClientType, domain.FieldConfigCrate,
		domain.FieldConfigAttrs, domain.FieldErrorCategorization,
	} {
		score := r.Confidence.PerField[field]
		switch {
		case missing[field]:
			warnings = append(warnings, domain.Warning{
				Kind: domain.WarningNoPattern, Field: field, Message: "no pattern detected",
			})
		case score < threshold:
			warnings = append(warnings, domain.Warning{
				Kind:    domain.WarningLowConfidence,
				Field:   field,
				Score:   score,
				Message: fmt.Sprintf("low confidence (%.2f), needs review", score),
			})
		}
	}

	warnings = append(warnings, domain.Warning{
		Kind:    domain.WarningRequiresReview,
		Field:   domain.FieldErrorCategorization,
		Message: "error categorization always requires manual review and testing",
	})
	return warnings
}

func (s *AnalyzeService) record(root string, r *domain.AnalysisResult) {
	if s.history == nil {
		return
	}
	entry := domain.RunEntry{
		Timestamp:  r.Timestamp.Format(time.RFC3339),
		Provider:   r.Provider,
		CommitHash: r.CommitHash,
		Overall:    r.Confidence.Overall,
		Level:      r.Confidence.Level.String(),
		Warnings:   len(r.Warnings),
	}
	if err := s.history.Save(root, entry); err != nil {
		s.logger.Warn("history not recorded", "error", err)
	}
}
