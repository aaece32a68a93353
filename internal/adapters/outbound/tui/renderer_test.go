package tui_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/tui"
	"github.com/sdkprobe/sdkprobe/internal/domain"
)

func sampleResult() *domain.AnalysisResult {
	config := "aws-config"
	buckets := domain.NewCategoryBucket()
	buckets.Add(domain.CategoryNotFound, domain.Prefix("NoSuch"))
	buckets.Add(domain.CategoryPermissionDenied, domain.Exact("AccessDenied"))

	r := &domain.AnalysisResult{
		Provider:     "aws",
		CratePattern: domain.Detected(domain.CratePattern{Template: "aws-sdk-{service}"}, 0.9, "3/3 consistent"),
		ClientType: domain.Detected(domain.ClientPattern{
			Template: "aws_sdk_{service}::Client", Async: true,
		}, 1, "3/3 packages"),
		ConfigPackage: domain.Detected(&config, 0.95, "config keyword"),
		Attributes: []domain.DetectionResult[domain.ConfigAttribute]{
			domain.Detected(domain.ConfigAttribute{Name: "region"}, 0.95, "region"),
			domain.Detected(domain.ConfigAttribute{Name: "profile"}, 0.6, "profile_name"),
		},
		Errors: domain.Detected(domain.ErrorAnalysis{
			Buckets:      buckets,
			PerCategory:  map[domain.Category]float64{domain.CategoryNotFound: 0.8, domain.CategoryPermissionDenied: 0.9},
			Pool:         []string{"NoSuchBucket", "NoSuchKey", "AccessDenied", "Unhandled"},
			Unclassified: []string{"Unhandled"},
		}, 0.5, "3 of 4 variants"),
		Warnings: []domain.Warning{
			{Kind: domain.WarningRequiresReview, Field: domain.FieldErrorCategorization, Message: "always requires manual review"},
			{Kind: domain.WarningParseFailure, Package: "acme-sdk-gamma", Message: "unterminated string"},
		},
	}
	r.Confidence = domain.ComputeConfidence(domain.ScoreInputs{
		CratePattern:        r.CratePattern,
		ClientType:          r.ClientType,
		ConfigCrate:         r.ConfigPackage,
		ConfigAttrs:         domain.ScoreValue(r.AttributesConfidence()),
		ErrorCategorization: r.Errors,
	})
	return r
}

func TestRenderAnalysis_Header(t *testing.T) {
	output := tui.RenderAnalysis(sampleResult())

	assert.Contains(t, output, "sdkprobe")
	assert.Contains(t, output, "aws")
	assert.Contains(t, output, "HIGH")
	assert.Contains(t, output, "automation")
}

func TestRenderAnalysis_ShowsAllFields(t *testing.T) {
	output := tui.RenderAnalysis(sampleResult())

	for _, label := range []string{"crate pattern", "client type", "config package", "config attributes", "error categorization"} {
		assert.Contains(t, output, label)
	}
	assert.Contains(t, output, "aws-sdk-{service}")
	assert.Contains(t, output, "aws_sdk_{service}::Client (async)")
	assert.Contains(t, output, "aws-config")
	assert.Contains(t, output, "region, profile")
}

func TestRenderAnalysis_ProgressBars(t *testing.T) {
	output := tui.RenderAnalysis(sampleResult())
	assert.Contains(t, output, "█")
	assert.Contains(t, output, "░")
}

func TestRenderAnalysis_ErrorCategories(t *testing.T) {
	output := tui.RenderAnalysis(sampleResult())

	assert.Contains(t, output, "Error Categories")
	assert.Contains(t, output, "not_found")
	assert.Contains(t, output, "NoSuch*")
	assert.Contains(t, output, "AccessDenied")
	assert.Contains(t, output, "Unhandled")
}

func TestRenderAnalysis_ParseFailuresBeforeReview(t *testing.T) {
	output := tui.RenderAnalysis(sampleResult())

	parseIdx := strings.Index(output, "unterminated string")
	reviewIdx := strings.Index(output, "always requires manual review")
	assert.Greater(t, parseIdx, 0)
	assert.Greater(t, reviewIdx, parseIdx, "parse failures should appear before review notes")
	assert.Contains(t, output, "Warnings")
}

func TestRenderAnalysis_NoWarnings(t *testing.T) {
	r := sampleResult()
	r.Warnings = nil

	assert.Contains(t, tui.RenderAnalysis(r), "No warnings.")
}

func TestRenderAnalysis_Monolithic(t *testing.T) {
	r := &domain.AnalysisResult{
		Provider:     "k8s",
		CratePattern: domain.Detected(domain.CratePattern{Monolithic: true}, 0.5, "single package"),
		ClientType:   domain.Detected(domain.ClientPattern{SharedType: "k8s_openapi::Client"}, 1, "shared"),
	}

	output := tui.RenderAnalysis(r)
	assert.Contains(t, output, "monolithic")
	assert.Contains(t, output, "k8s_openapi::Client")
	assert.Contains(t, output, "no error variants categorized")
}

func TestRenderErrorAnalysis(t *testing.T) {
	output := tui.RenderErrorAnalysis(sampleResult().Errors.Value)

	assert.Contains(t, output, "(4 variants)")
	assert.Contains(t, output, "permission_denied")
}

func TestRenderHistory(t *testing.T) {
	entries := []domain.RunEntry{
		{Timestamp: "2026-10-01T10:00:00Z", Provider: "aws", CommitHash: "0123456789abcdef", Overall: 0.70, Level: "MEDIUM"},
		{Timestamp: "2026-10-02T10:00:00Z", Provider: "aws", Overall: 0.85, Level: "HIGH"},
		{Timestamp: "2026-10-03T10:00:00Z", Provider: "aws", Overall: 0.60, Level: "MEDIUM"},
	}

	output := tui.RenderHistory(entries)
	assert.Contains(t, output, "Analysis History")
	assert.Contains(t, output, "2026-10-01")
	assert.Contains(t, output, "0123456")
	assert.NotContains(t, output, "0123456789")
	assert.Contains(t, output, "↑0.15")
	assert.Contains(t, output, "↓0.25")
}

func TestRenderHistory_Empty(t *testing.T) {
	assert.Contains(t, tui.RenderHistory(nil), "No analysis history found.")
}
