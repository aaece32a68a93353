package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/cache"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/config"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/gitinfo"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/history"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/output"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/parser"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/workspace"
	"github.com/sdkprobe/sdkprobe/internal/application"
	"github.com/sdkprobe/sdkprobe/internal/domain"
	"github.com/sdkprobe/sdkprobe/internal/domain/analysis"
)

type handlers struct {
	workspacePath string
	logger        *slog.Logger
	version       string
}

// registerTools registers all sdkprobe MCP tools on the given server.
func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcplib.NewTool("sdkprobe_analyze",
			mcplib.WithDescription("Analyze an SDK workspace and return the inferred provider metadata with confidence scores"),
			mcplib.WithString("provider", mcplib.Description("Provider name, e.g. aws (optional when .sdkprobe.yaml sets it)")),
			mcplib.WithString("path", mcplib.Description("Directory inside the workspace (defaults to the server workspace)")),
			mcplib.WithNumber("threshold", mcplib.Description("Review threshold between 0 and 1 (default 0.6)")),
			mcplib.WithString("format", mcplib.Description("Output format: json or yaml (default: json)")),
			mcplib.WithBoolean("record", mcplib.Description("Record the run in the workspace history")),
		),
		h.handleAnalyze,
	)

	s.AddTool(
		mcplib.NewTool("sdkprobe_workspace",
			mcplib.WithDescription("List workspace members with their role (service, infrastructure, config) without parsing sources"),
			mcplib.WithString("provider", mcplib.Description("Provider name used to score the crate pattern")),
			mcplib.WithString("path", mcplib.Description("Directory inside the workspace (defaults to the server workspace)")),
		),
		h.handleWorkspace,
	)

	s.AddTool(
		mcplib.NewTool("sdkprobe_classify_errors",
			mcplib.WithDescription("Classify error variant names into the fixed error categories"),
			mcplib.WithString("variants",
				mcplib.Required(),
				mcplib.Description("Comma- or newline-separated error variant names"),
			),
		),
		h.handleClassifyErrors,
	)

	s.AddTool(
		mcplib.NewTool("sdkprobe_history",
			mcplib.WithDescription("Return the recorded analysis runs of the workspace, oldest first"),
			mcplib.WithString("path", mcplib.Description("Directory inside the workspace (defaults to the server workspace)")),
		),
		h.handleHistory,
	)
}

func (h *handlers) analyzeService() *application.AnalyzeService {
	return application.NewAnalyzeService(
		workspace.New(h.logger),
		parser.New(h.logger),
		config.New(),
		application.WithGitInfo(gitinfo.New()),
		application.WithHistory(history.New()),
		application.WithSurfaceCache(cache.New()),
		application.WithLogger(h.logger),
	)
}

func (h *handlers) path(request mcplib.CallToolRequest) string {
	if p := request.GetString("path", ""); p != "" {
		return p
	}
	return h.workspacePath
}

func (h *handlers) handleAnalyze(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	args := request.GetArguments()
	overrides := domain.AnalyzerConfig{Provider: request.GetString("provider", "")}
	if t, ok := args["threshold"].(float64); ok {
		overrides.Threshold = &t
	}
	record, _ := args["record"].(bool)

	resp, err := h.analyzeService().Analyze(ctx, application.AnalyzeRequest{
		Path:      h.path(request),
		Overrides: overrides,
		NoRecord:  !record,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	switch format := request.GetString("format", "json"); format {
	case "json":
		return jsonResult(resp.Result)
	case "yaml":
		data, err := output.New(resp.Config.EffectiveThreshold(), h.version).Render(resp.Result)
		if err != nil {
			return errorResult(fmt.Sprintf("rendering YAML failed: %v", err)), nil
		}
		return textResult(string(data)), nil
	default:
		return errorResult(fmt.Sprintf("unknown format %q (valid: json, yaml)", format)), nil
	}
}

func (h *handlers) handleWorkspace(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	svc := application.NewWorkspaceService(workspace.New(h.logger), config.New())
	summary, err := svc.Summarize(h.path(request), domain.AnalyzerConfig{Provider: request.GetString("provider", "")})
	if err != nil {
		return errorResult(fmt.Sprintf("workspace failed: %v", err)), nil
	}
	return jsonResult(summary)
}

func (h *handlers) handleClassifyErrors(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	raw, err := request.RequireString("variants")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	pool := splitVariants(raw)
	if len(pool) == 0 {
		return errorResult("no variants given"), nil
	}
	return jsonResult(analysis.ClassifyErrors(pool))
}

func (h *handlers) handleHistory(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	entries, err := h.loadHistory(h.path(request))
	if err != nil {
		return errorResult(fmt.Sprintf("loading history failed: %v", err)), nil
	}
	return jsonResult(entries)
}

// loadHistory reads history from the workspace root enclosing path.
func (h *handlers) loadHistory(path string) ([]domain.RunEntry, error) {
	root := path
	if ws, err := workspace.New(h.logger).Load(path); err == nil {
		root = ws.Root
	}
	entries, err := history.New().Load(root)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.RunEntry{}
	}
	return entries, nil
}

// splitVariants splits on commas and newlines, dropping blanks.
func splitVariants(s string) []string {
	var result []string
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' }) {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return textResult(string(data)), nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
