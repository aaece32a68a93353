package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/config"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/workspace"
	"github.com/sdkprobe/sdkprobe/internal/application"
	"github.com/sdkprobe/sdkprobe/internal/domain"
)

const (
	workspaceURI = "sdkprobe://workspace"
	historyURI   = "sdkprobe://history"
)

// registerResources registers all sdkprobe MCP resources on the given server.
func registerResources(s *server.MCPServer, h *handlers) {
	s.AddResource(
		mcplib.NewResource(
			workspaceURI,
			"Workspace",
			mcplib.WithResourceDescription("Members of the served workspace and their roles"),
			mcplib.WithMIMEType("application/json"),
		),
		h.workspaceResource,
	)

	s.AddResource(
		mcplib.NewResource(
			historyURI,
			"Analysis History",
			mcplib.WithResourceDescription("Recorded analysis runs of the served workspace"),
			mcplib.WithMIMEType("application/json"),
		),
		h.historyResource,
	)

	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"sdkprobe://members/{name}",
			"Workspace Member",
			mcplib.WithTemplateDescription("Manifest details and role of a single workspace member"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		h.memberResource,
	)
}

func (h *handlers) summary() (*domain.WorkspaceSummary, error) {
	svc := application.NewWorkspaceService(workspace.New(h.logger), config.New())
	return svc.Summarize(h.workspacePath, domain.AnalyzerConfig{})
}

func (h *handlers) workspaceResource(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	summary, err := h.summary()
	if err != nil {
		return nil, fmt.Errorf("workspace failed: %w", err)
	}
	return jsonContents(workspaceURI, summary)
}

func (h *handlers) historyResource(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	entries, err := h.loadHistory(h.workspacePath)
	if err != nil {
		return nil, fmt.Errorf("loading history failed: %w", err)
	}
	return jsonContents(historyURI, entries)
}

func (h *handlers) memberResource(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	name := templateArg(request.Params.Arguments, "name")
	if name == "" {
		return nil, errors.New("member name is required")
	}

	summary, err := h.summary()
	if err != nil {
		return nil, fmt.Errorf("workspace failed: %w", err)
	}
	for _, m := range summary.Members {
		if m.Package.Name == name {
			return jsonContents(request.Params.URI, m)
		}
	}
	return nil, fmt.Errorf("no workspace member named %q", name)
}

// templateArg reads a URI template variable, which the server may deliver
// either as a string or as a list of values.
func templateArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
