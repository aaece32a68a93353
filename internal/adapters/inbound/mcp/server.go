// Package mcp exposes sdkprobe analyses over the Model Context Protocol.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

type options struct {
	logger  *slog.Logger
	version string
}

// Option customizes the server.
type Option func(*options)

// WithLogger sets the logger passed to the analysis adapters.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithVersion sets the advertised server version.
func WithVersion(v string) Option { return func(o *options) { o.version = v } }

// NewServer creates an MCP server with all sdkprobe tools and resources
// registered. workspacePath is the default workspace for tools that take an
// optional path.
func NewServer(workspacePath string, opts ...Option) *server.MCPServer {
	o := options{logger: slog.New(slog.DiscardHandler), version: "dev"}
	for _, opt := range opts {
		opt(&o)
	}

	s := server.NewMCPServer(
		"sdkprobe",
		o.version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	h := &handlers{workspacePath: workspacePath, logger: o.logger, version: o.version}
	registerTools(s, h)
	registerResources(s, h)

	return s
}
