package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/sdkprobe/sdkprobe/internal/adapters/inbound/mcp"
)

func newMCPCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the sdkprobe MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(global))
	return cmd
}

func newMCPServeCmd(global *globalOptions) *cobra.Command {
	var workspacePath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start sdkprobe MCP server (stdio)",
		Long:  "Start the sdkprobe MCP server using stdio transport. This lets AI coding assistants analyze SDK workspaces and classify error variants.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if workspacePath == "" {
				workspacePath = "."
			}
			s := mcpadapter.NewServer(workspacePath, mcpadapter.WithLogger(global.logger(cmd, false)), mcpadapter.WithVersion(version))
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&workspacePath, "path", "", "Workspace path (defaults to current working directory)")

	return cmd
}
