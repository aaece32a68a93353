package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/history"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/tui"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/workspace"
)

func newHistoryCmd(global *globalOptions) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "Show recorded analysis runs",
		Long:  "Show the confidence of past analyze runs recorded in the workspace root, oldest first.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			// History lives in the workspace root; fall back to path itself
			// when no manifest can be found.
			root := absPath
			if ws, err := workspace.New(global.logger(cmd, false)).Load(absPath); err == nil {
				root = ws.Root
			}

			entries, err := history.New().Load(root)
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}

			if jsonOutput {
				return renderJSON(cmd.OutOrStdout(), entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Show only the most recent N runs")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
