package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/config"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/tui"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/workspace"
	"github.com/sdkprobe/sdkprobe/internal/application"
	"github.com/sdkprobe/sdkprobe/internal/domain"
)

func newWorkspaceCmd(global *globalOptions) *cobra.Command {
	var (
		provider   string
		exclude    []string
		infra      []string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "workspace [path]",
		Short: "List workspace members and their roles",
		Long:  "Load the workspace enclosing path and classify each member as a service, infrastructure or config package without parsing sources.",
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

			svc := application.NewWorkspaceService(workspace.New(global.logger(cmd, false)), config.New())
			summary, err := svc.Summarize(absPath, domain.AnalyzerConfig{
				Provider:        provider,
				InfraFragments:  infra,
				ExcludePackages: exclude,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return renderJSON(cmd.OutOrStdout(), summary)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderWorkspace(summary))
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider name used to score the crate pattern")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Exclude packages by name")
	cmd.Flags().StringSliceVar(&infra, "infra", nil, "Extra infrastructure name fragments")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
