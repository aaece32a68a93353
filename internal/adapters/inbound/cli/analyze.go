package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/cache"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/config"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/gitinfo"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/history"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/output"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/parser"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/tui"
	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/workspace"
	"github.com/sdkprobe/sdkprobe/internal/application"
	"github.com/sdkprobe/sdkprobe/internal/domain"
)

type analyzeOptions struct {
	provider      string
	displayName   string
	configPath    string
	configPackage string
	output        string
	threshold     float64
	minConfidence float64
	maxSamples    int
	workers       int
	exclude       []string
	infra         []string
	jsonOutput    bool
	verbose       bool
	quiet         bool
	noRecord      bool
	noCache       bool
}

func newAnalyzeCmd(global *globalOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Analyze an SDK workspace and emit provider metadata",
		Long: "Analyze the Cargo or Go SDK workspace enclosing path and write annotated YAML metadata. " +
			"The summary goes to stderr; the YAML goes to stdout unless --output is set.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			overrides := domain.AnalyzerConfig{
				Provider:        opts.provider,
				DisplayName:     opts.displayName,
				MaxSamples:      opts.maxSamples,
				Workers:         opts.workers,
				InfraFragments:  opts.infra,
				ExcludePackages: opts.exclude,
				ConfigPackage:   opts.configPackage,
			}
			if cmd.Flags().Changed("threshold") {
				t := opts.threshold
				overrides.Threshold = &t
			}

			log := global.logger(cmd, opts.verbose)
			svc := application.NewAnalyzeService(
				workspace.New(log),
				parser.New(log),
				config.New(),
				application.WithGitInfo(gitinfo.New()),
				application.WithHistory(history.New()),
				application.WithSurfaceCache(cache.New()),
				application.WithLogger(log),
			)

			resp, err := svc.Analyze(cmd.Context(), application.AnalyzeRequest{
				Path:       absPath,
				ConfigPath: opts.configPath,
				Overrides:  overrides,
				NoRecord:   opts.noRecord,
				NoCache:    opts.noCache,
			})
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}
			result := resp.Result

			if !opts.quiet {
				fmt.Fprint(cmd.ErrOrStderr(), tui.RenderAnalysis(result))
			}

			dest := outputPath(opts.output, resp.Config.Output, result.Workspace)
			switch {
			case opts.jsonOutput && dest == "":
				if err := renderJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			case opts.jsonOutput:
				var buf bytes.Buffer
				if err := renderJSON(&buf, result); err != nil {
					return err
				}
				if err := output.WriteAtomic(dest, buf.Bytes()); err != nil {
					return err
				}
			default:
				writer := application.NewWriteService(output.New(resp.Config.EffectiveThreshold(), version))
				if err := writer.Write(result, dest, cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			if dest != "" && !opts.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", dest)
			}

			if opts.minConfidence > 0 && result.Confidence.Overall < opts.minConfidence {
				return fmt.Errorf("overall confidence %.2f is below minimum %.2f", result.Confidence.Overall, opts.minConfidence)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.provider, "provider", "", "Provider name, e.g. aws (required unless set in .sdkprobe.yaml)")
	f.StringVar(&opts.displayName, "display-name", "", "Provider display name (defaults to the capitalized provider)")
	f.StringVar(&opts.configPath, "config", "", "Config file (defaults to .sdkprobe.yaml in the workspace root)")
	f.StringVar(&opts.configPackage, "config-package", "", "Force the config package instead of detecting it")
	f.StringVarP(&opts.output, "output", "o", "", "Write the result to this file instead of stdout")
	f.Float64Var(&opts.threshold, "threshold", domain.DefaultThreshold, "Confidence below which fields are marked for review")
	f.Float64Var(&opts.minConfidence, "min", 0, "Fail when overall confidence is below this value (0 disables)")
	f.IntVar(&opts.maxSamples, "max-samples", 0, "Maximum service packages to parse (default 15)")
	f.IntVar(&opts.workers, "workers", 0, "Parallel parse workers (default GOMAXPROCS)")
	f.StringSliceVar(&opts.exclude, "exclude", nil, "Exclude packages by name")
	f.StringSliceVar(&opts.infra, "infra", nil, "Extra infrastructure name fragments")
	f.BoolVar(&opts.jsonOutput, "json", false, "Emit the full result as JSON instead of YAML")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug detail to stderr")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress the summary on stderr")
	f.BoolVar(&opts.noRecord, "no-record", false, "Do not record this run in history")
	f.BoolVar(&opts.noCache, "no-cache", false, "Parse every package even when cached surfaces are current")

	return cmd
}

// outputPath prefers the flag. A relative path from the config file is
// resolved against the workspace root.
func outputPath(flag, configured string, ws *domain.WorkspaceModel) string {
	if flag != "" {
		return flag
	}
	if configured == "" || filepath.IsAbs(configured) || ws == nil {
		return configured
	}
	return filepath.Join(ws.Root, configured)
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
