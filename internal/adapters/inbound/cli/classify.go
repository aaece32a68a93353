package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/tui"
	"github.com/sdkprobe/sdkprobe/internal/domain/analysis"
)

func newClassifyCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "classify [variant...]",
		Short: "Classify error variant names into categories",
		Long:  "Bucket error variant names into the fixed error categories such as not_found or permission_denied. Variants are read from stdin, one per line, when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool := args
			if len(pool) == 0 {
				sc := bufio.NewScanner(cmd.InOrStdin())
				for sc.Scan() {
					if v := strings.TrimSpace(sc.Text()); v != "" {
						pool = append(pool, v)
					}
				}
				if err := sc.Err(); err != nil {
					return fmt.Errorf("reading variants: %w", err)
				}
			}

			res := analysis.ClassifyErrors(pool)
			if jsonOutput {
				return renderJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderErrorAnalysis(res.Value))
			fmt.Fprintf(cmd.OutOrStdout(), "confidence %.2f (%s)\n", res.Confidence, res.Evidence)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
