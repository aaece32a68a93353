package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/config"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .sdkprobe.yaml configuration file",
		Long:  "Create a commented .sdkprobe.yaml with the default analyzer settings in path.",
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

			if force {
				if err := os.Remove(filepath.Join(absPath, config.FileName)); err != nil && !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("removing existing config: %w", err)
				}
			}

			if _, err := config.WriteDefault(absPath); err != nil {
				if errors.Is(err, os.ErrExist) {
					return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
				}
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .sdkprobe.yaml")

	return cmd
}
