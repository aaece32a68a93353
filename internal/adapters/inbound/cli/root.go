package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sdkprobe/sdkprobe/internal/adapters/outbound/logger"
)

var (
	version = "dev"
	commit  = "none"
)

// globalOptions holds persistent flags shared by every subcommand.
type globalOptions struct {
	logLevel string
}

func (o *globalOptions) logger(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := o.logLevel
	if verbose {
		level = "debug"
	}
	return logger.New(cmd.ErrOrStderr(), level)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "sdkprobe",
		Short: "Infer provider metadata from cloud SDK workspaces",
		Long: "sdkprobe inspects a Cargo or Go multi-module SDK workspace, infers how its service packages, " +
			"client types, configuration and errors are organized, and writes annotated YAML metadata " +
			"with a confidence score for every inference.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newWorkspaceCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newClassifyCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newMCPCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the root command. An interrupt cancels the running analysis.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}
