package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand 创建 labelctl 根命令
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &Options{out: out, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	return newRootCommand(opts)
}

func newRootCommand(opts *Options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "labelctl",
		Short:         "Command line client for the next-label annotation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// 全局 Flags
	rootCmd.PersistentFlags().StringVar(&opts.Server, "server", envOr("LABELCTL_SERVER", "http://localhost:8080/api/v1"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&opts.Token, "token", os.Getenv("LABELCTL_TOKEN"), "Bearer token")
	rootCmd.PersistentFlags().Int64Var(&opts.Project, "project", 0, "Project ID")
	rootCmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", OutputJSON, "Output format: json or yaml")

	rootCmd.AddCommand(
		annotationsCommand(opts),
		progressCommand(opts),
		distributionCommand(opts),
	)
	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
