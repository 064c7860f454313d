// Package cli defines the testbridge command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/testbridge/testbridge/pkg/version"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "testbridge",
		Short: "Test-asset migration engine between test-management systems",
		Long: "testbridge moves test cases and executions between test-management " +
			"systems (Zephyr Scale, qTest, and friends) through a canonical model, " +
			"with a resumable seven-step migration workflow.",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "path to a YAML config file")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("log-json", false, "emit logs as JSON")
	root.PersistentFlags().Bool("log-source", false, "include source positions in logs")

	root.AddCommand(
		ServeCmd(),
		MigrateCmd(),
		VersionCmd(),
	)
	return root
}

func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			info := version.Get()
			fmt.Fprintf(cmd.OutOrStdout(), "testbridge %s (commit %s, built %s)\n",
				info.Version, info.CommitHash, info.BuildDate)
		},
	}
}
