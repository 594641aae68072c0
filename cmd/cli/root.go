// Package cli implements the gridrisk-admin command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the gridrisk-admin command tree.
// NewRootCommand 构建 gridrisk-admin 命令树。
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gridrisk-admin",
		Short: "A CLI tool for operating the gridrisk scoring service.",
		Long: `gridrisk-admin scores entity fact files offline, validates scoring
tables and reports on persisted risk profiles.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "path to config.yaml")

	root.AddCommand(newScoreCommand(), newTablesCommand(), newReportCommand())
	return root
}

// Execute is the main entry point for the CLI application.
// If an error occurs, it prints the error and exits.
// Execute 是 CLI 应用程序的主入口点。如果发生错误，它会打印错误并退出。
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
