package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskbridge/backend"
	"taskbridge/internal/config"
	"taskbridge/internal/utils"
)

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskbridge",
		Short: "Two-way task synchronization with remote task services",
		Long: `taskbridge keeps a local task database in sync with one or more
remote task services. Each configured provider is reconciled with a
four-phase run: push new tasks, push deletions, push changes (merging
conflicts), then apply remote state locally.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			utils.SetVerboseMode(verbose)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newCredentialsCmd())
	rootCmd.AddCommand(newStatusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openDatabase opens the task database at the configured location
func openDatabase(cfg *config.Config) (*backend.Database, error) {
	return backend.InitDatabase(cfg.Database)
}
