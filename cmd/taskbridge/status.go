package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskbridge/internal/config"
)

func newStatusCmd() *cobra.Command {
	var vacuum bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show local database statistics",
		Long: `Display the state of the local task database:
- Task, tag and mapping counts
- Mappings carrying unpushed local changes
- Database file size`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if vacuum {
				if err := db.Vacuum(); err != nil {
					return fmt.Errorf("vacuum failed: %w", err)
				}
			}

			stats, err := db.GetStats()
			if err != nil {
				return err
			}
			fmt.Println(stats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&vacuum, "vacuum", false, "Compact the database before reporting")

	return cmd
}
