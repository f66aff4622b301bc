package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/homedeck/homedeck/internal/database"
	"github.com/mergestat/timediff"
	"github.com/spf13/cobra"
)

var dbStatsCmd = &cobra.Command{
	Use:   "db-stats",
	Short: "Show database statistics",
	Long:  `Display statistics about users, apps and memos.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		db, err := database.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get database stats: %w", err)
		}

		fmt.Println("Database Statistics:")
		fmt.Printf("Users: %s\n", humanize.Comma(stats.Users))
		fmt.Printf("Apps: %s\n", humanize.Comma(stats.Apps))
		fmt.Printf("Home Screen Entries: %s\n", humanize.Comma(stats.UserApps))
		fmt.Printf("Memos: %s\n", humanize.Comma(stats.Memos))

		if stats.LastSignupAt != nil {
			fmt.Printf("Last Signup: %s\n", timediff.TimeDiff(*stats.LastSignupAt))
		}
		if stats.LastMemoAt != nil {
			fmt.Printf("Last Memo: %s\n", timediff.TimeDiff(*stats.LastMemoAt))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbStatsCmd)
}
