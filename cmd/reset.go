package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/homedeck/homedeck/internal/cache"
	"github.com/homedeck/homedeck/internal/config"
	"github.com/homedeck/homedeck/internal/database"
	"github.com/spf13/cobra"
)

var resetCmdFlags struct {
	Yes bool
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate all tables",
	Long:  `This command drops every homedeck table and recreates an empty schema. All users, apps and memos are lost.`,
	Run:   reset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetCmdFlags.Yes, "yes", false, "Confirm that all data should be deleted")

	rootCmd.AddCommand(resetCmd)
}

func reset(cmd *cobra.Command, _ []string) {
	if !resetCmdFlags.Yes {
		log.Fatal("refusing to reset the database without --yes")
	}

	cfg := loadConfig()

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	log.Info("Resetting database...", "driver", cfg.Database.Driver)
	if err := db.Reset(); err != nil {
		log.Fatalf("failed to reset database: %v", err)
	}

	// a memory cache dies with its process; redis outlives it
	if cfg.Cache != nil && cfg.Cache.Type == config.CacheTypeRedis {
		log.Info("Clearing cache...", "type", cfg.Cache.Type)
		if err := cache.NewAppCache(cfg.Cache).ClearAll(cmd.Context()); err != nil {
			log.Error("failed to clear cache, cached lists expire with their ttl", "error", err)
		} else {
			log.Info("Successfully cleared the cache")
		}
	}

	log.Info("Successfully reset the database!")
}
