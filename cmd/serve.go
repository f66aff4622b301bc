package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/homedeck/homedeck/internal/api"
	"github.com/homedeck/homedeck/internal/cache"
	"github.com/homedeck/homedeck/internal/database"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Homedeck server",
	Long:  `Start the Homedeck HTTP API. The database schema is migrated on startup.`,
	Example: `homedeck serve --config config.yml
homedeck serve -c /path/to/config.yml --log-level debug
`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg := loadConfig()

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	var appCache *cache.AppCache
	if cfg.Cache != nil {
		appCache = cache.NewAppCache(cfg.Cache)
	}

	server, err := api.New(cfg, db, appCache, Version)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx)
	})

	log.Info("homedeck started successfully", "version", Version)
	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return
	}
	log.Info("homedeck stopped")
}
