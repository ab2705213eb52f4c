package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"snatcher/internal/core"
	"snatcher/internal/handlers"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Refresh provider caches on a schedule and serve the status API",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager(cmd.Context())
			if err != nil {
				return err
			}
			logger := ctx.logger

			if err := manager.RefreshCaches(cmd.Context()); err != nil {
				logger.Warn("Initial cache refresh finished with errors:", err)
			}
			if err := manager.StartScheduler(); err != nil {
				return err
			}
			defer manager.Stop()

			watcher, err := core.NewBlackholeWatcher([]string{ctx.config.Directories.NZB, ctx.config.Directories.Torrent}, logger)
			if err != nil {
				logger.Warn("Not watching blackhole directories:", err)
			} else {
				defer watcher.Close()
				go watcher.Run(cmd.Context(), manager.PickedUp)
			}

			var server *handlers.Server
			if ctx.config.App.Port > 0 {
				server = handlers.NewServer(ctx.config, manager, logger)
				go func() {
					if err := server.Start(); err != nil {
						logger.Error("API server stopped:", err)
					}
				}()
			}

			logger.Info("Snatcher started with", len(manager.Providers()), "providers")
			<-cmd.Context().Done()

			logger.Info("Shutting down...")
			if server != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Stop(shutdownCtx); err != nil {
					logger.Warn("API server did not shut down cleanly:", err)
				}
			}
			return nil
		},
	}
}
