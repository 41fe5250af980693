package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomthias/cleanAlbere9/internal/backup"
	"github.com/tomthias/cleanAlbere9/internal/config"
	"github.com/tomthias/cleanAlbere9/internal/database"
	"github.com/tomthias/cleanAlbere9/internal/logging"
	"github.com/tomthias/cleanAlbere9/internal/server"
)

// ServeCmd returns the serve command.
func ServeCmd() *cobra.Command {
	var listenAddr, dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the flatmate backend",
		Long: `Run the shared backend: the SQLite store, the JSON API and the
websocket change channel every flatmate's client connects to.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if listenAddr != "" {
				cfg.ListenAddr = listenAddr
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			logger := logging.Setup(cfg.LogLevel, cfg.LogFile)

			db, err := database.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			var backupMgr *backup.Manager
			bcfg := backupConfig(cfg)
			if bcfg.Enabled() {
				backupMgr = backup.NewManager(bcfg, db, logger.With("component", "backup"))
				backupMgr.Start(cmd.Context())
				defer backupMgr.Stop()
			}

			srv := server.New(db, backupMgr, logger)

			httpServer := &http.Server{
				Addr:         cfg.ListenAddr,
				Handler:      srv.Router(),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 10 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			go func() {
				logger.Info("flatmate backend listening", "addr", cfg.ListenAddr, "db", cfg.DBPath)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("server error", "error", err)
					os.Exit(1)
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (default from config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "database path (default from config)")
	return cmd
}

func backupConfig(cfg *config.Config) backup.Config {
	return backup.Config{
		Endpoint:      cfg.Backup.S3Endpoint,
		Bucket:        cfg.Backup.S3Bucket,
		Region:        cfg.Backup.S3Region,
		AccessKey:     cfg.Backup.S3AccessKey,
		SecretKey:     cfg.Backup.S3SecretKey,
		Passphrase:    cfg.Backup.Passphrase,
		DBPath:        cfg.DBPath,
		Interval:      time.Duration(cfg.Backup.IntervalHours) * time.Hour,
		RetentionDays: cfg.Backup.RetentionDays,
	}
}
