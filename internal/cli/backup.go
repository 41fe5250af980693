package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomthias/cleanAlbere9/internal/backup"
	"github.com/tomthias/cleanAlbere9/internal/config"
	"github.com/tomthias/cleanAlbere9/internal/database"
	"github.com/tomthias/cleanAlbere9/internal/logging"
)

// BackupCmd returns the backup command group. These run on the machine
// hosting the backend, against the database file directly.
func BackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage encrypted off-site database snapshots",
	}
	cmd.AddCommand(backupNowCmd())
	cmd.AddCommand(backupListCmd())
	cmd.AddCommand(backupRestoreCmd())
	return cmd
}

func newBackupManager(cmd *cobra.Command) (*backup.Manager, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFile)

	bcfg := backupConfig(cfg)
	if !bcfg.Enabled() {
		return nil, nil, fmt.Errorf("backups not configured (set backup.s3_bucket, credentials and passphrase)")
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return backup.NewManager(bcfg, db, logger), func() { db.Close() }, nil
}

func backupNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Take a snapshot immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, closeDB, err := newBackupManager(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			key, err := mgr.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("snapshot uploaded: %s\n", key)
			return nil
		},
	}
}

func backupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, closeDB, err := newBackupManager(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			snapshots, err := mgr.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(snapshots) == 0 {
				fmt.Println("no snapshots stored")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, s := range snapshots {
				fmt.Fprintf(w, "%s\t%d bytes\t%s\n",
					s.Key, s.SizeBytes, s.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func backupRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <key>",
		Short: "Replace the database with a stored snapshot",
		Long: `Download a snapshot, decrypt and verify it, and swap it in place of
the live database. Stop the backend first and restart it afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, closeDB, err := newBackupManager(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := mgr.Restore(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("database restored, restart the backend")
			return nil
		},
	}
}
