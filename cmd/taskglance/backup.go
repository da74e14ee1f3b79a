package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"taskglance/internal/ops"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive or restore the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dataDir := filepath.Dir(cfg.Storage.Path)

			if archive, _ := cmd.Flags().GetString("restore"); archive != "" {
				if err := ops.RestoreDataDir(archive, dataDir); err != nil {
					return err
				}
				fmt.Printf("restored %s into %s\n", archive, dataDir)
				return nil
			}

			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = filepath.Join("backups",
					fmt.Sprintf("taskglance-%s.tar.gz", time.Now().Format("20060102-150405")))
			}
			if err := ops.BackupDataDir(dataDir, out); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "", "archive path to write (default backups/taskglance-<ts>.tar.gz)")
	cmd.Flags().String("restore", "", "restore the given archive into the data directory instead")

	return cmd
}
