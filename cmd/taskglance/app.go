package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"taskglance/internal/config"
	"taskglance/internal/store"
)

// loadConfig reads the YAML config named by --config and applies
// TASKGLANCE_* environment overrides on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	return config.FromEnv(cfg), nil
}

func openRepo(cfg config.Config) (store.Repo, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return store.NewMemoryRepo(), nil
	case "sqlite":
		if dir := filepath.Dir(cfg.Storage.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return store.OpenSQLite(cfg.Storage.Path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
