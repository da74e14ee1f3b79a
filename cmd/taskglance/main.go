// Command taskglance runs the task engine: an HTTP server, a terminal
// glance at the outstanding list, one-off completions, and data backups.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "taskglance",
		Short:   "A what-should-I-do-next engine for personal tasks",
		Version: Version,
	}

	rootCmd.PersistentFlags().String("config", "config.yml", "path to the YAML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(glanceCmd())
	rootCmd.AddCommand(completeCmd())
	rootCmd.AddCommand(backupCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
