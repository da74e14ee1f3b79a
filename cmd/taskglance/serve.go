package main

import (
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"taskglance/internal/clock"
	"taskglance/internal/server"
	"taskglance/internal/store"
	"taskglance/internal/telemetry"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Server.Addr = addr
			}

			repo, err := openRepo(cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			clk := clock.RealClock{}
			if seed, _ := cmd.Flags().GetBool("seed"); seed {
				if err := store.Seed(repo, clk.Now()); err != nil {
					return err
				}
			}

			handler := server.New(server.Options{
				Config: cfg,
				Repo:   repo,
				Events: telemetry.NewMemoryRepository(),
				Clock:  clk,
				Logger: log.Default(),
			})

			log.Printf("listening on http://localhost%s", cfg.Server.Addr)
			return http.ListenAndServe(cfg.Server.Addr, handler)
		},
	}

	cmd.Flags().String("addr", "", "listen address (overrides config)")
	cmd.Flags().Bool("seed", false, "seed demo data into an empty store")

	return cmd
}
