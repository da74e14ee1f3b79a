package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"taskglance/internal/clock"
	"taskglance/internal/completion"
	"taskglance/internal/datekey"
	"taskglance/internal/model"
	"taskglance/internal/outstanding"
)

func completeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark a task (or today's occurrence of it) completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			repo, err := openRepo(cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			req := completion.Request{TaskID: model.TaskID(args[0])}
			if raw, _ := cmd.Flags().GetString("day"); raw != "" {
				day, err := datekey.Parse(raw)
				if err != nil {
					return fmt.Errorf("day must be YYYY-MM-DD: %w", err)
				}
				req.Day = day
			}
			if raw, _ := cmd.Flags().GetString("at"); raw != "" {
				at, err := time.Parse(time.RFC3339, raw)
				if err != nil {
					return fmt.Errorf("at must be RFC 3339: %w", err)
				}
				req.At = at
			}

			uc := completion.New(repo, repo, clock.RealClock{}, cfg.Location())
			res, err := uc.Complete(req)
			if err != nil {
				return err
			}

			title := ""
			if task, ok, _ := repo.GetTask(req.TaskID); ok {
				title = task.Title
			}
			msg := outstanding.CompletionMessage(title, res.WasAlreadyCompleted,
				outstanding.PrivacyMode(cfg.Glance.Privacy))
			if msg == "" {
				msg = "Done."
			}
			fmt.Println(msg)

			if res.UpdatedTask != nil && res.UpdatedTask.NextOccurrenceDueAt != nil {
				fmt.Printf("Next occurrence: %s\n",
					res.UpdatedTask.NextOccurrenceDueAt.In(cfg.Location()).Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().String("day", "", "occurrence day as YYYY-MM-DD (defaults to today)")
	cmd.Flags().String("at", "", "completion instant as RFC 3339 (defaults to now)")

	return cmd
}
