package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskglance/internal/clock"
	"taskglance/internal/datekey"
	"taskglance/internal/model"
	"taskglance/internal/outstanding"
)

func glanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glance",
		Short: "Print the outstanding tasks you should look at next",
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

			snap, err := repo.Snapshot()
			if err != nil {
				return err
			}

			topN := cfg.Glance.TopN
			if n, _ := cmd.Flags().GetInt("top"); n > 0 {
				topN = n
			}
			privacy := outstanding.PrivacyMode(cfg.Glance.Privacy)
			if raw, _ := cmd.Flags().GetString("privacy"); raw != "" {
				privacy = outstanding.PrivacyMode(raw)
			}

			policy := outstanding.TodayOverview()
			pinned := cfg.Glance.PinnedProject
			if raw, _ := cmd.Flags().GetString("project"); raw != "" {
				pinned = raw
			}
			if pinned != "" {
				policy = outstanding.PinnedFirst(model.ProjectID(pinned))
			}

			zone := cfg.Location()
			now := clock.RealClock{}.Now()
			summary := outstanding.Compute(outstanding.Input{
				Now:      now,
				Day:      datekey.From(now, zone),
				Zone:     zone,
				Policy:   policy,
				Privacy:  privacy,
				TopN:     topN,
				Projects: snap.Projects,
				Tasks:    snap.Tasks,
				Logs:     snap.Logs,
			})

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			printSummary(summary)
			return nil
		},
	}

	cmd.Flags().IntP("top", "n", 0, "number of tasks to show (overrides config)")
	cmd.Flags().String("privacy", "", "privacy mode: visible, masked or hidden")
	cmd.Flags().String("project", "", "pin a project to the top of the list")
	cmd.Flags().BoolP("json", "j", false, "output the full summary as JSON")

	return cmd
}

func printSummary(s outstanding.Summary) {
	if len(s.Display) == 0 {
		switch s.FallbackReason {
		case outstanding.FallbackAllCompleted:
			fmt.Println("All caught up.")
		case outstanding.FallbackNoTasks:
			fmt.Println("No tasks yet.")
		default:
			fmt.Printf("Nothing to show (%s).\n", s.FallbackReason)
		}
		return
	}

	for i, d := range s.Display {
		marks := ""
		if d.IsDoing {
			marks += " [doing]"
		}
		if d.IsOverdue {
			marks += " [overdue]"
		}
		if d.IsP1 {
			marks += " [p1]"
		}
		title := d.DisplayTitle
		if title == "" {
			title = "(hidden)"
		}
		fmt.Printf("%d. %s%s\n", i+1, title, marks)
	}

	c := s.Counters
	fmt.Printf("\n%d outstanding, %d overdue, %d due soon", c.OutstandingTotal, c.OverdueCount, c.DueSoonCount)
	if c.RecurringTotal > 0 {
		fmt.Printf(", habits %d/%d done", c.RecurringDone, c.RecurringTotal)
	}
	fmt.Println()
}
