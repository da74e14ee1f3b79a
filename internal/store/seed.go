package store

import (
	"time"

	"taskglance/internal/model"
	"taskglance/internal/recurrence"
)

// Seed fills an empty repository with a small demo data set so the server
// and CLI have something to show on first run. A repository that already
// holds projects is left untouched.
func Seed(repo Repo, now time.Time) error {
	snap, err := repo.Snapshot()
	if err != nil {
		return err
	}
	if len(snap.Projects) > 0 {
		return nil
	}

	household, err := repo.CreateProject(model.Project{
		Title:     "Household",
		StartDate: now.AddDate(0, -1, 0),
	})
	if err != nil {
		return err
	}
	side, err := repo.CreateProject(model.Project{
		Title:     "Side project",
		StartDate: now.AddDate(0, 0, -10),
	})
	if err != nil {
		return err
	}

	overdue := now.Add(-26 * time.Hour)
	rent := model.NewTask(household.ID, "Pay rent")
	rent.DueAt = &overdue
	rent.Priority = model.PriorityP1
	if _, err := repo.CreateTask(rent); err != nil {
		return err
	}

	tidy := model.NewTask(household.ID, "Tidy the kitchen")
	tidy.LegacyRecurring = true
	if _, err := repo.CreateTask(tidy); err != nil {
		return err
	}

	plantsRule := recurrence.New(recurrence.Weekly, 1).WithWeekdays(time.Wednesday)
	plantsNext := nextWeekday(now, time.Wednesday).Add(9 * time.Hour)
	plants := model.NewTask(household.ID, "Water the plants")
	plants.Recurrence = &plantsRule
	plants.NextOccurrenceDueAt = &plantsNext
	if _, err := repo.CreateTask(plants); err != nil {
		return err
	}

	draft := model.NewTask(side.ID, "Draft the README")
	draft.State = model.StateDoing
	draft.Priority = model.PriorityP2
	if _, err := repo.CreateTask(draft); err != nil {
		return err
	}

	publish := model.NewTask(side.ID, "Publish the first release")
	created, err := repo.CreateTask(publish)
	if err != nil {
		return err
	}

	review := model.NewTask(side.ID, "Ask a friend to review")
	review.BlockedBy = []model.TaskID{created.ID}
	if _, err := repo.CreateTask(review); err != nil {
		return err
	}

	return nil
}

func nextWeekday(now time.Time, wd time.Weekday) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for day.Weekday() != wd {
		day = day.AddDate(0, 0, 1)
	}
	return day
}
