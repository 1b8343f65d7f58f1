package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/campushq/labops/internal/notify"
	"github.com/campushq/labops/internal/repo"
)

// Reminders runs a daily cron job that pushes notifications for
// maintenance work scheduled for today and events starting within
// the next 24 hours.
type Reminders struct {
	Maintenance *repo.MaintenanceRepo
	Events      *repo.EventRepo
	Dispatcher  *notify.Dispatcher
}

// Start registers the reminder job under the given cron expression and
// starts the cron runner. The returned cron can be stopped on shutdown.
func (rj *Reminders) Start(expr string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(expr, rj.run); err != nil {
		return nil, fmt.Errorf("add reminder job: %w", err)
	}
	c.Start()
	slog.Info("scheduler started", "cron", expr)
	return c, nil
}

func (rj *Reminders) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	due, err := rj.Maintenance.ListScheduledBetween(ctx, dayStart, dayEnd)
	if err != nil {
		slog.Error("scheduler: list due maintenance", "err", err)
	}
	for _, m := range due {
		rj.Dispatcher.Dispatch(notify.Message{
			CampusID: m.CampusID,
			UserID:   m.RequestedBy,
			Kind:     "maintenance.due",
			Subject:  "Maintenance due today",
			Body:     fmt.Sprintf("Maintenance %q (request #%d) is scheduled for today.", m.Title, m.ID),
		})
	}

	upcoming, err := rj.Events.ListStartingBetween(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		slog.Error("scheduler: list upcoming events", "err", err)
	}
	for _, e := range upcoming {
		rj.Dispatcher.Dispatch(notify.Message{
			CampusID: e.CampusID,
			Kind:     "event.upcoming",
			Subject:  "Upcoming event",
			Body:     fmt.Sprintf("Event %q starts at %s.", e.Title, e.StartAt.Format(time.RFC3339)),
		})
	}

	if len(due) > 0 || len(upcoming) > 0 {
		slog.Info("scheduler: reminders dispatched", "maintenance", len(due), "events", len(upcoming))
	}
}
