package worker

import (
	"context"
	"time"

	"talentdesk/activity"
	"talentdesk/models"
	"talentdesk/repository"

	"github.com/sirupsen/logrus"
)

// OverdueWorker records a system activity entry for every task whose due
// date passed since the previous sweep, so the live feed shows it.
type OverdueWorker struct {
	tasks    repository.Store[models.Task]
	recorder *activity.Recorder
	interval time.Duration
	logger   *logrus.Entry
	now      func() time.Time
	last     time.Time
}

func NewOverdueWorker(tasks repository.Store[models.Task], recorder *activity.Recorder, interval time.Duration, logger *logrus.Entry) *OverdueWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	w := &OverdueWorker{
		tasks:    tasks,
		recorder: recorder,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
	w.last = w.now()
	return w
}

func (ow *OverdueWorker) Start(ctx context.Context) {
	ow.logger.Info("Overdue worker started")
	ticker := time.NewTicker(ow.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ow.logger.Info("Overdue worker shutting down...")
			return
		case <-ticker.C:
			if _, err := ow.Sweep(ctx); err != nil {
				ow.logger.WithError(err).Error("Overdue sweep failed")
			}
		}
	}
}

// Sweep records tasks that became overdue in (last, now] and returns how
// many it recorded.
func (ow *OverdueWorker) Sweep(ctx context.Context) (int, error) {
	now := ow.now()
	q := repository.ListQuery{SortBy: "due_date", SortOrder: "asc"}
	q.Where("due_date", repository.Gt, ow.last)
	q.Where("due_date", repository.Lte, now)
	q.Where("status", repository.Ne, "completed")

	tasks, _, err := ow.tasks.List(ctx, q)
	if err != nil {
		return 0, err
	}

	recorded := 0
	for _, t := range tasks {
		_, err := ow.recorder.Record(ctx, activity.Entry{
			Action:       models.ActionOther,
			ResourceType: "task",
			ResourceID:   t.PublicID,
			Extra: map[string]any{
				"event":       "overdue",
				"title":       t.Title,
				"due_date":    t.DueDate,
				"assigned_to": t.AssignedTo,
			},
		})
		if err != nil {
			ow.logger.WithError(err).WithField("task", t.PublicID).Error("Failed to record overdue task")
			continue
		}
		recorded++
	}
	ow.last = now
	if recorded > 0 {
		ow.logger.WithField("count", recorded).Info("Recorded overdue tasks")
	}
	return recorded, nil
}
