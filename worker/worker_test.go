package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"talentdesk/activity"
	"talentdesk/models"
	"talentdesk/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type fakeProbe struct {
	pingErr  error
	statsErr error
}

func (p fakeProbe) Ping(context.Context) (time.Duration, error) {
	return 1500 * time.Microsecond, p.pingErr
}

func (p fakeProbe) Dashboard(context.Context, time.Time) (*repository.DashboardStats, error) {
	if p.statsErr != nil {
		return nil, p.statsErr
	}
	return &repository.DashboardStats{Companies: 4, Tasks: 9, OverdueTasks: 2}, nil
}

func TestHealthWorkerCheck(t *testing.T) {
	w := NewHealthWorker(fakeProbe{}, "1.4.0", time.Minute, quietLogger())
	assert.Equal(t, "starting", w.Snapshot().Status)

	h := w.Check(context.Background())
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "up", h.Database)
	assert.Equal(t, 1.5, h.LatencyMS)
	assert.Equal(t, int64(2), h.Counts["overdue_tasks"])

	snap := w.Snapshot()
	assert.Equal(t, "1.4.0", snap.Version)
	assert.NotNil(t, snap.CheckedAt)
}

func TestHealthWorkerDegraded(t *testing.T) {
	w := NewHealthWorker(fakeProbe{pingErr: errors.New("connection refused")}, "dev", 0, quietLogger())
	h := w.Check(context.Background())
	assert.Equal(t, "degraded", h.Status)
	assert.Equal(t, "down", h.Database)
	assert.Contains(t, h.Error, "connection refused")

	w = NewHealthWorker(fakeProbe{statsErr: errors.New("timeout")}, "dev", 0, quietLogger())
	h = w.Check(context.Background())
	assert.Equal(t, "degraded", h.Status)
	assert.Equal(t, "up", h.Database)
	assert.Nil(t, h.Counts)
}

func TestHealthWorkerStopsOnCancel(t *testing.T) {
	w := NewHealthWorker(fakeProbe{}, "dev", time.Hour, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

type taskStore struct {
	repository.Store[models.Task]
	tasks []models.Task
	query repository.ListQuery
}

func (s *taskStore) List(_ context.Context, q repository.ListQuery) ([]models.Task, int64, error) {
	s.query = q
	return s.tasks, int64(len(s.tasks)), nil
}

type appender struct{ logs []models.ActivityLog }

func (a *appender) Append(_ context.Context, e *models.ActivityLog) error {
	a.logs = append(a.logs, *e)
	return nil
}

func TestOverdueSweep(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	due := start.Add(2 * time.Minute)
	task := models.Task{Title: "Send offer", AssignedTo: "sam", DueDate: &due}
	task.PublicID = "t-1"

	store := &taskStore{tasks: []models.Task{task}}
	logs := &appender{}
	hub := activity.NewHub(4)
	sub := hub.Subscribe()
	defer sub.Close()

	w := NewOverdueWorker(store, activity.NewRecorder(logs, hub, quietLogger()), time.Minute, quietLogger())
	w.last = start
	w.now = func() time.Time { return start.Add(5 * time.Minute) }

	n, err := w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f, ok := store.query.Filter("status")
	require.True(t, ok)
	assert.Equal(t, repository.Ne, f.Op)

	require.Len(t, logs.logs, 1)
	entry := logs.logs[0]
	assert.Nil(t, entry.UserID)
	assert.Equal(t, models.ActionOther, entry.ActionType)
	assert.Equal(t, "t-1", entry.ResourceID)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(entry.Metadata, &meta))
	assert.Equal(t, "overdue", meta["event"])

	published := <-sub.C
	assert.Equal(t, "t-1", published.ResourceID)
	assert.Equal(t, start.Add(5*time.Minute), w.last)
}
