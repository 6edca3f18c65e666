package worker

import (
	"context"
	"sync"
	"time"

	"talentdesk/repository"

	"github.com/sirupsen/logrus"
)

// Probe is what the health worker measures.
type Probe interface {
	Ping(ctx context.Context) (time.Duration, error)
	Dashboard(ctx context.Context, now time.Time) (*repository.DashboardStats, error)
}

// Health is the last probe result served by /health.
type Health struct {
	Status        string           `json:"status"` // ok, degraded, starting
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Database      string           `json:"database"`
	LatencyMS     float64          `json:"db_latency_ms"`
	Counts        map[string]int64 `json:"counts,omitempty"`
	Error         string           `json:"error,omitempty"`
	CheckedAt     *time.Time       `json:"checked_at,omitempty"`
}

// HealthWorker probes the database on an interval and keeps the latest
// result for the health endpoint.
type HealthWorker struct {
	probe    Probe
	version  string
	interval time.Duration
	timeout  time.Duration
	logger   *logrus.Entry
	started  time.Time
	now      func() time.Time

	mu   sync.RWMutex
	last Health
}

func NewHealthWorker(probe Probe, version string, interval time.Duration, logger *logrus.Entry) *HealthWorker {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	w := &HealthWorker{
		probe:    probe,
		version:  version,
		interval: interval,
		timeout:  10 * time.Second,
		logger:   logger,
		now:      time.Now,
	}
	w.started = w.now()
	w.last = Health{Status: "starting", Version: version, Database: "unknown"}
	return w
}

// Start probes once right away, then on every tick until ctx is done.
func (hw *HealthWorker) Start(ctx context.Context) {
	hw.logger.WithField("interval", hw.interval.String()).Info("Health worker started")
	hw.Check(ctx)

	ticker := time.NewTicker(hw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			hw.logger.Info("Health worker shutting down...")
			return
		case <-ticker.C:
			hw.Check(ctx)
		}
	}
}

// Check runs one probe and stores the result.
func (hw *HealthWorker) Check(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, hw.timeout)
	defer cancel()

	now := hw.now()
	h := Health{Status: "ok", Version: hw.version, Database: "up", CheckedAt: &now}

	latency, err := hw.probe.Ping(ctx)
	if err != nil {
		h.Status, h.Database, h.Error = "degraded", "down", err.Error()
		hw.logger.WithError(err).Warn("Database probe failed")
		hw.store(h)
		return h
	}
	h.LatencyMS = float64(latency.Microseconds()) / 1000

	stats, err := hw.probe.Dashboard(ctx, now)
	if err != nil {
		h.Status, h.Error = "degraded", err.Error()
		hw.logger.WithError(err).Warn("Count probe failed")
	} else {
		h.Counts = map[string]int64{
			"companies":     stats.Companies,
			"contacts":      stats.Contacts,
			"leads":         stats.Leads,
			"open_deals":    stats.OpenDeals,
			"tasks":         stats.Tasks,
			"overdue_tasks": stats.OverdueTasks,
			"candidates":    stats.Candidates,
		}
	}
	hw.store(h)
	return h
}

func (hw *HealthWorker) store(h Health) {
	hw.mu.Lock()
	hw.last = h
	hw.mu.Unlock()
}

// Snapshot returns the latest probe result with a fresh uptime.
func (hw *HealthWorker) Snapshot() Health {
	hw.mu.RLock()
	h := hw.last
	hw.mu.RUnlock()
	h.UptimeSeconds = int64(hw.now().Sub(hw.started).Seconds())
	return h
}
