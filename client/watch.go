package client

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strconv"
	"sync"
	"time"

	"talentdesk/worker"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const (
	HealthInterval  = 2 * time.Minute
	VersionInterval = 5 * time.Minute
)

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// poll runs check now and then on every tick until ctx is done.
func poll(ctx context.Context, interval time.Duration, check func(context.Context)) {
	check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check(ctx)
		}
	}
}

// HealthMonitor polls /health and keeps the last answer for the
// dashboard's status banner.
type HealthMonitor struct {
	c        *Client
	Interval time.Duration
	OnChange func(healthy bool, h worker.Health)
	Logger   *logrus.Entry

	mu      sync.RWMutex
	last    worker.Health
	healthy bool
	checked bool
}

func NewHealthMonitor(c *Client) *HealthMonitor {
	return &HealthMonitor{c: c, Interval: HealthInterval, Logger: discardLogger()}
}

// Check probes once. A 503 still carries a health body; it is decoded and
// reported as unhealthy.
func (m *HealthMonitor) Check(ctx context.Context) (worker.Health, error) {
	status, body, err := m.c.raw(ctx, fasthttp.MethodGet, "/health", nil, nil)
	var h worker.Health
	if err == nil {
		if jsonErr := json.Unmarshal(body, &h); jsonErr != nil && status < 300 {
			err = &RequestError{Status: status, Message: "Invalid response body", Err: jsonErr}
		} else if status >= 300 {
			err = &RequestError{Status: status, Message: errorMessage(body)}
		}
	}
	if err != nil && h.Status == "" {
		h.Status = "unreachable"
	}
	healthy := err == nil && h.Status == "ok"

	m.mu.Lock()
	changed := !m.checked || healthy != m.healthy
	m.last, m.healthy, m.checked = h, healthy, true
	onChange := m.OnChange
	m.mu.Unlock()

	if changed {
		m.Logger.WithFields(logrus.Fields{"healthy": healthy, "status": h.Status}).Info("Backend health changed")
		if onChange != nil {
			onChange(healthy, h)
		}
	}
	return h, err
}

// Last returns the most recent probe and whether it was healthy.
func (m *HealthMonitor) Last() (worker.Health, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last, m.healthy
}

// Run polls until ctx is cancelled.
func (m *HealthMonitor) Run(ctx context.Context) {
	poll(ctx, m.Interval, func(ctx context.Context) {
		if _, err := m.Check(ctx); err != nil {
			m.Logger.WithError(err).Debug("Health check failed")
		}
	})
}

// VersionWatcher polls the cache-busted version.json and reports when
// the deployed version differs from the running one.
type VersionWatcher struct {
	c          *Client
	Current    string
	Interval   time.Duration
	OnMismatch func(deployed string)
	Logger     *logrus.Entry
	now        func() time.Time

	mu       sync.Mutex
	reported string
}

func NewVersionWatcher(c *Client, current string, onMismatch func(deployed string)) *VersionWatcher {
	return &VersionWatcher{
		c:          c,
		Current:    current,
		Interval:   VersionInterval,
		OnMismatch: onMismatch,
		Logger:     discardLogger(),
		now:        time.Now,
	}
}

// Check fetches the deployed version. OnMismatch fires once per deployed
// version that differs from Current.
func (w *VersionWatcher) Check(ctx context.Context) (string, error) {
	q := url.Values{"t": {strconv.FormatInt(w.now().Unix(), 10)}}
	status, body, err := w.c.raw(ctx, fasthttp.MethodGet, "/version.json", q, nil)
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", &RequestError{Status: status, Message: errorMessage(body)}
	}
	var v struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return "", &RequestError{Status: status, Message: "Invalid response body", Err: err}
	}

	if v.Version == "" || v.Version == w.Current {
		return v.Version, nil
	}
	w.mu.Lock()
	fire := w.reported != v.Version
	w.reported = v.Version
	w.mu.Unlock()
	if fire {
		w.Logger.WithFields(logrus.Fields{"running": w.Current, "deployed": v.Version}).Info("New version available")
		if w.OnMismatch != nil {
			w.OnMismatch(v.Version)
		}
	}
	return v.Version, nil
}

// Run polls until ctx is cancelled.
func (w *VersionWatcher) Run(ctx context.Context) {
	poll(ctx, w.Interval, func(ctx context.Context) {
		if _, err := w.Check(ctx); err != nil {
			w.Logger.WithError(err).Debug("Version check failed")
		}
	})
}
