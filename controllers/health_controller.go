package controller

import (
	"talentdesk/worker"

	"github.com/gofiber/fiber/v2"
)

// HealthSource exposes the latest background probe.
type HealthSource interface {
	Snapshot() worker.Health
}

// HealthController serves the unversioned /health and /version.json
// endpoints polled by open browser tabs.
type HealthController struct {
	Source  HealthSource
	Release string
}

func NewHealthController(health HealthSource, version string) *HealthController {
	return &HealthController{Source: health, Release: version}
}

// Health answers 503 while the database is down so load balancers and
// the in-app banner agree.
func (hc *HealthController) Health(c *fiber.Ctx) error {
	h := hc.Source.Snapshot()
	status := fiber.StatusOK
	if h.Database == "down" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(h)
}

// Version is never cached; clients compare it with the build they run.
func (hc *HealthController) Version(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-store, max-age=0")
	return c.JSON(fiber.Map{"version": hc.Release})
}
