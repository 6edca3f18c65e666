package controller

import (
	"context"
	"time"

	"talentdesk/repository"
	"talentdesk/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// StatsSource aggregates the dashboard numbers.
type StatsSource interface {
	Dashboard(ctx context.Context, now time.Time) (*repository.DashboardStats, error)
}

type DashboardController struct {
	Stats  StatsSource
	Logger *logrus.Entry
	now    func() time.Time
}

func NewDashboardController(stats StatsSource, logger *logrus.Entry) *DashboardController {
	return &DashboardController{
		Stats:  stats,
		Logger: logger,
		now:    time.Now,
	}
}

// GetDashboardStats returns summary statistics for the dashboard cards
func (dc *DashboardController) GetDashboardStats(c *fiber.Ctx) error {
	start := dc.now()
	stats, err := dc.Stats.Dashboard(c.UserContext(), start)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch dashboard stats", err)
	}
	dc.Logger.WithField("took", time.Since(start).String()).Debug("Dashboard stats computed")
	return c.JSON(utils.SuccessResponse(stats))
}
