package controller

import (
	"talentdesk/activity"
	"talentdesk/middleware"
	"talentdesk/models"
	"talentdesk/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// NewTicketController serves the support widget's tickets. The reporter
// is the caller that opened the ticket and never changes.
func NewTicketController(store repository.Store[models.SupportTicket], paging Paging, recorder *activity.Recorder, logger *logrus.Entry) *ResourceController[models.SupportTicket, *models.SupportTicket] {
	rc := NewResourceController[models.SupportTicket](ResourceTicket, store, paging, recorder, logger)
	rc.Filters = Filters(
		Equal("status", "status"),
		Equal("priority", "priority"),
	)
	rc.Prepare = func(c *fiber.Ctx, item, existing *models.SupportTicket) {
		if existing != nil {
			item.ReporterID = existing.ReporterID
			return
		}
		item.ReporterID = nil
		if uid := middleware.UserID(c); uid != 0 {
			item.ReporterID = &uid
		}
	}
	return rc
}
