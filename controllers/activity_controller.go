package controller

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"talentdesk/activity"
	"talentdesk/grid"
	"talentdesk/logdiff"
	"talentdesk/middleware"
	"talentdesk/models"
	"talentdesk/repository"
	"talentdesk/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

// ActivityStore reads the audit trail.
type ActivityStore interface {
	List(ctx context.Context, q repository.ListQuery) ([]models.ActivityLog, int64, error)
	Get(ctx context.Context, id uint) (*models.ActivityLog, error)
}

type ActivityController struct {
	Store     ActivityStore
	Hub       *activity.Hub
	Paging    Paging
	Formatter logdiff.Formatter
	Logger    *logrus.Entry
	// PingInterval keeps idle websocket connections open through proxies.
	PingInterval time.Duration
}

func NewActivityController(store ActivityStore, hub *activity.Hub, paging Paging, logger *logrus.Entry) *ActivityController {
	return &ActivityController{
		Store:        store,
		Hub:          hub,
		Paging:       paging,
		Formatter:    logdiff.Default,
		Logger:       logger,
		PingInterval: 30 * time.Second,
	}
}

func actionFilter(c *fiber.Ctx, q *repository.ListQuery) error {
	a := c.Query("action_type")
	if a == "" {
		return nil
	}
	if !models.ValidAction(a) {
		return fmt.Errorf("unknown action_type %q", a)
	}
	q.Where("action_type", repository.Eq, a)
	return nil
}

var activityFilters = Filters(
	actionFilter,
	Equal("resource_type", "resource_type"),
	Equal("resource_id", "resource_id"),
	Between("from", "to", "created_at"),
)

func (ac *ActivityController) list(c *fiber.Ctx, q repository.ListQuery) error {
	if err := activityFilters(c, &q); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filter", err)
	}
	logs, total, err := ac.Store.List(c.UserContext(), q)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch activity logs", err)
	}
	return c.JSON(utils.SuccessResponse(grid.NewWindow(logs, total, grid.PageOf(q.Skip, q.Limit), q.Limit)))
}

// List returns every user's activity.
func (ac *ActivityController) List(c *fiber.Ctx) error {
	q, err := ac.Paging.Query(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query", err)
	}
	if err := EqualID("user_id", "user_id")(c, &q); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filter", err)
	}
	return ac.list(c, q)
}

// Mine returns the caller's own activity.
func (ac *ActivityController) Mine(c *fiber.Ctx) error {
	q, err := ac.Paging.Query(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query", err)
	}
	q.Where("user_id", repository.Eq, middleware.UserID(c))
	return ac.list(c, q)
}

// Diff renders the entry's metadata as a before/after or flat table.
func (ac *ActivityController) Diff(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid activity log ID", err)
	}
	entry, err := ac.Store.Get(c.UserContext(), uint(id))
	if err != nil {
		return utils.RespondError(c, "Failed to fetch activity log", err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"log":  entry,
		"view": ac.Formatter.Render([]byte(entry.Metadata)),
	}))
}

// Upgrade rejects plain HTTP requests on the websocket route.
func (ac *ActivityController) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Stream pushes new entries to the socket until the client goes away.
// An optional resource_type query parameter narrows the feed.
func (ac *ActivityController) Stream(conn *websocket.Conn) {
	sub := ac.Hub.Subscribe()
	defer sub.Close()
	defer conn.Close()

	resourceType := conn.Query("resource_type")
	log := ac.Logger.WithField("remote", conn.RemoteAddr().String())
	log.Debug("Activity stream opened")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(ac.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-done:
			log.Debug("Activity stream closed")
			return
		case entry, ok := <-sub.C:
			if !ok {
				return
			}
			if resourceType != "" && entry.ResourceType != resourceType {
				continue
			}
			if err := conn.WriteJSON(entry); err != nil {
				log.WithError(err).Warn("Error writing activity entry")
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
