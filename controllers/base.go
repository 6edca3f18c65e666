package controller

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"talentdesk/activity"
	"talentdesk/middleware"
	"talentdesk/repository"
	"talentdesk/utils"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

// Paging holds the list size limits from config.
type Paging struct {
	Default int
	Max     int
}

// Query reads skip, limit, search, sort_by and sort_order.
func (p Paging) Query(c *fiber.Ctx) (repository.ListQuery, error) {
	q := repository.ListQuery{
		Limit:     p.Default,
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort_by"),
		SortOrder: strings.ToLower(c.Query("sort_order", "asc")),
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}

	if s := c.Query("skip"); s != "" {
		skip, err := strconv.Atoi(s)
		if err != nil || skip < 0 {
			return q, fmt.Errorf("skip must be a non-negative integer")
		}
		q.Skip = skip
	}
	if s := c.Query("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 {
			return q, fmt.Errorf("limit must be a positive integer")
		}
		q.Limit = limit
	}
	if p.Max > 0 && q.Limit > p.Max {
		q.Limit = p.Max
	}
	if q.SortOrder != "asc" && q.SortOrder != "desc" {
		return q, fmt.Errorf("sort_order must be asc or desc")
	}
	return q, nil
}

// FilterFunc adds entity specific filters from the query string.
type FilterFunc func(c *fiber.Ctx, q *repository.ListQuery) error

// Filters chains query parameter filters.
func Filters(fns ...FilterFunc) FilterFunc {
	return func(c *fiber.Ctx, q *repository.ListQuery) error {
		for _, fn := range fns {
			if err := fn(c, q); err != nil {
				return err
			}
		}
		return nil
	}
}

// Equal filters column by the raw value of param.
func Equal(param, column string) FilterFunc {
	return func(c *fiber.Ctx, q *repository.ListQuery) error {
		if v := c.Query(param); v != "" {
			q.Where(column, repository.Eq, v)
		}
		return nil
	}
}

// EqualID filters column by a numeric id.
func EqualID(param, column string) FilterFunc {
	return func(c *fiber.Ctx, q *repository.ListQuery) error {
		v := c.Query(param)
		if v == "" {
			return nil
		}
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s must be a numeric id", param)
		}
		q.Where(column, repository.Eq, uint(id))
		return nil
	}
}

// Compare filters column with op against a numeric param.
func Compare(param, column string, op repository.Op) FilterFunc {
	return func(c *fiber.Ctx, q *repository.ListQuery) error {
		v := c.Query(param)
		if v == "" {
			return nil
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number", param)
		}
		q.Where(column, op, n)
		return nil
	}
}

// Between filters column to the [from, to] RFC 3339 or date range.
func Between(fromParam, toParam, column string) FilterFunc {
	return func(c *fiber.Ctx, q *repository.ListQuery) error {
		for _, p := range []struct {
			param string
			op    repository.Op
		}{{fromParam, repository.Gte}, {toParam, repository.Lte}} {
			v := c.Query(p.param)
			if v == "" {
				continue
			}
			t, err := parseTime(v)
			if err != nil {
				return fmt.Errorf("%s must be a date", p.param)
			}
			if p.op == repository.Lte && len(v) == len("2006-01-02") {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			q.Where(column, p.op, t)
		}
		return nil
	}
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

func flag(c *fiber.Ctx, param string) bool {
	v, _ := strconv.ParseBool(c.Query(param))
	return v
}

// base is embedded by every controller.
type base struct {
	Recorder *activity.Recorder
	Logger   *logrus.Entry
}

// record writes an audit entry. A failed write is logged; the request
// itself has already succeeded.
func (b base) record(c *fiber.Ctx, action, resourceType, resourceID string, before, after any) {
	b.recordEntry(c, activity.Entry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Before:       before,
		After:        after,
	})
}

func (b base) recordEntry(c *fiber.Ctx, e activity.Entry) {
	if b.Recorder == nil {
		return
	}
	// Route params alias the request buffer, which fiber reuses once the
	// handler returns; the entry outlives it on the hub.
	e.ResourceID = fiberutils.CopyString(e.ResourceID)
	e.UserID = middleware.UserID(c)
	if _, err := b.Recorder.Record(c.UserContext(), e); err != nil {
		utils.LogError("activity_record_failed", err, map[string]interface{}{
			"action":   e.Action,
			"resource": e.ResourceType,
			"id":       e.ResourceID,
		})
	}
}
