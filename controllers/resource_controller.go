package controller

import (
	"talentdesk/activity"
	"talentdesk/grid"
	"talentdesk/models"
	"talentdesk/repository"
	"talentdesk/utils"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

// entity constrains P to *T where T embeds models.Record.
type entity[T any] interface {
	*T
	models.Entity
}

// ResourceController serves list/get/create/update/delete for one entity
// keyed by public id. Updates replace the whole record with the submitted
// draft.
type ResourceController[T any, P entity[T]] struct {
	base
	Name    string
	Store   repository.Store[T]
	Paging  Paging
	Filters FilterFunc
	// Prepare runs after validation on create (existing is nil) and update.
	Prepare func(c *fiber.Ctx, item, existing P)
}

func NewResourceController[T any, P entity[T]](name string, store repository.Store[T], paging Paging, recorder *activity.Recorder, logger *logrus.Entry) *ResourceController[T, P] {
	return &ResourceController[T, P]{
		base:   base{Recorder: recorder, Logger: logger},
		Name:   name,
		Store:  store,
		Paging: paging,
	}
}

// List returns one page as {items,total,page,pageSize,totalPages}.
func (rc *ResourceController[T, P]) List(c *fiber.Ctx) error {
	q, err := rc.Paging.Query(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query", err)
	}
	if rc.Filters != nil {
		if err := rc.Filters(c, &q); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filter", err)
		}
	}

	items, total, err := rc.Store.List(c.UserContext(), q)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch "+rc.Name+" list", err)
	}
	return c.JSON(utils.SuccessResponse(grid.NewWindow(items, total, grid.PageOf(q.Skip, q.Limit), q.Limit)))
}

func (rc *ResourceController[T, P]) Get(c *fiber.Ctx) error {
	item, err := rc.Store.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.RespondError(c, "Failed to fetch "+rc.Name, err)
	}
	return c.JSON(utils.SuccessResponse(item))
}

func (rc *ResourceController[T, P]) Create(c *fiber.Ctx) error {
	item := P(new(T))
	if err := c.BodyParser(item); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(item); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	// ids and timestamps are assigned by the server
	*item.Header() = models.Record{}
	if rc.Prepare != nil {
		rc.Prepare(c, item, nil)
	}

	if err := rc.Store.Create(c.UserContext(), (*T)(item)); err != nil {
		return utils.RespondError(c, "Failed to create "+rc.Name, err)
	}

	rc.record(c, models.ActionCreate, rc.Name, item.Header().PublicID, nil, item)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(item))
}

func (rc *ResourceController[T, P]) Update(c *fiber.Ctx) error {
	found, err := rc.Store.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.RespondError(c, "Failed to fetch "+rc.Name, err)
	}
	existing := P(found)

	next := P(new(T))
	if err := c.BodyParser(next); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(next); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	*next.Header() = *existing.Header()
	if rc.Prepare != nil {
		rc.Prepare(c, next, existing)
	}

	if err := rc.Store.Update(c.UserContext(), (*T)(next)); err != nil {
		return utils.RespondError(c, "Failed to update "+rc.Name, err)
	}

	rc.record(c, models.ActionUpdate, rc.Name, next.Header().PublicID, existing, next)
	return c.JSON(utils.SuccessResponse(next))
}

func (rc *ResourceController[T, P]) Delete(c *fiber.Ctx) error {
	id := fiberutils.CopyString(c.Params("id"))
	existing, err := rc.Store.Get(c.UserContext(), id)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch "+rc.Name, err)
	}
	if err := rc.Store.Delete(c.UserContext(), id); err != nil {
		return utils.RespondError(c, "Failed to delete "+rc.Name, err)
	}

	rc.record(c, models.ActionDelete, rc.Name, id, existing, nil)
	return c.JSON(utils.SuccessResponse(fiber.Map{"public_id": id}))
}

// Register mounts the five CRUD routes on r.
func (rc *ResourceController[T, P]) Register(r fiber.Router) {
	r.Get("/", rc.List)
	r.Post("/", rc.Create)
	r.Get("/:id", rc.Get)
	r.Put("/:id", rc.Update)
	r.Delete("/:id", rc.Delete)
}
