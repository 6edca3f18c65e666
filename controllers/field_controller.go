package controller

import (
	"context"
	"strconv"

	"talentdesk/activity"
	"talentdesk/fields"
	"talentdesk/models"
	"talentdesk/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// FieldStore manages custom field schemas.
type FieldStore interface {
	SchemaLister
	Get(ctx context.Context, id uint) (*models.FieldSchema, error)
	Create(ctx context.Context, schema *models.FieldSchema) error
	Update(ctx context.Context, schema *models.FieldSchema) error
	Delete(ctx context.Context, id uint) error
}

// CandidateStages loads the candidate a form is rendered for.
type CandidateStages interface {
	Get(ctx context.Context, publicID string) (*models.Candidate, error)
	Screening(ctx context.Context, candidateID uint) (*models.CandidateScreening, error)
	Counseling(ctx context.Context, candidateID uint) (*models.CandidateCounseling, error)
}

type FieldController struct {
	base
	Fields     FieldStore
	Candidates CandidateStages
}

func NewFieldController(store FieldStore, candidates CandidateStages, recorder *activity.Recorder, logger *logrus.Entry) *FieldController {
	return &FieldController{
		base:       base{Recorder: recorder, Logger: logger},
		Fields:     store,
		Candidates: candidates,
	}
}

type fieldInput struct {
	EntityType string   `json:"entity_type" validate:"required,oneof=screening counseling"`
	Name       string   `json:"name" validate:"required,max=100"`
	Label      string   `json:"label" validate:"required,max=200"`
	FieldType  string   `json:"field_type" validate:"required"`
	Options    []string `json:"options"`
	IsRequired bool     `json:"is_required"`
	Order      int      `json:"order"`
}

func validEntityType(t string) bool {
	return t == models.FieldEntityScreening || t == models.FieldEntityCounseling
}

// checkSchema applies the field type and options rules.
func checkSchema(m models.FieldSchema) error {
	s, err := fields.FromModel(m)
	if err != nil {
		return err
	}
	return fields.ValidateSchema(s)
}

// List returns the schemas of one entity type in display order.
func (fc *FieldController) List(c *fiber.Ctx) error {
	entityType := c.Params("entity_type")
	if !validEntityType(entityType) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown entity type", nil)
	}
	schemas, err := fc.Fields.ListByEntity(c.UserContext(), entityType)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch fields", err)
	}
	return c.JSON(utils.SuccessResponse(schemas))
}

func (fc *FieldController) Create(c *fiber.Ctx) error {
	var input fieldInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	schema := models.FieldSchema{
		EntityType: input.EntityType,
		Name:       input.Name,
		Label:      input.Label,
		FieldType:  input.FieldType,
		Options:    input.Options,
		IsRequired: input.IsRequired,
		Order:      input.Order,
	}
	if err := checkSchema(schema); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid field", err)
	}

	if err := fc.Fields.Create(c.UserContext(), &schema); err != nil {
		return utils.RespondError(c, "Failed to create field", err)
	}

	fc.record(c, models.ActionCreate, ResourceField, strconv.FormatUint(uint64(schema.ID), 10), nil, schema)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(schema))
}

// Update changes everything except name and entity type; values already
// stored under the name stay reachable.
func (fc *FieldController) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid field ID", err)
	}
	existing, err := fc.Fields.Get(c.UserContext(), uint(id))
	if err != nil {
		return utils.RespondError(c, "Failed to fetch field", err)
	}

	var input struct {
		Label      string   `json:"label" validate:"required,max=200"`
		FieldType  string   `json:"field_type" validate:"required"`
		Options    []string `json:"options"`
		IsRequired bool     `json:"is_required"`
		Order      int      `json:"order"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updated := *existing
	updated.Label = input.Label
	updated.FieldType = input.FieldType
	updated.Options = input.Options
	updated.IsRequired = input.IsRequired
	updated.Order = input.Order
	if err := checkSchema(updated); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid field", err)
	}

	if err := fc.Fields.Update(c.UserContext(), &updated); err != nil {
		return utils.RespondError(c, "Failed to update field", err)
	}

	fc.record(c, models.ActionUpdate, ResourceField, strconv.FormatUint(id, 10), existing, updated)
	return c.JSON(utils.SuccessResponse(updated))
}

// Delete hides the field from forms. Stored values are kept.
func (fc *FieldController) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid field ID", err)
	}
	existing, err := fc.Fields.Get(c.UserContext(), uint(id))
	if err != nil {
		return utils.RespondError(c, "Failed to fetch field", err)
	}
	if err := fc.Fields.Delete(c.UserContext(), uint(id)); err != nil {
		return utils.RespondError(c, "Failed to delete field", err)
	}

	fc.record(c, models.ActionDelete, ResourceField, strconv.FormatUint(id, 10), existing, nil)
	return c.JSON(utils.SuccessResponse(fiber.Map{"id": id}))
}

// Form renders the custom field section for one candidate's stored
// values. The section is null when the entity has no fields.
func (fc *FieldController) Form(c *fiber.Ctx) error {
	entityType := c.Params("entity_type")
	if !validEntityType(entityType) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown entity type", nil)
	}

	stored, err := fc.Fields.ListByEntity(c.UserContext(), entityType)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch fields", err)
	}
	schemas, err := fields.FromModels(stored)
	if err != nil {
		return utils.RespondError(c, "Invalid field definitions", err)
	}

	values := map[string]any{}
	if record := c.Query("record"); record != "" {
		values, err = fc.storedValues(c.UserContext(), entityType, record)
		if err != nil {
			return utils.RespondError(c, "Failed to fetch candidate", err)
		}
	}

	form, err := fields.NewForm(schemas, values, nil)
	if err != nil {
		return utils.RespondError(c, "Invalid field definitions", err)
	}
	section := form.Render()
	if section == nil {
		return c.JSON(utils.SuccessResponse(nil))
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"title":   section.Title,
		"widgets": section.Views(),
	}))
}

func (fc *FieldController) storedValues(ctx context.Context, entityType, publicID string) (map[string]any, error) {
	candidate, err := fc.Candidates.Get(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if entityType == models.FieldEntityScreening {
		s, err := fc.Candidates.Screening(ctx, candidate.ID)
		if err != nil {
			return nil, err
		}
		return s.Others, nil
	}
	cs, err := fc.Candidates.Counseling(ctx, candidate.ID)
	if err != nil {
		return nil, err
	}
	return cs.Others, nil
}
