package controller

import (
	"context"

	"talentdesk/activity"
	"talentdesk/fields"
	"talentdesk/models"
	"talentdesk/repository"
	"talentdesk/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// CandidateStore is the candidate store plus the recruitment workflow.
type CandidateStore interface {
	repository.Store[models.Candidate]
	Screening(ctx context.Context, candidateID uint) (*models.CandidateScreening, error)
	SaveScreening(ctx context.Context, s *models.CandidateScreening) error
	Counseling(ctx context.Context, candidateID uint) (*models.CandidateCounseling, error)
	SaveCounseling(ctx context.Context, c *models.CandidateCounseling) error
	Allocate(ctx context.Context, batchPublicID string, candidateIDs []string) (*models.TrainingBatch, int, error)
}

// SchemaLister loads the live field schemas of an entity type.
type SchemaLister interface {
	ListByEntity(ctx context.Context, entityType string) ([]models.FieldSchema, error)
}

type CandidateController struct {
	*ResourceController[models.Candidate, *models.Candidate]
	Candidates CandidateStore
	Schemas    SchemaLister
}

func NewCandidateController(store CandidateStore, schemas SchemaLister, paging Paging, recorder *activity.Recorder, logger *logrus.Entry) *CandidateController {
	rc := NewResourceController[models.Candidate](ResourceCandidate, store, paging, recorder, logger)
	rc.Filters = Filters(
		Equal("status", "status"),
		EqualID("batch_id", "batch_id"),
	)
	return &CandidateController{ResourceController: rc, Candidates: store, Schemas: schemas}
}

type stageInput struct {
	Outcome string         `json:"outcome" validate:"omitempty,oneof=pass fail hold"`
	Notes   string         `json:"notes"`
	Others  map[string]any `json:"others"`
}

// parseStage reads and validates a screening or counseling body. Values in
// others are checked against the entity's live schemas. On failure the
// error response has been written and input is nil.
func (cc *CandidateController) parseStage(c *fiber.Ctx, entityType string) (*stageInput, error) {
	var input stageInput
	if err := c.BodyParser(&input); err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	stored, err := cc.Schemas.ListByEntity(c.UserContext(), entityType)
	if err != nil {
		return nil, utils.RespondError(c, "Failed to load field definitions", err)
	}
	schemas, err := fields.FromModels(stored)
	if err != nil {
		return nil, utils.RespondError(c, "Invalid field definitions", err)
	}
	if err := fields.Validate(schemas, input.Others); err != nil {
		return nil, utils.RespondError(c, "Validation failed", err)
	}
	return &input, nil
}

func (cc *CandidateController) GetScreening(c *fiber.Ctx) error {
	candidate, err := cc.Candidates.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.RespondError(c, "Failed to fetch candidate", err)
	}
	screening, err := cc.Candidates.Screening(c.UserContext(), candidate.ID)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch screening", err)
	}
	return c.JSON(utils.SuccessResponse(screening))
}

func (cc *CandidateController) UpdateScreening(c *fiber.Ctx) error {
	candidate, err := cc.Candidates.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.RespondError(c, "Failed to fetch candidate", err)
	}
	input, resp := cc.parseStage(c, models.FieldEntityScreening)
	if input == nil {
		return resp
	}

	screening, err := cc.Candidates.Screening(c.UserContext(), candidate.ID)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch screening", err)
	}
	before := *screening
	screening.Outcome = input.Outcome
	screening.Notes = input.Notes
	screening.Others = datatypes.JSONMap(input.Others)

	if err := cc.Candidates.SaveScreening(c.UserContext(), screening); err != nil {
		return utils.RespondError(c, "Failed to save screening", err)
	}

	cc.record(c, models.ActionUpdate, ResourceCandidate+"_screening", candidate.PublicID, before, screening)
	return c.JSON(utils.SuccessResponse(screening))
}

func (cc *CandidateController) GetCounseling(c *fiber.Ctx) error {
	candidate, err := cc.Candidates.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.RespondError(c, "Failed to fetch candidate", err)
	}
	counseling, err := cc.Candidates.Counseling(c.UserContext(), candidate.ID)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch counseling", err)
	}
	return c.JSON(utils.SuccessResponse(counseling))
}

func (cc *CandidateController) UpdateCounseling(c *fiber.Ctx) error {
	candidate, err := cc.Candidates.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.RespondError(c, "Failed to fetch candidate", err)
	}
	input, resp := cc.parseStage(c, models.FieldEntityCounseling)
	if input == nil {
		return resp
	}

	counseling, err := cc.Candidates.Counseling(c.UserContext(), candidate.ID)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch counseling", err)
	}
	before := *counseling
	counseling.Outcome = input.Outcome
	counseling.Notes = input.Notes
	counseling.Others = datatypes.JSONMap(input.Others)

	if err := cc.Candidates.SaveCounseling(c.UserContext(), counseling); err != nil {
		return utils.RespondError(c, "Failed to save counseling", err)
	}

	cc.record(c, models.ActionUpdate, ResourceCandidate+"_counseling", candidate.PublicID, before, counseling)
	return c.JSON(utils.SuccessResponse(counseling))
}

// Allocate moves candidates into a batch. Nothing changes unless every
// candidate exists and the batch has room for all of them.
func (cc *CandidateController) Allocate(c *fiber.Ctx) error {
	var input struct {
		BatchID      string   `json:"batch_id" validate:"required"`
		CandidateIDs []string `json:"candidate_ids" validate:"required,min=1,dive,required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	batch, n, err := cc.Candidates.Allocate(c.UserContext(), input.BatchID, input.CandidateIDs)
	if err != nil {
		return utils.RespondError(c, "Failed to allocate candidates", err)
	}

	cc.recordEntry(c, activity.Entry{
		Action:       models.ActionUpdate,
		ResourceType: ResourceBatch,
		ResourceID:   batch.PublicID,
		Extra: map[string]any{
			"allocated_candidates": input.CandidateIDs,
			"count":                n,
		},
	})
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"batch":     batch,
		"allocated": n,
	}))
}

// Register mounts candidate CRUD and the workflow routes on r.
func (cc *CandidateController) Register(r fiber.Router) {
	r.Post("/allocate", cc.Allocate)
	cc.ResourceController.Register(r)
	r.Get("/:id/screening", cc.GetScreening)
	r.Put("/:id/screening", cc.UpdateScreening)
	r.Get("/:id/counseling", cc.GetCounseling)
	r.Put("/:id/counseling", cc.UpdateCounseling)
}

// NewBatchController serves training batches.
func NewBatchController(store repository.Store[models.TrainingBatch], paging Paging, recorder *activity.Recorder, logger *logrus.Entry) *ResourceController[models.TrainingBatch, *models.TrainingBatch] {
	return NewResourceController[models.TrainingBatch](ResourceBatch, store, paging, recorder, logger)
}
