package controller

import (
	"context"
	"strconv"

	"talentdesk/activity"
	"talentdesk/models"
	"talentdesk/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SettingStore persists system settings.
type SettingStore interface {
	List(ctx context.Context, category string) ([]models.SystemSetting, error)
	Get(ctx context.Context, id uint) (*models.SystemSetting, error)
	Create(ctx context.Context, s *models.SystemSetting) error
	Update(ctx context.Context, s *models.SystemSetting) error
}

// Cipher seals secret setting values at rest.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
}

// KeyCipher encrypts with a fixed AES key.
type KeyCipher string

func (k KeyCipher) Encrypt(plaintext string) (string, error) {
	return utils.EncryptWithKey(string(k), plaintext)
}

// SettingController never returns secret values; they read back as
// models.MaskedValue.
type SettingController struct {
	base
	Settings SettingStore
	Cipher   Cipher
}

func NewSettingController(store SettingStore, cipher Cipher, recorder *activity.Recorder, logger *logrus.Entry) *SettingController {
	return &SettingController{
		base:     base{Recorder: recorder, Logger: logger},
		Settings: store,
		Cipher:   cipher,
	}
}

func masked(s models.SystemSetting) models.SystemSetting {
	if s.IsSecret && s.Value != "" {
		s.Value = models.MaskedValue
	}
	return s
}

func (sc *SettingController) List(c *fiber.Ctx) error {
	settings, err := sc.Settings.List(c.UserContext(), c.Query("category"))
	if err != nil {
		return utils.RespondError(c, "Failed to fetch settings", err)
	}
	out := make([]models.SystemSetting, 0, len(settings))
	for _, s := range settings {
		out = append(out, masked(s))
	}
	return c.JSON(utils.SuccessResponse(out))
}

func (sc *SettingController) Create(c *fiber.Ctx) error {
	var input struct {
		Key         string `json:"key" validate:"required,max=100"`
		Value       string `json:"value"`
		IsSecret    bool   `json:"is_secret"`
		Category    string `json:"category" validate:"omitempty,max=50"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.IsSecret && input.Value == models.MaskedValue {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Secret value required", nil)
	}

	setting := models.SystemSetting{
		Key:         input.Key,
		Value:       input.Value,
		IsSecret:    input.IsSecret,
		Category:    input.Category,
		Description: input.Description,
	}
	if setting.IsSecret {
		sealed, err := sc.Cipher.Encrypt(setting.Value)
		if err != nil {
			return utils.RespondError(c, "Failed to encrypt setting", err)
		}
		setting.Value = sealed
	}

	if err := sc.Settings.Create(c.UserContext(), &setting); err != nil {
		return utils.RespondError(c, "Failed to create setting", err)
	}

	shown := masked(setting)
	sc.record(c, models.ActionCreate, ResourceSetting, setting.Key, nil, shown)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(shown))
}

// Patch applies the fields present in the body. A secret value equal to
// models.MaskedValue means "unchanged".
func (sc *SettingController) Patch(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid setting ID", err)
	}
	existing, err := sc.Settings.Get(c.UserContext(), uint(id))
	if err != nil {
		return utils.RespondError(c, "Failed to fetch setting", err)
	}

	var input struct {
		Value       *string `json:"value"`
		IsSecret    *bool   `json:"is_secret"`
		Category    *string `json:"category" validate:"omitempty,max=50"`
		Description *string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updated := *existing
	if input.Category != nil {
		updated.Category = *input.Category
	}
	if input.Description != nil {
		updated.Description = *input.Description
	}
	if input.IsSecret != nil {
		updated.IsSecret = *input.IsSecret
	}

	keep := input.Value == nil || (existing.IsSecret && *input.Value == models.MaskedValue)
	if keep && existing.IsSecret && !updated.IsSecret {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "A new value is required when a setting stops being secret", nil)
	}
	switch {
	case !keep && updated.IsSecret:
		sealed, err := sc.Cipher.Encrypt(*input.Value)
		if err != nil {
			return utils.RespondError(c, "Failed to encrypt setting", err)
		}
		updated.Value = sealed
	case !keep:
		updated.Value = *input.Value
	case updated.IsSecret && !existing.IsSecret:
		// a plain value turning secret gets sealed in place
		sealed, err := sc.Cipher.Encrypt(existing.Value)
		if err != nil {
			return utils.RespondError(c, "Failed to encrypt setting", err)
		}
		updated.Value = sealed
	}

	if err := sc.Settings.Update(c.UserContext(), &updated); err != nil {
		return utils.RespondError(c, "Failed to update setting", err)
	}

	shown := masked(updated)
	sc.record(c, models.ActionUpdate, ResourceSetting, updated.Key, masked(*existing), shown)
	return c.JSON(utils.SuccessResponse(shown))
}
