package controller

import (
	"net/http"
	"testing"

	"talentdesk/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newFieldApp(fields *fieldStore, candidates *candidateStore, logs *activityStore) *fiber.App {
	fc := NewFieldController(fields, candidates, newRecorder(logs), quietLogger())
	return newApp(func(api fiber.Router) {
		g := api.Group("/settings/fields")
		g.Get("/:entity_type", fc.List)
		g.Get("/:entity_type/form", fc.Form)
		g.Post("/", fc.Create)
		g.Put("/:id", fc.Update)
		g.Delete("/:id", fc.Delete)
	})
}

func TestFieldCreate(t *testing.T) {
	fields := &fieldStore{}
	logs := &activityStore{}
	app := newFieldApp(fields, newCandidateStore(), logs)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"choice without options", map[string]any{"entity_type": "screening", "name": "shift", "label": "Shift", "field_type": "single_choice"}, http.StatusBadRequest},
		{"unknown type", map[string]any{"entity_type": "screening", "name": "dob", "label": "Birth date", "field_type": "date"}, http.StatusBadRequest},
		{"bad name", map[string]any{"entity_type": "screening", "name": "Bad Name", "label": "Bad", "field_type": "text"}, http.StatusBadRequest},
		{"unknown entity", map[string]any{"entity_type": "lead", "name": "x", "label": "X", "field_type": "text"}, http.StatusBadRequest},
		{"valid", map[string]any{"entity_type": "screening", "name": "shift", "label": "Shift", "field_type": "single_choice", "options": []string{"Day", "Night"}, "order": 2}, http.StatusCreated},
		{"duplicate", map[string]any{"entity_type": "screening", "name": "shift", "label": "Shift again", "field_type": "text"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := call(t, app, http.MethodPost, "/api/v1/settings/fields", tt.body)
			assert.Equal(t, tt.want, status)
		})
	}
	require.Len(t, fields.schemas, 1)
	require.Len(t, logs.logs, 1)
	assert.Equal(t, ResourceField, logs.logs[0].ResourceType)
}

func TestFieldUpdateKeepsName(t *testing.T) {
	fields := screeningSchemas()
	logs := &activityStore{}
	app := newFieldApp(fields, newCandidateStore(), logs)

	status, body := call(t, app, http.MethodPut, "/api/v1/settings/fields/2", map[string]any{
		"name":        "spoken_languages",
		"label":       "Spoken languages",
		"field_type":  "multiple_choice",
		"options":     []string{"English", "Hindi", "Tamil"},
		"is_required": true,
		"order":       5,
	})
	require.Equal(t, http.StatusOK, status)
	updated := data(t, body)
	assert.Equal(t, "languages", updated["name"])
	assert.Equal(t, "Spoken languages", updated["label"])
	assert.Len(t, updated["options"], 3)

	_, meta := logs.last(t)
	assert.Equal(t, "Languages", meta["before"].(map[string]any)["label"])

	status, _ = call(t, app, http.MethodPut, "/api/v1/settings/fields/2", map[string]any{"label": "L", "field_type": "text", "options": []string{"a"}})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodPut, "/api/v1/settings/fields/99", map[string]any{"label": "L", "field_type": "text"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestFieldListAndDelete(t *testing.T) {
	fields := screeningSchemas()
	app := newFieldApp(fields, newCandidateStore(), &activityStore{})

	status, body := call(t, app, http.MethodGet, "/api/v1/settings/fields/screening", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 2)

	status, _ = call(t, app, http.MethodGet, "/api/v1/settings/fields/lead", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodDelete, "/api/v1/settings/fields/1", nil)
	require.Equal(t, http.StatusOK, status)
	status, body = call(t, app, http.MethodGet, "/api/v1/settings/fields/screening", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
}

func TestFieldForm(t *testing.T) {
	t.Run("no schemas renders nothing", func(t *testing.T) {
		app := newFieldApp(&fieldStore{}, newCandidateStore(), &activityStore{})
		status, body := call(t, app, http.MethodGet, "/api/v1/settings/fields/counseling/form", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "data")
		assert.Nil(t, body["data"])
	})

	t.Run("widgets carry the candidate's stored values in order", func(t *testing.T) {
		candidates := newCandidateStore(models.Candidate{FirstName: "Asha"})
		candidates.screenings[1] = models.CandidateScreening{
			CandidateID: 1,
			Others:      datatypes.JSONMap{"languages": []any{"Hindi"}, "retired_field": "kept"},
		}
		app := newFieldApp(screeningSchemas(), candidates, &activityStore{})

		status, body := call(t, app, http.MethodGet, "/api/v1/settings/fields/screening/form?record=pid-1", nil)
		require.Equal(t, http.StatusOK, status)
		section := data(t, body)
		assert.Equal(t, "Additional Information", section["title"])

		widgets := section["widgets"].([]any)
		require.Len(t, widgets, 2)
		first := widgets[0].(map[string]any)
		assert.Equal(t, "years_experience", first["name"])
		assert.Equal(t, "number", first["input_type"])
		assert.Equal(t, "", first["value"])
		assert.Equal(t, true, first["required"])

		second := widgets[1].(map[string]any)
		assert.Equal(t, "checkbox_group", second["kind"])
		assert.Equal(t, []any{"Hindi"}, second["value"])
	})

	t.Run("unknown candidate", func(t *testing.T) {
		app := newFieldApp(screeningSchemas(), newCandidateStore(), &activityStore{})
		status, _ := call(t, app, http.MethodGet, "/api/v1/settings/fields/screening/form?record=ghost", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}
