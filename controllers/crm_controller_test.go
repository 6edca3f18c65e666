package controller

import (
	"context"
	"net/http"
	"testing"
	"time"

	"talentdesk/models"
	"talentdesk/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type crmEnv struct {
	app       *fiber.App
	companies *memStore[models.Company, *models.Company]
	tasks     *memStore[models.Task, *models.Task]
	logs      *activityStore
	now       time.Time
}

func newCRMEnv(companies ...models.Company) *crmEnv {
	env := &crmEnv{
		companies: newMemStore[models.Company](companies...),
		tasks:     newMemStore[models.Task](),
		logs:      &activityStore{},
		now:       time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
	}
	stores := CRMStores{
		Companies: env.companies,
		Contacts:  newMemStore[models.Contact](),
		Leads:     newMemStore[models.Lead](),
		Deals:     newMemStore[models.Deal](),
		Tasks:     env.tasks,
	}
	crm := NewCRMControllers(stores, testPaging, newRecorder(env.logs), quietLogger(), func() time.Time { return env.now })
	env.app = newApp(func(api fiber.Router) {
		g := api.Group("/crm")
		crm.Companies.Register(g.Group("/companies"))
		crm.Contacts.Register(g.Group("/contacts"))
		crm.Deals.Register(g.Group("/deals"))
		crm.Tasks.Register(g.Group("/tasks"))
	})
	return env
}

func TestCompanyCreate(t *testing.T) {
	t.Run("empty name is rejected before the store", func(t *testing.T) {
		env := newCRMEnv()
		status, body := call(t, env.app, http.MethodPost, "/api/v1/crm/companies", map[string]any{"name": ""})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["detail"], "name is required")
		assert.Zero(t, env.companies.count())
		assert.Empty(t, env.logs.logs)
	})

	t.Run("invalid email", func(t *testing.T) {
		env := newCRMEnv()
		status, body := call(t, env.app, http.MethodPost, "/api/v1/crm/companies", map[string]any{"name": "Acme", "email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, body["detail"], "email must be a valid email")
	})

	t.Run("created with server assigned ids and logged", func(t *testing.T) {
		env := newCRMEnv()
		status, body := call(t, env.app, http.MethodPost, "/api/v1/crm/companies", map[string]any{
			"public_id":     "client-chosen",
			"name":          "Acme",
			"status":        "prospect",
			"custom_fields": map[string]any{"tier": "gold"},
		})
		require.Equal(t, http.StatusCreated, status)
		created := data(t, body)
		assert.Equal(t, "pid-1", created["public_id"])
		assert.Equal(t, "Acme", created["name"])

		entry, meta := env.logs.last(t)
		assert.Equal(t, models.ActionCreate, entry.ActionType)
		assert.Equal(t, ResourceCompany, entry.ResourceType)
		assert.Equal(t, "pid-1", entry.ResourceID)
		require.NotNil(t, entry.UserID)
		assert.Equal(t, testUserID, *entry.UserID)
		assert.NotContains(t, meta, "before")
		assert.Equal(t, "Acme", meta["after"].(map[string]any)["name"])
	})
}

func TestCompanyList(t *testing.T) {
	env := newCRMEnv(models.Company{Name: "A"}, models.Company{Name: "B"}, models.Company{Name: "C"})

	status, body := call(t, env.app, http.MethodGet, "/api/v1/crm/companies?skip=2&limit=2&status=prospect&search=ac&sort_by=name&sort_order=desc", nil)
	require.Equal(t, http.StatusOK, status)

	window := data(t, body)
	assert.EqualValues(t, 3, window["total"])
	assert.EqualValues(t, 1, window["page"])
	assert.EqualValues(t, 2, window["pageSize"])
	assert.EqualValues(t, 2, window["totalPages"])
	assert.Len(t, window["items"], 1)

	q := env.companies.lastQuery()
	assert.Equal(t, 2, q.Skip)
	assert.Equal(t, 2, q.Limit)
	assert.Equal(t, "ac", q.Search)
	assert.Equal(t, "name", q.SortBy)
	assert.Equal(t, "desc", q.SortOrder)
	assert.Equal(t, []repository.Filter{{Column: "status", Op: repository.Eq, Value: "prospect"}}, q.Filters)
}

func TestListQueryValidation(t *testing.T) {
	env := newCRMEnv()
	for _, path := range []string{
		"/api/v1/crm/companies?limit=0",
		"/api/v1/crm/companies?skip=-1",
		"/api/v1/crm/companies?sort_order=sideways",
		"/api/v1/crm/contacts?company_id=abc",
		"/api/v1/crm/deals?min_amount=lots",
	} {
		status, _ := call(t, env.app, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, status, path)
	}

	status, _ := call(t, env.app, http.MethodGet, "/api/v1/crm/companies?limit=500", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, testPaging.Max, env.companies.lastQuery().Limit)
}

func TestCompanyUpdateReplacesDraft(t *testing.T) {
	env := newCRMEnv(models.Company{Name: "Acme", Email: "ops@acme.test", Industry: "Retail"})

	status, body := call(t, env.app, http.MethodPut, "/api/v1/crm/companies/pid-1", map[string]any{
		"id":        99,
		"public_id": "hijack",
		"name":      "Acme",
		"email":     "hello@acme.test",
		"industry":  "Retail",
	})
	require.Equal(t, http.StatusOK, status)
	updated := data(t, body)
	assert.Equal(t, "pid-1", updated["public_id"])
	assert.EqualValues(t, 1, updated["id"])
	assert.Equal(t, "hello@acme.test", updated["email"])

	stored, err := env.companies.Get(context.Background(), "pid-1")
	require.NoError(t, err)
	assert.Equal(t, "hello@acme.test", stored.Email)
	assert.Equal(t, testCreatedAt, stored.CreatedAt)

	entry, meta := env.logs.last(t)
	assert.Equal(t, models.ActionUpdate, entry.ActionType)
	assert.Equal(t, map[string]any{"email": "ops@acme.test"}, meta["before"])
	assert.Equal(t, map[string]any{"email": "hello@acme.test"}, meta["after"])
}

func TestCompanyNotFound(t *testing.T) {
	env := newCRMEnv()
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		status, body := call(t, env.app, method, "/api/v1/crm/companies/missing", map[string]any{"name": "x"})
		assert.Equal(t, http.StatusNotFound, status, method)
		assert.Contains(t, body["detail"], "record not found")
	}
}

func TestCompanyDelete(t *testing.T) {
	env := newCRMEnv(models.Company{Name: "Acme"})

	status, body := call(t, env.app, http.MethodDelete, "/api/v1/crm/companies/pid-1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pid-1", data(t, body)["public_id"])
	assert.Zero(t, env.companies.count())

	entry, meta := env.logs.last(t)
	assert.Equal(t, models.ActionDelete, entry.ActionType)
	assert.NotContains(t, meta, "after")
	assert.Equal(t, "Acme", meta["before"].(map[string]any)["name"])
}

func TestDeleteEntryKeepsRecordIDAfterLaterRequests(t *testing.T) {
	env := newCRMEnv(models.Company{Name: "Acme"})

	status, _ := call(t, env.app, http.MethodDelete, "/api/v1/crm/companies/pid-1", nil)
	require.Equal(t, http.StatusOK, status)
	for i := 0; i < 5; i++ {
		status, _ = call(t, env.app, http.MethodGet, "/api/v1/crm/companies/zzz-9?search=overwrite-the-buffer", nil)
		require.Equal(t, http.StatusNotFound, status)
	}

	entry, _ := env.logs.last(t)
	assert.Equal(t, models.ActionDelete, entry.ActionType)
	assert.Equal(t, "pid-1", entry.ResourceID)
}

func TestTaskFilters(t *testing.T) {
	env := newCRMEnv()

	status, _ := call(t, env.app, http.MethodGet, "/api/v1/crm/tasks?overdue_only=true", nil)
	require.Equal(t, http.StatusOK, status)
	q := env.tasks.lastQuery()
	assert.Equal(t, []repository.Filter{
		{Column: "due_date", Op: repository.Lt, Value: env.now},
		{Column: "status", Op: repository.Ne, Value: TaskCompleted},
	}, q.Filters)

	status, _ = call(t, env.app, http.MethodGet, "/api/v1/crm/tasks?due_today=1&priority=high", nil)
	require.Equal(t, http.StatusOK, status)
	q = env.tasks.lastQuery()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []repository.Filter{
		{Column: "priority", Op: repository.Eq, Value: "high"},
		{Column: "due_date", Op: repository.Gte, Value: day},
		{Column: "due_date", Op: repository.Lt, Value: day.Add(24 * time.Hour)},
	}, q.Filters)
}

func TestTaskCompletionStamp(t *testing.T) {
	env := newCRMEnv()

	status, body := call(t, env.app, http.MethodPost, "/api/v1/crm/tasks", map[string]any{"title": "Call", "status": "completed"})
	require.Equal(t, http.StatusCreated, status)
	assert.NotNil(t, data(t, body)["completed_at"])

	env.now = env.now.Add(time.Hour)
	status, body = call(t, env.app, http.MethodPut, "/api/v1/crm/tasks/pid-1", map[string]any{"title": "Call again", "status": "completed"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2026-03-10T15:00:00Z", data(t, body)["completed_at"])

	status, body = call(t, env.app, http.MethodPut, "/api/v1/crm/tasks/pid-1", map[string]any{"title": "Reopened", "status": "pending"})
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, data(t, body)["completed_at"])

	status, _ = call(t, env.app, http.MethodPost, "/api/v1/crm/tasks", map[string]any{"title": "Bad", "priority": "urgent"})
	assert.Equal(t, http.StatusBadRequest, status)
}
