package controller

import (
	"fmt"
	"strings"
	"time"

	"talentdesk/grid"
	"talentdesk/logdiff"
	"talentdesk/models"
	"talentdesk/utils"

	"github.com/gofiber/fiber/v2"
)

// ViewController renders list pages as table view models for the
// entities the back office shows in data tables.
type ViewController struct {
	renderers map[string]fiber.Handler
}

// NewViewController reads rows through the list controllers, so a view
// accepts the same query parameters and filters as the matching list
// endpoint.
func NewViewController(crm *CRMControllers, candidates *CandidateController) *ViewController {
	return &ViewController{renderers: map[string]fiber.Handler{
		"companies":  tableHandler(crm.Companies, companyTable()),
		"contacts":   tableHandler(crm.Contacts, contactTable()),
		"leads":      tableHandler(crm.Leads, leadTable()),
		"deals":      tableHandler(crm.Deals, dealTable()),
		"tasks":      tableHandler(crm.Tasks, taskTable()),
		"candidates": tableHandler(candidates.ResourceController, candidateTable()),
	}}
}

// Render serves GET /views/:entity. loading=true returns the skeleton
// body without touching the store.
func (vc *ViewController) Render(c *fiber.Ctx) error {
	h, ok := vc.renderers[c.Params("entity")]
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Unknown view", nil)
	}
	return h(c)
}

func tableHandler[T any, P entity[T]](rc *ResourceController[T, P], table *grid.Table[T]) fiber.Handler {
	table.RowKey = func(row T) string { return P(&row).Header().PublicID }
	sortable := table.Sortable()

	return func(c *fiber.Ctx) error {
		q, err := rc.Paging.Query(c)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query", err)
		}
		if rc.Filters != nil {
			if err := rc.Filters(c, &q); err != nil {
				return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filter", err)
			}
		}
		if q.SortBy != "" && !sortable[q.SortBy] {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query", fmt.Errorf("column %q is not sortable", q.SortBy))
		}
		st := grid.State{
			Page:        grid.PageOf(q.Skip, q.Limit),
			RowsPerPage: q.Limit,
			SortBy:      q.SortBy,
			SortOrder:   grid.ParseSortOrder(q.SortOrder),
			Loading:     flag(c, "loading"),
		}
		if st.Loading {
			return c.JSON(utils.SuccessResponse(table.Render(nil, 0, st)))
		}

		rows, total, err := rc.Store.List(c.UserContext(), q)
		if err != nil {
			return utils.RespondError(c, "Failed to fetch rows", err)
		}
		return c.JSON(utils.SuccessResponse(table.Render(rows, total, st)))
	}
}

func formatDay(t *time.Time) string {
	if t == nil {
		return logdiff.Placeholder
	}
	return t.Format("Jan 2, 2006")
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func orPlaceholder(s string) string {
	if s == "" {
		return logdiff.Placeholder
	}
	return s
}

func companyTable() *grid.Table[models.Company] {
	return &grid.Table[models.Company]{
		EmptyMessage: "No companies found",
		Columns: []grid.Column[models.Company]{
			{ID: "name", Label: "Name", Sortable: true, Value: func(r models.Company) any { return r.Name }},
			{ID: "industry", Label: "Industry", Sortable: true, Value: func(r models.Company) any { return orPlaceholder(r.Industry) }},
			{ID: "status", Label: "Status", Sortable: true, Value: func(r models.Company) any { return r.Status }},
			{ID: "email", Label: "Email", Value: func(r models.Company) any { return orPlaceholder(r.Email) }},
			{ID: "phone", Label: "Phone", Value: func(r models.Company) any { return orPlaceholder(r.Phone) }},
			{ID: "created_at", Label: "Created", Sortable: true,
				Value:  func(r models.Company) any { return r.CreatedAt },
				Format: func(_ any, r models.Company) string { return formatDay(&r.CreatedAt) }},
		},
	}
}

func contactTable() *grid.Table[models.Contact] {
	return &grid.Table[models.Contact]{
		EmptyMessage: "No contacts found",
		Columns: []grid.Column[models.Contact]{
			{ID: "first_name", Label: "Name", Sortable: true, Value: func(r models.Contact) any { return fullName(r.FirstName, r.LastName) }},
			{ID: "email", Label: "Email", Sortable: true, Value: func(r models.Contact) any { return orPlaceholder(r.Email) }},
			{ID: "phone", Label: "Phone", Value: func(r models.Contact) any { return orPlaceholder(r.Phone) }},
			{ID: "position", Label: "Position", Value: func(r models.Contact) any { return orPlaceholder(r.Position) }},
			{ID: "company", Label: "Company", Value: func(r models.Contact) any {
				if r.Company == nil {
					return logdiff.Placeholder
				}
				return r.Company.Name
			}},
			{ID: "status", Label: "Status", Sortable: true, Value: func(r models.Contact) any { return r.Status }},
		},
	}
}

func leadTable() *grid.Table[models.Lead] {
	return &grid.Table[models.Lead]{
		EmptyMessage: "No leads found",
		Columns: []grid.Column[models.Lead]{
			{ID: "title", Label: "Title", Sortable: true, Value: func(r models.Lead) any { return r.Title }},
			{ID: "source", Label: "Source", Value: func(r models.Lead) any { return orPlaceholder(r.Source) }},
			{ID: "status", Label: "Status", Sortable: true, Value: func(r models.Lead) any { return r.Status }},
			{ID: "value", Label: "Value", Sortable: true,
				Value:  func(r models.Lead) any { return r.Value },
				Format: func(v any, _ models.Lead) string { return formatMoney(v.(float64)) }},
			{ID: "owner", Label: "Owner", Value: func(r models.Lead) any { return orPlaceholder(r.Owner) }},
		},
	}
}

func dealTable() *grid.Table[models.Deal] {
	return &grid.Table[models.Deal]{
		EmptyMessage: "No deals found",
		Columns: []grid.Column[models.Deal]{
			{ID: "title", Label: "Title", Sortable: true, Value: func(r models.Deal) any { return r.Title }},
			{ID: "stage", Label: "Stage", Sortable: true, Value: func(r models.Deal) any { return r.Stage }},
			{ID: "amount", Label: "Amount", Sortable: true,
				Value:  func(r models.Deal) any { return r.Amount },
				Format: func(v any, _ models.Deal) string { return formatMoney(v.(float64)) }},
			{ID: "probability", Label: "Probability", Value: func(r models.Deal) any { return fmt.Sprintf("%d%%", r.Probability) }},
			{ID: "expected_close_date", Label: "Expected close", Sortable: true,
				Value:  func(r models.Deal) any { return r.ExpectedCloseDate },
				Format: func(_ any, r models.Deal) string { return formatDay(r.ExpectedCloseDate) }},
		},
	}
}

func taskTable() *grid.Table[models.Task] {
	return &grid.Table[models.Task]{
		EmptyMessage: "No tasks found",
		Columns: []grid.Column[models.Task]{
			{ID: "title", Label: "Title", Sortable: true, Value: func(r models.Task) any { return r.Title }},
			{ID: "priority", Label: "Priority", Sortable: true, Value: func(r models.Task) any { return r.Priority }},
			{ID: "status", Label: "Status", Sortable: true, Value: func(r models.Task) any { return r.Status }},
			{ID: "due_date", Label: "Due", Sortable: true,
				Value:  func(r models.Task) any { return r.DueDate },
				Format: func(_ any, r models.Task) string { return formatDay(r.DueDate) }},
			{ID: "assigned_to", Label: "Assigned to", Value: func(r models.Task) any { return orPlaceholder(r.AssignedTo) }},
		},
	}
}

func candidateTable() *grid.Table[models.Candidate] {
	return &grid.Table[models.Candidate]{
		EmptyMessage: "No candidates found",
		Columns: []grid.Column[models.Candidate]{
			{ID: "first_name", Label: "Name", Sortable: true, Value: func(r models.Candidate) any { return fullName(r.FirstName, r.LastName) }},
			{ID: "email", Label: "Email", Sortable: true, Value: func(r models.Candidate) any { return orPlaceholder(r.Email) }},
			{ID: "phone", Label: "Phone", Value: func(r models.Candidate) any { return orPlaceholder(r.Phone) }},
			{ID: "status", Label: "Status", Sortable: true, Value: func(r models.Candidate) any { return r.Status }},
			{ID: "batch", Label: "Batch", Value: func(r models.Candidate) any {
				if r.Batch == nil {
					return logdiff.Placeholder
				}
				return r.Batch.Name
			}},
		},
	}
}
