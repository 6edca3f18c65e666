package controller

import (
	"time"

	"talentdesk/activity"
	"talentdesk/models"
	"talentdesk/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// CRMControllers serves /crm/*.
type CRMControllers struct {
	Companies *ResourceController[models.Company, *models.Company]
	Contacts  *ResourceController[models.Contact, *models.Contact]
	Leads     *ResourceController[models.Lead, *models.Lead]
	Deals     *ResourceController[models.Deal, *models.Deal]
	Tasks     *ResourceController[models.Task, *models.Task]
}

// CRMStores are the stores behind the CRM screens.
type CRMStores struct {
	Companies repository.Store[models.Company]
	Contacts  repository.Store[models.Contact]
	Leads     repository.Store[models.Lead]
	Deals     repository.Store[models.Deal]
	Tasks     repository.Store[models.Task]
}

func NewCRMControllers(stores CRMStores, paging Paging, recorder *activity.Recorder, logger *logrus.Entry, now func() time.Time) *CRMControllers {
	if now == nil {
		now = time.Now
	}

	companies := NewResourceController[models.Company](ResourceCompany, stores.Companies, paging, recorder, logger.WithField("resource", ResourceCompany))
	companies.Filters = Filters(
		Equal("status", "status"),
		Equal("industry", "industry"),
	)

	contacts := NewResourceController[models.Contact](ResourceContact, stores.Contacts, paging, recorder, logger.WithField("resource", ResourceContact))
	contacts.Filters = Filters(
		EqualID("company_id", "company_id"),
		Equal("status", "status"),
	)

	leads := NewResourceController[models.Lead](ResourceLead, stores.Leads, paging, recorder, logger.WithField("resource", ResourceLead))
	leads.Filters = Filters(
		Equal("status", "status"),
		Equal("source", "source"),
		EqualID("company_id", "company_id"),
	)

	deals := NewResourceController[models.Deal](ResourceDeal, stores.Deals, paging, recorder, logger.WithField("resource", ResourceDeal))
	deals.Filters = Filters(
		Equal("stage", "stage"),
		EqualID("company_id", "company_id"),
		Compare("min_amount", "amount", repository.Gte),
		Compare("max_amount", "amount", repository.Lte),
	)

	tasks := NewResourceController[models.Task](ResourceTask, stores.Tasks, paging, recorder, logger.WithField("resource", ResourceTask))
	tasks.Filters = Filters(
		Equal("status", "status"),
		Equal("priority", "priority"),
		Equal("assigned_to", "assigned_to"),
		TaskDueFilter(now),
	)
	tasks.Prepare = func(_ *fiber.Ctx, item, existing *models.Task) {
		stampCompletion(item, existing, now())
	}

	return &CRMControllers{
		Companies: companies,
		Contacts:  contacts,
		Leads:     leads,
		Deals:     deals,
		Tasks:     tasks,
	}
}

// TaskDueFilter handles overdue_only and due_today.
func TaskDueFilter(now func() time.Time) FilterFunc {
	return func(c *fiber.Ctx, q *repository.ListQuery) error {
		t := now()
		if flag(c, "overdue_only") {
			q.Where("due_date", repository.Lt, t)
			q.Where("status", repository.Ne, TaskCompleted)
		}
		if flag(c, "due_today") {
			start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
			q.Where("due_date", repository.Gte, start)
			q.Where("due_date", repository.Lt, start.Add(24*time.Hour))
		}
		return nil
	}
}

// stampCompletion keeps completed_at in step with the status.
func stampCompletion(item, existing *models.Task, now time.Time) {
	if item.Status != TaskCompleted {
		item.CompletedAt = nil
		return
	}
	if item.CompletedAt != nil {
		return
	}
	if existing != nil && existing.CompletedAt != nil {
		item.CompletedAt = existing.CompletedAt
		return
	}
	item.CompletedAt = &now
}

// Resource names used in routes and the activity log.
const (
	ResourceCompany   = "company"
	ResourceContact   = "contact"
	ResourceLead      = "lead"
	ResourceDeal      = "deal"
	ResourceTask      = "task"
	ResourceCandidate = "candidate"
	ResourceBatch     = "batch"
	ResourceTicket    = "support_ticket"
	ResourceField     = "field_schema"
	ResourceSetting   = "system_setting"

	TaskCompleted = "completed"
)
