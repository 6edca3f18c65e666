package repository

import (
	"talentdesk/models"

	"gorm.io/gorm"
)

// Repositories groups every store the HTTP layer needs.
type Repositories struct {
	Companies  *GormStore[models.Company]
	Contacts   *GormStore[models.Contact]
	Leads      *GormStore[models.Lead]
	Deals      *GormStore[models.Deal]
	Tasks      *GormStore[models.Task]
	Batches    *GormStore[models.TrainingBatch]
	Tickets    *GormStore[models.SupportTicket]
	Candidates *CandidateRepository
	Fields     *FieldRepository
	Activity   *ActivityRepository
	Settings   *SettingRepository
	Stats      *StatsRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Companies: NewGormStore[models.Company](db, StoreConfig{
			Name:          "company",
			SearchColumns: []string{"name", "industry", "email", "website"},
			Sortable: map[string]string{
				"name":       "name",
				"industry":   "industry",
				"status":     "status",
				"created_at": "created_at",
				"updated_at": "updated_at",
			},
		}),
		Contacts: NewGormStore[models.Contact](db, StoreConfig{
			Name:          "contact",
			SearchColumns: []string{"first_name", "last_name", "email", "phone"},
			Sortable: map[string]string{
				"first_name": "first_name",
				"last_name":  "last_name",
				"email":      "email",
				"status":     "status",
				"created_at": "created_at",
			},
			Preloads: []string{"Company"},
		}),
		Leads: NewGormStore[models.Lead](db, StoreConfig{
			Name:          "lead",
			SearchColumns: []string{"title", "source", "owner"},
			Sortable: map[string]string{
				"title":      "title",
				"status":     "status",
				"value":      "value",
				"created_at": "created_at",
			},
		}),
		Deals: NewGormStore[models.Deal](db, StoreConfig{
			Name:          "deal",
			SearchColumns: []string{"title"},
			Sortable: map[string]string{
				"title":               "title",
				"stage":               "stage",
				"amount":              "amount",
				"expected_close_date": "expected_close_date",
				"created_at":          "created_at",
			},
		}),
		Tasks: NewGormStore[models.Task](db, StoreConfig{
			Name:          "task",
			SearchColumns: []string{"title", "description", "assigned_to"},
			Sortable: map[string]string{
				"title":      "title",
				"status":     "status",
				"priority":   "priority",
				"due_date":   "due_date",
				"created_at": "created_at",
			},
		}),
		Batches: NewGormStore[models.TrainingBatch](db, StoreConfig{
			Name:          "batch",
			SearchColumns: []string{"name", "code"},
			Sortable: map[string]string{
				"name":       "name",
				"code":       "code",
				"start_date": "start_date",
				"created_at": "created_at",
			},
		}),
		Tickets: NewGormStore[models.SupportTicket](db, StoreConfig{
			Name:          "ticket",
			SearchColumns: []string{"subject", "description"},
			Sortable: map[string]string{
				"subject":    "subject",
				"priority":   "priority",
				"status":     "status",
				"created_at": "created_at",
			},
		}),
		Candidates: NewCandidateRepository(db),
		Fields:     NewFieldRepository(db),
		Activity:   NewActivityRepository(db),
		Settings:   NewSettingRepository(db),
		Stats:      NewStatsRepository(db),
	}
}
