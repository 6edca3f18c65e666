package repository

import (
	"context"
	"fmt"
	"time"

	"talentdesk/models"

	"gorm.io/gorm"
)

// DashboardStats backs the dashboard cards.
type DashboardStats struct {
	Companies           int64            `json:"companies"`
	Contacts            int64            `json:"contacts"`
	Leads               int64            `json:"leads"`
	OpenDeals           int64            `json:"open_deals"`
	OpenDealAmount      float64          `json:"open_deal_amount"`
	Tasks               int64            `json:"tasks"`
	OverdueTasks        int64            `json:"overdue_tasks"`
	Candidates          int64            `json:"candidates"`
	CandidatesByStatus  map[string]int64 `json:"candidates_by_status"`
	OpenSupportTickets  int64            `json:"open_support_tickets"`
	ActivityLast24Hours int64            `json:"activity_last_24_hours"`
}

// StatsRepository runs the aggregate queries for the dashboard and the
// health probe.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Dashboard(ctx context.Context, now time.Time) (*DashboardStats, error) {
	db := r.db.WithContext(ctx)
	stats := &DashboardStats{CandidatesByStatus: map[string]int64{}}

	counts := []struct {
		model any
		dest  *int64
		where string
		args  []any
	}{
		{&models.Company{}, &stats.Companies, "", nil},
		{&models.Contact{}, &stats.Contacts, "", nil},
		{&models.Lead{}, &stats.Leads, "", nil},
		{&models.Deal{}, &stats.OpenDeals, "stage NOT IN ?", []any{[]string{"won", "lost"}}},
		{&models.Task{}, &stats.Tasks, "", nil},
		{&models.Task{}, &stats.OverdueTasks, "due_date < ? AND status <> ?", []any{now, "completed"}},
		{&models.Candidate{}, &stats.Candidates, "", nil},
		{&models.SupportTicket{}, &stats.OpenSupportTickets, "status IN ?", []any{[]string{"open", "in_progress"}}},
		{&models.ActivityLog{}, &stats.ActivityLast24Hours, "created_at >= ?", []any{now.Add(-24 * time.Hour)}},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count dashboard stats: %w", err)
		}
	}

	var amount struct{ Total float64 }
	if err := db.Model(&models.Deal{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("stage NOT IN ?", []string{"won", "lost"}).
		Scan(&amount).Error; err != nil {
		return nil, fmt.Errorf("failed to sum open deals: %w", err)
	}
	stats.OpenDealAmount = amount.Total

	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Candidate{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to group candidates: %w", err)
	}
	for _, row := range rows {
		stats.CandidatesByStatus[row.Status] = row.Count
	}
	return stats, nil
}

// Ping measures a round trip to the database.
func (r *StatsRepository) Ping(ctx context.Context) (time.Duration, error) {
	sqlDB, err := r.db.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get DB instance: %w", err)
	}
	start := time.Now()
	if err := sqlDB.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("database ping failed: %w", err)
	}
	return time.Since(start), nil
}
