package repository

import (
	"context"
	"errors"
	"fmt"

	"talentdesk/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CandidateRepository adds the recruitment workflow on top of the
// generic candidate store.
type CandidateRepository struct {
	*GormStore[models.Candidate]
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{
		GormStore: NewGormStore[models.Candidate](db, StoreConfig{
			Name:          "candidate",
			SearchColumns: []string{"first_name", "last_name", "email", "phone"},
			Sortable: map[string]string{
				"first_name": "first_name",
				"last_name":  "last_name",
				"email":      "email",
				"status":     "status",
				"created_at": "created_at",
			},
			Preloads: []string{"Batch"},
		}),
		db: db,
	}
}

// Screening returns the screening record, or an empty one when none has
// been saved yet.
func (r *CandidateRepository) Screening(ctx context.Context, candidateID uint) (*models.CandidateScreening, error) {
	s := models.CandidateScreening{CandidateID: candidateID}
	err := r.db.WithContext(ctx).Where("candidate_id = ?", candidateID).First(&s).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch screening: %w", err)
	}
	return &s, nil
}

func (r *CandidateRepository) SaveScreening(ctx context.Context, s *models.CandidateScreening) error {
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		return fmt.Errorf("failed to save screening: %w", err)
	}
	return nil
}

// Counseling returns the counseling record, or an empty one.
func (r *CandidateRepository) Counseling(ctx context.Context, candidateID uint) (*models.CandidateCounseling, error) {
	c := models.CandidateCounseling{CandidateID: candidateID}
	err := r.db.WithContext(ctx).Where("candidate_id = ?", candidateID).First(&c).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch counseling: %w", err)
	}
	return &c, nil
}

func (r *CandidateRepository) SaveCounseling(ctx context.Context, c *models.CandidateCounseling) error {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return fmt.Errorf("failed to save counseling: %w", err)
	}
	return nil
}

// Allocate assigns every candidate to the batch in one transaction.
// Either all candidates move or none do.
func (r *CandidateRepository) Allocate(ctx context.Context, batchPublicID string, candidateIDs []string) (*models.TrainingBatch, int, error) {
	ids := uniqueStrings(candidateIDs)
	if len(ids) == 0 {
		return nil, 0, fmt.Errorf("no candidates given: %w", ErrConflict)
	}

	var batch models.TrainingBatch
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row lock serialises concurrent allocations to one batch so
		// the seat count below cannot go stale before the update.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("public_id = ?", batchPublicID).First(&batch).Error; err != nil {
			return notFound("batch", err)
		}

		var found int64
		if err := tx.Model(&models.Candidate{}).Where("public_id IN ?", ids).Count(&found).Error; err != nil {
			return fmt.Errorf("failed to fetch candidates: %w", err)
		}
		if int(found) != len(ids) {
			return fmt.Errorf("%d of %d candidates: %w", len(ids)-int(found), len(ids), ErrNotFound)
		}

		if batch.Capacity > 0 {
			var seated int64
			if err := tx.Model(&models.Candidate{}).
				Where("batch_id = ? AND public_id NOT IN ?", batch.ID, ids).
				Count(&seated).Error; err != nil {
				return fmt.Errorf("failed to count batch seats: %w", err)
			}
			if int(seated)+len(ids) > batch.Capacity {
				return fmt.Errorf("batch %s has %d free seats, %d requested: %w",
					batch.Code, batch.Capacity-int(seated), len(ids), ErrConflict)
			}
		}

		if err := tx.Model(&models.Candidate{}).
			Where("public_id IN ?", ids).
			Updates(map[string]any{"batch_id": batch.ID, "status": models.CandidateStatusAllocated}).Error; err != nil {
			return fmt.Errorf("failed to allocate candidates: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return &batch, len(ids), nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
