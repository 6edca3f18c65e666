package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"talentdesk/activity"
	"talentdesk/models"
	"talentdesk/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testUserID uint = 7

var testCreatedAt = time.Date(2026, 1, 5, 8, 30, 0, 0, time.UTC)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

var testPaging = Paging{Default: 10, Max: 50}

// memStore is an in-memory repository.Store keyed by public id.
type memStore[T any, P entity[T]] struct {
	mu      sync.Mutex
	items   []T
	next    uint
	queries []repository.ListQuery
}

func newMemStore[T any, P entity[T]](items ...T) *memStore[T, P] {
	s := &memStore[T, P]{}
	for i := range items {
		_ = s.Create(context.Background(), &items[i])
	}
	return s
}

func (s *memStore[T, P]) List(_ context.Context, q repository.ListQuery) ([]T, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	total := len(s.items)
	start := q.Skip
	if start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	return append([]T{}, s.items[start:end]...), int64(total), nil
}

func (s *memStore[T, P]) lastQuery() repository.ListQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[len(s.queries)-1]
}

func (s *memStore[T, P]) Get(_ context.Context, publicID string) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if P(&s.items[i]).Header().PublicID == publicID {
			cp := s.items[i]
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("record: %w", repository.ErrNotFound)
}

func (s *memStore[T, P]) Create(_ context.Context, item *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	h := P(item).Header()
	h.ID = s.next
	if h.PublicID == "" {
		h.PublicID = fmt.Sprintf("pid-%d", s.next)
	}
	h.CreatedAt = testCreatedAt
	h.UpdatedAt = testCreatedAt
	s.items = append(s.items, *item)
	return nil
}

func (s *memStore[T, P]) Update(_ context.Context, item *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := P(item).Header().ID
	for i := range s.items {
		if P(&s.items[i]).Header().ID == id {
			s.items[i] = *item
			return nil
		}
	}
	return fmt.Errorf("record: %w", repository.ErrNotFound)
}

func (s *memStore[T, P]) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if P(&s.items[i]).Header().PublicID == publicID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("record: %w", repository.ErrNotFound)
}

func (s *memStore[T, P]) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// activityStore keeps the audit trail in memory.
type activityStore struct {
	mu    sync.Mutex
	logs  []models.ActivityLog
	query repository.ListQuery
}

func (s *activityStore) Append(_ context.Context, e *models.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uint(len(s.logs) + 1)
	e.CreatedAt = testCreatedAt
	s.logs = append(s.logs, *e)
	return nil
}

func (s *activityStore) List(_ context.Context, q repository.ListQuery) ([]models.ActivityLog, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
	return append([]models.ActivityLog{}, s.logs...), int64(len(s.logs)), nil
}

func (s *activityStore) Get(_ context.Context, id uint) (*models.ActivityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.logs {
		if s.logs[i].ID == id {
			cp := s.logs[i]
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("activity log: %w", repository.ErrNotFound)
}

func (s *activityStore) last(t *testing.T) (models.ActivityLog, map[string]any) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.logs)
	entry := s.logs[len(s.logs)-1]
	meta := map[string]any{}
	if len(entry.Metadata) > 0 {
		require.NoError(t, json.Unmarshal(entry.Metadata, &meta))
	}
	return entry, meta
}

func newRecorder(logs *activityStore) *activity.Recorder {
	return activity.NewRecorder(logs, nil, quietLogger())
}

// fieldStore is an in-memory FieldStore.
type fieldStore struct {
	schemas []models.FieldSchema
}

func (s *fieldStore) ListByEntity(_ context.Context, entityType string) ([]models.FieldSchema, error) {
	out := []models.FieldSchema{}
	for _, f := range s.schemas {
		if f.EntityType == entityType {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fieldStore) Get(_ context.Context, id uint) (*models.FieldSchema, error) {
	for i := range s.schemas {
		if s.schemas[i].ID == id {
			cp := s.schemas[i]
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("field: %w", repository.ErrNotFound)
}

func (s *fieldStore) Create(_ context.Context, f *models.FieldSchema) error {
	for _, existing := range s.schemas {
		if existing.EntityType == f.EntityType && existing.Name == f.Name {
			return fmt.Errorf("field %q: %w", f.Name, repository.ErrConflict)
		}
	}
	f.ID = uint(len(s.schemas) + 1)
	s.schemas = append(s.schemas, *f)
	return nil
}

func (s *fieldStore) Update(_ context.Context, f *models.FieldSchema) error {
	for i := range s.schemas {
		if s.schemas[i].ID == f.ID {
			s.schemas[i] = *f
			return nil
		}
	}
	return fmt.Errorf("field: %w", repository.ErrNotFound)
}

func (s *fieldStore) Delete(_ context.Context, id uint) error {
	for i := range s.schemas {
		if s.schemas[i].ID == id {
			s.schemas = append(s.schemas[:i], s.schemas[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("field: %w", repository.ErrNotFound)
}

// candidateStore adds the workflow tables to a memStore.
type candidateStore struct {
	*memStore[models.Candidate, *models.Candidate]
	screenings  map[uint]models.CandidateScreening
	counselings map[uint]models.CandidateCounseling
	allocateErr error
	allocated   []string
}

func newCandidateStore(items ...models.Candidate) *candidateStore {
	return &candidateStore{
		memStore:    newMemStore[models.Candidate](items...),
		screenings:  map[uint]models.CandidateScreening{},
		counselings: map[uint]models.CandidateCounseling{},
	}
}

func (s *candidateStore) Screening(_ context.Context, id uint) (*models.CandidateScreening, error) {
	sc, ok := s.screenings[id]
	if !ok {
		sc = models.CandidateScreening{CandidateID: id}
	}
	return &sc, nil
}

func (s *candidateStore) SaveScreening(_ context.Context, sc *models.CandidateScreening) error {
	if sc.ID == 0 {
		sc.ID = uint(len(s.screenings) + 1)
	}
	s.screenings[sc.CandidateID] = *sc
	return nil
}

func (s *candidateStore) Counseling(_ context.Context, id uint) (*models.CandidateCounseling, error) {
	cc, ok := s.counselings[id]
	if !ok {
		cc = models.CandidateCounseling{CandidateID: id}
	}
	return &cc, nil
}

func (s *candidateStore) SaveCounseling(_ context.Context, cc *models.CandidateCounseling) error {
	if cc.ID == 0 {
		cc.ID = uint(len(s.counselings) + 1)
	}
	s.counselings[cc.CandidateID] = *cc
	return nil
}

func (s *candidateStore) Allocate(_ context.Context, batchID string, ids []string) (*models.TrainingBatch, int, error) {
	if s.allocateErr != nil {
		return nil, 0, s.allocateErr
	}
	s.allocated = ids
	batch := &models.TrainingBatch{Name: "Spring", Code: "SPR-26"}
	batch.PublicID = batchID
	return batch, len(ids), nil
}

// newApp mounts routes under /api/v1 behind a fake authenticated caller.
func newApp(mount func(api fiber.Router)) *fiber.App {
	app := fiber.New()
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Locals("userID", testUserID)
		return c.Next()
	})
	mount(api)
	return app
}

// call sends a JSON request and decodes the JSON response.
func call(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "data is not an object: %v", body)
	return d
}
