package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"nrw-report-service/internal/events"
	"nrw-report-service/internal/model"
)

var testLog = zerolog.New(io.Discard)

type fakeRepo struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]model.Report
	clock   time.Time
	listErr error
	insErr  error
	lists   int
}

func newFakeRepo(rows ...model.Report) *fakeRepo {
	r := &fakeRepo{rows: make(map[uuid.UUID]model.Report), clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	for _, row := range rows {
		r.rows[row.ID] = row
	}
	return r
}

func (r *fakeRepo) List(ctx context.Context) ([]model.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]model.Report, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (r *fakeRepo) Create(ctx context.Context, report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insErr != nil {
		return r.insErr
	}
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	r.clock = r.clock.Add(time.Minute)
	report.CreatedAt = r.clock
	r.rows[report.ID] = *report
	return nil
}

func (r *fakeRepo) UpdateResolved(ctx context.Context, id uuid.UUID, resolved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.Resolved = resolved
	r.rows[id] = row
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
	removeErr error
	removed   []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(ctx context.Context, key, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) PublicURL(key string) string {
	return "http://storage.test/leak-images/" + key
}

func (s *fakeStorage) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, key)
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) EnsureBucket(ctx context.Context) error { return nil }

type publishedEvent struct {
	key   string
	event events.ReportEvent
}

type fakePublisher struct {
	events chan publishedEvent
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{events: make(chan publishedEvent, 16)}
}

func (p *fakePublisher) Publish(ctx context.Context, key string, event events.ReportEvent) error {
	p.events <- publishedEvent{key: key, event: event}
	return nil
}

func (p *fakePublisher) Close() {}

func (p *fakePublisher) next(timeout time.Duration) (publishedEvent, error) {
	select {
	case e := <-p.events:
		return e, nil
	case <-time.After(timeout):
		return publishedEvent{}, errors.New("no event published")
	}
}

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeRefresher) Refresh(ctx context.Context) ([]model.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil, nil
}

func ptr[T any](v T) *T { return &v }

func report(id string, created time.Time, resolved bool) model.Report {
	return model.Report{ID: uuid.MustParse(id), CreatedAt: created, Resolved: resolved}
}
