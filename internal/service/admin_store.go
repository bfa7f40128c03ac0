package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nrw-report-service/internal/model"
	"nrw-report-service/internal/realtime"
)

// AdminStore keeps the newest-first report collection the dashboard works
// from. Every change notification triggers a full re-read; notifications that
// arrive while a re-read is pending collapse into it.
type AdminStore struct {
	reports ReportRepository
	feed    realtime.ChangeFeed
	log     zerolog.Logger

	mu        sync.RWMutex
	snapshot  []model.Report
	listeners []func([]model.Report)

	refreshMu sync.Mutex

	trigger     chan struct{}
	unsubscribe func()
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	startOnce   sync.Once
	closeOnce   sync.Once
}

func NewAdminStore(reports ReportRepository, feed realtime.ChangeFeed, log zerolog.Logger) *AdminStore {
	return &AdminStore{
		reports: reports,
		feed:    feed,
		log:     log,
		trigger: make(chan struct{}, 1),
	}
}

// Start subscribes to the change feed and loads the collection. The
// subscription stays up even when the first load fails.
func (s *AdminStore) Start(ctx context.Context) error {
	s.startOnce.Do(func() {
		loopCtx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.unsubscribe = s.feed.Subscribe(s.onChange)
		s.wg.Add(1)
		go s.loop(loopCtx)
	})
	_, err := s.Refresh(ctx)
	return err
}

func (s *AdminStore) onChange(change realtime.Change) {
	s.log.Debug().Str("op", string(change.Op)).Str("report_id", change.ID.String()).Msg("report change received")
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *AdminStore) loop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.trigger:
			if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				s.log.Error().Err(err).Msg("report refresh after change failed")
			}
		}
	}
}

// Refresh re-reads the whole collection, newest first.
func (s *AdminStore) Refresh(ctx context.Context) ([]model.Report, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	reports, err := s.reports.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.mu.Lock()
	s.snapshot = reports
	listeners := append([]func([]model.Report){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(cloneReports(reports))
	}
	return cloneReports(reports), nil
}

// Snapshot returns a copy of the current collection.
func (s *AdminStore) Snapshot() []model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneReports(s.snapshot)
}

func (s *AdminStore) Find(id uuid.UUID) (*model.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.snapshot {
		if s.snapshot[i].ID == id {
			r := s.snapshot[i]
			return &r, true
		}
	}
	return nil, false
}

// OnRefresh registers fn to be called with every refreshed collection.
func (s *AdminStore) OnRefresh(fn func([]model.Report)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Close drops the subscription and stops the refresh loop.
func (s *AdminStore) Close() {
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		if s.cancel != nil {
			s.cancel()
		}
		s.wg.Wait()
	})
}

func cloneReports(reports []model.Report) []model.Report {
	if reports == nil {
		return []model.Report{}
	}
	out := make([]model.Report, len(reports))
	copy(out, reports)
	return out
}
