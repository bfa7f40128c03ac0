package service

import "sync"

// SubmissionGuard keeps a form from being submitted twice at once. Forms are
// keyed by the session the browser sends along.
type SubmissionGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewSubmissionGuard() *SubmissionGuard {
	return &SubmissionGuard{inFlight: make(map[string]struct{})}
}

// Acquire reports false when a submission for key is already running. An
// empty key is never guarded.
func (g *SubmissionGuard) Acquire(key string) (release func(), ok bool) {
	if key == "" {
		return func() {}, true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[key]; busy {
		return nil, false
	}
	g.inFlight[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, key)
			g.mu.Unlock()
		})
	}, true
}
