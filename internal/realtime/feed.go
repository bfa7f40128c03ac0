package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
	// OpResync is emitted after the feed reconnects and notifications may
	// have been lost.
	OpResync Op = "RESYNC"
)

type Change struct {
	Op Op        `json:"op"`
	ID uuid.UUID `json:"id"`
}

// ChangeFeed delivers change notifications for the reports table.
type ChangeFeed interface {
	Subscribe(handler func(Change)) (unsubscribe func())
}

func parseChange(payload string) (Change, error) {
	var change Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return Change{}, err
	}
	return change, nil
}

// subscribers is the handler registry shared by feed implementations.
type subscribers struct {
	mu       sync.Mutex
	next     uint64
	handlers map[uint64]func(Change)
}

func (s *subscribers) Subscribe(handler func(Change)) func() {
	s.mu.Lock()
	if s.handlers == nil {
		s.handlers = make(map[uint64]func(Change))
	}
	id := s.next
	s.next++
	s.handlers[id] = handler
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.handlers, id)
			s.mu.Unlock()
		})
	}
}

func (s *subscribers) publish(change Change) {
	s.mu.Lock()
	handlers := make([]func(Change), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(change)
	}
}

func (s *subscribers) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

// LocalFeed is an in-process feed. Services that write reports publish to it
// directly when no database listener is available.
type LocalFeed struct {
	subs subscribers
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{}
}

func (f *LocalFeed) Subscribe(handler func(Change)) func() {
	return f.subs.Subscribe(handler)
}

func (f *LocalFeed) Publish(change Change) {
	f.subs.publish(change)
}
