package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseChange(t *testing.T) {
	id := uuid.New()
	change, err := parseChange(`{"op":"DELETE","id":"` + id.String() + `"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if change.Op != OpDelete || change.ID != id {
		t.Fatalf("unexpected change %+v", change)
	}

	if _, err := parseChange("not json"); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestLocalFeedSubscribeAndUnsubscribe(t *testing.T) {
	feed := NewLocalFeed()
	var got []Change
	unsubscribe := feed.Subscribe(func(c Change) { got = append(got, c) })

	feed.Publish(Change{Op: OpInsert, ID: uuid.New()})
	unsubscribe()
	unsubscribe()
	feed.Publish(Change{Op: OpUpdate, ID: uuid.New()})

	if len(got) != 1 || got[0].Op != OpInsert {
		t.Fatalf("expected only the first change, got %+v", got)
	}
	if feed.subs.count() != 0 {
		t.Fatalf("expected no subscribers left, got %d", feed.subs.count())
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	a := hub.Register()
	b := hub.Register()

	hub.Broadcast(Event{Type: "refresh", Count: 3, Timestamp: time.Now()})

	for _, c := range []*Client{a, b} {
		select {
		case ev := <-c.Events:
			if ev.Count != 3 {
				t.Fatalf("unexpected event %+v", ev)
			}
		default:
			t.Fatal("expected event to be delivered")
		}
	}

	hub.Unregister(a)
	hub.Unregister(a)
	if hub.Clients() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.Clients())
	}
	if _, open := <-a.Events; open {
		t.Fatal("expected unregistered client channel to be closed")
	}
}

func TestHubDropsEventsForSlowClients(t *testing.T) {
	hub := NewHub()
	c := hub.Register()
	for i := 0; i < 20; i++ {
		hub.Broadcast(Event{Type: "refresh", Count: i})
	}
	if len(c.Events) != cap(c.Events) {
		t.Fatalf("expected buffer to be full, got %d", len(c.Events))
	}
}
