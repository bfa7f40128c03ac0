package realtime

import (
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

// PostgresFeed listens on the channel the reports trigger notifies.
type PostgresFeed struct {
	listener *pq.Listener
	channel  string
	log      zerolog.Logger
	subs     subscribers

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewPostgresFeed(dsn, channel string, log zerolog.Logger) (*PostgresFeed, error) {
	listener := pq.NewListener(dsn, minReconnectInterval, maxReconnectInterval, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("change feed listener event")
		}
	})
	if err := listener.Listen(channel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("listen %s: %w", channel, err)
	}

	feed := &PostgresFeed{
		listener: listener,
		channel:  channel,
		log:      log,
		done:     make(chan struct{}),
	}
	feed.wg.Add(1)
	go feed.run()
	return feed, nil
}

func (f *PostgresFeed) Subscribe(handler func(Change)) func() {
	return f.subs.Subscribe(handler)
}

func (f *PostgresFeed) run() {
	defer f.wg.Done()
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case n := <-f.listener.Notify:
			if n == nil {
				// the listener reconnected; anything sent meanwhile is lost
				f.subs.publish(Change{Op: OpResync})
				continue
			}
			change, err := parseChange(n.Extra)
			if err != nil {
				f.log.Warn().Err(err).Str("payload", n.Extra).Msg("malformed change notification")
				continue
			}
			f.subs.publish(change)
		case <-ticker.C:
			go func() {
				if err := f.listener.Ping(); err != nil {
					f.log.Warn().Err(err).Msg("change feed ping failed")
				}
			}()
		}
	}
}

func (f *PostgresFeed) Close() error {
	var err error
	f.closeOnce.Do(func() {
		close(f.done)
		f.wg.Wait()
		err = f.listener.Close()
	})
	return err
}
