package kvstore

import (
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

// Embedded serves the Redis store from an in-process miniredis server. It
// backs redis-less runs and tests.
type Embedded struct {
	Redis
	Server *miniredis.Miniredis
	done   chan struct{}
}

const expireTick = time.Second

// NewEmbedded starts the server. miniredis only expires keys when its clock
// moves, so the wall clock is fed to it every second.
func NewEmbedded() (*Embedded, error) {
	return newEmbedded(expireTick)
}

func newEmbedded(tick time.Duration) (*Embedded, error) {
	srv, err := miniredis.Run()
	if err != nil {
		return nil, fmt.Errorf("starting embedded redis: %w", err)
	}

	e := &Embedded{
		Redis:  Redis{client: redis.NewClient(&redis.Options{Addr: srv.Addr()})},
		Server: srv,
		done:   make(chan struct{}),
	}
	go e.advanceClock(tick)
	return e, nil
}

func (e *Embedded) advanceClock(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-e.done:
			return
		case now := <-ticker.C:
			e.Server.FastForward(now.Sub(last))
			last = now
		}
	}
}

func (e *Embedded) Close() error {
	close(e.done)
	err := e.Redis.Close()
	e.Server.Close()
	return err
}
