package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"VibeWake/logger"
	"VibeWake/model"

	"github.com/redis/go-redis/v9"
)

// SessionCache mirrors the session into Redis: the latest snapshot under
// SessionKey and every change on SessionChannel. Writes happen on a worker
// goroutine; when it falls behind only the newest snapshot is kept.
type SessionCache struct {
	write func(ctx context.Context, data []byte) error

	mu      sync.Mutex
	latest  []byte
	wake    chan struct{}
	stopped chan struct{}
}

// NewSessionCache writes through client.
func NewSessionCache(client *redis.Client) *SessionCache {
	c := newSessionCache(nil)
	c.write = func(ctx context.Context, data []byte) error {
		pipe := client.TxPipeline()
		pipe.Set(ctx, SessionKey, data, 0)
		pipe.Publish(ctx, SessionChannel, data)
		_, err := pipe.Exec(ctx)
		return err
	}
	return c
}

func newSessionCache(write func(ctx context.Context, data []byte) error) *SessionCache {
	return &SessionCache{
		write:   write,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// SessionChanged queues st for writing. It never blocks.
func (c *SessionCache) SessionChanged(st model.SessionState) {
	data, err := json.Marshal(st)
	if err != nil {
		logger.Warn("Failed to encode session snapshot", logger.ErrorField(err))
		return
	}
	c.mu.Lock()
	c.latest = data
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Run writes queued snapshots until ctx is done, then flushes the last one.
func (c *SessionCache) Run(ctx context.Context) {
	defer close(c.stopped)
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			c.flush(flushCtx)
			cancel()
			return
		case <-c.wake:
			c.flush(ctx)
		}
	}
}

// Done is closed once Run returns.
func (c *SessionCache) Done() <-chan struct{} { return c.stopped }

func (c *SessionCache) flush(ctx context.Context) {
	c.mu.Lock()
	data := c.latest
	c.latest = nil
	c.mu.Unlock()
	if data == nil {
		return
	}
	if err := c.write(ctx, data); err != nil {
		logger.Warn("Failed to mirror session to Redis", logger.ErrorField(err))
	}
}

// LoadSession reads the last mirrored snapshot. It returns (nil, nil) when
// nothing was stored.
func LoadSession(ctx context.Context, client *redis.Client) (*model.SessionState, error) {
	data, err := client.Get(ctx, SessionKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("read session snapshot: %w", err)
	}
	var st model.SessionState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode session snapshot: %w", err)
	}
	return &st, nil
}
