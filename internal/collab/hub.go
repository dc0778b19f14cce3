package collab

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arkiform/go-plan-backend/internal/editor/service"
)

// Hub tracks one sync channel per open project.
type Hub struct {
	rdb     *redis.Client
	timeout time.Duration

	mu       sync.Mutex
	channels map[string]*Channel
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		rdb:      rdb,
		timeout:  DefaultCommandTimeout,
		channels: make(map[string]*Channel),
	}
}

// Open returns the channel for a session, starting it on first use.
func (h *Hub) Open(ctx context.Context, sess *service.Session) *Channel {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.channels[sess.ProjectID]; ok {
		return ch
	}
	ch := NewChannel(h.rdb, sess, h.timeout)
	ch.Start(ctx)
	h.channels[sess.ProjectID] = ch
	return ch
}

// Get returns the channel for a project, if open.
func (h *Hub) Get(projectID string) (*Channel, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.channels[projectID]
	return ch, ok
}

// Close tears down the channel for a project.
func (h *Hub) Close(projectID string) {
	h.mu.Lock()
	ch, ok := h.channels[projectID]
	delete(h.channels, projectID)
	h.mu.Unlock()
	if ok {
		ch.Close()
	}
}
