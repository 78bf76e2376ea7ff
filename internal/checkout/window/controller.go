package window

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukkanhq/dukkan-backend/pkg/logger"
)

// ExpireFunc runs when a window expires without being claimed.
type ExpireFunc func(ctx context.Context, orderID uuid.UUID)

type entry struct {
	timer *time.Timer
}

// Controller tracks in-process cancellation windows. Each armed window runs one
// timer; the first of cancel, early finalize, or expiry claims the window and
// the competing action becomes a no-op. The database columns remain the source
// of truth across process restarts; this controller only provides the prompt
// in-process expiry. The cron sweep covers windows whose timer died with the
// process.
type Controller struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
	closed  bool
	logg    *logger.Logger
}

// NewController builds an empty window controller.
func NewController(logg *logger.Logger) *Controller {
	return &Controller{
		entries: make(map[uuid.UUID]*entry),
		logg:    logg,
	}
}

// Arm starts the grace-period timer for a freshly placed order. When the timer
// fires unclaimed, onExpire runs on a background context.
func (c *Controller) Arm(orderID uuid.UUID, duration time.Duration, onExpire ExpireFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if _, armed := c.entries[orderID]; armed {
		return
	}

	e := &entry{}
	e.timer = time.AfterFunc(duration, func() {
		if !c.Claim(orderID) {
			return
		}
		ctx := context.Background()
		if c.logg != nil {
			ctx = c.logg.WithOrderID(ctx, orderID.String())
			c.logg.Info(ctx, "cancellation window expired")
		}
		onExpire(ctx, orderID)
	})
	c.entries[orderID] = e
}

// Claim resolves the window. It reports true for exactly one caller per armed
// order; every later caller gets false and must treat its action as already
// settled.
func (c *Controller) Claim(orderID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, armed := c.entries[orderID]
	if !armed {
		return false
	}
	delete(c.entries, orderID)
	e.timer.Stop()
	return true
}

// Shutdown stops every pending timer. Armed windows are left to the sweep job.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, e := range c.entries {
		e.timer.Stop()
		delete(c.entries, id)
	}
}
