package mainloop

import (
	"sync"

	"github.com/bnema/webpage/internal/application/port"
)

// Coalescer merges bursts of same-key control-thread tasks.
// Only the latest callback posted for a key runs.
type Coalescer struct {
	mu        sync.Mutex
	pending   map[string]func()
	target    port.Dispatcher
	destroyed bool
}

// NewCoalescer creates a coalescer posting onto target.
func NewCoalescer(target port.Dispatcher) *Coalescer {
	if target == nil {
		panic("mainloop.NewCoalescer: dispatcher cannot be nil")
	}

	return &Coalescer{
		pending: make(map[string]func()),
		target:  target,
	}
}

// Post schedules fn under key. When a callback for key is already pending,
// fn replaces it and nothing new is scheduled.
func (c *Coalescer) Post(key string, fn func()) {
	if fn == nil || key == "" {
		return
	}

	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	_, scheduled := c.pending[key]
	c.pending[key] = fn
	c.mu.Unlock()

	if scheduled {
		return
	}

	c.target.Dispatch(func() {
		c.mu.Lock()
		if c.destroyed {
			c.mu.Unlock()
			return
		}
		run := c.pending[key]
		delete(c.pending, key)
		c.mu.Unlock()

		if run != nil {
			run()
		}
	})
}

// Destroy drops pending work; later posts are ignored.
func (c *Coalescer) Destroy() {
	c.mu.Lock()
	c.destroyed = true
	c.pending = map[string]func(){}
	c.mu.Unlock()
}
