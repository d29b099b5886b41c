package component

import (
	"fmt"
	"sync"

	"github.com/bnema/webpage/internal/application/port"
	"github.com/bnema/webpage/internal/domain/entity"
	"github.com/bnema/webpage/internal/ui/mainloop"
)

const resetHeightKey = "reset-height"

// TabContainerCallbacks are the observable signals of a TabContainer.
type TabContainerCallbacks struct {
	OnHeightChanged func(height int)
	OnActiveChanged func(id entity.TabID)
}

// TabContainer owns the pages of a window and lays them out vertically
// below the toolbar. Pages hold only a weak reference back to it.
type TabContainer struct {
	coalescer *mainloop.Coalescer

	mu            sync.Mutex
	pages         map[entity.TabID]*WebPage
	order         []entity.TabID
	nextID        entity.TabID
	active        entity.TabID
	windowHeight  int
	toolbarHeight int
	contentHeight int
	callbacks     TabContainerCallbacks
	closed        bool
}

// NewTabContainer creates a container. Height recomputations are coalesced
// onto dispatcher.
func NewTabContainer(dispatcher port.Dispatcher, windowHeight, toolbarHeight int) *TabContainer {
	c := &TabContainer{
		coalescer:     mainloop.NewCoalescer(dispatcher),
		pages:         make(map[entity.TabID]*WebPage),
		windowHeight:  windowHeight,
		toolbarHeight: toolbarHeight,
	}
	c.contentHeight = c.computeHeightLocked()
	return c
}

// SetCallbacks replaces the container signal handlers.
func (c *TabContainer) SetCallbacks(callbacks TabContainerCallbacks) {
	c.mu.Lock()
	c.callbacks = callbacks
	c.mu.Unlock()
}

// AddPage assigns the next tab id to page and adopts it. The first page
// becomes active.
func (c *TabContainer) AddPage(page *WebPage) (entity.TabID, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, fmt.Errorf("tab container closed")
	}
	c.nextID++
	id := c.nextID
	c.pages[id] = page
	c.order = append(c.order, id)
	becameActive := c.active == 0
	if becameActive {
		c.active = id
	}
	cb := c.callbacks.OnActiveChanged
	c.mu.Unlock()

	page.SetTabID(id)
	page.SetContainer(c)

	if becameActive {
		c.ResetHeight()
		if cb != nil {
			cb(id)
		}
	}
	return id, nil
}

// ReserveTabIDs makes the next assigned id greater than last. Ids never
// move backwards.
func (c *TabContainer) ReserveTabIDs(last entity.TabID) {
	c.mu.Lock()
	c.nextID = max(c.nextID, last)
	c.mu.Unlock()
}

// Page returns the page for id, or nil.
func (c *TabContainer) Page(id entity.TabID) *WebPage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pages[id]
}

// Pages returns the pages in insertion order.
func (c *TabContainer) Pages() []*WebPage {
	c.mu.Lock()
	defer c.mu.Unlock()
	pages := make([]*WebPage, 0, len(c.order))
	for _, id := range c.order {
		pages = append(pages, c.pages[id])
	}
	return pages
}

// ActiveTab returns the active tab id (zero when empty).
func (c *TabContainer) ActiveTab() entity.TabID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Activate makes id the active tab.
func (c *TabContainer) Activate(id entity.TabID) error {
	c.mu.Lock()
	if _, ok := c.pages[id]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("tab %d not found", id)
	}
	if c.active == id {
		c.mu.Unlock()
		return nil
	}
	c.active = id
	cb := c.callbacks.OnActiveChanged
	c.mu.Unlock()

	c.ResetHeight()
	if cb != nil {
		cb(id)
	}
	return nil
}

// SetWindowHeight updates the window height and relayouts.
func (c *TabContainer) SetWindowHeight(height int) {
	c.mu.Lock()
	c.windowHeight = height
	c.mu.Unlock()
	c.ResetHeight()
}

// ContentHeight returns the last computed content height.
func (c *TabContainer) ContentHeight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contentHeight
}

// ResetHeight schedules a recomputation of the content height. Bursts of
// requests collapse into a single layout pass.
func (c *TabContainer) ResetHeight() {
	c.coalescer.Post(resetHeightKey, c.recomputeHeight)
}

func (c *TabContainer) recomputeHeight() {
	c.mu.Lock()
	height := c.computeHeightLocked()
	if height == c.contentHeight {
		c.mu.Unlock()
		return
	}
	c.contentHeight = height
	cb := c.callbacks.OnHeightChanged
	c.mu.Unlock()

	if cb != nil {
		cb(height)
	}
}

// computeHeightLocked must be called with c.mu held. It reads the active
// page state, which takes the page lock; pages never call back into the
// container while holding their own lock.
func (c *TabContainer) computeHeightLocked() int {
	if page := c.pages[c.active]; page != nil && page.Fullscreen() {
		return c.windowHeight
	}
	return max(c.windowHeight-c.toolbarHeight, 0)
}

// Close destroys the page for id. The next page in order becomes active.
func (c *TabContainer) Close(id entity.TabID) error {
	c.mu.Lock()
	page, ok := c.pages[id]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("tab %d not found", id)
	}
	delete(c.pages, id)
	idx := 0
	for i, other := range c.order {
		if other == id {
			idx = i
			break
		}
	}
	c.order = append(c.order[:idx], c.order[idx+1:]...)

	activeChanged := false
	if c.active == id {
		c.active = 0
		if len(c.order) > 0 {
			c.active = c.order[min(idx, len(c.order)-1)]
		}
		activeChanged = true
	}
	active := c.active
	cb := c.callbacks.OnActiveChanged
	c.mu.Unlock()

	page.Destroy()

	if activeChanged {
		c.ResetHeight()
		if cb != nil {
			cb(active)
		}
	}
	return nil
}

// CloseAll destroys every page and stops scheduling layout work.
func (c *TabContainer) CloseAll() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	pages := make([]*WebPage, 0, len(c.order))
	for _, id := range c.order {
		pages = append(pages, c.pages[id])
	}
	c.pages = make(map[entity.TabID]*WebPage)
	c.order = nil
	c.active = 0
	c.mu.Unlock()

	c.coalescer.Destroy()
	for _, page := range pages {
		page.Destroy()
	}
}
