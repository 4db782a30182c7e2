package vscroll

import "github.com/hashicorp/golang-lru/v2/simplelru"

// Destroyer is implemented by item views which hold resources that must be
// released once the view is discarded.
type Destroyer interface {
	Destroy()
}

type cachedView[T any] struct {
	template string
	view     ItemView[T]
}

// viewCache keeps detached item views for reuse. Once it is full the least
// recently detached view is destroyed.
type viewCache[T any] struct {
	lru    *simplelru.LRU[uint64, cachedView[T]]
	nextID uint64
	// destroyed counts the views destroyed by the cache.
	destroyed int
	// taking suppresses destruction while a view is taken out for reuse.
	taking bool
}

// newViewCache returns a cache of the given size. A size of zero disables
// caching.
func newViewCache[T any](size int) (*viewCache[T], error) {
	c := &viewCache[T]{}
	if size == 0 {
		return c, nil
	}
	lru, err := simplelru.NewLRU[uint64, cachedView[T]](size, func(_ uint64, cached cachedView[T]) {
		if !c.taking {
			c.destroyed++
			destroyView(cached.view)
		}
	})
	if err != nil {
		return nil, err
	}
	c.lru = lru
	return c, nil
}

// put stores a detached view. It reports whether the view was cached; views
// which were not cached have been destroyed.
func (c *viewCache[T]) put(template string, view ItemView[T]) bool {
	if c.lru == nil {
		c.destroyed++
		destroyView(view)
		return false
	}
	c.nextID++
	c.lru.Add(c.nextID, cachedView[T]{template: template, view: view})
	return true
}

// take removes and returns the most recently detached view of template.
func (c *viewCache[T]) take(template string) (ItemView[T], bool) {
	if c.lru == nil {
		return nil, false
	}
	keys := c.lru.Keys()
	for i := len(keys) - 1; i >= 0; i-- {
		cached, ok := c.lru.Peek(keys[i])
		if !ok || cached.template != template {
			continue
		}
		c.taking = true
		c.lru.Remove(keys[i])
		c.taking = false
		return cached.view, true
	}
	return nil, false
}

func (c *viewCache[T]) len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

// purge destroys all cached views.
func (c *viewCache[T]) purge() {
	if c.lru != nil {
		c.lru.Purge()
	}
}

func destroyView(view any) {
	if d, ok := view.(Destroyer); ok {
		d.Destroy()
	}
}
