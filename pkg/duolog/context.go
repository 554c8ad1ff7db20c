package duolog

import (
	"errors"
	"sync"
)

// Disposable is anything with teardown. Both sink implementations and the
// Logger itself satisfy it.
type Disposable interface {
	Dispose() error
}

// Context is the process-scoped disposal registry: the stand-in for a
// host's resource-lifecycle mechanism. Resources registered during setup
// are released together, in reverse registration order.
type Context struct {
	mu        sync.Mutex
	resources []Disposable
}

// NewContext creates an empty disposal registry.
func NewContext() *Context {
	return &Context{}
}

// Track registers a resource for disposal.
func (c *Context) Track(d Disposable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = append(c.resources, d)
}

// Dispose releases every tracked resource in reverse registration order,
// collecting errors. Safe to call more than once; resources are released
// at most once.
func (c *Context) Dispose() error {
	c.mu.Lock()
	resources := c.resources
	c.resources = nil
	c.mu.Unlock()

	var errs []error
	for i := len(resources) - 1; i >= 0; i-- {
		if err := resources[i].Dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
