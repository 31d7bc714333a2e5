// Package parallel holds small synchronisation helpers shared by the worker
// goroutines of the reducer.
package parallel

import "sync"

// ErrorCollector records the first non-nil error reported by any number of
// concurrent goroutines. The zero value is ready to use.
type ErrorCollector struct {
	once sync.Once
	err  error
}

// SetError records err if it is the first non-nil error. Nil is ignored.
func (c *ErrorCollector) SetError(err error) {
	if err == nil {
		return
	}
	c.once.Do(func() {
		c.err = err
	})
}

// Err returns the first recorded error, or nil. It must only be called after
// every writer has finished (for example after a WaitGroup.Wait).
func (c *ErrorCollector) Err() error {
	return c.err
}
