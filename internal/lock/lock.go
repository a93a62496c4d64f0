// Package lock serializes read-compute-write sequences on a single record.
package lock

import (
	"context"
	"fmt"
	"sync"
)

// Locker acquires a named lock, blocking until it is held or ctx is done.
// The returned release must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

func SaleKey(id int64) string    { return fmt.Sprintf("ledger:sale:%d", id) }
func BillKey(id int64) string    { return fmt.Sprintf("ledger:bill:%d", id) }
func PaymentKey(id int64) string { return fmt.Sprintf("ledger:payment:%d", id) }

// Local is an in-process keyed mutex. It only serializes callers within one
// process; use Redis when more than one instance writes.
type Local struct {
	mu    sync.Mutex
	locks map[string]*localEntry
}

type localEntry struct {
	sem  chan struct{}
	refs int
}

func NewLocal() *Local {
	return &Local{locks: make(map[string]*localEntry)}
}

func (l *Local) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()

	e, ok := l.locks[key]
	if !ok {
		e = &localEntry{sem: make(chan struct{}, 1)}
		l.locks[key] = e
	}

	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once

	return func() {
		once.Do(func() {
			<-e.sem
			l.drop(key, e)
		})
	}, nil
}

func (l *Local) drop(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
