// Package handles provides a thread-safe, reference-counted handle table for
// Go values that must be referenced from OS callbacks.
//
// The OS wait facility only carries an address-sized context value back to the
// trampoline. We cannot hand it a Go pointer, so the value is registered here
// and the returned uintptr is what the OS stores. Every holder of the ID (the
// Go side and the pending OS subscription) owns one reference; the entry is
// dropped when the last reference is released, and exactly once.
package handles

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrReleased is returned when an ID is retained or released after its last
// reference was already dropped.
var ErrReleased = errors.New("xpevent: handle already released")

type entry struct {
	v    any
	refs int
}

var (
	mu      sync.RWMutex
	handles = make(map[uintptr]*entry)
	nextID  uintptr = 1
)

// Register stores a Go object and returns its handle ID holding one reference.
// The ID is never zero and never reused within the process.
//
// Thread-safe.
func Register(v any) uintptr {
	mu.Lock()
	defer mu.Unlock()
	id := nextID
	nextID++
	handles[id] = &entry{v: v, refs: 1}
	return id
}

// Retain adds a reference to id. The caller that retains must release.
//
// Thread-safe.
func Retain(id uintptr) error {
	mu.Lock()
	defer mu.Unlock()
	e, ok := handles[id]
	if !ok {
		return errors.Wrapf(ErrReleased, "retain %d", id)
	}
	e.refs++
	return nil
}

// Lookup borrows the object behind id without touching its reference count.
// Returns nil if the handle is not registered.
//
// Thread-safe.
func Lookup(id uintptr) any {
	mu.RLock()
	defer mu.RUnlock()
	if e, ok := handles[id]; ok {
		return e.v
	}
	return nil
}

// Release drops one reference and reports how many remain. When the count
// reaches zero the object is removed and becomes collectable.
//
// Thread-safe.
func Release(id uintptr) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	e, ok := handles[id]
	if !ok {
		return 0, errors.Wrapf(ErrReleased, "release %d", id)
	}
	e.refs--
	if e.refs > 0 {
		return e.refs, nil
	}
	delete(handles, id)
	return 0, nil
}

// Refs returns the reference count of id, or 0 if it is not registered.
func Refs(id uintptr) int {
	mu.RLock()
	defer mu.RUnlock()
	if e, ok := handles[id]; ok {
		return e.refs
	}
	return 0
}

// Count returns the number of currently registered handles.
// Useful for debugging and testing leaks.
//
// Thread-safe.
func Count() int {
	mu.RLock()
	defer mu.RUnlock()
	return len(handles)
}
