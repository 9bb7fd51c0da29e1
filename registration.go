package xpevent

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"github.com/obinnaokechukwu/xpevent/internal/handles"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// regState is the lifecycle of one wait registration.
//
//	Unregistered -> Active -> Revoking -> Released
//	                  ^__________|  (revocation refused by the OS)
type regState int32

const (
	stateUnregistered regState = iota
	stateActive
	stateRevoking
	stateReleased
)

func (s regState) String() string {
	switch s {
	case stateUnregistered:
		return "unregistered"
	case stateActive:
		return "active"
	case stateRevoking:
		return "revoking"
	case stateReleased:
		return "released"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// callbackCell is the heap block the opaque context resolves to. It lives in
// the handles table for as long as the OS may invoke it.
type callbackCell struct {
	fn      func()
	name    string
	log     logrus.FieldLogger
	onFault FaultHandler

	invocations atomic.Uint64
	faults      atomic.Uint64
}

// invoke runs the callback on the calling OS thread. A panic is contained
// here: it must not unwind into the thread pool.
func (c *callbackCell) invoke() {
	defer func() {
		if r := recover(); r != nil {
			c.faults.Add(1)
			c.fault(&InvocationFault{Name: c.name, Value: r, Stack: debug.Stack()})
		}
	}()
	c.invocations.Add(1)
	c.fn()
}

func (c *callbackCell) fault(f *InvocationFault) {
	c.log.WithField("panic", f.Value).Error("callback panicked")
	if c.onFault == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.WithField("panic", r).Error("fault handler panicked")
		}
	}()
	c.onFault(f)
}

// dispatch is the target of the wait trampoline. ctx is a handles ID; the
// lookup borrows the cell and never releases it.
func dispatch(ctx uintptr) {
	cell, ok := handles.Lookup(ctx).(*callbackCell)
	if !ok {
		return
	}
	cell.invoke()
}

// registration ties one OS wait handle to one callbackCell.
//
// While active the cell's handles entry carries two references: one owned
// here and one lent to the OS as the opaque context. Both are dropped only
// after unregisterWait has confirmed the OS is done with the context.
type registration struct {
	state atomic.Int32
	k     kernel
	wait  uintptr
	id    uintptr
	cell  *callbackCell
}

// establish arms a new wait for cell on handle. On failure nothing is left
// registered and both references are dropped.
func establish(k kernel, handle uintptr, cell *callbackCell) (*registration, error) {
	r := &registration{k: k, cell: cell}
	r.id = handles.Register(cell)
	if err := handles.Retain(r.id); err != nil {
		handles.Release(r.id)
		return nil, err
	}

	wait, err := k.registerWait(handle, r.id)
	if err != nil {
		handles.Release(r.id)
		handles.Release(r.id)
		r.state.Store(int32(stateReleased))
		return nil, err
	}
	r.wait = wait
	r.state.Store(int32(stateActive))
	return r, nil
}

func (r *registration) currentState() regState {
	return regState(r.state.Load())
}

// revoke cancels the wait, blocks until the OS confirms, then releases the
// cell. Only the caller that moves the registration out of Active does the
// release, so the cell is freed exactly once.
func (r *registration) revoke() error {
	if !r.state.CompareAndSwap(int32(stateActive), int32(stateRevoking)) {
		return errors.Errorf("xpevent: cannot revoke %s registration", r.currentState())
	}

	if err := r.k.unregisterWait(r.wait); err != nil {
		r.state.Store(int32(stateActive))
		return errors.Wrap(err, "xpevent: unregister wait")
	}

	// The OS reference, then ours.
	if _, err := handles.Release(r.id); err != nil {
		return err
	}
	if _, err := handles.Release(r.id); err != nil {
		return err
	}
	r.state.Store(int32(stateReleased))
	return nil
}

// Stats describes the active registration of an Event.
type Stats struct {
	Registered  bool   // A callback is currently registered
	Invocations uint64 // Callback runs since it was registered
	Faults      uint64 // Runs that panicked
}

// Register attaches cb to the event. The OS thread pool runs cb on one of
// its threads each time the event is signaled, until the registration is
// replaced, revoked with Unregister, or the event is closed.
//
// cb runs concurrently with the caller's goroutines; any state it touches
// must carry its own synchronization. A panic in cb is contained and
// reported through WithFaultHandler.
//
// Registering over an existing callback arms the new one first and then
// revokes the old one, waiting until the old callback can no longer run. If
// the OS refuses the new subscription, the old one stays in place and the
// returned error matches ErrRegistration. If instead the OS refuses to revoke
// the old one, the new callback is active but the old one may keep running
// until Close retries the revocation; that case returns a non-nil error that
// does not match ErrRegistration.
func (e *Event) Register(cb func()) error {
	if cb == nil {
		return ErrNilCallback
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}

	cell := &callbackCell{
		fn:      cb,
		name:    e.name,
		log:     e.log,
		onFault: e.opts.onFault,
	}
	next, err := establish(e.k, e.handle, cell)
	if err != nil {
		e.mu.Unlock()
		e.log.WithError(err).Warn("wait registration refused")
		return classify("register", e.name, KindRegistration, err)
	}

	prev := e.reg
	e.reg = next
	if prev != nil {
		e.retire.Add(1)
	}
	e.mu.Unlock()

	e.log.Debug("callback registered")
	if prev == nil {
		return nil
	}

	// Revoke outside mu: the old callback may be calling Wake right now.
	defer e.retire.Done()
	if err := prev.revoke(); err != nil {
		e.orphan(prev, err)
		return errors.Wrapf(err, "xpevent: register %q: replaced callback still armed", e.name)
	}
	return nil
}

// Unregister revokes the active callback and waits until it can no longer
// run. It is a no-op when nothing is registered.
func (e *Event) Unregister() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	prev := e.reg
	e.reg = nil
	if prev != nil {
		e.retire.Add(1)
	}
	e.mu.Unlock()

	if prev == nil {
		return nil
	}
	defer e.retire.Done()
	if err := prev.revoke(); err != nil {
		e.orphan(prev, err)
		return err
	}
	e.log.Debug("callback unregistered")
	return nil
}

// orphan keeps a registration whose revocation failed so Close can retry it.
// Its cell stays allocated since the OS may still invoke it.
func (e *Event) orphan(r *registration, err error) {
	e.log.WithError(err).Error("failed to revoke registration; retrying on close")
	e.mu.Lock()
	e.orphans = append(e.orphans, r)
	e.mu.Unlock()
}

// Notify registers a callback that turns every invocation into a message on
// the returned channel. The channel has room for one pending wake; further
// wakes arriving before it is drained coalesce, matching the event's binary
// state.
func (e *Event) Notify() (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	err := e.Register(func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// Stats returns counters for the active registration.
func (e *Event) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.reg == nil {
		return Stats{}
	}
	return Stats{
		Registered:  e.reg.currentState() == stateActive,
		Invocations: e.reg.cell.invocations.Load(),
		Faults:      e.reg.cell.faults.Load(),
	}
}
