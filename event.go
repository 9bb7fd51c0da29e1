package xpevent

import (
	"runtime"
	"sync"

	"github.com/obinnaokechukwu/xpevent/internal/platform"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Event is a named, auto-reset kernel event shared across processes.
//
// Any process that knows the name can Open it and Wake it. The owner attaches
// a callback with Register; the OS thread pool then runs that callback every
// time the event is signaled. One signal releases one observer, after which
// the event is unsignaled again. Signals are not queued.
//
// Wake may be called concurrently with everything else. Register, Unregister
// and Close serialize with each other. Close, Unregister and a replacing
// Register block until the OS confirms no callback is running or pending for
// the revoked registration, so none of them may be called from inside the
// callback itself.
type Event struct {
	mu      sync.RWMutex
	k       kernel
	handle  uintptr
	name    string
	existed bool
	closed  bool
	reg     *registration
	orphans []*registration // revocation failed; retried on Close
	retire  sync.WaitGroup  // revocations running outside mu
	opts    options
	log     logrus.FieldLogger
}

// Create creates a new named event in the unsignaled state, or joins the
// existing event of that name. Joining is not an error; Existed reports it.
func Create(name string, opts ...Option) (*Event, error) {
	o := newOptions(opts)
	full, err := platform.ObjectName(o.namespace, name)
	if err != nil {
		return nil, classify("create", name, KindCreation, err)
	}

	k := sys
	if err := k.load(); err != nil {
		return nil, classify("create", full, KindCreation, err)
	}
	h, existed, err := k.createEvent(full)
	if err != nil {
		return nil, classify("create", full, KindCreation, err)
	}

	e := newEvent(k, h, full, existed, o)
	if existed {
		e.log.Debug("joined existing event")
	} else {
		e.log.Debug("created event")
	}
	return e, nil
}

// Open opens an existing named event. It never creates one: a missing event
// yields an error matching ErrNotFound, an inaccessible one ErrPermissionDenied.
func Open(name string, opts ...Option) (*Event, error) {
	o := newOptions(opts)
	full, err := platform.ObjectName(o.namespace, name)
	if err != nil {
		return nil, classify("open", name, KindOpen, err)
	}

	k := sys
	if err := k.load(); err != nil {
		return nil, classify("open", full, KindOpen, err)
	}
	h, err := k.openEvent(full)
	if err != nil {
		return nil, classify("open", full, KindOpen, err)
	}

	e := newEvent(k, h, full, false, o)
	e.log.Debug("opened event")
	return e, nil
}

func newEvent(k kernel, h uintptr, name string, existed bool, o options) *Event {
	e := &Event{
		k:       k,
		handle:  h,
		name:    name,
		existed: existed,
		opts:    o,
		log:     o.logger.WithField("event", name),
	}
	runtime.SetFinalizer(e, (*Event).finalize)
	return e
}

// Name returns the kernel object name, including any namespace prefix.
func (e *Event) Name() string {
	return e.name
}

// Existed reports whether Create joined an event that already existed.
// It is always false for events returned by Open.
func (e *Event) Existed() bool {
	return e.existed
}

// Wake signals the event. It does not block. A nil error means the OS
// accepted the signal; it says nothing about whether anyone observed it.
func (e *Event) Wake() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return ErrClosed
	}
	if err := e.k.setEvent(e.handle); err != nil {
		return classify("wake", e.name, KindSignal, err)
	}
	return nil
}

// Close revokes the active registration, waits for the OS to confirm no
// callback is in flight, and then closes the handle. It is safe to call
// multiple times.
//
// If the OS refuses to revoke a wait, the handle and the callback are
// deliberately leaked and the error is returned.
func (e *Event) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	reg := e.reg
	e.reg = nil
	e.mu.Unlock()

	runtime.SetFinalizer(e, nil)
	return e.teardown(reg)
}

func (e *Event) finalize() {
	if err := e.Close(); err != nil {
		e.log.WithError(err).Warn("finalizer could not release event")
	}
}

// teardown sequences revoke -> confirm -> release -> close handle.
func (e *Event) teardown(reg *registration) error {
	var firstErr error
	if reg != nil {
		if err := reg.revoke(); err != nil {
			e.log.WithError(err).Error("failed to revoke registration")
			firstErr = err
		}
	}

	// Replaced registrations may still be revoking on other goroutines.
	e.retire.Wait()

	e.mu.Lock()
	orphans := e.orphans
	e.orphans = nil
	e.mu.Unlock()
	for _, r := range orphans {
		if err := r.revoke(); err != nil {
			e.log.WithError(err).Error("failed to revoke orphaned registration")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr != nil {
		return errors.Wrapf(firstErr, "xpevent: close %q: wait still armed, handle leaked", e.name)
	}

	if err := e.k.closeHandle(e.handle); err != nil {
		return errors.Wrapf(err, "xpevent: close %q", e.name)
	}
	e.handle = 0
	e.log.Debug("closed event")
	return nil
}
