package xpevent

import (
	"os"
	"sync"
	"testing"
)

// fakeKernel emulates named auto-reset events and thread-pool waits in
// memory. Callbacks run on fresh goroutines, like thread-pool workers, and
// unregisterWait blocks until they have returned.
type fakeKernel struct {
	mu      sync.Mutex
	nextH   uintptr
	objects map[string]*fakeEvent
	handles map[uintptr]*fakeEvent
	waits   map[uintptr]*fakeWait

	denied         map[string]bool
	failRegister   error
	failUnregister int // number of upcoming unregisterWait calls to fail
	sets           int
}

type fakeEvent struct {
	name     string
	signaled bool
	refs     int
	armed    []*fakeWait
}

type fakeWait struct {
	ev       *fakeEvent
	ctx      uintptr
	inflight sync.WaitGroup
}

var errFakeUnregister = os.ErrDeadlineExceeded

func newFakeKernel() *fakeKernel {
	return &fakeKernel{
		nextH:   0x100,
		objects: make(map[string]*fakeEvent),
		handles: make(map[uintptr]*fakeEvent),
		waits:   make(map[uintptr]*fakeWait),
		denied:  make(map[string]bool),
	}
}

// useFakeKernel swaps the package kernel for a fake until the test ends.
func useFakeKernel(t *testing.T) *fakeKernel {
	t.Helper()
	k := newFakeKernel()
	old := sys
	sys = k
	t.Cleanup(func() { sys = old })
	return k
}

func (k *fakeKernel) load() error { return nil }

func (k *fakeKernel) newHandle(ev *fakeEvent) uintptr {
	k.nextH += 4
	ev.refs++
	k.handles[k.nextH] = ev
	return k.nextH
}

func (k *fakeKernel) createEvent(name string) (uintptr, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.denied[name] {
		return 0, false, os.ErrPermission
	}
	ev, existed := k.objects[name]
	if !existed {
		ev = &fakeEvent{name: name}
		k.objects[name] = ev
	}
	return k.newHandle(ev), existed, nil
}

func (k *fakeKernel) openEvent(name string) (uintptr, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	ev, ok := k.objects[name]
	if !ok {
		return 0, os.ErrNotExist
	}
	if k.denied[name] {
		return 0, os.ErrPermission
	}
	return k.newHandle(ev), nil
}

func (k *fakeKernel) setEvent(h uintptr) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	ev, ok := k.handles[h]
	if !ok {
		return os.ErrInvalid
	}
	k.sets++
	if len(ev.armed) == 0 {
		ev.signaled = true
		return nil
	}
	// One signal satisfies exactly one wait; rotate for fairness.
	w := ev.armed[0]
	ev.armed = append(ev.armed[1:], w)
	k.fireLocked(w)
	return nil
}

func (k *fakeKernel) fireLocked(w *fakeWait) {
	w.inflight.Add(1)
	go func() {
		defer w.inflight.Done()
		dispatch(w.ctx)
	}()
}

func (k *fakeKernel) closeHandle(h uintptr) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	ev, ok := k.handles[h]
	if !ok {
		return os.ErrInvalid
	}
	delete(k.handles, h)
	ev.refs--
	if ev.refs == 0 {
		delete(k.objects, ev.name)
	}
	return nil
}

func (k *fakeKernel) registerWait(h uintptr, ctx uintptr) (uintptr, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.failRegister != nil {
		return 0, k.failRegister
	}
	ev, ok := k.handles[h]
	if !ok {
		return 0, os.ErrInvalid
	}
	w := &fakeWait{ev: ev, ctx: ctx}
	k.nextH += 4
	k.waits[k.nextH] = w
	ev.armed = append(ev.armed, w)
	if ev.signaled {
		ev.signaled = false
		k.fireLocked(w)
	}
	return k.nextH, nil
}

func (k *fakeKernel) unregisterWait(wait uintptr) error {
	k.mu.Lock()
	if k.failUnregister > 0 {
		k.failUnregister--
		k.mu.Unlock()
		return errFakeUnregister
	}
	w, ok := k.waits[wait]
	if !ok {
		k.mu.Unlock()
		return os.ErrInvalid
	}
	delete(k.waits, wait)
	for i, a := range w.ev.armed {
		if a == w {
			w.ev.armed = append(w.ev.armed[:i], w.ev.armed[i+1:]...)
			break
		}
	}
	k.mu.Unlock()

	// No new invocation can be queued now; wait out the running ones.
	w.inflight.Wait()
	return nil
}

func (k *fakeKernel) openHandles() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.handles)
}

func (k *fakeKernel) armedWaits() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.waits)
}

func (k *fakeKernel) objectCount() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.objects)
}
